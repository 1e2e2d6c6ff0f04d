package main

import (
	"context"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func parseJS(t *testing.T, source string) *SyntaxNode {
	t.Helper()
	var errs ErrorCollection
	tree, err := ParseSource(context.Background(), "test.js", LanguageJavaScript, []byte(source), &errs)
	be.Err(t, err, nil)
	be.True(t, !errs.HasErrors())
	return tree
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		lang Language
		ok   bool
	}{
		{"hello.js", LanguageJavaScript, true},
		{"dir/hello.mjs", LanguageJavaScript, true},
		{"hello.cjs", LanguageJavaScript, true},
		{"hello.ts", LanguageTypeScript, true},
		{"HELLO.TS", LanguageTypeScript, true},
		{"hello.tsi", LanguageTypeScript, true},
		{"hello.il", "", false},
		{"README", "", false},
	}

	for _, test := range tests {
		lang, ok := LanguageForPath(test.path)
		be.Equal(t, lang, test.lang)
		be.Equal(t, ok, test.ok)
	}
}

func TestParseSourceCallShape(t *testing.T) {
	tree := parseJS(t, `console.log("hello");`)

	be.Equal(t, tree.Kind, NodeModule)
	be.Equal(t, len(tree.Children), 1)

	exprStmt := tree.Children[0]
	be.Equal(t, exprStmt.Kind, NodeExprStmt)

	callNode := exprStmt.Children[0]
	be.Equal(t, callNode.Kind, NodeCall)
	be.Equal(t, callNode.Line, 1)
	be.Equal(t, callNode.Column, 1)

	member := callNode.Children[0]
	be.Equal(t, member.Kind, NodeMember)
	be.Equal(t, member.Children[0].Kind, NodeIdent)
	be.Equal(t, member.Children[0].Text, "console")
	be.Equal(t, member.Children[1].Kind, NodeIdent)
	be.Equal(t, member.Children[1].Type, "property_identifier")
	be.Equal(t, member.Children[1].Text, "log")

	args := callNode.Children[1]
	be.Equal(t, args.Kind, NodeArguments)
	be.Equal(t, len(args.Children), 1)
	be.Equal(t, args.Children[0].Kind, NodeString)
	be.Equal(t, args.Children[0].Text, "hello")
	be.Equal(t, len(args.Children[0].Children), 0)
}

func TestParseSourceFunctionDeclaration(t *testing.T) {
	tree := parseJS(t, "function greet(name) {\n  return;\n}\n")

	decl := tree.Children[0]
	be.Equal(t, decl.Kind, NodeFunction)
	be.Equal(t, decl.Text, "greet")

	var kinds []string
	for _, child := range decl.Children {
		kinds = append(kinds, string(child.Kind))
	}
	be.Equal(t, strings.Join(kinds, ","), "NodeIdent,NodeParams,NodeBlock")

	body := decl.Children[2]
	be.Equal(t, body.Children[0].Kind, NodeReturn)
	be.Equal(t, body.Children[0].Line, 2)
	be.Equal(t, body.Children[0].Column, 3)
}

func TestParseSourceStringValues(t *testing.T) {
	tests := []struct {
		literal  string
		expected string
	}{
		{`"plain"`, "plain"},
		{`''`, ""},
		{`'single'`, "single"},
		{`'it\'s'`, "it's"},
		{`"say \"hi\""`, `say "hi"`},
		{`'say "hi"'`, `say "hi"`},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"back\\slash"`, `back\slash`},
		{`"\x41B\u{43}"`, "ABC"},
		{`"\uD83D\uDE00"`, "\U0001F600"},
		{`"<\ud83d\ude00>"`, "<\U0001F600>"},
		{`"\uD83D"`, "\uFFFD"},
		{`"\uD83D\u0041"`, "\uFFFDA"},
	}

	for _, test := range tests {
		tree := parseJS(t, "f("+test.literal+");")
		arg := tree.Children[0].Children[0].Children[1].Children[0]
		be.Equal(t, arg.Kind, NodeString)
		be.Equal(t, arg.Text, test.expected)
	}
}

func TestParseSourceOtherNodes(t *testing.T) {
	tree := parseJS(t, "// note\nlet x = 1;\n")

	be.Equal(t, len(tree.Children), 2)
	be.Equal(t, tree.Children[0].Kind, NodeOther)
	be.Equal(t, tree.Children[0].Type, "comment")
	be.Equal(t, tree.Children[1].Kind, NodeOther)
	be.Equal(t, tree.Children[1].Type, "lexical_declaration")
}

func TestParseSourceEmpty(t *testing.T) {
	tree := parseJS(t, "")
	be.Equal(t, tree.Kind, NodeModule)
	be.Equal(t, len(tree.Children), 0)
}

func TestParseSourceTypeScript(t *testing.T) {
	source := `function greet(name: string): void {
	System.Console.WriteLine("hi");
}
greet("x");
`
	var errs ErrorCollection
	tree, err := ParseSource(context.Background(), "hello.ts", LanguageTypeScript, []byte(source), &errs)
	be.Err(t, err, nil)
	be.True(t, !errs.HasErrors())

	be.Equal(t, tree.Kind, NodeModule)
	be.Equal(t, tree.Children[0].Kind, NodeFunction)
	be.Equal(t, tree.Children[0].Text, "greet")
	be.Equal(t, tree.Children[1].Kind, NodeExprStmt)
}

func TestParseSourceSyntaxError(t *testing.T) {
	var errs ErrorCollection
	tree, err := ParseSource(context.Background(), "broken.js", LanguageJavaScript, []byte("console.log(\"hi\";\n"), &errs)
	be.Err(t, err, nil)
	be.True(t, tree == nil)
	be.True(t, errs.HasErrors())
	be.True(t, strings.HasPrefix(errs.Diagnostics[0].String(), "broken.js:1:"))
}

func TestDecodeEscape(t *testing.T) {
	tests := []struct {
		seq      string
		expected string
	}{
		{`\n`, "\n"},
		{`\r`, "\r"},
		{`\0`, "\x00"},
		{`\'`, "'"},
		{`\"`, `"`},
		{`\\`, `\`},
		{`\q`, "q"},
		{`\x7e`, "~"},
		{`\u00e9`, "é"},
		{`\u{1F600}`, "😀"},
		{"\\\n", ""},
	}

	for _, test := range tests {
		be.Equal(t, decodeEscape(test.seq), test.expected)
	}
}

func TestDecodeSurrogatePair(t *testing.T) {
	r, ok := decodeSurrogatePair(`\uD83D`, `\uDE00`)
	be.True(t, ok)
	be.Equal(t, r, '\U0001F600')

	_, ok = decodeSurrogatePair(`\uD83D`, `\u0041`)
	be.True(t, !ok)
	_, ok = decodeSurrogatePair(`\n`, `\uDE00`)
	be.True(t, !ok)
}
