package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"golang.org/x/exp/slices"
)

// NodeKind is the closed set of syntax node kinds the compiler distinguishes.
// Everything else the parser produces becomes NodeOther.
type NodeKind string

const (
	NodeModule    NodeKind = "NodeModule"
	NodeFunction  NodeKind = "NodeFunction"
	NodeCall      NodeKind = "NodeCall"
	NodeArguments NodeKind = "NodeArguments"
	NodeIdent     NodeKind = "NodeIdent"
	NodeString    NodeKind = "NodeString"
	NodeMember    NodeKind = "NodeMember"
	NodeBlock     NodeKind = "NodeBlock"
	NodeReturn    NodeKind = "NodeReturn"
	NodeExprStmt  NodeKind = "NodeExprStmt"
	NodeParams    NodeKind = "NodeParams"
	NodeOther     NodeKind = "NodeOther"
)

// SyntaxNode is a parser-independent syntax tree node.
type SyntaxNode struct {
	Kind NodeKind
	// Type is the parser's own name for the node ("call_expression", ...).
	Type string
	// NodeIdent: the identifier. NodeFunction: the declared name.
	// NodeString: the decoded string value.
	Text     string
	Children []*SyntaxNode
	// 1-based source position.
	Line   int
	Column int
}

// Language selects the tree-sitter grammar used for a source file.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
)

var (
	javaScriptExtensions = []string{".js", ".mjs", ".cjs"}
	typeScriptExtensions = []string{".ts", ".tsi"}
)

// LanguageForPath picks a grammar from a file extension.
func LanguageForPath(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case slices.Contains(typeScriptExtensions, ext):
		return LanguageTypeScript, true
	case slices.Contains(javaScriptExtensions, ext):
		return LanguageJavaScript, true
	default:
		return "", false
	}
}

func (lang Language) grammar() *sitter.Language {
	if lang == LanguageTypeScript {
		return typescript.GetLanguage()
	}
	return javascript.GetLanguage()
}

var nodeKinds = map[string]NodeKind{
	"program":              NodeModule,
	"function_declaration": NodeFunction,
	"call_expression":      NodeCall,
	"arguments":            NodeArguments,
	"identifier":           NodeIdent,
	"property_identifier":  NodeIdent,
	"string":               NodeString,
	"member_expression":    NodeMember,
	"statement_block":      NodeBlock,
	"return_statement":     NodeReturn,
	"expression_statement": NodeExprStmt,
	"formal_parameters":    NodeParams,
}

// ParseSource parses source text into a SyntaxNode tree. file is only used in
// diagnostics. Syntax errors found by the parser are collected into errs; the
// returned tree is nil when any were found.
func ParseSource(ctx context.Context, file string, lang Language, source []byte, errs *ErrorCollection) (*SyntaxNode, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.grammar())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		before := errs.Count()
		collectSyntaxErrors(root, file, source, errs)
		if errs.Count() == before {
			errs.Add(Diagnostic{File: file, Line: 1, Column: 1, Severity: SeverityError, Message: "syntax error"})
		}
		return nil, nil
	}
	return convertNode(root, source), nil
}

func collectSyntaxErrors(node *sitter.Node, file string, source []byte, errs *ErrorCollection) {
	if node == nil || !node.HasError() {
		return
	}
	pos := node.StartPoint()
	switch {
	case node.IsMissing():
		errs.Add(Diagnostic{
			File:     file,
			Line:     int(pos.Row) + 1,
			Column:   int(pos.Column) + 1,
			Severity: SeverityError,
			Message:  fmt.Sprintf("missing %s", node.Type()),
		})
		return
	case node.Type() == "ERROR":
		errs.Add(Diagnostic{
			File:     file,
			Line:     int(pos.Row) + 1,
			Column:   int(pos.Column) + 1,
			Severity: SeverityError,
			Message:  fmt.Sprintf("syntax error near %q", excerpt(node.Content(source))),
		})
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectSyntaxErrors(node.Child(i), file, source, errs)
	}
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 20 {
		s = s[:20] + "..."
	}
	return s
}

func convertNode(node *sitter.Node, source []byte) *SyntaxNode {
	pos := node.StartPoint()
	out := &SyntaxNode{
		Kind:   NodeOther,
		Type:   node.Type(),
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
	if kind, ok := nodeKinds[out.Type]; ok {
		out.Kind = kind
	}

	switch out.Kind {
	case NodeIdent:
		out.Text = node.Content(source)
	case NodeFunction:
		if name := node.ChildByFieldName("name"); name != nil {
			out.Text = name.Content(source)
		}
	case NodeString:
		out.Text = stringValue(node, source)
		// Fragments and escapes are folded into Text.
		return out
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		out.Children = append(out.Children, convertNode(node.NamedChild(i), source))
	}
	return out
}

// stringValue decodes a string literal node from its fragments and escapes.
func stringValue(node *sitter.Node, source []byte) string {
	var sb strings.Builder
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "string_fragment":
			sb.WriteString(child.Content(source))
		case "escape_sequence":
			seq := child.Content(source)
			if i+1 < count {
				next := node.NamedChild(i + 1)
				if next.Type() == "escape_sequence" {
					if r, ok := decodeSurrogatePair(seq, next.Content(source)); ok {
						sb.WriteRune(r)
						i++
						continue
					}
				}
			}
			sb.WriteString(decodeEscape(seq))
		}
	}
	return sb.String()
}

// decodeSurrogatePair joins two \u escapes that encode one UTF-16 pair.
func decodeSurrogatePair(high, low string) (rune, bool) {
	hi, ok := unicodeEscape(high)
	if !ok {
		return 0, false
	}
	lo, ok := unicodeEscape(low)
	if !ok {
		return 0, false
	}
	r := utf16.DecodeRune(hi, lo)
	return r, r != utf8.RuneError
}

func unicodeEscape(seq string) (rune, bool) {
	if !strings.HasPrefix(seq, `\u`) {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.Trim(seq[2:], "{}"), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

func decodeEscape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	body := seq[1:]
	switch body[0] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(body) == 1 {
			return "\x00"
		}
	case 'x':
		if n, err := strconv.ParseUint(body[1:], 16, 8); err == nil {
			return string(rune(n))
		}
	case 'u':
		hex := strings.Trim(body[1:], "{}")
		if n, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return string(rune(n))
		}
	case '\n', '\r':
		// Line continuation.
		return ""
	}
	return body
}
