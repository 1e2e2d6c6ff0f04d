package sexy

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeList
)

// Node is one s-expression datum.
type Node struct {
	Type  NodeType
	Text  string  // NodeSymbol, NodeString, NodeInteger
	Items []*Node // NodeList
}

// String prints the node in canonical form: single spaces between list items
// and strings quoted with \" and \\ escaped.
func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		return "\"" + escaped + "\""
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewInteger(text string) *Node {
	return &Node{Type: NodeInteger, Text: text}
}

func NewList(items []*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

// Parse reads exactly one datum from input. Comments start with ';'.
func Parse(input string) (*Node, error) {
	l := &lexer{input: input}
	node, err := l.datum()
	if err != nil {
		return nil, err
	}
	l.skipSpace()
	if l.pos < len(l.input) {
		return nil, fmt.Errorf("offset %d: expected EOF but got %q", l.pos, l.input[l.pos])
	}
	return node, nil
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ';':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case unicode.IsSpace(rune(c)):
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) datum() (*Node, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return nil, fmt.Errorf("unexpected EOF")
	}
	c := l.input[l.pos]
	switch {
	case c == '(':
		return l.list()
	case c == ')':
		return nil, fmt.Errorf("offset %d: unexpected ')'", l.pos)
	case c == '"':
		return l.str()
	case isDigit(c) || ((c == '-' || c == '+') && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
		start := l.pos
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		return NewInteger(l.input[start:l.pos]), nil
	case isSymbolChar(c):
		start := l.pos
		for l.pos < len(l.input) && isSymbolChar(l.input[l.pos]) {
			l.pos++
		}
		return NewSymbol(l.input[start:l.pos]), nil
	default:
		return nil, fmt.Errorf("offset %d: unexpected character '%c'", l.pos, c)
	}
}

func (l *lexer) list() (*Node, error) {
	l.pos++ // consume '('
	items := []*Node{}
	for {
		l.skipSpace()
		if l.pos >= len(l.input) {
			return nil, fmt.Errorf("expected ')' but got EOF")
		}
		if l.input[l.pos] == ')' {
			l.pos++
			return NewList(items), nil
		}
		item, err := l.datum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (l *lexer) str() (*Node, error) {
	l.pos++ // consume opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case '"':
			l.pos++
			return NewString(sb.String()), nil
		case '\\':
			if l.pos+1 >= len(l.input) {
				return nil, fmt.Errorf("unterminated string")
			}
			next := l.input[l.pos+1]
			if next != '"' && next != '\\' {
				return nil, fmt.Errorf("invalid escape sequence: \\%c", next)
			}
			sb.WriteByte(next)
			l.pos += 2
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return nil, fmt.Errorf("unterminated string")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSymbolChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || isDigit(c) || c == '-' || c == '_'
}
