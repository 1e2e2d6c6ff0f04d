package main

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// InstructionKind tags the Instruction variant.
type InstructionKind string

const (
	InstrCall   InstructionKind = "call"
	InstrReturn InstructionKind = "ret"
)

// Instruction is one entry in a method body.
type Instruction struct {
	Kind InstructionKind
	// InstrCall: the dotted call target, one element per identifier.
	NameParts []string
	// InstrCall: string literal arguments in source order.
	Args []string
}

// Method describes one emitted routine.
type Method struct {
	Name         string
	IsStatic     bool
	IsPrivate    bool
	IsEntryPoint bool
	ReturnType   string
	Parameters   []string
	Body         []Instruction
}

// Clone returns a deep copy of the method.
func (m Method) Clone() Method {
	c := m
	c.Parameters = slices.Clone(m.Parameters)
	c.Body = make([]Instruction, len(m.Body))
	for i, instr := range m.Body {
		c.Body[i] = Instruction{
			Kind:      instr.Kind,
			NameParts: slices.Clone(instr.NameParts),
			Args:      slices.Clone(instr.Args),
		}
	}
	return c
}

type scope struct {
	method int // index into Builder.methods
	node   *SyntaxNode
	// pending is the index in the method body of the call still collecting
	// its target name, or -1.
	pending int
}

// Builder turns walk events into methods. Use one Builder per source file.
type Builder struct {
	File string
	// Strict reports statements the compiler ignores as warnings.
	Strict bool
	Errors ErrorCollection

	methods []Method
	scopes  []scope
}

func NewBuilder(file string) *Builder {
	return &Builder{File: file}
}

// Build walks tree and returns the methods found in it.
func Build(tree *SyntaxNode) []Method {
	b := NewBuilder("")
	_ = Walk(tree, b.Visit)
	return b.Methods()
}

// Methods returns the methods built so far, in creation order.
func (b *Builder) Methods() []Method {
	return b.methods
}

// Visit is the Walker callback that drives the builder.
func (b *Builder) Visit(n *SyntaxNode, entering bool) (WalkStatus, error) {
	if !entering {
		b.exit(n)
		return WalkContinue, nil
	}

	switch n.Kind {
	case NodeModule:
		b.enterMethod(n, Method{
			Name:         "main",
			IsStatic:     true,
			IsPrivate:    true,
			IsEntryPoint: true,
			ReturnType:   "void",
			Parameters:   []string{},
		})
		b.checkStatements(n)

	case NodeFunction:
		b.enterMethod(n, Method{
			Name:       n.Text,
			IsStatic:   true,
			IsPrivate:  true,
			ReturnType: "void",
			Parameters: []string{},
		})

	case NodeBlock:
		b.checkStatements(n)

	case NodeCall:
		b.call(n)

	case NodeArguments:
		// The callee has been fully visited.
		if s := b.current(); s != nil {
			s.pending = -1
		}

	case NodeIdent:
		b.ident(n)

	default:
		// Walked into, not acted on.
	}
	return WalkContinue, nil
}

func (b *Builder) current() *scope {
	if len(b.scopes) == 0 {
		return nil
	}
	return &b.scopes[len(b.scopes)-1]
}

func (b *Builder) enterMethod(n *SyntaxNode, m Method) {
	b.methods = append(b.methods, m)
	b.scopes = append(b.scopes, scope{
		method:  len(b.methods) - 1,
		node:    n,
		pending: -1,
	})
}

func (b *Builder) exit(n *SyntaxNode) {
	s := b.current()
	if s == nil || s.node != n {
		return
	}
	m := &b.methods[s.method]
	m.Body = append(m.Body, Instruction{Kind: InstrReturn})
	b.scopes = b.scopes[:len(b.scopes)-1]
}

func (b *Builder) call(n *SyntaxNode) {
	s := b.current()
	if s == nil {
		return
	}
	target := calleeOf(n)
	if target == nil {
		b.errorf(n, "call has no target")
		s.pending = -1
		return
	}
	if !isNameChain(target) {
		// Identifiers under target belong to no call, except those of
		// calls nested inside it.
		b.errorf(target, "unsupported call target %s", target.Type)
		s.pending = -1
		return
	}

	instr := Instruction{Kind: InstrCall}
	for _, child := range n.Children {
		if child.Kind != NodeArguments {
			continue
		}
		for _, arg := range child.Children {
			switch {
			case arg.Kind == NodeString:
				instr.Args = append(instr.Args, arg.Text)
			case arg.Type == "comment":
			default:
				b.errorf(arg, "unsupported argument kind %s", arg.Type)
			}
		}
	}
	m := &b.methods[s.method]
	m.Body = append(m.Body, instr)
	s.pending = len(m.Body) - 1
}

func calleeOf(call *SyntaxNode) *SyntaxNode {
	for _, child := range call.Children {
		if child.Kind != NodeArguments && child.Type != "comment" {
			return child
		}
	}
	return nil
}

// isNameChain reports whether n is a plain name like a or a.b.c.
func isNameChain(n *SyntaxNode) bool {
	switch n.Kind {
	case NodeIdent:
		return true
	case NodeMember:
		names := 0
		for _, child := range n.Children {
			if child.Type == "comment" {
				continue
			}
			if !isNameChain(child) {
				return false
			}
			names++
		}
		return names > 0
	default:
		return false
	}
}

func (b *Builder) ident(n *SyntaxNode) {
	s := b.current()
	if s == nil || s.pending < 0 {
		return
	}
	instr := &b.methods[s.method].Body[s.pending]
	instr.NameParts = append(instr.NameParts, n.Text)
}

// checkStatements warns about statements that produce no code.
func (b *Builder) checkStatements(n *SyntaxNode) {
	if !b.Strict {
		return
	}
	for _, stmt := range n.Children {
		switch stmt.Kind {
		case NodeFunction, NodeReturn:
		case NodeExprStmt:
			if len(stmt.Children) == 0 || stmt.Children[0].Kind != NodeCall {
				b.warnf(stmt, "expression statement is not a call; ignored")
			}
		default:
			if stmt.Type == "comment" || stmt.Type == "empty_statement" {
				continue
			}
			b.warnf(stmt, "unsupported statement %s; ignored", stmt.Type)
		}
	}
}

func (b *Builder) errorf(n *SyntaxNode, format string, args ...any) {
	b.report(n, SeverityError, format, args...)
}

func (b *Builder) warnf(n *SyntaxNode, format string, args ...any) {
	b.report(n, SeverityWarning, format, args...)
}

func (b *Builder) report(n *SyntaxNode, sev Severity, format string, args ...any) {
	b.Errors.Add(Diagnostic{
		File:     b.File,
		Line:     n.Line,
		Column:   n.Column,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}
