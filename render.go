package main

import (
	"fmt"
	"strings"
)

// mscorlibRef qualifies call targets in the System namespace.
const mscorlibRef = "[mscorlib]"

// ilWriter writes ILAsm one line at a time.
type ilWriter struct {
	out *strings.Builder
}

func (w ilWriter) line(indent int, format string, args ...any) {
	w.out.WriteString(strings.Repeat("    ", indent))
	fmt.Fprintf(w.out, format, args...)
	w.out.WriteByte('\n')
}

// Render produces the ILAsm text for one source file's methods. moduleName
// names the produced assembly and module. Render panics on a call without a
// target; the builder never produces one.
func Render(moduleName string, methods []Method) string {
	var sb strings.Builder
	w := ilWriter{out: &sb}

	w.line(0, ".assembly extern mscorlib {}")
	w.line(0, ".assembly '%s' {}", moduleName)
	w.line(0, ".module %s.exe", moduleName)

	for _, m := range methods {
		sb.WriteByte('\n')
		w.line(0, "%s", methodSignature(m))
		w.line(0, "{")
		if m.IsEntryPoint {
			w.line(1, ".entrypoint")
		}
		w.line(1, ".maxstack 1")
		for _, instr := range m.Body {
			switch instr.Kind {
			case InstrCall:
				w.line(1, "ldstr %s", quoteString(strings.Join(instr.Args, ", ")))
				w.line(1, "call void class %s(string)", callTarget(instr.NameParts))
			case InstrReturn:
				w.line(1, "ret")
				w.line(0, "}")
			}
		}
	}
	return sb.String()
}

func methodSignature(m Method) string {
	parts := []string{".method"}
	if m.IsStatic {
		parts = append(parts, "static")
	}
	if m.IsPrivate {
		parts = append(parts, "private")
	} else {
		parts = append(parts, "public")
	}
	parts = append(parts,
		"hidebysig", "default", m.ReturnType,
		fmt.Sprintf("%s(%s)", m.Name, strings.Join(m.Parameters, ", ")),
		"cil", "managed")
	return strings.Join(parts, " ")
}

// callTarget turns ["System", "Console", "WriteLine"] into
// "[mscorlib]System.Console::WriteLine".
func callTarget(nameParts []string) string {
	if len(nameParts) == 0 {
		panic("call instruction has no target name")
	}
	last := len(nameParts) - 1
	target := strings.Join(nameParts[:last], ".") + "::" + nameParts[last]
	if nameParts[0] == "System" {
		target = mscorlibRef + target
	}
	return target
}

// quoteString writes s as an ILAsm string literal.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
