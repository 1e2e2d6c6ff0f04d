package main

import "strings"

// ToSExpr renders a method list as an s-expression, for `tsil dump` and the
// markdown tests:
//
//	(module (method "main" static private entrypoint (call ("console" "log") "hi") (ret)))
func ToSExpr(methods []Method) string {
	result := "(module"
	for _, m := range methods {
		result += " " + methodToSExpr(m)
	}
	return result + ")"
}

func methodToSExpr(m Method) string {
	result := "(method " + quoteSExpr(m.Name)
	if m.IsStatic {
		result += " static"
	}
	if m.IsPrivate {
		result += " private"
	} else {
		result += " public"
	}
	if m.IsEntryPoint {
		result += " entrypoint"
	}
	for _, instr := range m.Body {
		result += " " + instructionToSExpr(instr)
	}
	return result + ")"
}

func instructionToSExpr(instr Instruction) string {
	switch instr.Kind {
	case InstrCall:
		names := make([]string, len(instr.NameParts))
		for i, part := range instr.NameParts {
			names[i] = quoteSExpr(part)
		}
		result := "(call (" + strings.Join(names, " ") + ")"
		for _, arg := range instr.Args {
			result += " " + quoteSExpr(arg)
		}
		return result + ")"
	case InstrReturn:
		return "(ret)"
	default:
		return ""
	}
}

func quoteSExpr(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return "\"" + s + "\""
}
