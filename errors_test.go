package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{File: "hello.js", Line: 2, Column: 5, Severity: SeverityError, Message: "unsupported argument kind number"}
	be.Equal(t, d.String(), "hello.js:2:5: error: unsupported argument kind number")

	d.File = ""
	d.Severity = SeverityWarning
	be.Equal(t, d.String(), "2:5: warning: unsupported argument kind number")
}

func TestErrorCollection(t *testing.T) {
	var ec ErrorCollection
	be.True(t, !ec.HasErrors())
	be.Equal(t, ec.Count(), 0)
	be.Equal(t, ec.String(), "")

	ec.Add(Diagnostic{File: "a.js", Line: 1, Column: 1, Severity: SeverityWarning, Message: "w"})
	be.True(t, !ec.HasErrors())
	be.Equal(t, ec.Count(), 1)

	ec.Add(Diagnostic{File: "a.js", Line: 2, Column: 3, Severity: SeverityError, Message: "e"})
	be.True(t, ec.HasErrors())
	be.Equal(t, ec.String(), "a.js:1:1: warning: w\na.js:2:3: error: e")
}

func TestAssemblerErrorMessage(t *testing.T) {
	err := &AssemblerError{Tool: "ilasm", ExitCode: 1, Output: "***** FAILURE *****\n"}
	be.Equal(t, err.Error(), "ilasm exited with status 1:\n***** FAILURE *****\n")
}

func TestCompileErrorMessage(t *testing.T) {
	err := &CompileError{File: "x.js"}
	err.Errors.Add(Diagnostic{File: "x.js", Line: 1, Column: 13, Severity: SeverityError, Message: "unsupported argument kind number"})
	be.Equal(t, err.Error(), "errors in x.js:\nx.js:1:13: error: unsupported argument kind number")
}
