package main

import (
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a problem found in a source file.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	if d.File == "" {
		return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Column, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}

// ErrorCollection accumulates diagnostics for one compilation unit.
type ErrorCollection struct {
	Diagnostics []Diagnostic
}

func (ec *ErrorCollection) Add(d Diagnostic) {
	ec.Diagnostics = append(ec.Diagnostics, d)
}

// HasErrors reports whether any diagnostic has error severity. Warnings alone
// do not fail a compilation.
func (ec *ErrorCollection) HasErrors() bool {
	for _, d := range ec.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (ec *ErrorCollection) Count() int {
	return len(ec.Diagnostics)
}

// String renders every diagnostic, one per line.
func (ec *ErrorCollection) String() string {
	lines := make([]string, 0, len(ec.Diagnostics))
	for _, d := range ec.Diagnostics {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

// AssemblerError is returned when the external assembler exits unsuccessfully.
// Output is the tool's combined stdout and stderr, unmodified.
type AssemblerError struct {
	Tool     string
	ExitCode int
	Output   string
}

func (e *AssemblerError) Error() string {
	return fmt.Sprintf("%s exited with status %d:\n%s", e.Tool, e.ExitCode, e.Output)
}
