package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// Assembler turns .il artifacts into a single binary.
type Assembler interface {
	Assemble(ctx context.Context, output string, artifacts []string) error
}

// ILAsm runs the ilasm command line tool.
type ILAsm struct {
	// Path to the ilasm executable. Empty means $TSIL_ILASM, then "ilasm" on PATH.
	Path string
}

func (a ILAsm) tool() string {
	if a.Path != "" {
		return a.Path
	}
	if env := os.Getenv("TSIL_ILASM"); env != "" {
		return env
	}
	return "ilasm"
}

// Assemble invokes the tool once with every artifact and /output:<output>.
// A non-zero exit is reported as *AssemblerError carrying the tool's output.
func (a ILAsm) Assemble(ctx context.Context, output string, artifacts []string) error {
	if len(artifacts) == 0 {
		return errors.New("no artifacts to assemble")
	}
	tool := a.tool()
	args := append(append([]string{}, artifacts...), "/output:"+output)
	slog.Debug("running assembler", slog.String("tool", tool), slog.Any("args", args))

	cmd := exec.CommandContext(ctx, tool, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &AssemblerError{Tool: tool, ExitCode: exitErr.ExitCode(), Output: string(out)}
		}
		return fmt.Errorf("failed to run %s: %w", tool, err)
	}
	return nil
}
