package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// fakeTool writes an executable shell script standing in for ilasm.
func fakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake assembler needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-ilasm")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755)
	be.Err(t, err, nil)
	return path
}

func TestILAsmPassesArtifactsAndOutput(t *testing.T) {
	record := filepath.Join(t.TempDir(), "args.txt")
	tool := fakeTool(t, `for arg in "$@"; do echo "$arg"; done > "`+record+`"`+"\n")

	asm := ILAsm{Path: tool}
	err := asm.Assemble(context.Background(), "out/hello.exe", []string{"a.il", "b.il"})
	be.Err(t, err, nil)

	content, err := os.ReadFile(record)
	be.Err(t, err, nil)
	be.Equal(t, string(content), "a.il\nb.il\n/output:out/hello.exe\n")
}

func TestILAsmFailureCarriesToolOutput(t *testing.T) {
	tool := fakeTool(t, "echo 'hello.il(3) : error : syntax error at token ldstr'\necho 'Failure' >&2\nexit 3\n")

	asm := ILAsm{Path: tool}
	err := asm.Assemble(context.Background(), "hello.exe", []string{"hello.il"})

	var asmErr *AssemblerError
	be.True(t, errors.As(err, &asmErr))
	be.Equal(t, asmErr.Tool, tool)
	be.Equal(t, asmErr.ExitCode, 3)
	be.True(t, strings.Contains(asmErr.Output, "hello.il(3) : error : syntax error at token ldstr\n"))
	be.True(t, strings.Contains(asmErr.Output, "Failure\n"))
	be.Err(t, err, "exited with status 3")
}

func TestILAsmMissingTool(t *testing.T) {
	asm := ILAsm{Path: filepath.Join(t.TempDir(), "no-such-ilasm")}
	err := asm.Assemble(context.Background(), "hello.exe", []string{"hello.il"})

	var asmErr *AssemblerError
	be.True(t, !errors.As(err, &asmErr))
	be.Err(t, err, "failed to run")
}

func TestILAsmNoArtifacts(t *testing.T) {
	err := ILAsm{Path: "ilasm"}.Assemble(context.Background(), "hello.exe", nil)
	be.Err(t, err, "no artifacts to assemble")
}

func TestILAsmToolSelection(t *testing.T) {
	t.Setenv("TSIL_ILASM", "")
	be.Equal(t, ILAsm{}.tool(), "ilasm")

	t.Setenv("TSIL_ILASM", "/opt/mono/bin/ilasm")
	be.Equal(t, ILAsm{}.tool(), "/opt/mono/bin/ilasm")
	be.Equal(t, ILAsm{Path: "/usr/bin/ilasm"}.tool(), "/usr/bin/ilasm")
}

func TestILAsmUsesEnvironmentTool(t *testing.T) {
	record := filepath.Join(t.TempDir(), "ran")
	tool := fakeTool(t, `touch "`+record+`"`+"\n")
	t.Setenv("TSIL_ILASM", tool)

	err := ILAsm{}.Assemble(context.Background(), "hello.exe", []string{"hello.il"})
	be.Err(t, err, nil)
	_, err = os.Stat(record)
	be.Err(t, err, nil)
}
