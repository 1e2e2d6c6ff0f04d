package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	historyFile = ".tsil_history"
	promptMain  = "tsil> "
	promptCont  = "  ... "
)

type replSession struct {
	lang Language
	dump bool
}

func replCommand(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	ts := fs.Bool("ts", false, "Parse input as TypeScript")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tsil repl [-ts]\n")
		fmt.Fprintf(os.Stderr, "Compile snippets interactively and print their IL\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	setupLogging(false)

	session := &replSession{lang: LanguageJavaScript}
	if *ts {
		session.lang = LanguageTypeScript
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("tsil repl. Type :help for commands, :quit to exit.")
	for {
		code, ok := readSnippet(ln)
		if !ok {
			fmt.Println()
			return
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if session.command(trimmed) {
				return
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		out, err := session.eval(ctx, code)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Print(out)
	}
}

// command runs a :command and reports whether the repl should exit.
func (s *replSession) command(cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":dump":
		s.dump = !s.dump
		fmt.Printf("dump %s\n", onOff(s.dump))
	case ":ts":
		s.lang = LanguageTypeScript
		fmt.Println("parsing TypeScript")
	case ":js":
		s.lang = LanguageJavaScript
		fmt.Println("parsing JavaScript")
	case ":help":
		fmt.Println(":dump  toggle printing the method model")
		fmt.Println(":ts    parse input as TypeScript")
		fmt.Println(":js    parse input as JavaScript")
		fmt.Println(":quit  exit")
	default:
		fmt.Println("unknown command. Type :help for commands.")
	}
	return false
}

// eval compiles one snippet as a whole module and returns its IL.
func (s *replSession) eval(ctx context.Context, code string) (string, error) {
	unit, err := CompileSource(ctx, "<repl>", s.lang, []byte(code), Config{ModuleName: "repl"})
	if err != nil {
		var compileErr *CompileError
		if errors.As(err, &compileErr) {
			return "", errors.New(compileErr.Errors.String())
		}
		return "", err
	}
	var sb strings.Builder
	if s.dump {
		sb.WriteString(ToSExpr(unit.Methods))
		sb.WriteByte('\n')
	}
	sb.WriteString(unit.Assembly)
	return sb.String(), nil
}

// prompter is the part of *liner.State readSnippet needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// readSnippet reads lines until brackets balance. It returns false when input
// ends or can no longer be read.
func readSnippet(ln prompter) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete reports whether src has unclosed brackets outside of string
// literals and comments.
func incomplete(src string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
			}
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		}
	}
	return depth > 0
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
