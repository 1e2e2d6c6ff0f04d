package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `tsil - Compile a JavaScript/TypeScript subset into .NET IL

Usage:
    tsil <command> [arguments]

Commands:
    build <sources...>  Compile sources and assemble them with ilasm
    emit <sources...>   Compile sources to .il files without assembling
    check <sources...>  Parse and compile sources, reporting diagnostics
    dump <file>         Print the compiled method model of a file
    repl                Compile snippets interactively
    help                Show this help message

Sources are .js, .mjs, .cjs, .ts or .tsi files, or directories containing them.

Examples:
    tsil build -o hello.exe hello.ts
    tsil emit -d out/ src/
    tsil check -strict hello.ts
    tsil dump hello.ts

Use "tsil <command> -h" for more information about a command.
`)
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// sourceArgs expands the positional arguments of fs, exiting on failure.
func sourceArgs(fs *flag.FlagSet) []string {
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at least one source file or directory\n")
		fs.Usage()
		os.Exit(1)
	}
	sources, err := ExpandSources(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return sources
}

func buildCommand(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", defaultOutput, "Output binary path")
	dir := fs.String("d", "", "Directory for generated .il files (default: a temporary directory)")
	keep := fs.Bool("keep", false, "Keep the temporary .il directory")
	ilasmPath := fs.String("ilasm", "", "Path to ilasm (default: $TSIL_ILASM, then ilasm on PATH)")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tsil build [-o output] [-d dir] [-keep] [-ilasm path] [-v] <sources...>\n")
		fmt.Fprintf(os.Stderr, "Compile sources and assemble them into one binary\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	setupLogging(*verbose)
	sources := sourceArgs(fs)

	ilDir := *dir
	if ilDir == "" {
		tmp, err := os.MkdirTemp("", "tsil-")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating temporary directory: %v\n", err)
			os.Exit(1)
		}
		if *keep {
			fmt.Printf("Keeping IL files in %s\n", tmp)
		} else {
			defer os.RemoveAll(tmp)
		}
		ilDir = tmp
	}

	cfg := Config{ModuleName: ModuleNameFor(*output)}
	units, err := BuildProgram(ctx, sources, ilDir, *output, ILAsm{Path: *ilasmPath}, cfg)
	if err != nil {
		var asmErr *AssemblerError
		if errors.As(err, &asmErr) {
			fmt.Fprintf(os.Stderr, "Assembly failed: %s exited with status %d\n%s", asmErr.Tool, asmErr.ExitCode, asmErr.Output)
		} else {
			fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		}
		// Deferred cleanup does not run after os.Exit.
		if *dir == "" && !*keep {
			os.RemoveAll(ilDir)
		}
		os.Exit(1)
	}

	printWarnings(units)
	fmt.Printf("Generated %s from %d source file(s)\n", *output, len(units))
}

func emitCommand(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("emit", flag.ExitOnError)
	dir := fs.String("d", ".", "Directory for generated .il files")
	output := fs.String("o", defaultOutput, "Output binary path the IL will be assembled into")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tsil emit [-d dir] [-o output] [-v] <sources...>\n")
		fmt.Fprintf(os.Stderr, "Compile sources to .il files without assembling\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	setupLogging(*verbose)
	sources := sourceArgs(fs)

	units, err := CompileFiles(ctx, sources, Config{ModuleName: ModuleNameFor(*output)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		os.Exit(1)
	}
	paths, err := WriteArtifacts(*dir, units)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printWarnings(units)
	for _, path := range paths {
		fmt.Printf("Generated %s\n", path)
	}
}

func checkCommand(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	strict := fs.Bool("strict", false, "Warn about statements that produce no code")
	verbose := fs.Bool("v", false, "Show verbose checking details")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tsil check [-strict] [-v] <sources...>\n")
		fmt.Fprintf(os.Stderr, "Parse and compile sources, reporting diagnostics\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	setupLogging(*verbose)
	sources := sourceArgs(fs)

	failed := false
	for _, source := range sources {
		unit, err := CompileFile(ctx, source, Config{ModuleName: ModuleNameFor(defaultOutput), Strict: *strict})
		if unit.Diagnostics.Count() > 0 {
			fmt.Println(unit.Diagnostics.String())
		}
		if err != nil {
			failed = true
			var compileErr *CompileError
			if !errors.As(err, &compileErr) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			continue
		}
		fmt.Printf("%s: no errors found\n", source)
		if *verbose {
			fmt.Printf("Methods: %s\n", ToSExpr(unit.Methods))
		}
	}
	if failed {
		os.Exit(1)
	}
}

func dumpCommand(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tsil dump <file>\n")
		fmt.Fprintf(os.Stderr, "Print the compiled method model of a file\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}
	setupLogging(false)

	unit, err := CompileFile(ctx, fs.Arg(0), Config{ModuleName: ModuleNameFor(defaultOutput)})
	if unit.Methods != nil {
		fmt.Println(ToSExpr(unit.Methods))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func printWarnings(units []RenderedUnit) {
	for _, unit := range units {
		if unit.Diagnostics.Count() > 0 {
			fmt.Fprintln(os.Stderr, unit.Diagnostics.String())
		}
	}
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		buildCommand(ctx, args)
	case "emit":
		emitCommand(ctx, args)
	case "check":
		checkCommand(ctx, args)
	case "dump":
		dumpCommand(ctx, args)
	case "repl":
		replCommand(ctx, args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
