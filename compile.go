package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const defaultOutput = "hello.exe"

// Config holds settings shared by every file in a compilation run.
type Config struct {
	// ModuleName names the assembly in every rendered unit.
	ModuleName string
	Strict     bool
}

// RenderedUnit is the compiled form of one source file.
type RenderedUnit struct {
	Source      string
	Methods     []Method
	Assembly    string
	Diagnostics ErrorCollection
}

// CompileError reports the diagnostics that stopped a file from compiling.
type CompileError struct {
	File   string
	Errors ErrorCollection
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("errors in %s:\n%s", e.File, e.Errors.String())
}

// ModuleNameFor derives the module name from the output binary path.
func ModuleNameFor(output string) string {
	base := filepath.Base(output)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CompileSource compiles one source text. file is used in diagnostics and as
// the unit's Source.
func CompileSource(ctx context.Context, file string, lang Language, source []byte, cfg Config) (RenderedUnit, error) {
	unit := RenderedUnit{Source: file}

	tree, err := ParseSource(ctx, file, lang, source, &unit.Diagnostics)
	if err != nil {
		return unit, fmt.Errorf("%s: %w", file, err)
	}
	if unit.Diagnostics.HasErrors() {
		return unit, &CompileError{File: file, Errors: unit.Diagnostics}
	}

	b := NewBuilder(file)
	b.Strict = cfg.Strict
	if err := Walk(tree, b.Visit); err != nil {
		return unit, fmt.Errorf("%s: %w", file, err)
	}
	unit.Diagnostics.Diagnostics = append(unit.Diagnostics.Diagnostics, b.Errors.Diagnostics...)
	unit.Methods = b.Methods()
	if unit.Diagnostics.HasErrors() {
		return unit, &CompileError{File: file, Errors: unit.Diagnostics}
	}

	unit.Assembly = Render(cfg.ModuleName, unit.Methods)
	return unit, nil
}

// CompileFile reads and compiles a single source file.
func CompileFile(ctx context.Context, path string, cfg Config) (RenderedUnit, error) {
	lang, ok := LanguageForPath(path)
	if !ok {
		return RenderedUnit{Source: path}, fmt.Errorf("%s: unrecognized source file extension", path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return RenderedUnit{Source: path}, fmt.Errorf("error reading file %s: %w", path, err)
	}
	slog.Debug("compiling", slog.String("file", path), slog.String("language", string(lang)))
	return CompileSource(ctx, path, lang, source, cfg)
}

// CompileFiles compiles every file concurrently. Units are returned in the
// order of paths. The first failure cancels the rest.
func CompileFiles(ctx context.Context, paths []string, cfg Config) ([]RenderedUnit, error) {
	units := make([]RenderedUnit, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			unit, err := CompileFile(ctx, path, cfg)
			units[i] = unit
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return units, err
	}
	return units, nil
}

// ExpandSources replaces each directory argument with the recognized source
// files directly inside it. Files are kept as given.
func ExpandSources(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("error reading directory %s: %w", arg, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, ok := LanguageForPath(entry.Name()); ok {
				found = append(found, filepath.Join(arg, entry.Name()))
			}
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no source files in directory %s", arg)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// ArtifactName is the .il file name for a source path.
func ArtifactName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".il"
}

// WriteArtifacts writes each unit to dir/<stem>.il and returns the paths in
// unit order.
func WriteArtifacts(dir string, units []RenderedUnit) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	seen := make(map[string]string, len(units))
	paths := make([]string, 0, len(units))
	for _, unit := range units {
		name := ArtifactName(unit.Source)
		if other, dup := seen[name]; dup {
			return nil, fmt.Errorf("%s and %s both produce %s", other, unit.Source, name)
		}
		seen[name] = unit.Source

		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(unit.Assembly), 0644); err != nil {
			return nil, fmt.Errorf("error writing IL file %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// BuildProgram compiles sources, writes their artifacts into dir, and assembles them
// into output with a single assembler invocation.
func BuildProgram(ctx context.Context, sources []string, dir, output string, asm Assembler, cfg Config) ([]RenderedUnit, error) {
	units, err := CompileFiles(ctx, sources, cfg)
	if err != nil {
		return units, err
	}
	artifacts, err := WriteArtifacts(dir, units)
	if err != nil {
		return units, err
	}
	if err := asm.Assemble(ctx, output, artifacts); err != nil {
		return units, err
	}
	return units, nil
}
