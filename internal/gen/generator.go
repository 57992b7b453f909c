// Package gen turns a validated schema into Go source for an ECS runtime
// built on the ecs package.
package gen

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/l1jgo/ecsgen/internal/naming"
	"github.com/l1jgo/ecsgen/internal/schema"
)

// DefaultRuntimeImport is the import path of the runtime generated code
// depends on.
const DefaultRuntimeImport = "github.com/l1jgo/ecsgen/ecs"

// Generated file names.
const (
	FileStorage      = "storage_gen.go"
	FileEntity       = "entity_gen.go"
	FileEntities     = "entities_gen.go"
	FileEvents       = "events_gen.go"
	FileSystems      = "systems_gen.go"
	FileConstructors = "constructors_gen.go"
	FileSingle       = "ecs_gen.go"
)

// generatedNotice starts the first line of every generated file.
const generatedNotice = "// Code generated by ecsgen"

type Options struct {
	// Package is the package clause of the generated files.
	Package string
	// RuntimeImport overrides DefaultRuntimeImport.
	RuntimeImport string
	// SingleFile puts everything in FileSingle.
	SingleFile bool
	// Header is extra comment text placed under the generated notice.
	Header string
	// Source names the schema in the generated notice.
	Source string
}

// File is one generated source file.
type File struct {
	Name   string
	Source []byte
}

// Artifacts is the output of one generation run.
type Artifacts struct {
	Package string
	Files   []File
}

// FormatError reports generated source that does not format. Source holds
// the unformatted text.
type FormatError struct {
	File   string
	Source []byte
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format %s: %v", e.File, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Generator produces artifacts from schemas. It holds no state between
// runs.
type Generator struct {
	opts Options
	log  *zap.Logger
}

func New(opts Options, log *zap.Logger) *Generator {
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = DefaultRuntimeImport
	}
	return &Generator{opts: opts, log: log}
}

// Generate is New(opts, zap.NewNop()).Generate(s).
func Generate(s *schema.Schema, opts Options) (*Artifacts, error) {
	return New(opts, zap.NewNop()).Generate(s)
}

// section is one part of the output, in file order.
type section struct {
	file  string
	write func(*Writer, *table)
	skip  func(*table) bool
}

var sections = []section{
	{file: FileStorage, write: writeStorage},
	{file: FileEntity, write: writeEntity},
	{file: FileEntities, write: writeEntities},
	{file: FileEvents, write: writeEvents, skip: func(t *table) bool { return len(t.events) == 0 }},
	{file: FileSystems, write: writeSystems, skip: func(t *table) bool { return len(t.schema.Systems) == 0 }},
	{file: FileConstructors, write: writeConstructors, skip: func(t *table) bool { return len(t.constructors) == 0 }},
}

// Generate validates the generated names of s and renders the artifacts.
// Any error means no artifacts.
func (g *Generator) Generate(s *schema.Schema) (*Artifacts, error) {
	if s == nil {
		return nil, errors.New("generate: nil schema")
	}
	if !naming.IsIdentifier(g.opts.Package) || g.opts.Package == "_" {
		return nil, fmt.Errorf("generate: invalid package name %q", g.opts.Package)
	}

	t, err := buildTable(s, g.opts.RuntimeImport)
	if err != nil {
		return nil, err
	}

	var files []*Writer
	var names []string
	var current *Writer
	for _, sec := range sections {
		if sec.skip != nil && sec.skip(t) {
			continue
		}
		if !g.opts.SingleFile || current == nil {
			current = g.newFile(s)
			files = append(files, current)
			name := sec.file
			if g.opts.SingleFile {
				name = FileSingle
			}
			names = append(names, name)
		}
		sec.write(current, t)
	}

	out := &Artifacts{Package: g.opts.Package}
	for i, w := range files {
		src, err := format(names[i], w.Bytes())
		if err != nil {
			return nil, err
		}
		out.Files = append(out.Files, File{Name: names[i], Source: src})
		g.log.Debug("generated file",
			zap.String("file", names[i]),
			zap.Int("bytes", len(src)),
		)
	}
	g.log.Debug("generation complete",
		zap.String("package", g.opts.Package),
		zap.Int("files", len(out.Files)),
		zap.Int("components", len(t.components)),
		zap.Int("events", len(t.events)),
		zap.Int("systems", len(s.Systems)),
	)
	return out, nil
}

// newFile writes the notice, header, package clause and the candidate
// imports. Unused imports are pruned by format.
func (g *Generator) newFile(s *schema.Schema) *Writer {
	w := NewWriter()
	if g.opts.Source != "" {
		w.Line("%s from %s. DO NOT EDIT.", generatedNotice, path.Base(g.opts.Source))
	} else {
		w.Line("%s. DO NOT EDIT.", generatedNotice)
	}
	w.Blank()
	if h := strings.TrimSpace(g.opts.Header); h != "" {
		w.Comment(h)
		w.Blank()
	}
	w.Line("package %s", g.opts.Package)
	w.Blank()

	w.Open("import (")
	w.Line(`"fmt"`)
	w.Blank()
	if path.Base(g.opts.RuntimeImport) == "ecs" {
		w.Line("%q", g.opts.RuntimeImport)
	} else {
		w.Line("ecs %q", g.opts.RuntimeImport)
	}
	for _, imp := range s.Imports {
		if imp.Path == g.opts.RuntimeImport {
			continue
		}
		w.Line("%s", imp)
	}
	w.Close(")")
	w.Blank()
	return w
}

var importOptions = &imports.Options{
	Comments:  true,
	TabIndent: true,
	TabWidth:  8,
}

// format gofmts src and drops unused imports.
func format(name string, src []byte) ([]byte, error) {
	out, err := imports.Process(name, src, importOptions)
	if err != nil {
		return nil, &FormatError{File: name, Source: src, Err: err}
	}
	return out, nil
}
