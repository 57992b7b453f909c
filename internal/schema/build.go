package schema

import (
	"go/scanner"
	"go/token"
	"strings"

	"github.com/l1jgo/ecsgen/internal/naming"
)

// Build validates decls and assembles a Schema. Types are collected first,
// so systems and constructors may refer to components and events declared
// after them. Every problem found is reported; the returned error joins
// them and the Schema is nil whenever the error is not.
func Build(decls []Declaration) (*Schema, error) {
	b := builder{
		schema:       &Schema{},
		components:   make(map[string]bool),
		events:       make(map[string]bool),
		imports:      make(map[string]bool),
		systems:      make(map[string]bool),
		constructors: make(map[string]bool),
	}

	var deferred []Declaration
	for _, d := range decls {
		switch d.Keyword {
		case KeywordImport:
			b.addImports(d)
		case KeywordComponents:
			b.addComponents(d)
		case KeywordEvents:
			b.addEvents(d)
		case KeywordDerivedTraits:
			b.addCapabilities(d)
		case KeywordSystem, KeywordEntityConstructor:
			deferred = append(deferred, d)
		default:
			b.errs.add(ErrUnexpectedDeclaration, "", d.Pos,
				"%q is not one of %s", d.Keyword, strings.Join(keywords, ", "))
		}
	}
	for _, d := range deferred {
		if d.Keyword == KeywordSystem {
			b.addSystem(d)
		} else {
			b.addConstructor(d)
		}
	}

	if err := b.errs.err(); err != nil {
		return nil, err
	}
	return b.schema, nil
}

var keywords = []string{
	KeywordImport, KeywordComponents, KeywordEvents,
	KeywordSystem, KeywordDerivedTraits, KeywordEntityConstructor,
}

// reserved handler names that cannot be referenced as function values.
var reservedFuncs = map[string]bool{"init": true, "main": true, "_": true}

type builder struct {
	schema *Schema
	errs   errorList

	components   map[string]bool
	events       map[string]bool
	imports      map[string]bool
	systems      map[string]bool
	constructors map[string]bool
}

func (b *builder) addImports(d Declaration) {
	for _, imp := range d.Imports {
		imp.Path = strings.TrimSpace(imp.Path)
		switch {
		case imp.Path == "":
			b.errs.add(ErrInvalidIdentifier, "import", d.Pos, "empty import path")
			continue
		case imp.Alias != "" && imp.Alias != "_" && imp.Alias != "." && !naming.IsIdentifier(imp.Alias):
			b.errs.add(ErrInvalidIdentifier, "import", d.Pos, "bad alias %q for %q", imp.Alias, imp.Path)
			continue
		case b.imports[imp.Path]:
			b.errs.add(ErrDuplicateDeclaration, "import", d.Pos, "%q imported twice", imp.Path)
			continue
		}
		b.imports[imp.Path] = true
		b.schema.Imports = append(b.schema.Imports, imp)
	}
}

// typeName validates a declared type expression and returns its bare name.
func (b *builder) typeName(kind string, d Declaration, typ string) (string, bool) {
	name := naming.BaseName(typ)
	if !naming.IsIdentifier(name) || name == "_" {
		b.errs.add(ErrInvalidIdentifier, kind, d.Pos, "%q is not a type name", typ)
		return "", false
	}
	return name, true
}

func (b *builder) addComponents(d Declaration) {
	for _, typ := range d.Names {
		typ = strings.TrimSpace(typ)
		name, ok := b.typeName("components", d, typ)
		if !ok {
			continue
		}
		if b.components[typ] {
			b.errs.add(ErrDuplicateDeclaration, "components", d.Pos, "component %s declared twice", typ)
			continue
		}
		b.components[typ] = true
		b.schema.Components = append(b.schema.Components, Component{Type: typ, Name: name})
	}
}

func (b *builder) addEvents(d Declaration) {
	for _, typ := range d.Names {
		typ = strings.TrimSpace(typ)
		name, ok := b.typeName("events", d, typ)
		if !ok {
			continue
		}
		if b.events[typ] {
			b.errs.add(ErrDuplicateDeclaration, "events", d.Pos, "event %s declared twice", typ)
			continue
		}
		b.events[typ] = true
		b.schema.Events = append(b.schema.Events, Event{Type: typ, Name: name})
	}
}

func (b *builder) addCapabilities(d Declaration) {
	for _, n := range d.Names {
		c, ok := ParseCapability(n)
		if !ok {
			b.errs.add(ErrUnknownCapability, "derived_traits", d.Pos, "%q", n)
			continue
		}
		// aliases of one capability may be listed together
		if !b.schema.Has(c) {
			b.schema.Capabilities = append(b.schema.Capabilities, c)
		}
	}
}

func (b *builder) addSystem(d Declaration) {
	sd := d.System
	if sd == nil || strings.TrimSpace(sd.Name) == "" {
		b.errs.add(ErrMalformedSystem, "system", d.Pos, "missing name")
		return
	}
	decl := "system " + sd.Name
	if !naming.IsIdentifier(sd.Name) || reservedFuncs[sd.Name] {
		b.errs.add(ErrInvalidIdentifier, decl, d.Pos, "%q cannot name a handler function", sd.Name)
		return
	}
	if b.systems[sd.Name] {
		b.errs.add(ErrDuplicateDeclaration, decl, d.Pos, "system declared twice")
		return
	}
	b.systems[sd.Name] = true

	sys := System{Name: sd.Name, Pos: d.Pos}
	var on, with *Clause
	ok := true
	for i := range sd.Clauses {
		c := &sd.Clauses[i]
		pos := clausePos(c, d.Pos)
		switch c.Keyword {
		case ClauseOn:
			if on != nil {
				b.errs.add(ErrMalformedSystem, decl, pos, "repeated %q clause", ClauseOn)
				ok = false
				continue
			}
			on = c
		case ClauseWith:
			if with != nil {
				b.errs.add(ErrMalformedSystem, decl, pos, "repeated %q clause", ClauseWith)
				ok = false
				continue
			}
			with = c
		default:
			b.errs.add(ErrMalformedSystem, decl, pos, "unknown clause %q", c.Keyword)
			ok = false
		}
	}

	switch {
	case on == nil:
		b.errs.add(ErrMissingEventBinding, decl, d.Pos, "no %q clause", ClauseOn)
		ok = false
	case len(on.Args) == 0:
		b.errs.add(ErrMissingEventBinding, decl, clausePos(on, d.Pos), "empty %q clause", ClauseOn)
		ok = false
	case len(on.Args) > 1:
		b.errs.add(ErrMalformedSystem, decl, clausePos(on, d.Pos), "%q takes one event, got %d", ClauseOn, len(on.Args))
		ok = false
	case on.Args[0].Mutable:
		b.errs.add(ErrMalformedSystem, decl, clausePos(on, d.Pos), "event %s cannot be mut", on.Args[0].Name)
		ok = false
	default:
		ev, found := b.schema.Event(on.Args[0].Name)
		if !found {
			b.errs.add(ErrUnresolvedIdentifier, decl, clausePos(on, d.Pos), "event %s is not declared", on.Args[0].Name)
			ok = false
		}
		sys.Event = ev
	}

	if with != nil {
		seen := make(map[string]bool, len(with.Args))
		for _, a := range with.Args {
			comp, found := b.schema.Component(a.Name)
			if !found {
				b.errs.add(ErrUnresolvedIdentifier, decl, clausePos(with, d.Pos), "component %s is not declared", a.Name)
				ok = false
				continue
			}
			if seen[comp.Type] {
				b.errs.add(ErrMalformedSystem, decl, clausePos(with, d.Pos), "component %s listed twice", comp.Type)
				ok = false
				continue
			}
			seen[comp.Type] = true
			sys.Access = append(sys.Access, Access{Component: comp, Mutable: a.Mutable})
		}
	}

	if ok {
		b.schema.Systems = append(b.schema.Systems, sys)
	}
}

func clausePos(c *Clause, fallback Pos) Pos {
	if c.Pos.IsValid() {
		return c.Pos
	}
	return fallback
}

func (b *builder) addConstructor(d Declaration) {
	cd := d.Constructor
	if cd == nil || strings.TrimSpace(cd.Name) == "" {
		b.errs.add(ErrMalformedConstructor, "entity_constructor", d.Pos, "missing name")
		return
	}
	decl := "entity_constructor " + cd.Name
	if !naming.IsIdentifier(cd.Name) {
		b.errs.add(ErrInvalidIdentifier, decl, d.Pos, "%q is not an identifier", cd.Name)
		return
	}
	exported := naming.Exported(cd.Name)
	if b.constructors[exported] {
		b.errs.add(ErrDuplicateDeclaration, decl, d.Pos, "constructor declared twice")
		return
	}
	b.constructors[exported] = true

	ctor := Constructor{Name: cd.Name, Pos: d.Pos, Func: strings.TrimSpace(cd.Func), Body: dedent(cd.Body)}
	ok := true
	fail := func(kind error, format string, args ...any) {
		b.errs.add(kind, decl, d.Pos, format, args...)
		ok = false
	}

	params := make(map[string]bool, len(cd.Params))
	for _, p := range cd.Params {
		switch {
		case !naming.IsIdentifier(p.Name) || p.Name == "_":
			fail(ErrInvalidIdentifier, "bad parameter name %q", p.Name)
		case strings.TrimSpace(p.Type) == "":
			fail(ErrMalformedConstructor, "parameter %s has no type", p.Name)
		case params[p.Name]:
			fail(ErrMalformedConstructor, "parameter %s declared twice", p.Name)
		default:
			params[p.Name] = true
			ctor.Params = append(ctor.Params, Param{Name: p.Name, Type: strings.TrimSpace(p.Type)})
		}
	}

	if len(cd.Components) == 0 {
		fail(ErrMalformedConstructor, "no components listed")
	}
	seen := make(map[string]bool, len(cd.Components))
	for _, ref := range cd.Components {
		comp, found := b.schema.Component(ref)
		switch {
		case !found:
			fail(ErrUnresolvedIdentifier, "component %s is not declared", ref)
		case seen[comp.Type]:
			fail(ErrMalformedConstructor, "component %s listed twice", comp.Type)
		default:
			seen[comp.Type] = true
			ctor.Components = append(ctor.Components, comp)
		}
	}

	hasBody := strings.TrimSpace(cd.Body) != ""
	switch {
	case ctor.Func != "" && hasBody:
		fail(ErrMalformedConstructor, "both a function and a body given")
	case ctor.Func == "" && !hasBody:
		fail(ErrMalformedConstructor, "needs a function or a body")
	case ctor.Func != "" && !isFuncRef(ctor.Func):
		fail(ErrInvalidIdentifier, "%q is not a function name", ctor.Func)
	}

	if ok {
		b.schema.Constructors = append(b.schema.Constructors, ctor)
	}
}

// isFuncRef accepts "name" and "pkg.Name".
func isFuncRef(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if !naming.IsIdentifier(p) {
			return false
		}
	}
	return true
}

// dedent drops leading and trailing blank lines and the indentation common
// to every remaining non-blank line. Lines continuing a multi-line raw string
// are content, so they neither count toward the common indentation nor lose
// any of their own.
func dedent(body string) string {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	raw := RawStringLines(strings.Join(lines, "\n"))

	prefix := ""
	first := true
	for i, line := range lines {
		if raw[i] || strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix, first = indent, false
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	for i, line := range lines {
		if raw[i] {
			continue
		}
		line = strings.TrimPrefix(line, prefix)
		if !raw[i+1] {
			line = strings.TrimRight(line, " \t")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// RawStringLines returns the zero-based indices of the lines of src that
// start inside a raw string literal, that is every line after the first of
// a multi-line `...` literal. src need not be a complete Go file.
func RawStringLines(src string) map[int]bool {
	if !strings.Contains(src, "`") {
		return nil
	}
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	var sc scanner.Scanner
	sc.Init(file, []byte(src), func(token.Position, string) {}, 0)

	var lines map[int]bool
	for {
		pos, tok, lit := sc.Scan()
		if tok == token.EOF {
			return lines
		}
		if tok != token.STRING || !strings.HasPrefix(lit, "`") {
			continue
		}
		start := file.Line(pos) - 1
		for i := 1; i <= strings.Count(lit, "\n"); i++ {
			if lines == nil {
				lines = make(map[int]bool)
			}
			lines[start+i] = true
		}
	}
}
