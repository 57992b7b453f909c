package schema

import (
	"fmt"
	"strings"
)

// Declaration keywords accepted at the top level of a schema.
const (
	KeywordImport            = "import"
	KeywordComponents        = "components"
	KeywordEvents            = "events"
	KeywordSystem            = "system"
	KeywordDerivedTraits     = "derived_traits"
	KeywordEntityConstructor = "entity_constructor"
)

// Clause keywords of a system declaration.
const (
	ClauseOn   = "on"
	ClauseWith = "with"
)

// Pos locates a declaration in its source file. The zero value means
// unknown.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	switch {
	case !p.IsValid() && p.File == "":
		return "-"
	case !p.IsValid():
		return p.File
	case p.File == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// Declaration is one raw top-level statement as produced by a front-end.
// Only the payload matching Keyword is set. Front-ends pass unknown keywords
// through untouched; Build rejects them.
type Declaration struct {
	Keyword string
	Pos     Pos

	// Names lists component types, event types or capability names.
	Names       []string
	Imports     []Import
	System      *SystemDecl
	Constructor *ConstructorDecl
}

type SystemDecl struct {
	Name    string
	Clauses []Clause
}

// Clause is one "keyword(args)" part of a system rule.
type Clause struct {
	Keyword string
	Pos     Pos
	Args    []Arg
}

type Arg struct {
	Name    string
	Mutable bool
}

// ConstructorDecl declares a named entity constructor. Exactly one of Func
// and Body is set: Func names an existing Go function, Body holds the
// statements of an inline one. Either returns the listed components in
// order.
type ConstructorDecl struct {
	Name       string
	Params     []Param
	Components []string
	Func       string
	Body       string
}

type Param struct {
	Name string
	Type string
}

// String renders the declaration the way the textual front-end spells it.
func (d Declaration) String() string {
	switch d.Keyword {
	case KeywordSystem:
		if d.System == nil {
			return d.Keyword
		}
		var b strings.Builder
		b.WriteString("system " + d.System.Name)
		for _, c := range d.System.Clauses {
			args := make([]string, len(c.Args))
			for i, a := range c.Args {
				if a.Mutable {
					args[i] = "mut " + a.Name
				} else {
					args[i] = a.Name
				}
			}
			fmt.Fprintf(&b, " %s(%s)", c.Keyword, strings.Join(args, ", "))
		}
		return b.String()
	case KeywordImport:
		specs := make([]string, len(d.Imports))
		for i, imp := range d.Imports {
			specs[i] = imp.String()
		}
		return "import " + strings.Join(specs, ", ")
	case KeywordEntityConstructor:
		if d.Constructor == nil {
			return d.Keyword
		}
		return "entity_constructor " + d.Constructor.Name
	default:
		return d.Keyword + " " + strings.Join(d.Names, ", ")
	}
}
