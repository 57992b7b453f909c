package loader

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/l1jgo/ecsgen/internal/schema"
)

// The textual schema language:
//
//	import "example.com/geo";
//	import st "example.com/state";
//	components(Position, geo.Velocity, Vec[float64]);
//	events(Tick);
//	derived_traits(Eq, Show);
//	system moveShips on(Tick) with(mut Position, geo.Velocity);
//	entity_constructor ship(x float64) -> (Position, geo.Velocity) = newShip;
//	entity_constructor rock(x float64) -> (Position) {
//		return Position{X: x}
//	}
//
// Every declaration ends with a semicolon except an inline constructor,
// which ends with its body.
var dslLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `(?:#|//)[^\n]*`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Arrow", Pattern: `->`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Punct", Pattern: `[(),;.=\[\]*]`},
		{Name: "BodyOpen", Pattern: `\{`, Action: lexer.Push("Body")},
	},
	// Go source of an inline constructor. Braces inside string, rune and
	// comment tokens do not count towards nesting.
	"Body": {
		{Name: "NestedOpen", Pattern: `\{`, Action: lexer.Push("Body")},
		{Name: "BodyClose", Pattern: `\}`, Action: lexer.Pop()},
		{Name: "Code", Pattern: "\"(?:\\\\.|[^\"\\\\])*\"|`[^`]*`|'(?:\\\\.|[^'\\\\])*'|//[^\\n]*|/\\*(?s:.*?)\\*/|[^{}\"'`/]+|/"},
	},
})

type dslFile struct {
	Decls []*dslDecl `@@*`
}

type dslDecl struct {
	Pos lexer.Position

	Import      *dslImport      `(  @@ ";"`
	Names       *dslNames       ` | @@ ";"`
	System      *dslSystem      ` | "system" @@ ";"`
	Constructor *dslConstructor ` | "entity_constructor" @@`
	Unknown     *dslUnknown     ` | @@ ";" )`
}

type dslImport struct {
	Specs []*dslImportSpec `"import" ( "(" ( @@ ";"? )* ")" | @@ )`
}

type dslImportSpec struct {
	Alias string `@( Ident | "." )?`
	Path  string `@String`
}

type dslNames struct {
	Keyword string     `@( "components" | "events" | "derived_traits" )`
	Types   []*dslType `"(" ( @@ ( "," @@ )* ","? )? ")"`
}

type dslSystem struct {
	Name    string       `@Ident`
	Clauses []*dslClause `@@*`
}

type dslClause struct {
	Pos     lexer.Position
	Keyword string    `@Ident`
	Args    []*dslArg `"(" ( @@ ( "," @@ )* ","? )? ")"`
}

type dslArg struct {
	Mut  bool     `@"mut"?`
	Type *dslType `@@`
}

type dslConstructor struct {
	Name       string      `@Ident`
	Params     []*dslParam `"(" ( @@ ( "," @@ )* ","? )? ")"`
	Components []*dslType  `Arrow "(" ( @@ ( "," @@ )* ","? )? ")"`
	Func       string      `( "=" @Ident ( @"." @Ident )? ";"`
	Body       *dslBlock   `| @@ ";"? )`
}

type dslParam struct {
	Name string   `@Ident`
	Type *dslType `@@`
}

type dslType struct {
	Prefix []string   `@( "*" | "[" "]" )*`
	Name   string     `@Ident ( @"." @Ident )?`
	Args   []*dslType `( "[" @@ ( "," @@ )* "]" )?`
}

func (t *dslType) String() string {
	var b strings.Builder
	for _, p := range t.Prefix {
		b.WriteString(p)
	}
	b.WriteString(t.Name)
	if len(t.Args) > 0 {
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		b.WriteString("[" + strings.Join(args, ", ") + "]")
	}
	return b.String()
}

type dslBlock struct {
	Parts []*dslBlockPart `"{" @@* "}"`
}

type dslBlockPart struct {
	Code  string    `  @Code`
	Block *dslBlock `| @@`
}

// text returns the source between the braces.
func (b *dslBlock) text() string {
	var sb strings.Builder
	for _, p := range b.Parts {
		if p.Block != nil {
			sb.WriteString("{" + p.Block.text() + "}")
		} else {
			sb.WriteString(p.Code)
		}
	}
	return sb.String()
}

// dslUnknown swallows a declaration with an unrecognized keyword so it can
// be reported by validation with the rest.
type dslUnknown struct {
	Keyword string   `@Ident`
	Rest    []string `@( Ident | String | Int | Arrow | "(" | ")" | "," | "." | "=" | "[" | "]" | "*" )*`
}

var dslParser = participle.MustBuild[dslFile](
	participle.Lexer(dslLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

func parseDSL(name string, src []byte) ([]schema.Declaration, error) {
	file, err := dslParser.ParseBytes(name, src)
	if err != nil {
		return nil, err
	}

	decls := make([]schema.Declaration, 0, len(file.Decls))
	for _, d := range file.Decls {
		decl := schema.Declaration{Pos: dslPos(d.Pos)}
		switch {
		case d.Import != nil:
			decl.Keyword = schema.KeywordImport
			for _, spec := range d.Import.Specs {
				decl.Imports = append(decl.Imports, schema.Import{Alias: spec.Alias, Path: spec.Path})
			}
		case d.Names != nil:
			decl.Keyword = d.Names.Keyword
			for _, t := range d.Names.Types {
				decl.Names = append(decl.Names, t.String())
			}
		case d.System != nil:
			decl.Keyword = schema.KeywordSystem
			decl.System = &schema.SystemDecl{Name: d.System.Name}
			for _, c := range d.System.Clauses {
				clause := schema.Clause{Keyword: c.Keyword, Pos: dslPos(c.Pos)}
				for _, a := range c.Args {
					clause.Args = append(clause.Args, schema.Arg{Name: a.Type.String(), Mutable: a.Mut})
				}
				decl.System.Clauses = append(decl.System.Clauses, clause)
			}
		case d.Constructor != nil:
			decl.Keyword = schema.KeywordEntityConstructor
			decl.Constructor = d.Constructor.decl()
		case d.Unknown != nil:
			decl.Keyword = d.Unknown.Keyword
		default:
			return nil, fmt.Errorf("%s: empty declaration", decl.Pos)
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func (c *dslConstructor) decl() *schema.ConstructorDecl {
	out := &schema.ConstructorDecl{Name: c.Name, Func: c.Func}
	for _, p := range c.Params {
		out.Params = append(out.Params, schema.Param{Name: p.Name, Type: p.Type.String()})
	}
	for _, t := range c.Components {
		out.Components = append(out.Components, t.String())
	}
	if c.Body != nil {
		out.Body = c.Body.text()
	}
	return out
}

func dslPos(p lexer.Position) schema.Pos {
	return schema.Pos{File: p.Filename, Line: p.Line, Column: p.Column}
}
