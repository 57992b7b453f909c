package gen

import (
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/ecsgen/internal/loader"
	"github.com/l1jgo/ecsgen/internal/schema"
)

const spaceDSL = `
import "example.com/geo";

components(Position, geo.Velocity, Score, Body);
events(Tick, Collision);
derived_traits(Eq, Show, Clone, JSON);

system moveShips on(Tick) with(mut Position, geo.Velocity);
system ageBodies on(Tick) with(mut Body);
system scoreHits on(Collision) with(mut Score, Position);

entity_constructor ship(x float64, y float64) -> (Position, geo.Velocity) = newShip;
entity_constructor asteroid(x float64) -> (Position, Body) {
	if x < 0 {
		x = 0
	}
	return Position{X: x}, Body{Mass: 10}
}
`

func mustSchema(t *testing.T, src string) *schema.Schema {
	t.Helper()
	decls, err := loader.New(zap.NewNop()).Parse(loader.FormatDSL, "world.ecs", []byte(src))
	require.NoError(t, err)
	s, err := schema.Build(decls)
	require.NoError(t, err)
	return s
}

func fileNames(a *Artifacts) []string {
	names := make([]string, len(a.Files))
	for i, f := range a.Files {
		names[i] = f.Name
	}
	return names
}

func source(t *testing.T, a *Artifacts, name string) string {
	t.Helper()
	f, ok := a.File(name)
	require.True(t, ok, "missing %s", name)
	return string(f.Source)
}

func assertParses(t *testing.T, a *Artifacts) {
	t.Helper()
	fset := token.NewFileSet()
	for _, f := range a.Files {
		file, err := parser.ParseFile(fset, f.Name, f.Source, parser.ParseComments)
		require.NoError(t, err, f.Name)
		assert.Equal(t, a.Package, file.Name.Name)
	}
}

func TestGenerateSplitsFiles(t *testing.T) {
	a, err := Generate(mustSchema(t, spaceDSL), Options{Package: "space", Source: "testdata/world.ecs"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		FileStorage, FileEntity, FileEntities, FileEvents, FileSystems, FileConstructors,
	}, fileNames(a))
	assertParses(t, a)

	for _, f := range a.Files {
		assert.True(t, strings.HasPrefix(string(f.Source),
			"// Code generated by ecsgen from world.ecs. DO NOT EDIT.\n"), f.Name)
	}

	storage := source(t, a, FileStorage)
	assert.Contains(t, storage, "PositionComponents = ecs.Components[Position]")
	assert.Contains(t, storage, "VelocityComponents = ecs.Components[geo.Velocity]")
	assert.Contains(t, storage, `"example.com/geo"`)

	entity := source(t, a, FileEntity)
	assert.Contains(t, entity, "Position ecs.Option[Position]")
	assert.Contains(t, entity, "`json:\"position\"`")
	assert.Contains(t, entity, "func (e Entity) WithVelocity(c geo.Velocity) Entity {")
	assert.Contains(t, entity, "func (e Entity) Equal(other Entity) bool {")
	assert.Contains(t, entity, "func (e Entity) Clone() Entity {")

	entities := source(t, a, FileEntities)
	assert.Contains(t, entities, "Velocities VelocityComponents")
	assert.Contains(t, entities, "Bodies     BodyComponents")
	assert.Contains(t, entities, "func (es *Entities) Import(id ecs.EntityID, entity Entity) {")
	assert.Contains(t, entities, "func (es *Entities) MarshalJSON() ([]byte, error) {")
	assert.Contains(t, entities, "if es == nil || other == nil {")
	assert.Contains(t, entities, "id, next := es.live.Allocate(es.nextID)")

	events := source(t, a, FileEvents)
	assert.Contains(t, events, "EventKindTick EventKind = iota")
	assert.Contains(t, events, "Payload *Collision `json:\"payload\"`")
	assert.Contains(t, events, "func NewTickEvent(payload Tick) TickEvent {")
	assert.NotContains(t, events, `"example.com/geo"`, "unused imports are pruned")

	systems := source(t, a, FileSystems)
	assert.Contains(t, systems, "moveShips(payload, entities.Positions, entities.Velocities.ReadOnly())")
	assert.Contains(t, systems, "scoreHits(payload, entities.Scores, entities.Positions.ReadOnly())")
	assert.Less(t, strings.Index(systems, "moveShips(payload"), strings.Index(systems, "ageBodies(payload"),
		"handlers run in declaration order")
	assert.Contains(t, systems, `return "Systems{Tick: [moveShips ageBodies], Collision: [scoreHits]}"`)
	assert.NotContains(t, systems, "MarshalJSON")

	ctors := source(t, a, FileConstructors)
	assert.Contains(t, ctors, "func ShipEntity(x float64, y float64) Entity {")
	assert.Contains(t, ctors, "c0, c1 := newShip(x, y)")
	assert.Contains(t, ctors, "func (es *Entities) CreateAsteroid(x float64) ecs.EntityID {")
	assert.Contains(t, ctors, "func constructAsteroid(x float64) (Position, Body) {")
	assert.Contains(t, ctors, "return Position{X: x}, Body{Mass: 10}")
}

func TestGenerateSingleFile(t *testing.T) {
	a, err := Generate(mustSchema(t, spaceDSL), Options{Package: "space", SingleFile: true, Header: "Regenerate with go generate."})
	require.NoError(t, err)

	require.Equal(t, []string{FileSingle}, fileNames(a))
	assertParses(t, a)

	src := source(t, a, FileSingle)
	assert.True(t, strings.HasPrefix(src, "// Code generated by ecsgen. DO NOT EDIT.\n\n// Regenerate with go generate.\n"))
	for _, decl := range []string{
		"type Entity struct", "type Entities struct", "type Event interface",
		"type Systems struct", "func ShipEntity(", "PositionComponents = ",
	} {
		assert.Contains(t, src, decl)
	}
	assert.Equal(t, 1, strings.Count(src, "package space"))
}

func TestGenerateSkipsEmptySections(t *testing.T) {
	a, err := Generate(mustSchema(t, "components(Position);"), Options{Package: "world"})
	require.NoError(t, err)

	assert.Equal(t, []string{FileStorage, FileEntity, FileEntities}, fileNames(a))
	assertParses(t, a)
	assert.NotContains(t, source(t, a, FileEntity), "func (e Entity) Equal")
}

func TestGenerateEventsWithoutSystems(t *testing.T) {
	a, err := Generate(mustSchema(t, "components(Position); events(Tick);"), Options{Package: "world"})
	require.NoError(t, err)

	assert.Equal(t, []string{FileStorage, FileEntity, FileEntities, FileEvents}, fileNames(a))
	assertParses(t, a)
}

func TestGenerateEmptySchema(t *testing.T) {
	a, err := Generate(&schema.Schema{}, Options{Package: "empty"})
	require.NoError(t, err)

	assert.Equal(t, []string{FileStorage, FileEntity, FileEntities}, fileNames(a))
	assertParses(t, a)
	assert.NotContains(t, source(t, a, FileStorage), "type (")
}

func TestGenerateRuntimeAlias(t *testing.T) {
	a, err := Generate(mustSchema(t, "components(Position);"), Options{Package: "world", RuntimeImport: "example.com/runtime"})
	require.NoError(t, err)

	assert.Contains(t, source(t, a, FileEntities), `ecs "example.com/runtime"`)
}

func TestGenerateRejectsBadPackage(t *testing.T) {
	s := mustSchema(t, "components(Position);")
	for _, pkg := range []string{"", "_", "my-pkg", "func"} {
		_, err := Generate(s, Options{Package: pkg})
		assert.Error(t, err, pkg)
	}
}

func TestGenerateNameCollisions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"same bare name", `import "example.com/geo"; components(Score, geo.Score);`, "score"},
		{"generated type", "components(Entity);", "Entity"},
		{"system shadows generated func", "events(Tick); system NewEntity on(Tick);", "NewEntity"},
		{"reserved parameter", "components(Position); entity_constructor p(es int) -> (Position) = newP;", "es"},
		{"local parameter", "components(Position); entity_constructor p(c0 int) -> (Position) = newP;", "c0"},
		{"import shadows runtime", `import ecs "example.com/other"; components(Position);`, "ecs"},
		{"capability method", "components(Equal); derived_traits(Eq);", "Equal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(mustSchema(t, tt.src), Options{Package: "world"})
			require.Error(t, err)
			assert.ErrorIs(t, err, schema.ErrNameCollision)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerateKeepsRawStringsInBodies(t *testing.T) {
	src := "components(Label);\n" +
		"entity_constructor banner(name string) -> (Label) {\n" +
		"\t\ttext := `first\n  second\n\t\t\tthird`\n" +
		"\t\treturn Label(text + name)\n" +
		"}\n"
	a, err := Generate(mustSchema(t, src), Options{Package: "space"})
	require.NoError(t, err)
	assertParses(t, a)

	ctors := source(t, a, FileConstructors)
	assert.Contains(t, ctors, "\ttext := `first\n  second\n\t\t\tthird`\n\treturn Label(text + name)\n")
}

func TestFormatErrorKeepsSource(t *testing.T) {
	s := mustSchema(t, "components(Position); entity_constructor p() -> (Position) { return Position{X: } }")
	_, err := Generate(s, Options{Package: "world"})
	require.Error(t, err)

	var ferr *FormatError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, FileConstructors, ferr.File)
	assert.Contains(t, string(ferr.Source), "func constructP() Position {")
}

func TestWriteRemovesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	s := mustSchema(t, spaceDSL)

	split, err := Generate(s, Options{Package: "space"})
	require.NoError(t, err)
	written, err := split.Write(dir)
	require.NoError(t, err)
	assert.Len(t, written, 6)

	handwritten := filepath.Join(dir, "world.go")
	require.NoError(t, os.WriteFile(handwritten, []byte("package space\n"), 0o644))

	single, err := Generate(s, Options{Package: "space", SingleFile: true})
	require.NoError(t, err)
	_, err = single.Write(dir)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{FileSingle, "world.go"}, names)
}

func TestWriteKeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	mine := filepath.Join(dir, FileEvents)
	require.NoError(t, os.WriteFile(mine, []byte("package world\n\ntype Tick struct{}\n"), 0o644))

	a, err := Generate(mustSchema(t, "components(Position);"), Options{Package: "world"})
	require.NoError(t, err)
	_, err = a.Write(dir)
	require.NoError(t, err)

	assert.FileExists(t, mine)
	assert.FileExists(t, filepath.Join(dir, FileEntities))
}
