package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/ecsgen/internal/schema"
)

const worldDSL = `
// space shooter
import "example.com/geo";
import st "example.com/state";

components(Position, geo.Velocity, Score);
events(Tick, st.Collision);
derived_traits(Eq, Show);

system moveShips on(Tick) with(mut Position, geo.Velocity);
system countHits on(st.Collision) with(mut Score);

entity_constructor ship(x float64, y float64) -> (Position, geo.Velocity) = newShip;
entity_constructor rock(x float64) -> (Position) {
	if x < 0 {
		x = 0
	}
	return Position{X: x, Y: 0}
}
`

const worldYAML = `
imports:
  - example.com/geo
  - st example.com/state
components: [Position, geo.Velocity, Score]
events: [Tick, st.Collision]
derived_traits: [Eq, Show]
systems:
  - name: moveShips
    on: Tick
    with: [mut Position, geo.Velocity]
  - name: countHits
    on: [st.Collision]
    with: [mut Score]
entity_constructors:
  - name: ship
    params: [x float64, y float64]
    components: [Position, geo.Velocity]
    func: newShip
  - name: rock
    params: [x float64]
    components: [Position]
    body: |
      if x < 0 {
      	x = 0
      }
      return Position{X: x, Y: 0}
`

const worldTOML = `
imports = ["example.com/geo", "st example.com/state"]
components = ["Position", "geo.Velocity", "Score"]
events = ["Tick", "st.Collision"]
derived_traits = ["Eq", "Show"]

[[systems]]
name = "moveShips"
on = "Tick"
with = ["mut Position", "geo.Velocity"]

[[systems]]
name = "countHits"
on = ["st.Collision"]
with = ["mut Score"]

[[entity_constructors]]
name = "ship"
params = ["x float64", "y float64"]
components = ["Position", "geo.Velocity"]
func = "newShip"

[[entity_constructors]]
name = "rock"
params = ["x float64"]
components = ["Position"]
body = """
if x < 0 {
	x = 0
}
return Position{X: x, Y: 0}"""
`

const worldLua = `
local constructors = {
	{ name = "ship", params = { "x float64", "y float64" }, components = { "Position", "geo.Velocity" }, func = "newShip" },
	{ name = "rock", params = { "x float64" }, components = { "Position" },
	  body = "if x < 0 {\n\tx = 0\n}\nreturn Position{X: x, Y: 0}" },
}
return {
	imports = { "example.com/geo", "st example.com/state" },
	components = { "Position", "geo.Velocity", "Score" },
	events = { "Tick", "st.Collision" },
	derived_traits = { "Eq", "Show" },
	systems = {
		{ name = "moveShips", on = "Tick", with = { "mut Position", "geo.Velocity" } },
		{ name = "countHits", on = { "st.Collision" }, with = { "mut Score" } },
	},
	entity_constructors = constructors,
}
`

func writeSchema(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func expectedWorld() *schema.Schema {
	pos := schema.Component{Type: "Position", Name: "Position"}
	vel := schema.Component{Type: "geo.Velocity", Name: "Velocity"}
	score := schema.Component{Type: "Score", Name: "Score"}
	tick := schema.Event{Type: "Tick", Name: "Tick"}
	coll := schema.Event{Type: "st.Collision", Name: "Collision"}
	return &schema.Schema{
		Imports:      []schema.Import{{Path: "example.com/geo"}, {Alias: "st", Path: "example.com/state"}},
		Components:   []schema.Component{pos, vel, score},
		Events:       []schema.Event{tick, coll},
		Capabilities: []schema.Capability{schema.CapabilityEqual, schema.CapabilityString},
		Systems: []schema.System{
			{Name: "moveShips", Event: tick, Access: []schema.Access{{Component: pos, Mutable: true}, {Component: vel}}},
			{Name: "countHits", Event: coll, Access: []schema.Access{{Component: score, Mutable: true}}},
		},
		Constructors: []schema.Constructor{
			{
				Name:       "ship",
				Params:     []schema.Param{{Name: "x", Type: "float64"}, {Name: "y", Type: "float64"}},
				Components: []schema.Component{pos, vel},
				Func:       "newShip",
			},
			{
				Name:       "rock",
				Params:     []schema.Param{{Name: "x", Type: "float64"}},
				Components: []schema.Component{pos},
				Body:       "if x < 0 {\n\tx = 0\n}\nreturn Position{X: x, Y: 0}",
			},
		},
	}
}

// stripPositions clears source positions so schemas from different formats
// compare equal.
func stripPositions(s *schema.Schema) {
	for i := range s.Systems {
		s.Systems[i].Pos = schema.Pos{}
	}
	for i := range s.Constructors {
		s.Constructors[i].Pos = schema.Pos{}
		s.Constructors[i].Body = trimBody(s.Constructors[i].Body)
	}
}

func trimBody(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}

func TestLoadFileAllFormats(t *testing.T) {
	tests := []struct {
		file string
		src  string
	}{
		{"world.ecs", worldDSL},
		{"world.yaml", worldYAML},
		{"world.yml", worldYAML},
		{"world.toml", worldTOML},
		{"world.lua", worldLua},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			l := New(zap.NewNop())
			s, err := l.LoadFile(writeSchema(t, tt.file, tt.src))
			require.NoError(t, err)
			stripPositions(s)
			assert.Equal(t, expectedWorld(), s)
		})
	}
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.ecs": FormatDSL, "a.YAML": FormatYAML, "a.yml": FormatYAML, "b/c.toml": FormatTOML, "x.lua": FormatLua,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatOf("world.json")
	assert.Error(t, err)
}

func TestLoadFileErrors(t *testing.T) {
	l := New(zap.NewNop())

	_, err := l.LoadFile(filepath.Join(t.TempDir(), "missing.ecs"))
	assert.Error(t, err)

	_, err = l.LoadFile(writeSchema(t, "world.json", "{}"))
	assert.Error(t, err)
}

func TestUnknownTopLevelKeysAreUnexpectedDeclarations(t *testing.T) {
	tests := map[string]string{
		"world.ecs":  "components(Position);\nresources(Clock);\n",
		"world.yaml": "components: [Position]\nresources: [Clock]\n",
		"world.toml": "components = [\"Position\"]\nresources = [\"Clock\"]\n",
		"world.lua":  `return { components = { "Position" }, resources = { "Clock" } }`,
	}
	for file, src := range tests {
		t.Run(file, func(t *testing.T) {
			_, err := New(zap.NewNop()).LoadFile(writeSchema(t, file, src))
			require.Error(t, err)
			assert.ErrorIs(t, err, schema.ErrUnexpectedDeclaration)

			errs := schema.Errors(err)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Msg, "resources")
		})
	}
}

func TestSystemErrorsSurviveEveryFormat(t *testing.T) {
	tests := map[string]string{
		"world.ecs":  "events(Tick);\nsystem a with();\nsystem b on();\n",
		"world.yaml": "events: [Tick]\nsystems:\n  - name: a\n    with: []\n  - name: b\n    on: []\n",
		"world.toml": "events = [\"Tick\"]\n[[systems]]\nname = \"a\"\nwith = []\n[[systems]]\nname = \"b\"\non = []\n",
		"world.lua":  `return { events = { "Tick" }, systems = { { name = "a", with = {} }, { name = "b", on = {} } } }`,
	}
	for file, src := range tests {
		t.Run(file, func(t *testing.T) {
			_, err := New(zap.NewNop()).LoadFile(writeSchema(t, file, src))
			require.Error(t, err)
			errs := schema.Errors(err)
			require.Len(t, errs, 2)
			for _, e := range errs {
				assert.ErrorIs(t, e, schema.ErrMissingEventBinding)
			}
		})
	}
}
