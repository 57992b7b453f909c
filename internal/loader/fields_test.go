package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/ecsgen/internal/schema"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		in   string
		want schema.Arg
	}{
		{"Position", schema.Arg{Name: "Position"}},
		{" geo.Velocity ", schema.Arg{Name: "geo.Velocity"}},
		{"mut Position", schema.Arg{Name: "Position", Mutable: true}},
		{"mut\tPosition", schema.Arg{Name: "Position", Mutable: true}},
		{"  mut   geo.Velocity\n", schema.Arg{Name: "geo.Velocity", Mutable: true}},
		{"mutable", schema.Arg{Name: "mutable"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseArg(tt.in), "%q", tt.in)
	}
}

func TestParseParam(t *testing.T) {
	p, err := parseParam("x\tfloat64")
	require.NoError(t, err)
	assert.Equal(t, schema.Param{Name: "x", Type: "float64"}, p)

	p, err = parseParam(" tags  map[string]int ")
	require.NoError(t, err)
	assert.Equal(t, schema.Param{Name: "tags", Type: "map[string]int"}, p)

	_, err = parseParam("x")
	assert.Error(t, err)
}

func TestMutSeparatedByTab(t *testing.T) {
	tests := map[string]string{
		"world.yaml": "components: [Position]\nevents: [Tick]\nsystems:\n  - name: move\n    on: Tick\n    with: [\"mut\\tPosition\"]\n",
		"world.toml": "components = [\"Position\"]\nevents = [\"Tick\"]\n[[systems]]\nname = \"move\"\non = \"Tick\"\nwith = [\"mut\\tPosition\"]\n",
		"world.lua":  `return { components = { "Position" }, events = { "Tick" }, systems = { { name = "move", on = "Tick", with = { "mut\tPosition" } } } }`,
	}
	for file, src := range tests {
		t.Run(file, func(t *testing.T) {
			s, err := New(zap.NewNop()).LoadFile(writeSchema(t, file, src))
			require.NoError(t, err)
			require.Len(t, s.Systems, 1)
			require.Len(t, s.Systems[0].Access, 1)
			assert.True(t, s.Systems[0].Access[0].Mutable)
			assert.Equal(t, "Position", s.Systems[0].Access[0].Component.Type)
		})
	}
}
