package loader

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/l1jgo/ecsgen/internal/schema"
)

// The data front-ends (YAML, TOML, Lua) share one document shape:
//
//	imports:             ["example.com/geo", "st example.com/state"]
//	components:          [Position, Velocity]
//	events:              [Tick]
//	derived_traits:      [Eq, Show]
//	systems:             [{name: move, on: Tick, with: [mut Position, Velocity]}]
//	entity_constructors: [{name: ship, params: [x float64], components: [Position], func: newShip}]
const (
	keyImports      = "imports"
	keyComponents   = "components"
	keyEvents       = "events"
	keyTraits       = "derived_traits"
	keySystems      = "systems"
	keyConstructors = "entity_constructors"
)

var topLevelKeys = []string{keyImports, keyComponents, keyEvents, keyTraits, keySystems, keyConstructors}

// constructor keys; anything else in a constructor table is an error
const (
	keyName   = "name"
	keyParams = "params"
	keyFunc   = "func"
	keyBody   = "body"
)

// parseImportSpec accepts `path`, `"path"`, `alias path` and `alias "path"`.
func parseImportSpec(s string) (schema.Import, error) {
	fields := strings.Fields(s)
	var imp schema.Import
	switch len(fields) {
	case 1:
		imp.Path = fields[0]
	case 2:
		imp.Alias, imp.Path = fields[0], fields[1]
	default:
		return imp, fmt.Errorf("bad import %q", s)
	}
	if strings.HasPrefix(imp.Path, `"`) {
		p, err := strconv.Unquote(imp.Path)
		if err != nil {
			return imp, fmt.Errorf("bad import %q: %w", s, err)
		}
		imp.Path = p
	}
	return imp, nil
}

// parseArg accepts `Type` and `mut Type`, separated by any white space.
func parseArg(s string) schema.Arg {
	fields := strings.Fields(s)
	if len(fields) == 2 && fields[0] == "mut" {
		return schema.Arg{Name: fields[1], Mutable: true}
	}
	return schema.Arg{Name: strings.Join(fields, " ")}
}

// parseParam accepts `name type`, split at the first white space.
func parseParam(s string) (schema.Param, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return schema.Param{}, fmt.Errorf("bad parameter %q (want \"name type\")", s)
	}
	return schema.Param{Name: s[:i], Type: strings.TrimSpace(s[i:])}, nil
}

// clauseRank orders clause keys of an unordered table: on, with, then the
// rest alphabetically.
func clauseRank(k string) int {
	switch k {
	case schema.ClauseOn:
		return 0
	case schema.ClauseWith:
		return 1
	default:
		return 2
	}
}
