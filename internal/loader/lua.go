package loader

import (
	"fmt"

	"github.com/l1jgo/ecsgen/internal/schema"
	"github.com/l1jgo/ecsgen/internal/scripting"
)

// parseLua evaluates a script that returns the schema table. Lua tables are
// unordered, so top-level declarations follow the canonical key order.
func (l *Loader) parseLua(name string, src []byte) ([]schema.Declaration, error) {
	engine, err := scripting.NewEngine(l.log)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	v, err := engine.Eval(name, string(src))
	if err != nil {
		return nil, err
	}
	switch doc := v.(type) {
	case map[string]any:
		return declsFromTree(name, doc, nil)
	case []any:
		if len(doc) == 0 {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("script must return a table of declarations, got %T", v)
}
