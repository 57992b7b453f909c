package gen

import (
	"fmt"
	"strings"
)

func writeConstructors(w *Writer, t *table) {
	for _, c := range t.constructors {
		params := make([]string, len(c.Params))
		args := make([]string, len(c.Params))
		for i, p := range c.Params {
			params[i] = p.Name + " " + p.Type
			args[i] = p.Name
		}
		locals := make([]string, len(c.Components))
		for i := range c.Components {
			locals[i] = fmt.Sprintf("c%d", i)
		}

		w.Comment(fmt.Sprintf("%s builds an entity from the components returned by %s.", c.Entity, c.Impl))
		w.Open("func %s(%s) Entity {", c.Entity, strings.Join(params, ", "))
		w.Line("%s := %s(%s)", strings.Join(locals, ", "), c.Impl, strings.Join(args, ", "))
		w.Line("return NewEntity().")
		for i, comp := range c.Components {
			info := newComponentInfo(comp)
			sep := "."
			if i == len(c.Components)-1 {
				sep = ""
			}
			w.Line("\t%s(%s)%s", info.Builder, locals[i], sep)
		}
		w.Close("}")
		w.Blank()

		w.Comment(fmt.Sprintf("%s adds the entity built by %s and returns its id.", c.Create, c.Entity))
		w.Open("func (es *Entities) %s(%s) ecs.EntityID {", c.Create, strings.Join(params, ", "))
		w.Line("return es.Add(%s(%s))", c.Entity, strings.Join(args, ", "))
		w.Close("}")
		w.Blank()

		if c.Inline() {
			results := make([]string, len(c.Components))
			for i, comp := range c.Components {
				results[i] = comp.Type
			}
			result := strings.Join(results, ", ")
			if len(results) > 1 {
				result = "(" + result + ")"
			}
			w.Open("func %s(%s) %s {", c.Impl, strings.Join(params, ", "), result)
			w.Raw(c.Body)
			w.Close("}")
			w.Blank()
		}
	}
}
