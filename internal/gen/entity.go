package gen

import (
	"github.com/l1jgo/ecsgen/internal/schema"
)

func writeStorage(w *Writer, t *table) {
	if len(t.components) == 0 {
		return
	}
	w.Comment("Storage collections, one per component. An entity has a component iff\nits id is a key of the collection.")
	w.Open("type (")
	for _, c := range t.components {
		c.writeAlias(w)
	}
	w.Close(")")
	w.Blank()
}

func writeEntity(w *Writer, t *table) {
	tagged := t.has(schema.CapabilityJSON)

	w.Comment("Entity describes an entity before it is placed in an Entities container,\nor a snapshot exported from one. Every component is optional.")
	w.Open("type Entity struct {")
	for _, c := range t.components {
		c.writeFieldDecl(w, tagged)
	}
	w.Close("}")
	w.Blank()

	w.Comment("NewEntity returns an entity with no components.")
	w.Open("func NewEntity() Entity {")
	w.Line("return Entity{}")
	w.Close("}")
	w.Blank()

	for _, c := range t.components {
		c.writeBuilder(w)
		w.Blank()
	}

	writeEntityCapabilities(w, t)
}
