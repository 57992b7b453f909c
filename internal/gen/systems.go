package gen

import (
	"fmt"
	"strings"
)

func writeSystems(w *Writer, t *table) {
	w.Comment("Systems dispatches events to the handlers bound to them.")
	w.Line("type Systems struct{}")
	w.Blank()
	w.Open("func NewSystems() *Systems {")
	w.Line("return &Systems{}")
	w.Close("}")
	w.Blank()

	w.Comment("Trigger runs every handler bound to the kind of event, once each and in\ndeclaration order. Kinds without handlers and nil events are ignored.\nHandlers only receive their collections, so the population of entities\ncannot change during Trigger.")
	w.Open("func (s *Systems) Trigger(event Event, entities *Entities) {")
	w.Line("switch ev := event.(type) {")
	for _, ev := range t.events {
		if len(ev.Systems) == 0 {
			continue
		}
		w.Line("case %s:", ev.Variant)
		w.Line("\ts.%s(ev.Payload, entities)", ev.Trigger)
		w.Line("case *%s:", ev.Variant)
		w.Line("\tif ev != nil {")
		w.Line("\t\ts.%s(ev.Payload, entities)", ev.Trigger)
		w.Line("\t}")
	}
	w.Line("}")
	w.Close("}")

	for _, ev := range t.events {
		if len(ev.Systems) == 0 {
			continue
		}
		w.Blank()
		w.Open("func (s *Systems) %s(payload *%s, entities *Entities) {", ev.Trigger, ev.Type)
		for _, sys := range ev.Systems {
			args := []string{"payload"}
			for _, a := range sys.Access {
				c := newComponentInfo(a.Component)
				if a.Mutable {
					args = append(args, "entities."+c.GoCollection)
				} else {
					args = append(args, "entities."+c.GoCollection+".ReadOnly()")
				}
			}
			w.Line("%s(%s)", sys.Name, strings.Join(args, ", "))
		}
		w.Close("}")
	}
	w.Blank()

	writeSystemsCapabilities(w, t)
}

// bindings describes the dispatch table for the Systems String method.
func bindings(t *table) string {
	var parts []string
	for _, ev := range t.events {
		names := make([]string, len(ev.Systems))
		for i, sys := range ev.Systems {
			names[i] = sys.Name
		}
		parts = append(parts, fmt.Sprintf("%s: [%s]", ev.Name, strings.Join(names, " ")))
	}
	return "Systems{" + strings.Join(parts, ", ") + "}"
}
