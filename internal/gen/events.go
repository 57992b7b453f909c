package gen

import (
	"fmt"

	"github.com/l1jgo/ecsgen/internal/schema"
)

func writeEvents(w *Writer, t *table) {
	w.Comment("EventKind identifies one of the declared events.")
	w.Line("type EventKind int")
	w.Blank()
	w.Open("const (")
	for i, ev := range t.events {
		if i == 0 {
			w.Line("%s EventKind = iota", ev.Kind)
			continue
		}
		w.Line("%s", ev.Kind)
	}
	w.Close(")")
	w.Blank()

	w.Open("func (k EventKind) String() string {")
	w.Line("switch k {")
	for _, ev := range t.events {
		w.Line("case %s:", ev.Kind)
		w.Line("\treturn %q", ev.Name)
	}
	w.Line("default:")
	w.Line("\treturn fmt.Sprintf(\"EventKind(%%d)\", int(k))")
	w.Line("}")
	w.Close("}")
	w.Blank()

	w.Comment("Event is one of the declared events. It is implemented only by the\nvariant types below, as values and as pointers.")
	w.Open("type Event interface {")
	w.Line("Kind() EventKind")
	w.Line("isEvent()")
	w.Close("}")
	w.Blank()

	tagged := t.has(schema.CapabilityJSON)
	for _, ev := range t.events {
		w.Comment(fmt.Sprintf("%s carries a %s.", ev.Variant, ev.Type))
		w.Open("type %s struct {", ev.Variant)
		if tagged {
			w.Line("Payload *%s `json:\"payload\"`", ev.Type)
		} else {
			w.Line("Payload *%s", ev.Type)
		}
		w.Close("}")
		w.Blank()

		w.Open("func %s(payload %s) %s {", ev.New, ev.Type, ev.Variant)
		w.Line("return %s{Payload: &payload}", ev.Variant)
		w.Close("}")
		w.Blank()

		w.Line("func (%s) Kind() EventKind { return %s }", ev.Variant, ev.Kind)
		w.Line("func (%s) isEvent()        {}", ev.Variant)
		w.Blank()

		writeEventCapabilities(w, t, ev)
	}
}
