package gen

import (
	"fmt"
	"strings"

	"github.com/l1jgo/ecsgen/internal/schema"
)

func writeEntityCapabilities(w *Writer, t *table) {
	if t.has(schema.CapabilityEqual) {
		w.Comment("Equal reports whether e and other hold equal values for every component.")
		w.Open("func (e Entity) Equal(other Entity) bool {")
		if len(t.components) == 0 {
			w.Line("return true")
		} else {
			terms := make([]string, len(t.components))
			for i, c := range t.components {
				terms[i] = fmt.Sprintf("e.%[1]s.Equal(other.%[1]s)", c.GoField)
			}
			w.Line("return %s", strings.Join(terms, " &&\n\t\t"))
		}
		w.Close("}")
		w.Blank()
	}

	if t.has(schema.CapabilityString) {
		w.Open("func (e Entity) String() string {")
		if len(t.components) == 0 {
			w.Line(`return "Entity{}"`)
		} else {
			verbs := make([]string, len(t.components))
			args := make([]string, len(t.components))
			for i, c := range t.components {
				verbs[i] = c.Field + ": %v"
				args[i] = "e." + c.GoField
			}
			w.Line("return fmt.Sprintf(%q, %s)", "Entity{"+strings.Join(verbs, ", ")+"}", strings.Join(args, ", "))
		}
		w.Close("}")
		w.Blank()
	}

	if t.has(schema.CapabilityClone) {
		w.Comment("Clone returns a copy of e. Component values are copied shallowly.")
		w.Open("func (e Entity) Clone() Entity {")
		w.Line("return e")
		w.Close("}")
		w.Blank()
	}
}

func writeEntitiesCapabilities(w *Writer, t *table) {
	if t.has(schema.CapabilityEqual) {
		w.Comment("Equal reports whether es and other hold the same live ids and equal\ncomponent values. Id counters are not compared. A nil container only\nequals nil.")
		w.Open("func (es *Entities) Equal(other *Entities) bool {")
		w.Open("if es == nil || other == nil {")
		w.Line("return es == other")
		w.Close("}")
		terms := []string{"es.live.Equal(other.live)"}
		for _, c := range t.components {
			terms = append(terms, fmt.Sprintf("es.%[1]s.Equal(other.%[1]s)", c.GoCollection))
		}
		w.Line("return %s", strings.Join(terms, " &&\n\t\t"))
		w.Close("}")
		w.Blank()
	}

	if t.has(schema.CapabilityString) {
		w.Open("func (es *Entities) String() string {")
		w.Line(`return fmt.Sprintf("Entities%%v", es.Export())`)
		w.Close("}")
		w.Blank()
	}

	if t.has(schema.CapabilityClone) {
		w.Comment("Clone returns a container with copies of every collection. Component\nvalues are copied shallowly.")
		w.Open("func (es *Entities) Clone() *Entities {")
		w.Open("return &Entities{")
		w.Line("live:   es.live.Clone(),")
		w.Line("nextID: es.nextID,")
		for _, c := range t.components {
			w.Line("%[1]s: es.%[1]s.Clone(),", c.GoCollection)
		}
		w.Close("}")
		w.Close("}")
		w.Blank()
	}

	if t.has(schema.CapabilityJSON) {
		w.Comment("MarshalJSON encodes the exported snapshots.")
		w.Open("func (es *Entities) MarshalJSON() ([]byte, error) {")
		w.Line("return ecs.MarshalSnapshots(es.Export())")
		w.Close("}")
		w.Blank()

		w.Comment("UnmarshalJSON replaces the contents of es with the decoded snapshots.")
		w.Open("func (es *Entities) UnmarshalJSON(data []byte) error {")
		w.Line("snapshots, err := ecs.UnmarshalSnapshots[Entity](data)")
		w.Open("if err != nil {")
		w.Line("return err")
		w.Close("}")
		w.Line("*es = *NewEntitiesFrom(snapshots)")
		w.Line("return nil")
		w.Close("}")
		w.Blank()
	}
}

func writeEventCapabilities(w *Writer, t *table, ev EventInfo) {
	if t.has(schema.CapabilityEqual) {
		w.Open("func (e %[1]s) Equal(other %[1]s) bool {", ev.Variant)
		w.Line("return ecs.Equal(e.Payload, other.Payload)")
		w.Close("}")
		w.Blank()
	}

	if t.has(schema.CapabilityString) {
		w.Open("func (e %s) String() string {", ev.Variant)
		w.Open("if e.Payload == nil {")
		w.Line("return %q", ev.Name+"(nil)")
		w.Close("}")
		w.Line("return fmt.Sprintf(%q, *e.Payload)", ev.Name+"(%v)")
		w.Close("}")
		w.Blank()
	}

	if t.has(schema.CapabilityClone) {
		w.Comment("Clone returns a variant pointing at a shallow copy of the payload.")
		w.Open("func (e %[1]s) Clone() %[1]s {", ev.Variant)
		w.Open("if e.Payload == nil {")
		w.Line("return e")
		w.Close("}")
		w.Line("payload := *e.Payload")
		w.Line("return %s{Payload: &payload}", ev.Variant)
		w.Close("}")
		w.Blank()
	}
}

// Systems holds no data, so its capabilities are trivial. JSON is not
// generated for it.
func writeSystemsCapabilities(w *Writer, t *table) {
	if t.has(schema.CapabilityEqual) {
		w.Open("func (s *Systems) Equal(other *Systems) bool {")
		w.Line("return true")
		w.Close("}")
		w.Blank()
	}
	if t.has(schema.CapabilityString) {
		w.Open("func (s *Systems) String() string {")
		w.Line("return %q", bindings(t))
		w.Close("}")
		w.Blank()
	}
	if t.has(schema.CapabilityClone) {
		w.Open("func (s *Systems) Clone() *Systems {")
		w.Line("return &Systems{}")
		w.Close("}")
		w.Blank()
	}
}
