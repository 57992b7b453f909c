package schema

import (
	"slices"
	"strings"

	"github.com/l1jgo/ecsgen/internal/naming"
)

// Schema is the validated input of code generation. It is built once by
// Build and treated as immutable afterwards.
type Schema struct {
	Imports      []Import
	Components   []Component
	Events       []Event
	Systems      []System
	Constructors []Constructor
	Capabilities []Capability
}

// Import is a Go import spec copied into generated files.
type Import struct {
	Alias string
	Path  string
}

func (i Import) String() string {
	if i.Alias == "" {
		return `"` + i.Path + `"`
	}
	return i.Alias + ` "` + i.Path + `"`
}

// Component is a component type. Type is the Go type expression as
// declared, Name the bare type name every derived identifier comes from.
type Component struct {
	Type string
	Name string
}

// Event is an event type. Variants and kinds are named after Name.
type Event struct {
	Type string
	Name string
}

// System binds a package level handler function to one event.
type System struct {
	Name   string
	Pos    Pos
	Event  Event
	Access []Access
}

// Access is one collection a system receives, in declaration order.
type Access struct {
	Component Component
	Mutable   bool
}

type Constructor struct {
	Name       string
	Pos        Pos
	Params     []Param
	Components []Component
	Func       string
	Body       string
}

// Inline reports whether the constructor carries its own body.
func (c Constructor) Inline() bool { return c.Func == "" }

// Capability is a derived behavior added to the generated types.
type Capability string

const (
	CapabilityEqual  Capability = "Equal"
	CapabilityString Capability = "String"
	CapabilityClone  Capability = "Clone"
	CapabilityJSON   Capability = "JSON"
)

var capabilityNames = map[string]Capability{
	"equal":       CapabilityEqual,
	"eq":          CapabilityEqual,
	"partialeq":   CapabilityEqual,
	"string":      CapabilityString,
	"stringer":    CapabilityString,
	"show":        CapabilityString,
	"debug":       CapabilityString,
	"clone":       CapabilityClone,
	"json":        CapabilityJSON,
	"encodable":   CapabilityJSON,
	"decodable":   CapabilityJSON,
	"serialize":   CapabilityJSON,
	"deserialize": CapabilityJSON,
}

// ParseCapability resolves a capability name or one of its aliases,
// ignoring case.
func ParseCapability(name string) (Capability, bool) {
	c, ok := capabilityNames[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

func (s *Schema) Has(c Capability) bool {
	return slices.Contains(s.Capabilities, c)
}

// Component looks a component up by its declared type expression or by its
// bare name.
func (s *Schema) Component(ref string) (Component, bool) {
	return lookup(s.Components, ref, func(c Component) (string, string) { return c.Type, c.Name })
}

func (s *Schema) Event(ref string) (Event, bool) {
	return lookup(s.Events, ref, func(e Event) (string, string) { return e.Type, e.Name })
}

// SystemsOn returns the systems bound to ev in declaration order.
func (s *Schema) SystemsOn(ev Event) []System {
	var out []System
	for _, sys := range s.Systems {
		if sys.Event == ev {
			out = append(out, sys)
		}
	}
	return out
}

func lookup[T any](items []T, ref string, key func(T) (string, string)) (T, bool) {
	ref = strings.TrimSpace(ref)
	for _, it := range items {
		if typ, _ := key(it); typ == ref {
			return it, true
		}
	}
	base := naming.BaseName(ref)
	if base != ref {
		var zero T
		return zero, false
	}
	for _, it := range items {
		if _, name := key(it); name == ref {
			return it, true
		}
	}
	var zero T
	return zero, false
}
