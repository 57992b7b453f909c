package gen

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/l1jgo/ecsgen/internal/naming"
	"github.com/l1jgo/ecsgen/internal/schema"
)

// ComponentInfo holds every name derived from one component type.
type ComponentInfo struct {
	Type         string // Go type expression, e.g. geo.Vec[float64]
	Name         string // bare type name, e.g. Vec
	Field        string // snake case, e.g. weapon_state
	Collection   string // pluralized Field, e.g. weapon_states
	GoField      string // Entity field, e.g. WeaponState
	GoCollection string // Entities field, e.g. WeaponStates
	Builder      string // Entity builder method, e.g. WithWeaponState
	Alias        string // storage type alias, e.g. WeaponStateComponents
}

func newComponentInfo(c schema.Component) ComponentInfo {
	field := naming.FieldName(c.Name)
	collection := naming.CollectionName(c.Name)
	goField := naming.Exported(field)
	return ComponentInfo{
		Type:         c.Type,
		Name:         c.Name,
		Field:        field,
		Collection:   collection,
		GoField:      goField,
		GoCollection: naming.Exported(collection),
		Builder:      "With" + goField,
		Alias:        goField + "Components",
	}
}

// The fragments below are the per-component building blocks the
// synthesizers assemble.

func (c ComponentInfo) writeAlias(w *Writer) {
	w.Line("%s = ecs.Components[%s]", c.Alias, c.Type)
}

func (c ComponentInfo) writeCollectionDecl(w *Writer) {
	w.Line("%s %s", c.GoCollection, c.Alias)
}

func (c ComponentInfo) writeCollectionInit(w *Writer) {
	w.Line("%s: ecs.NewComponents[%s](),", c.GoCollection, c.Type)
}

func (c ComponentInfo) writeFieldDecl(w *Writer, tagged bool) {
	if tagged {
		w.Line("%s ecs.Option[%s] `json:%q`", c.GoField, c.Type, c.Field)
		return
	}
	w.Line("%s ecs.Option[%s]", c.GoField, c.Type)
}

func (c ComponentInfo) writeBuilder(w *Writer) {
	w.Comment(fmt.Sprintf("%s returns a copy of e with its %s set to c.", c.Builder, c.Name))
	w.Open("func (e Entity) %s(c %s) Entity {", c.Builder, c.Type)
	w.Line("e.%s = ecs.Some(c)", c.GoField)
	w.Line("return e")
	w.Close("}")
}

func (c ComponentInfo) writeInsert(w *Writer) {
	w.Open("if c, ok := entity.%s.Get(); ok {", c.GoField)
	w.Line("es.%s[id] = c", c.GoCollection)
	w.Close("}")
}

func (c ComponentInfo) writeRemove(w *Writer) {
	w.Line("delete(es.%s, id)", c.GoCollection)
}

func (c ComponentInfo) writeSnapshot(w *Writer) {
	w.Line("entity.%s = es.%s.Option(id)", c.GoField, c.GoCollection)
}

// EventInfo holds the names derived from one event type.
type EventInfo struct {
	Type    string
	Name    string
	Kind    string // EventKindTick
	Variant string // TickEvent
	New     string // NewTickEvent
	Trigger string // triggerTick
	Systems []schema.System
}

func newEventInfo(s *schema.Schema, ev schema.Event) EventInfo {
	name := naming.Exported(naming.FieldName(ev.Name))
	return EventInfo{
		Type:    ev.Type,
		Name:    ev.Name,
		Kind:    "EventKind" + name,
		Variant: name + "Event",
		New:     "New" + name + "Event",
		Trigger: "trigger" + name,
		Systems: s.SystemsOn(ev),
	}
}

// ConstructorInfo holds the names derived from one entity constructor.
type ConstructorInfo struct {
	schema.Constructor
	Entity string // ShipEntity
	Create string // CreateShip
	Impl   string // the function producing the component values
}

func newConstructorInfo(c schema.Constructor) ConstructorInfo {
	name := naming.Exported(naming.FieldName(c.Name))
	info := ConstructorInfo{
		Constructor: c,
		Entity:      name + "Entity",
		Create:      "Create" + name,
		Impl:        c.Func,
	}
	if c.Inline() {
		info.Impl = "construct" + name
	}
	return info
}

// table is the fully derived view of a schema that the synthesizers read.
type table struct {
	schema       *schema.Schema
	components   []ComponentInfo
	events       []EventInfo
	constructors []ConstructorInfo
	runtime      string // import path of the ecs runtime
}

func (t *table) has(c schema.Capability) bool {
	return t.schema.Has(c)
}

// entitiesMethods and capabilityMethods are generated methods that component
// derived names must not shadow.
var (
	entitiesMethods = []string{"Add", "Import", "Remove", "Export", "Get", "Len", "Alive", "IDs"}

	capabilityMethods = map[schema.Capability][]string{
		schema.CapabilityEqual:  {"Equal"},
		schema.CapabilityString: {"String"},
		schema.CapabilityClone:  {"Clone"},
		schema.CapabilityJSON:   {"MarshalJSON", "UnmarshalJSON"},
	}

	localVar = regexp.MustCompile(`^c[0-9]+$`)
)

// reservedParams are identifiers generated constructor code relies on.
var reservedParams = map[string]bool{"es": true, "e": true, "ecs": true, "entity": true}

// buildTable derives every generated name and rejects schemas in which two
// of them collide.
func buildTable(s *schema.Schema, runtime string) (*table, error) {
	t := &table{schema: s, runtime: runtime}
	for _, c := range s.Components {
		t.components = append(t.components, newComponentInfo(c))
	}
	for _, ev := range s.Events {
		t.events = append(t.events, newEventInfo(s, ev))
	}
	for _, c := range s.Constructors {
		t.constructors = append(t.constructors, newConstructorInfo(c))
	}

	var errs []error
	collide := func(decl string, pos schema.Pos, format string, args ...any) {
		errs = append(errs, &schema.Error{
			Kind: schema.ErrNameCollision,
			Decl: decl,
			Pos:  pos,
			Msg:  fmt.Sprintf(format, args...),
		})
	}

	// scope tracks which declaration claimed each name within one namespace.
	type scope map[string]string
	claim := func(sc scope, name, owner string, pos schema.Pos) {
		if prev, ok := sc[name]; ok && prev != owner {
			collide(owner, pos, "%s is also used by %s", name, prev)
			return
		}
		sc[name] = owner
	}

	fields, collections := scope{}, scope{}
	entity, entities := scope{}, scope{}
	for _, m := range entitiesMethods {
		entities[m] = "the Entities type"
	}
	for c, methods := range capabilityMethods {
		if !s.Has(c) {
			continue
		}
		for _, m := range methods {
			entities[m] = "the " + string(c) + " capability"
			if c != schema.CapabilityJSON {
				entity[m] = "the " + string(c) + " capability"
			}
		}
	}
	for _, c := range t.constructors {
		entities[c.Create] = "entity_constructor " + c.Name
	}

	for _, c := range t.components {
		owner := "component " + c.Type
		claim(fields, c.Field, owner, schema.Pos{})
		claim(collections, c.Collection, owner, schema.Pos{})
		claim(entity, c.GoField, owner, schema.Pos{})
		claim(entity, c.Builder, owner, schema.Pos{})
		claim(entities, c.GoCollection, owner, schema.Pos{})
	}

	pkg := scope{}
	for _, name := range []string{"Entity", "Entities", "NewEntity", "NewEntities", "NewEntitiesFrom"} {
		pkg[name] = "the generated container"
	}
	if len(t.events) > 0 {
		pkg["Event"] = "the generated event type"
		pkg["EventKind"] = "the generated event type"
	}
	if len(s.Systems) > 0 {
		pkg["Systems"] = "the generated dispatcher"
		pkg["NewSystems"] = "the generated dispatcher"
	}
	for _, c := range t.components {
		claim(pkg, c.Alias, "component "+c.Type, schema.Pos{})
	}
	for _, ev := range t.events {
		owner := "event " + ev.Type
		claim(pkg, ev.Kind, owner, schema.Pos{})
		claim(pkg, ev.Variant, owner, schema.Pos{})
		claim(pkg, ev.New, owner, schema.Pos{})
	}
	for _, c := range t.constructors {
		owner := "entity_constructor " + c.Name
		claim(pkg, c.Entity, owner, c.Pos)
		if c.Inline() {
			claim(pkg, c.Impl, owner, c.Pos)
		}
	}

	// Types and functions the user declares in the same package.
	for _, c := range s.Components {
		if isLocal(c.Type) {
			claim(pkg, c.Name, "type "+c.Name, schema.Pos{})
		}
	}
	for _, ev := range s.Events {
		if isLocal(ev.Type) {
			claim(pkg, ev.Name, "type "+ev.Name, schema.Pos{})
		}
	}
	for _, sys := range s.Systems {
		claim(pkg, sys.Name, "system "+sys.Name, sys.Pos)
	}
	for _, c := range t.constructors {
		if !c.Inline() && !strings.Contains(c.Func, ".") {
			claim(pkg, c.Func, "entity_constructor "+c.Name, c.Pos)
		}
	}

	for _, c := range t.constructors {
		for _, p := range c.Params {
			if reservedParams[p.Name] || localVar.MatchString(p.Name) {
				collide("entity_constructor "+c.Name, c.Pos, "parameter name %s is used by generated code", p.Name)
			}
		}
	}

	for _, imp := range s.Imports {
		if imp.Path == runtime {
			continue
		}
		name := imp.Alias
		if name == "" {
			name = path.Base(imp.Path)
		}
		if name == "ecs" {
			collide("import", schema.Pos{}, "%s would shadow the ecs runtime package", imp)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// isLocal reports whether a type expression names a type of the generated
// package itself.
func isLocal(typ string) bool {
	base := strings.TrimLeft(typ, "*[]")
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}
	return !strings.Contains(base, ".")
}

// ComponentNames returns the names generated for a component of type typ.
func ComponentNames(typ string) ComponentInfo {
	return newComponentInfo(schema.Component{Type: typ, Name: naming.BaseName(typ)})
}
