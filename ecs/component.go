package ecs

import (
	"maps"
	"reflect"
	"slices"
)

// Reader is the read side shared by Components and ReadOnly.
type Reader[T any] interface {
	Get(id EntityID) (T, bool)
	Has(id EntityID) bool
	Len() int
	Each(fn func(EntityID, T))
}

// Components is the sparse storage of one component type, keyed by entity
// id. An entity has the component iff its id is a key.
type Components[T any] map[EntityID]T

var (
	_ Reader[int] = Components[int](nil)
	_ Reader[int] = ReadOnly[int]{}
)

func NewComponents[T any]() Components[T] {
	return make(Components[T], 256)
}

func (c Components[T]) Set(id EntityID, v T) {
	c[id] = v
}

func (c Components[T]) Get(id EntityID) (T, bool) {
	v, ok := c[id]
	return v, ok
}

// Option returns the value stored for id, or an empty Option.
func (c Components[T]) Option(id EntityID) Option[T] {
	if v, ok := c[id]; ok {
		return Some(v)
	}
	return None[T]()
}

func (c Components[T]) Remove(id EntityID) {
	delete(c, id)
}

func (c Components[T]) Has(id EntityID) bool {
	_, ok := c[id]
	return ok
}

func (c Components[T]) Len() int {
	return len(c)
}

// Each visits entries in map order. fn must not add or remove entries of c;
// queue structural changes on a Control buffer instead.
func (c Components[T]) Each(fn func(EntityID, T)) {
	for id, v := range c {
		fn(id, v)
	}
}

// IDs returns the keys in ascending order.
func (c Components[T]) IDs() []EntityID {
	return slices.Sorted(maps.Keys(c))
}

// ReadOnly wraps c in a view without mutating methods.
func (c Components[T]) ReadOnly() ReadOnly[T] {
	return ReadOnly[T]{c: c}
}

// Clone copies the map. Values are copied shallowly.
func (c Components[T]) Clone() Components[T] {
	if c == nil {
		return NewComponents[T]()
	}
	return maps.Clone(c)
}

// Equal compares keys and values. A nil and an empty store are equal.
func (c Components[T]) Equal(o Components[T]) bool {
	if len(c) != len(o) {
		return false
	}
	for id, v := range c {
		ov, ok := o[id]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// ReadOnly is the view a system receives for a component it only reads.
type ReadOnly[T any] struct {
	c Components[T]
}

func (r ReadOnly[T]) Get(id EntityID) (T, bool) {
	v, ok := r.c[id]
	return v, ok
}

func (r ReadOnly[T]) Has(id EntityID) bool {
	_, ok := r.c[id]
	return ok
}

func (r ReadOnly[T]) Len() int {
	return len(r.c)
}

func (r ReadOnly[T]) Each(fn func(EntityID, T)) {
	for id, v := range r.c {
		fn(id, v)
	}
}

func (r ReadOnly[T]) IDs() []EntityID {
	return slices.Sorted(maps.Keys(r.c))
}

// Equal reports deep equality of two component values; component types need
// not be comparable.
func Equal[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}
