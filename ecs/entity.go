package ecs

import (
	"maps"
	"math"
	"slices"
)

// EntityID identifies an entity within one container. Containers hand out
// even ids and Control buffers hand out odd ids, so ids allocated on either
// side before an Apply can never collide.
type EntityID uint32

const (
	// ContainerIDStart is the first id a container's Add returns.
	ContainerIDStart EntityID = 0
	// ControlIDStart is the first id a Control buffer's Add returns.
	ControlIDStart EntityID = 1
	// IDStep keeps each allocator on its own parity.
	IDStep EntityID = 2
	// MaxContainerID is the largest even id.
	MaxContainerID EntityID = math.MaxUint32 &^ 1
)

// NextContainerID returns the smallest even id greater than id, or
// MaxContainerID when there is none. Containers use it to keep their counter
// ahead of imported ids.
func NextContainerID(id EntityID) EntityID {
	if id >= MaxContainerID {
		return MaxContainerID
	}
	return (id + IDStep) &^ 1
}

// IDSet is the set of live ids owned by a container.
type IDSet map[EntityID]struct{}

func NewIDSet() IDSet {
	return make(IDSet, 256)
}

func (s IDSet) Add(id EntityID) {
	s[id] = struct{}{}
}

// Remove reports whether id was present.
func (s IDSet) Remove(id EntityID) bool {
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

// Allocate returns the first even id at or after next that is not in s, and
// the counter value for the following call. Past MaxContainerID the search
// wraps to ContainerIDStart. It panics when every even id is in s.
func (s IDSet) Allocate(next EntityID) (id, following EntityID) {
	start := next &^ 1
	id = start
	for s.Has(id) {
		id += IDStep
		if id == start {
			panic("ecs: every container id is in use")
		}
	}
	return id, id + IDStep
}

func (s IDSet) Has(id EntityID) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []EntityID {
	return slices.Sorted(maps.Keys(s))
}

func (s IDSet) Clone() IDSet {
	if s == nil {
		return NewIDSet()
	}
	return maps.Clone(s)
}

func (s IDSet) Equal(o IDSet) bool {
	return maps.Equal(s, o)
}
