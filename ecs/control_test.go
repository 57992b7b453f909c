package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlAddsEntitiesAfterApply(t *testing.T) {
	entities := newCounters()
	control := NewControl[counterEntity]()

	control.Add(counterEntity{}.WithCount(5))
	assert.Equal(t, 0, entities.Counts.Len())

	control.Apply(entities)
	assert.Equal(t, 1, entities.Counts.Len())
}

func TestControlImportsEntitiesAfterApply(t *testing.T) {
	entities := newCounters()
	control := NewControl[counterEntity]()

	control.Import(3, counterEntity{}.WithCount(5))
	assert.Equal(t, 0, entities.Counts.Len())

	control.Apply(entities)
	require.Equal(t, 1, entities.Counts.Len())
	assert.Equal(t, 5, entities.Counts[3])
}

func TestControlRemovesEntitiesAfterApply(t *testing.T) {
	entities := newCounters()
	control := NewControl[counterEntity]()

	id := entities.Add(counterEntity{}.WithCount(5))
	control.Remove(id)
	assert.Equal(t, 1, entities.Counts.Len())

	control.Apply(entities)
	assert.Equal(t, 0, entities.Counts.Len())
}

func TestControlAddReturnsUniqueID(t *testing.T) {
	entities := newCounters()
	control := NewControl[counterEntity]()

	entities.Add(counterEntity{}.WithCount(3))
	entities.Add(counterEntity{}.WithCount(5))

	id := control.Add(counterEntity{}.WithCount(8))
	control.Apply(entities)

	assert.Equal(t, 3, entities.Counts.Len())
	assert.Equal(t, 8, entities.Counts[id])
}

func TestControlAppliesAddsOnlyOnce(t *testing.T) {
	entities := newCounters()
	control := NewControl[counterEntity]()

	id := control.Add(counterEntity{}.WithCount(5))

	control.Apply(entities)
	entities.Remove(id)
	control.Apply(entities)

	assert.Equal(t, 0, entities.Counts.Len())
}

func TestControlAppliesRemovesOnlyOnce(t *testing.T) {
	entities := newCounters()
	control := NewControl[counterEntity]()

	id := entities.Add(counterEntity{}.WithCount(5))

	control.Remove(id)
	control.Apply(entities)
	entities.Import(id, counterEntity{}.WithCount(5))
	control.Apply(entities)

	assert.Equal(t, 1, entities.Counts.Len())
}

func TestControlAppliesImportsBeforeRemovesInQueueOrder(t *testing.T) {
	entities := newCounters()
	control := NewControl[counterEntity]()

	control.Remove(7)
	a := control.Add(counterEntity{}.WithCount(1))
	control.Import(10, counterEntity{}.WithCount(2))
	b := control.Add(counterEntity{}.WithCount(3))
	control.Remove(a)

	imports, removals := control.Pending()
	assert.Equal(t, 3, imports)
	assert.Equal(t, 2, removals)

	control.Apply(entities)

	assert.Equal(t, []EntityID{a, 10, b}, entities.imports)
	assert.Equal(t, []EntityID{7, a}, entities.removes)
	assert.Equal(t, []EntityID{b, 10}, entities.live.Sorted())

	imports, removals = control.Pending()
	assert.Zero(t, imports)
	assert.Zero(t, removals)
}

func TestControlApplyTwiceChangesNothing(t *testing.T) {
	entities := newCounters()
	control := NewControl[counterEntity]()

	for i := 0; i < 4; i++ {
		control.Add(counterEntity{}.WithCount(i))
	}
	kept := entities.Add(counterEntity{}.WithCount(99))
	control.Remove(kept)

	control.Apply(entities)
	before := entities.Export()
	nImports, nRemoves := len(entities.imports), len(entities.removes)

	control.Apply(entities)

	assert.Equal(t, before, entities.Export())
	assert.Len(t, entities.imports, nImports)
	assert.Len(t, entities.removes, nRemoves)
}

func TestControlIDsAreOddAndContainerIDsEven(t *testing.T) {
	entities := newCounters()
	control := NewControl[counterEntity]()

	seen := map[EntityID]bool{}
	for i := 0; i < 100; i++ {
		cid := control.Add(counterEntity{})
		eid := entities.Add(counterEntity{})

		assert.Equal(t, EntityID(1), cid%2, "control id %d", cid)
		assert.Equal(t, EntityID(0), eid%2, "container id %d", eid)
		assert.False(t, seen[cid])
		assert.False(t, seen[eid])
		seen[cid], seen[eid] = true, true
	}

	control.Apply(entities)
	assert.Equal(t, 200, entities.live.Len())
}

func TestControlKeepsEntriesQueuedDuringApply(t *testing.T) {
	control := NewControl[counterEntity]()
	control.Add(counterEntity{}.WithCount(1))

	entities := &queueingContainer{counters: newCounters(), control: control}
	control.Apply(entities)

	assert.Equal(t, 1, entities.Counts.Len())
	imports, _ := control.Pending()
	assert.Equal(t, 1, imports)

	control.Apply(entities)
	assert.Equal(t, 2, entities.Counts.Len())
}

func TestControlApplyIsNotReentrant(t *testing.T) {
	control := NewControl[counterEntity]()
	control.Add(counterEntity{})

	entities := &reentrantContainer{counters: newCounters(), control: control}
	assert.Panics(t, func() { control.Apply(entities) })

	// the guard is released after the panic
	assert.NotPanics(t, func() { control.Apply(newCounters()) })
}

// queueingContainer queues one more add on the same buffer while it is being
// applied.
type queueingContainer struct {
	*counters
	control *Control[counterEntity]
	queued  bool
}

func (q *queueingContainer) Import(id EntityID, entity counterEntity) {
	q.counters.Import(id, entity)
	if !q.queued {
		q.queued = true
		q.control.Add(counterEntity{}.WithCount(2))
	}
}

type reentrantContainer struct {
	*counters
	control *Control[counterEntity]
}

func (r *reentrantContainer) Import(id EntityID, entity counterEntity) {
	r.control.Apply(r.counters)
}
