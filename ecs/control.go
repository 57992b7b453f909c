package ecs

type pendingImport[E any] struct {
	id     EntityID
	entity E
}

// Control queues structural changes so they can be decided while a
// container is being iterated and committed later in one batch. It is tied to
// no container until Apply.
//
// Ids returned by Add are odd and the container's own ids are even, so an id
// handed out here never collides with one the container allocates before the
// buffer is applied. Ids are only unique per buffer: keep one buffer per
// container and reuse it every tick.
type Control[E any] struct {
	nextID   EntityID
	imported []pendingImport[E]
	removed  []EntityID
	applying bool
}

func NewControl[E any]() *Control[E] {
	return &Control[E]{
		nextID:   ControlIDStart,
		imported: make([]pendingImport[E], 0, 64),
		removed:  make([]EntityID, 0, 64),
	}
}

// Add assigns an id right away and queues entity for import under it.
func (c *Control[E]) Add(entity E) EntityID {
	id := c.nextID
	c.nextID += IDStep

	c.imported = append(c.imported, pendingImport[E]{id: id, entity: entity})
	return id
}

// Import queues an externally sourced entity.
func (c *Control[E]) Import(id EntityID, entity E) {
	c.imported = append(c.imported, pendingImport[E]{id: id, entity: entity})
}

// Remove queues id for removal.
func (c *Control[E]) Remove(id EntityID) {
	c.removed = append(c.removed, id)
}

// Pending returns the number of queued imports and removals.
func (c *Control[E]) Pending() (imports, removals int) {
	return len(c.imported), len(c.removed)
}

// Apply imports every queued entity, then removes every queued id, both in
// queue order, and forgets them. Entries queued while Apply runs are kept for
// the next call. Apply is not reentrant.
func (c *Control[E]) Apply(entities EntityContainer[E]) {
	if c.applying {
		panic("ecs: Control.Apply called while already applying")
	}
	c.applying = true
	defer func() { c.applying = false }()

	imported, removed := c.imported, c.removed
	c.imported = make([]pendingImport[E], 0, cap(imported))
	c.removed = make([]EntityID, 0, cap(removed))

	for _, p := range imported {
		entities.Import(p.id, p.entity)
	}
	for _, id := range removed {
		entities.Remove(id)
	}
}
