package ecs

// counter is a one-component container written the way ecsgen generates
// them, used to exercise the runtime without a generated package.
type counterEntity struct {
	Count Option[int]
}

func (e counterEntity) WithCount(c int) counterEntity {
	e.Count = Some(c)
	return e
}

type counters struct {
	live   IDSet
	nextID EntityID

	Counts Components[int]

	imports, removes []EntityID
}

var _ EntityContainer[counterEntity] = (*counters)(nil)

func newCounters() *counters {
	return &counters{
		live:   NewIDSet(),
		nextID: ContainerIDStart,
		Counts: NewComponents[int](),
	}
}

func (es *counters) Add(entity counterEntity) EntityID {
	id, next := es.live.Allocate(es.nextID)
	es.nextID = next
	es.Import(id, entity)
	return id
}

func (es *counters) Import(id EntityID, entity counterEntity) {
	es.imports = append(es.imports, id)
	es.live.Add(id)
	if id >= es.nextID {
		es.nextID = NextContainerID(id)
	}
	if c, ok := entity.Count.Get(); ok {
		es.Counts[id] = c
	}
}

func (es *counters) Remove(id EntityID) {
	es.removes = append(es.removes, id)
	if !es.live.Remove(id) {
		return
	}
	delete(es.Counts, id)
}

func (es *counters) Export() []Snapshot[counterEntity] {
	ids := es.live.Sorted()
	snapshots := make([]Snapshot[counterEntity], 0, len(ids))
	for _, id := range ids {
		var entity counterEntity
		entity.Count = es.Counts.Option(id)
		snapshots = append(snapshots, Snapshot[counterEntity]{ID: id, Entity: entity})
	}
	return snapshots
}
