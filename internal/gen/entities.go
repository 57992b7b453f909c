package gen

func writeEntities(w *Writer, t *table) {
	w.Comment("Entities owns the live entity ids and one storage collection per\ncomponent. Ids handed out by Add are even; see ecs.Control.")
	w.Open("type Entities struct {")
	w.Line("live   ecs.IDSet")
	w.Line("nextID ecs.EntityID")
	if len(t.components) > 0 {
		w.Blank()
	}
	for _, c := range t.components {
		c.writeCollectionDecl(w)
	}
	w.Close("}")
	w.Blank()
	w.Line("var _ ecs.EntityContainer[Entity] = (*Entities)(nil)")
	w.Blank()

	w.Open("func NewEntities() *Entities {")
	w.Open("return &Entities{")
	w.Line("live:   ecs.NewIDSet(),")
	w.Line("nextID: ecs.ContainerIDStart,")
	for _, c := range t.components {
		c.writeCollectionInit(w)
	}
	w.Close("}")
	w.Close("}")
	w.Blank()

	w.Comment("NewEntitiesFrom returns a container holding the given snapshots.")
	w.Open("func NewEntitiesFrom(snapshots []ecs.Snapshot[Entity]) *Entities {")
	w.Line("es := NewEntities()")
	w.Line("ecs.ImportAll[Entity](es, snapshots)")
	w.Line("return es")
	w.Close("}")
	w.Blank()

	w.Comment("Add places entity under a newly allocated id and returns the id. Live\nids are skipped.")
	w.Open("func (es *Entities) Add(entity Entity) ecs.EntityID {")
	w.Line("id, next := es.live.Allocate(es.nextID)")
	w.Line("es.nextID = next")
	w.Line("es.insert(id, entity)")
	w.Line("return id")
	w.Close("}")
	w.Blank()

	w.Comment("Import places entity under id. Populated fields overwrite the stored\nvalues of a live id; absent fields leave them untouched.")
	w.Open("func (es *Entities) Import(id ecs.EntityID, entity Entity) {")
	w.Open("if id >= es.nextID {")
	w.Line("es.nextID = ecs.NextContainerID(id)")
	w.Close("}")
	w.Line("es.insert(id, entity)")
	w.Close("}")
	w.Blank()

	w.Open("func (es *Entities) insert(id ecs.EntityID, entity Entity) {")
	w.Line("es.live.Add(id)")
	for _, c := range t.components {
		c.writeInsert(w)
	}
	w.Close("}")
	w.Blank()

	w.Comment("Remove drops id and all of its components. Unknown ids are ignored.")
	w.Open("func (es *Entities) Remove(id ecs.EntityID) {")
	w.Open("if !es.live.Remove(id) {")
	w.Line("return")
	w.Close("}")
	for _, c := range t.components {
		c.writeRemove(w)
	}
	w.Close("}")
	w.Blank()

	w.Comment("Export snapshots every live entity in ascending id order.")
	w.Open("func (es *Entities) Export() []ecs.Snapshot[Entity] {")
	w.Line("ids := es.live.Sorted()")
	w.Line("snapshots := make([]ecs.Snapshot[Entity], 0, len(ids))")
	w.Open("for _, id := range ids {")
	w.Line("snapshots = append(snapshots, ecs.Snapshot[Entity]{ID: id, Entity: es.snapshot(id)})")
	w.Close("}")
	w.Line("return snapshots")
	w.Close("}")
	w.Blank()

	w.Comment("Get returns the snapshot of a live entity.")
	w.Open("func (es *Entities) Get(id ecs.EntityID) (Entity, bool) {")
	w.Open("if !es.live.Has(id) {")
	w.Line("return Entity{}, false")
	w.Close("}")
	w.Line("return es.snapshot(id), true")
	w.Close("}")
	w.Blank()

	w.Open("func (es *Entities) snapshot(id ecs.EntityID) Entity {")
	w.Line("var entity Entity")
	for _, c := range t.components {
		c.writeSnapshot(w)
	}
	w.Line("return entity")
	w.Close("}")
	w.Blank()

	w.Comment("Len returns the number of live entities.")
	w.Open("func (es *Entities) Len() int {")
	w.Line("return es.live.Len()")
	w.Close("}")
	w.Blank()

	w.Open("func (es *Entities) Alive(id ecs.EntityID) bool {")
	w.Line("return es.live.Has(id)")
	w.Close("}")
	w.Blank()

	w.Comment("IDs returns the live ids in ascending order.")
	w.Open("func (es *Entities) IDs() []ecs.EntityID {")
	w.Line("return es.live.Sorted()")
	w.Close("}")
	w.Blank()

	writeEntitiesCapabilities(w, t)
}
