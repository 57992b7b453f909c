package ecs

import (
	"fmt"

	"github.com/goccy/go-json"
)

// EntityContainer is the contract every generated Entities type satisfies.
// Control buffers apply against it.
type EntityContainer[E any] interface {
	// Add allocates an id, stores the populated fields of entity and
	// returns the id.
	Add(entity E) EntityID
	// Import stores entity under a caller supplied id. Populated fields
	// overwrite existing values; absent fields leave storage untouched.
	Import(id EntityID, entity E)
	// Remove drops id and all of its components. Unknown ids are ignored.
	Remove(id EntityID)
	// Export snapshots every live entity in ascending id order.
	Export() []Snapshot[E]
}

// Snapshot pairs an id with the entity record exported for it.
type Snapshot[E any] struct {
	ID     EntityID `json:"id"`
	Entity E        `json:"entity"`
}

// ImportAll imports every snapshot into c in order.
func ImportAll[E any](c EntityContainer[E], snapshots []Snapshot[E]) {
	for _, s := range snapshots {
		c.Import(s.ID, s.Entity)
	}
}

func MarshalSnapshots[E any](snapshots []Snapshot[E]) ([]byte, error) {
	if snapshots == nil {
		snapshots = []Snapshot[E]{}
	}
	data, err := json.Marshal(snapshots)
	if err != nil {
		return nil, fmt.Errorf("encode snapshots: %w", err)
	}
	return data, nil
}

func UnmarshalSnapshots[E any](data []byte) ([]Snapshot[E], error) {
	var snapshots []Snapshot[E]
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}
	return snapshots, nil
}
