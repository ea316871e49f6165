// Package reconcile compares locally edited collections with the last state
// the server confirmed and works out which writes bring the server in line.
package reconcile

import (
	"encoding/json"

	"github.com/Tiliavir/tutor-hub/internal/model"
)

// Snapshot is an immutable, id-keyed copy of server-confirmed resources.
// Methods never modify a Snapshot; Apply returns a new one.
type Snapshot struct {
	order []model.ID
	items map[model.ID]model.Resource
}

// Capture deep-copies the resources that have a server id. Entries without
// an id are pending creation and never part of a snapshot. When an id is
// repeated the first entry wins.
func Capture(items []model.Resource) Snapshot {
	s := Snapshot{items: make(map[model.ID]model.Resource, len(items))}
	for _, it := range items {
		if !it.HasID() {
			continue
		}
		if _, dup := s.items[it.ID]; dup {
			continue
		}
		s.order = append(s.order, it.ID)
		s.items[it.ID] = it.Clone()
	}
	return s
}

// Len returns the number of snapshotted resources.
func (s Snapshot) Len() int { return len(s.order) }

// IDs returns the snapshotted ids in capture order.
func (s Snapshot) IDs() []model.ID {
	out := make([]model.ID, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns a copy of the snapshotted resource with the given id.
func (s Snapshot) Get(id model.ID) (model.Resource, bool) {
	r, ok := s.items[id]
	if !ok {
		return model.Resource{}, false
	}
	return r.Clone(), true
}

// Resources returns copies of all snapshotted resources in capture order.
func (s Snapshot) Resources() []model.Resource {
	out := make([]model.Resource, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Resources())
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var items []model.Resource
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*s = Capture(items)
	return nil
}

// Changed reports whether current deviates from snap in any way that needs
// a server write: a snapshotted id is gone, an entry has no id, or an entry
// differs in a tracked field or carries a newly staged file.
func Changed(fields []string, current []model.Resource, snap Snapshot) bool {
	present := make(map[model.ID]bool, len(current))
	for _, cur := range current {
		if !cur.HasID() {
			return true
		}
		present[cur.ID] = true
		prev, ok := snap.items[cur.ID]
		if !ok || entryChanged(fields, cur, prev) {
			return true
		}
	}
	for _, id := range snap.order {
		if !present[id] {
			return true
		}
	}
	return false
}

// entryChanged compares the declared fields by value. A staged local file is
// always a change; a remote reference never is.
func entryChanged(fields []string, cur, prev model.Resource) bool {
	for _, f := range fields {
		if cur.Fields[f] != prev.Fields[f] {
			return true
		}
	}
	return cur.Attachment.IsLocal()
}
