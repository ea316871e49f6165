package reconcile

import (
	"bytes"
	"encoding/json"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/slots"
)

// AvailabilitySnapshot is the last server-confirmed availability of one
// owner. It keeps the flat records, ids included, because grouped slots
// cannot address individual server rows. Unreadable holds the ids of rows
// the server returned but that could not be decoded; they are not shown but
// a replace still deletes them.
type AvailabilitySnapshot struct {
	records    []model.Record
	unreadable []model.ID
}

// CaptureAvailability copies the server's flat records and the ids of the
// rows that were skipped while decoding.
func CaptureAvailability(records []model.Record, unreadable ...model.ID) AvailabilitySnapshot {
	out := make([]model.Record, len(records))
	copy(out, records)
	var ids []model.ID
	if len(unreadable) > 0 {
		ids = make([]model.ID, len(unreadable))
		copy(ids, unreadable)
	}
	return AvailabilitySnapshot{records: out, unreadable: ids}
}

// Records returns a copy of the snapshotted flat records.
func (s AvailabilitySnapshot) Records() []model.Record {
	out := make([]model.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Slots returns the grouped baseline the user started editing from.
func (s AvailabilitySnapshot) Slots() []model.Slot {
	return slots.Group(s.records)
}

// RecordIDs returns each distinct server id once: record ids in record
// order, then the unreadable ones.
func (s AvailabilitySnapshot) RecordIDs() []model.ID {
	seen := map[model.ID]bool{}
	var out []model.ID
	add := func(id model.ID) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, r := range s.records {
		add(r.ID)
	}
	for _, id := range s.unreadable {
		add(id)
	}
	return out
}

// Unreadable returns the ids of server rows that could not be decoded.
func (s AvailabilitySnapshot) Unreadable() []model.ID {
	out := make([]model.ID, len(s.unreadable))
	copy(out, s.unreadable)
	return out
}

type availabilityJSON struct {
	Records    []model.Record `json:"records"`
	Unreadable []model.ID     `json:"unreadable,omitempty"`
}

func (s AvailabilitySnapshot) MarshalJSON() ([]byte, error) {
	records := s.records
	if records == nil {
		records = []model.Record{}
	}
	return json.Marshal(availabilityJSON{Records: records, Unreadable: s.unreadable})
}

// UnmarshalJSON also accepts a bare list of records.
func (s *AvailabilitySnapshot) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []model.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return err
		}
		*s = CaptureAvailability(records)
		return nil
	}
	var v availabilityJSON
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*s = CaptureAvailability(v.Records, v.Unreadable...)
	return nil
}

// AvailabilityChanged compares the grouped collections as ordered lists:
// same length, and slot i has the same range and the same days as baseline
// slot i. Reordering slots counts as a change. Slots sharing a range are
// merged first, the way the server stores them.
func AvailabilityChanged(current []model.Slot, snap AvailabilitySnapshot) bool {
	current = slots.Merge(current)
	base := snap.Slots()
	if len(base) != len(current) {
		return true
	}
	for i := range current {
		if current[i].Range() != base[i].Range() || !current[i].Days.Equal(base[i].Days) {
			return true
		}
	}
	return false
}

// AvailabilityPlan is a full replace: every snapshotted record is deleted,
// then every encoded record of the current slots is created. A zero plan
// means nothing changed.
type AvailabilityPlan struct {
	Replace bool
	Deletes []model.ID
	Creates []model.Record
}

// Empty reports whether nothing needs to be written.
func (p AvailabilityPlan) Empty() bool { return !p.Replace }

// PlanAvailability returns a full replace when anything differs. Grouped
// slots carry no ids, so no partial update is attempted.
func PlanAvailability(current []model.Slot, snap AvailabilitySnapshot) AvailabilityPlan {
	if !AvailabilityChanged(current, snap) {
		return AvailabilityPlan{}
	}
	return AvailabilityPlan{
		Replace: true,
		Deletes: snap.RecordIDs(),
		Creates: slots.Encode(slots.Merge(current)),
	}
}

// Apply returns a new snapshot without the deleted rows and with the rows
// the server created.
func (s AvailabilitySnapshot) Apply(deleted []model.ID, created []model.Record) AvailabilitySnapshot {
	gone := make(map[model.ID]bool, len(deleted))
	for _, id := range deleted {
		gone[id] = true
	}
	var out []model.Record
	for _, r := range s.records {
		if !gone[r.ID] {
			out = append(out, r)
		}
	}
	out = append(out, created...)
	var unreadable []model.ID
	for _, id := range s.unreadable {
		if !gone[id] {
			unreadable = append(unreadable, id)
		}
	}
	return AvailabilitySnapshot{records: out, unreadable: unreadable}
}
