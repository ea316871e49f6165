package reconcile

import "github.com/Tiliavir/tutor-hub/internal/model"

// Update is an existing resource whose fields or attachment changed.
type Update struct {
	ID       model.ID
	Resource model.Resource
}

// Plan lists the writes needed to make the server match the local
// collection. Every deviation appears in exactly one list.
type Plan struct {
	Deletes []model.ID
	Creates []model.Resource
	Updates []Update
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Creates) == 0 && len(p.Updates) == 0
}

// Len returns the total number of operations.
func (p Plan) Len() int {
	return len(p.Deletes) + len(p.Creates) + len(p.Updates)
}

// Diff builds the plan for current against snap. Deletes are snapshot ids
// missing from current, creates are entries without an id, updates are
// entries whose id is known and whose tracked state changed. Unchanged
// entries produce no operation. An id that the snapshot does not know is
// treated as an update, since the server has it and the baseline is lost.
// No size limit is applied here.
func Diff(fields []string, current []model.Resource, snap Snapshot) Plan {
	var plan Plan
	present := make(map[model.ID]bool, len(current))
	for _, cur := range current {
		if !cur.HasID() {
			plan.Creates = append(plan.Creates, cur.Clone())
			continue
		}
		if present[cur.ID] {
			continue
		}
		present[cur.ID] = true
		prev, ok := snap.items[cur.ID]
		if ok && !entryChanged(fields, cur, prev) {
			continue
		}
		plan.Updates = append(plan.Updates, Update{ID: cur.ID, Resource: cur.Clone()})
	}
	for _, id := range snap.order {
		if !present[id] {
			plan.Deletes = append(plan.Deletes, id)
		}
	}
	return plan
}

// Saved is a create or update the server accepted.
type Saved struct {
	Key           string
	ID            model.ID
	AttachmentURL string
}

// Outcome reports which operations of a plan the server accepted.
type Outcome struct {
	Deleted []model.ID
	Saved   []Saved
}

// Apply folds an outcome into state. It returns the current collection with
// server ids and uploaded attachments filled in, and a new snapshot that
// reflects only what the server accepted. Failed operations are left out of
// the snapshot, so the next Diff plans them again; created entries keep
// their new id, so a resubmit never creates them twice.
func (s Snapshot) Apply(current []model.Resource, out Outcome) ([]model.Resource, Snapshot) {
	saved := make(map[string]Saved, len(out.Saved))
	for _, sv := range out.Saved {
		saved[sv.Key] = sv
	}

	next := make([]model.Resource, 0, len(current))
	accepted := make(map[model.ID]model.Resource, len(out.Saved))
	for _, cur := range current {
		cur = cur.Clone()
		if sv, ok := saved[cur.Key]; ok {
			cur.ID = sv.ID
			if cur.Attachment.IsLocal() {
				cur.Attachment = model.RemoteRef(sv.AttachmentURL)
			}
			accepted[cur.ID] = cur.Clone()
		}
		next = append(next, cur)
	}

	deleted := make(map[model.ID]bool, len(out.Deleted))
	for _, id := range out.Deleted {
		deleted[id] = true
	}

	snap := Snapshot{items: make(map[model.ID]model.Resource, len(next))}
	add := func(id model.ID, r model.Resource) {
		if _, dup := snap.items[id]; dup {
			return
		}
		snap.order = append(snap.order, id)
		snap.items[id] = r
	}
	for _, cur := range next {
		if !cur.HasID() || deleted[cur.ID] {
			continue
		}
		if r, ok := accepted[cur.ID]; ok {
			add(cur.ID, r)
		} else if prev, ok := s.items[cur.ID]; ok {
			add(cur.ID, prev.Clone())
		}
	}
	// Failed deletes are still on the server.
	for _, id := range s.order {
		if !deleted[id] {
			add(id, s.items[id].Clone())
		}
	}
	return next, snap
}
