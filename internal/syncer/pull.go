package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Tiliavir/tutor-hub/internal/api"
	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/reconcile"
	"github.com/Tiliavir/tutor-hub/internal/slots"
	"github.com/Tiliavir/tutor-hub/internal/storage"
)

// Pull loads an owner and its collections from the backend into a fresh
// draft whose snapshots equal the loaded state.
func (e *Executor) Pull(ctx context.Context, kind model.OwnerKind, id model.ID) (*storage.Draft, error) {
	d := storage.NewDraft(kind)
	d.OwnerID = id

	raw, err := e.caller.Call(ctx, api.Profile(kind, id), http.MethodGet, nil)
	if err != nil {
		return nil, fmt.Errorf("loading %s %s: %w", kind, id, err)
	}
	profile, err := resource(kind.Schema(), d.Profile.Key, raw)
	if err != nil {
		return nil, fmt.Errorf("loading %s %s: %w", kind, id, err)
	}
	if profile.ID == "" {
		profile.ID = id
	}
	d.Profile = profile
	d.ProfileSnapshot = reconcile.Capture([]model.Resource{profile})

	records, unreadable, err := e.pullAvailability(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	d.AvailabilitySnapshot = reconcile.CaptureAvailability(records, unreadable...)
	d.Availability = d.AvailabilitySnapshot.Slots()

	if kind.HasCredentials() {
		if d.Education, err = e.pullEntries(ctx, model.EducationSchema, id); err != nil {
			return nil, err
		}
		d.EducationSnapshot = reconcile.Capture(d.Education)
		if d.Qualifications, err = e.pullEntries(ctx, model.QualificationSchema, id); err != nil {
			return nil, err
		}
		d.QualificationSnapshot = reconcile.Capture(d.Qualifications)
	}

	d.EnsureKeys()
	e.log.Debug("pulled draft",
		zap.String("draft", d.Name()),
		zap.Int("slots", len(d.Availability)),
		zap.Int("education", len(d.Education)),
		zap.Int("qualifications", len(d.Qualifications)))
	return d, nil
}

// pullAvailability returns the decoded records and the ids of the rows that
// could not be decoded.
func (e *Executor) pullAvailability(ctx context.Context, kind model.OwnerKind, id model.ID) ([]model.Record, []model.ID, error) {
	raw, err := e.caller.Call(ctx, api.Availability(kind, id), http.MethodGet, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("loading availability: %w", err)
	}
	items, err := list(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("loading availability: %w", err)
	}
	var unreadable []model.ID
	rows := make([]slots.WireRecord, 0, len(items))
	for i, it := range items {
		var row slots.WireRecord
		if err := json.Unmarshal(it, &row); err != nil {
			e.log.Warn("skipping availability record", zap.Int("index", i), zap.Error(err))
			if obj, objErr := object(it); objErr == nil && idOf(obj) != "" {
				unreadable = append(unreadable, idOf(obj))
			}
			continue
		}
		rows = append(rows, row)
	}
	records, skipped := slots.Normalize(rows, e.log)
	return records, append(unreadable, skipped...), nil
}

func (e *Executor) pullEntries(ctx context.Context, schema model.Schema, owner model.ID) ([]model.Resource, error) {
	raw, err := e.caller.Call(ctx, api.Entries(schema, owner), http.MethodGet, nil)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", schema.Kind, err)
	}
	items, err := list(raw)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", schema.Kind, err)
	}
	out := make([]model.Resource, 0, len(items))
	for _, it := range items {
		r, err := resource(schema, storage.NewKey(), it)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", schema.Kind, err)
		}
		out = append(out, r)
	}
	return out, nil
}
