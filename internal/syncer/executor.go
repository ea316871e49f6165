// Package syncer pushes a draft to the backend: it validates, plans and
// then runs the plan one call at a time.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Tiliavir/tutor-hub/internal/api"
	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/notify"
	"github.com/Tiliavir/tutor-hub/internal/reconcile"
	"github.com/Tiliavir/tutor-hub/internal/slots"
	"github.com/Tiliavir/tutor-hub/internal/storage"
)

// LoginRequiredMessage is shown when a submit is attempted without a session.
const LoginRequiredMessage = "You must be logged in to save changes."

var (
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrStateInconsistency aborts a submit whose owner has no server id.
	ErrStateInconsistency = errors.New("owner has no server id")
	// ErrPartialFailure is returned when at least one operation failed.
	ErrPartialFailure = errors.New("some changes could not be saved")
)

// Caller sends one request to the backend.
type Caller interface {
	Call(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error)
}

// TokenSource reports the current session token, "" when logged out.
type TokenSource interface {
	CurrentToken() string
}

// Limits caps the number of entries per collection. Zero means no cap.
type Limits struct {
	Education     int
	Qualification int
}

// Result counts the operations of one submit.
type Result struct {
	Created int
	Updated int
	Deleted int
	Errors  int
}

// Failed reports whether any operation failed.
func (r Result) Failed() bool { return r.Errors > 0 }

// Executor runs reconciliation plans against the backend.
type Executor struct {
	caller   Caller
	tokens   TokenSource
	notifier notify.Notifier
	log      *zap.Logger
	limits   Limits
}

func NewExecutor(caller Caller, tokens TokenSource, notifier notify.Notifier, log *zap.Logger, limits Limits) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{caller: caller, tokens: tokens, notifier: notifier, log: log, limits: limits}
}

// Submit validates d, plans every resource type and executes the plans.
// The owner profile is created first when it has no id; everything else
// depends on that id. Within a type deletes run before creates and
// updates. Each failed operation is notified and counted, and the rest of
// the plan still runs. d is updated in place with server ids and new
// snapshots that reflect only what the server accepted.
func (e *Executor) Submit(ctx context.Context, d *storage.Draft) (Result, error) {
	var result Result

	if e.tokens.CurrentToken() == "" {
		e.notifier.Notify(notify.Error, LoginRequiredMessage)
		return result, ErrNotLoggedIn
	}
	if err := Validate(d, e.limits); err != nil {
		e.notifier.Notify(notify.Error, err.Error())
		return result, err
	}
	plans := BuildPlans(d)
	if plans.Empty() {
		e.notifier.Notify(notify.Info, "No changes to save.")
		return result, nil
	}

	// A started plan always runs to completion.
	ctx = context.WithoutCancel(ctx)

	if err := e.syncProfile(ctx, d, plans.Profile, &result); err != nil {
		return result, err
	}
	if d.OwnerID == "" {
		return result, fmt.Errorf("%w: %s", ErrStateInconsistency, d.Name())
	}

	e.syncAvailability(ctx, d, plans.Availability, &result)

	if d.Kind.HasCredentials() {
		d.Education, d.EducationSnapshot = e.syncEntries(ctx, d.OwnerID, model.EducationSchema,
			d.Education, d.EducationSnapshot, plans.Education, &result)
		d.Qualifications, d.QualificationSnapshot = e.syncEntries(ctx, d.OwnerID, model.QualificationSchema,
			d.Qualifications, d.QualificationSnapshot, plans.Qualifications, &result)
	}

	if result.Failed() {
		return result, fmt.Errorf("%w: %d failed", ErrPartialFailure, result.Errors)
	}
	return result, nil
}

// syncProfile creates or updates the owner profile. A failed create is
// fatal: no dependent call may run without the owner id.
func (e *Executor) syncProfile(ctx context.Context, d *storage.Draft, plan reconcile.Plan, result *Result) error {
	schema := d.Kind.Schema()
	var out reconcile.Outcome

	switch {
	case len(plan.Creates) > 0:
		created := plan.Creates[0]
		obj, err := e.send(ctx, api.Profiles(d.Kind), http.MethodPost, schema, created, false)
		if err != nil {
			e.fail(result, "Could not create "+strings.ToLower(schema.Label), err)
			return fmt.Errorf("%w: creating %s: %w", ErrStateInconsistency, d.Kind, err)
		}
		id := idOf(obj)
		if id == "" {
			e.fail(result, "Could not create "+strings.ToLower(schema.Label), errors.New("the server returned no id"))
			return fmt.Errorf("%w: %s create returned no id", ErrStateInconsistency, d.Kind)
		}
		d.OwnerID = id
		out.Saved = append(out.Saved, saved(schema, created.Key, id, obj))
		result.Created++
		e.notifier.Notify(notify.Success, schema.Label+" created.")

	case len(plan.Updates) > 0:
		if d.OwnerID == "" {
			d.OwnerID = plan.Updates[0].ID
		}
		upd := plan.Updates[0]
		obj, err := e.send(ctx, api.Profile(d.Kind, upd.ID), http.MethodPatch, schema, upd.Resource, true)
		if err != nil {
			e.fail(result, "Could not update "+strings.ToLower(schema.Label), err)
			break
		}
		out.Saved = append(out.Saved, saved(schema, upd.Resource.Key, upd.ID, obj))
		result.Updated++
		e.notifier.Notify(notify.Success, schema.Label+" updated.")
	}

	next, snap := d.ProfileSnapshot.Apply([]model.Resource{d.Profile}, out)
	d.Profile, d.ProfileSnapshot = next[0], snap
	return nil
}

// syncAvailability runs the full replace: every snapshotted record is
// deleted, then every current record is created.
func (e *Executor) syncAvailability(ctx context.Context, d *storage.Draft, plan reconcile.AvailabilityPlan, result *Result) {
	if plan.Empty() {
		return
	}

	var deleted []model.ID
	for _, id := range plan.Deletes {
		e.log.Debug("deleting availability record", zap.String("id", string(id)))
		if _, err := e.caller.Call(ctx, api.AvailabilityRecord(id), http.MethodDelete, nil); err != nil {
			e.fail(result, fmt.Sprintf("Could not remove availability record %s", id), err)
			continue
		}
		deleted = append(deleted, id)
		result.Deleted++
		e.notifier.Notify(notify.Success, fmt.Sprintf("Availability record %s removed.", id))
	}

	var created []model.Record
	for _, rec := range plan.Creates {
		label := rec.Day.Label() + " " + model.TimeRange{Start: rec.Start, End: rec.End}.String()
		e.log.Debug("creating availability record", zap.String("slot", label))
		raw, err := e.caller.Call(ctx, api.Availability(d.Kind, d.OwnerID), http.MethodPost, slots.Body(rec))
		if err != nil {
			e.fail(result, "Could not add availability "+label, err)
			continue
		}
		obj, err := object(raw)
		if err == nil && idOf(obj) == "" {
			err = errors.New("the server returned no id")
		}
		if err != nil {
			e.fail(result, "Could not add availability "+label, err)
			continue
		}
		rec.ID = idOf(obj)
		created = append(created, rec)
		result.Created++
		e.notifier.Notify(notify.Success, "Availability "+label+" added.")
	}

	d.AvailabilitySnapshot = d.AvailabilitySnapshot.Apply(deleted, created)
}

// syncEntries runs deletes, then creates, then updates of one collection
// and returns the repaired collection and its new snapshot.
func (e *Executor) syncEntries(ctx context.Context, owner model.ID, schema model.Schema,
	current []model.Resource, snap reconcile.Snapshot, plan reconcile.Plan, result *Result,
) ([]model.Resource, reconcile.Snapshot) {
	if plan.Empty() {
		return current, snap
	}
	label := strings.ToLower(schema.Label)
	var out reconcile.Outcome

	for _, id := range plan.Deletes {
		prev, _ := snap.Get(id)
		name := describe(schema, prev, id)
		if _, err := e.caller.Call(ctx, api.Entry(schema, id), http.MethodDelete, nil); err != nil {
			e.fail(result, fmt.Sprintf("Could not remove %s %s", label, name), err)
			continue
		}
		out.Deleted = append(out.Deleted, id)
		result.Deleted++
		e.notifier.Notify(notify.Success, fmt.Sprintf("%s %s removed.", schema.Label, name))
	}

	for _, r := range plan.Creates {
		name := describe(schema, r, "")
		obj, err := e.send(ctx, api.Entries(schema, owner), http.MethodPost, schema, r, false)
		if err == nil && idOf(obj) == "" {
			err = errors.New("the server returned no id")
		}
		if err != nil {
			e.fail(result, fmt.Sprintf("Could not add %s %s", label, name), err)
			continue
		}
		out.Saved = append(out.Saved, saved(schema, r.Key, idOf(obj), obj))
		result.Created++
		e.notifier.Notify(notify.Success, fmt.Sprintf("%s %s added.", schema.Label, name))
	}

	for _, u := range plan.Updates {
		name := describe(schema, u.Resource, u.ID)
		obj, err := e.send(ctx, api.Entry(schema, u.ID), http.MethodPatch, schema, u.Resource, true)
		if err != nil {
			e.fail(result, fmt.Sprintf("Could not update %s %s", label, name), err)
			continue
		}
		out.Saved = append(out.Saved, saved(schema, u.Resource.Key, u.ID, obj))
		result.Updated++
		e.notifier.Notify(notify.Success, fmt.Sprintf("%s %s updated.", schema.Label, name))
	}

	return snap.Apply(current, out)
}

// send writes r as JSON, or as a multipart form when it carries a staged
// file. Updates send every declared field so cleared values reach the
// server; creates omit empty ones.
func (e *Executor) send(ctx context.Context, endpoint, method string, schema model.Schema, r model.Resource, all bool) (map[string]json.RawMessage, error) {
	fields := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		if v := r.Fields[f]; v != "" || all {
			fields[f] = v
		}
	}

	var body any = fields
	if r.Attachment.IsLocal() && schema.FileField != "" {
		body = &api.Form{Fields: fields, Files: map[string]string{schema.FileField: r.Attachment.Path}}
	}

	e.log.Debug("sending", zap.String("method", method), zap.String("endpoint", endpoint), zap.Bool("upload", r.Attachment.IsLocal()))
	raw, err := e.caller.Call(ctx, endpoint, method, body)
	if err != nil {
		return nil, err
	}
	return object(raw)
}

func (e *Executor) fail(result *Result, what string, err error) {
	result.Errors++
	e.log.Warn(what, zap.Error(err))
	e.notifier.Notify(notify.Error, what+": "+message(err))
}

// message returns the user-facing text of err.
func message(err error) string {
	var de *api.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

func saved(schema model.Schema, key string, id model.ID, obj map[string]json.RawMessage) reconcile.Saved {
	s := reconcile.Saved{Key: key, ID: id}
	if schema.FileField != "" {
		s.AttachmentURL = text(obj[schema.FileField])
	}
	return s
}

// describe names an entry in notifications by its first non-empty field.
func describe(schema model.Schema, r model.Resource, id model.ID) string {
	for _, f := range schema.Fields {
		if v := r.Field(f); v != "" {
			return fmt.Sprintf("%q", v)
		}
	}
	if id != "" {
		return "#" + string(id)
	}
	return "entry"
}

