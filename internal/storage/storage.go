// Package storage keeps local drafts: one JSON file per owner holding the
// edited collections and the snapshots they are reconciled against.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/reconcile"
)

var (
	// ErrDraftNotFound is returned when no draft file exists for a reference.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrInFlight is returned when editing a draft whose push has not finished.
	ErrInFlight = errors.New("a submit is in progress for this draft; wait for it to finish or run 'thub push --force'")
)

// BaseDir returns the default data directory (~/.thub).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".thub"), nil
}

// Draft is the local editing state of one owner.
type Draft struct {
	Kind    model.OwnerKind `json:"kind"`
	OwnerID model.ID        `json:"owner_id,omitempty"`
	LocalID string          `json:"local_id"`

	Profile         model.Resource     `json:"profile"`
	ProfileSnapshot reconcile.Snapshot `json:"profile_snapshot"`

	Availability         []model.Slot                   `json:"availability"`
	AvailabilitySnapshot reconcile.AvailabilitySnapshot `json:"availability_snapshot"`

	Education         []model.Resource   `json:"education"`
	EducationSnapshot reconcile.Snapshot `json:"education_snapshot"`

	Qualifications        []model.Resource   `json:"qualifications"`
	QualificationSnapshot reconcile.Snapshot `json:"qualification_snapshot"`

	InFlight  bool      `json:"in_flight"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDraft starts a draft for an owner that does not exist server-side yet.
func NewDraft(kind model.OwnerKind) *Draft {
	return &Draft{
		Kind:    kind,
		LocalID: uuid.NewString(),
		Profile: model.Resource{Key: NewKey(), Fields: map[string]string{}},
	}
}

// NewKey returns a fresh local handle for a slot or resource.
func NewKey() string {
	return uuid.NewString()
}

// Ref is the short reference used on the command line: the owner id, or
// "new-<prefix>" while the owner is not created yet.
func (d *Draft) Ref() string {
	if d.OwnerID != "" {
		return string(d.OwnerID)
	}
	return "new-" + shortKey(d.LocalID)
}

// Name is the kind-qualified reference, e.g. "tutor/42".
func (d *Draft) Name() string {
	return string(d.Kind) + "/" + d.Ref()
}

// CheckEditable refuses edits while a push is running.
func (d *Draft) CheckEditable() error {
	if d.InFlight {
		return ErrInFlight
	}
	return nil
}

// EnsureKeys assigns a local key to every slot and resource that lacks one.
func (d *Draft) EnsureKeys() {
	if d.Profile.Key == "" {
		d.Profile.Key = NewKey()
	}
	for i := range d.Availability {
		if d.Availability[i].Key == "" {
			d.Availability[i].Key = NewKey()
		}
	}
	for i := range d.Education {
		if d.Education[i].Key == "" {
			d.Education[i].Key = NewKey()
		}
	}
	for i := range d.Qualifications {
		if d.Qualifications[i].Key == "" {
			d.Qualifications[i].Key = NewKey()
		}
	}
}

// Entries returns a pointer to the collection described by schema.
func (d *Draft) Entries(schema model.Schema) *[]model.Resource {
	if schema.Kind == model.QualificationSchema.Kind {
		return &d.Qualifications
	}
	return &d.Education
}

// shortKey is the 8-character prefix shown for local keys.
func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}

// ShortKey exposes the displayed prefix of a local key.
func ShortKey(key string) string { return shortKey(key) }

// draftsDir returns the directory holding draft files.
func draftsDir(base string) string {
	return filepath.Join(base, "drafts")
}

// draftPath returns the path of the draft file for kind and ref.
func draftPath(base string, kind model.OwnerKind, ref string) string {
	return filepath.Join(draftsDir(base), string(kind)+"-"+ref+".json")
}

// LoadDraft loads the draft for kind and ref. A corrupt file is backed up
// and reported.
func LoadDraft(base string, kind model.OwnerKind, ref string) (*Draft, error) {
	path := draftPath(base, kind, ref)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s/%s (run 'thub pull %s %s' first)", ErrDraftNotFound, kind, ref, kind, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return nil, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	d.EnsureKeys()
	return &d, nil
}

// SaveDraft atomically writes d under its current reference.
func SaveDraft(base string, d *Draft) error {
	path := draftPath(base, d.Kind, d.Ref())
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	d.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// DeleteDraft removes the draft file for kind and ref.
func DeleteDraft(base string, kind model.OwnerKind, ref string) error {
	path := draftPath(base, kind, ref)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", ErrDraftNotFound, kind, ref)
		}
		return fmt.Errorf("storage error removing %s: %w", path, err)
	}
	return nil
}

// ListDrafts loads every draft, most recently updated first.
func ListDrafts(base string) ([]*Draft, error) {
	entries, err := os.ReadDir(draftsDir(base))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error listing drafts: %w", err)
	}

	var drafts []*Draft
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		kindStr, ref, ok := strings.Cut(strings.TrimSuffix(name, ".json"), "-")
		if !ok {
			continue
		}
		kind, err := model.ParseOwnerKind(kindStr)
		if err != nil {
			continue
		}
		d, err := LoadDraft(base, kind, ref)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	sort.SliceStable(drafts, func(i, j int) bool {
		return drafts[i].UpdatedAt.After(drafts[j].UpdatedAt)
	})
	return drafts, nil
}

// ResolveDraft finds a draft by "kind/ref". For unsaved owners any unique
// prefix of the local id is accepted after "new-".
func ResolveDraft(base, name string) (*Draft, error) {
	kindStr, ref, ok := strings.Cut(name, "/")
	if !ok || ref == "" {
		return nil, fmt.Errorf("invalid draft reference %q (want <kind>/<id>, e.g. tutor/42)", name)
	}
	kind, err := model.ParseOwnerKind(kindStr)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(ref, "new-") {
		return LoadDraft(base, kind, ref)
	}

	prefix := strings.TrimPrefix(ref, "new-")
	drafts, err := ListDrafts(base)
	if err != nil {
		return nil, err
	}
	var match *Draft
	for _, d := range drafts {
		if d.Kind != kind || d.OwnerID != "" || !strings.HasPrefix(d.LocalID, prefix) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("draft reference %q is ambiguous", name)
		}
		match = d
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, name)
	}
	return match, nil
}
