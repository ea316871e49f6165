package slots

import (
	"fmt"

	"github.com/Tiliavir/tutor-hub/internal/model"
)

// Messages shown for the first failing check.
const (
	msgEndAfterStart = "Schedule %d: end time must be after start time."
	msgNoDays        = "Schedule %d: select at least one day."
	msgDuplicate     = "Duplicate availability slots are not allowed."
)

// Result is the outcome of Validate. Errors holds at most one message: the
// user is shown one problem at a time.
type Result struct {
	Valid  bool
	Errors []string
}

// Err returns the first error as a *model.ValidationError, or nil.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &model.ValidationError{Message: r.Errors[0]}
}

// Validate checks grouped slots before submit: every range must end after
// it starts, every slot needs a day, and no two slots may share a
// signature. Checks run in that order and stop at the first failure.
func Validate(slots []model.Slot) Result {
	for i, s := range slots {
		if !s.Range().Valid() {
			return invalid(fmt.Sprintf(msgEndAfterStart, i+1))
		}
	}
	for i, s := range slots {
		if s.Days.Len() == 0 {
			return invalid(fmt.Sprintf(msgNoDays, i+1))
		}
	}
	seen := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		sig := Signature(s)
		if _, dup := seen[sig]; dup {
			return invalid(msgDuplicate)
		}
		seen[sig] = struct{}{}
	}
	return Result{Valid: true}
}

func invalid(msg string) Result {
	return Result{Valid: false, Errors: []string{msg}}
}
