package model

import (
	"encoding/json"
	"strings"

	"github.com/Tiliavir/tutor-hub/internal/timecalc"
)

// ID is a server-assigned identifier. The backend emits both numeric and
// string ids; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = ID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// TimeRange is a wall-clock window within a single day.
type TimeRange struct {
	Start timecalc.Clock `json:"start"`
	End   timecalc.Clock `json:"end"`
}

// Valid reports whether End is strictly after Start.
func (r TimeRange) Valid() bool {
	return r.Start.Before(r.End)
}

func (r TimeRange) String() string {
	return r.Start.String() + "–" + r.End.String()
}

// Slot is the grouped availability form edited by the user: one time range
// and every day it recurs on. Slots carry no server id; Key is a local
// handle for editing commands.
type Slot struct {
	Key   string         `json:"key,omitempty"`
	Start timecalc.Clock `json:"start"`
	End   timecalc.Clock `json:"end"`
	Days  DaySet         `json:"days"`
}

// Range returns the slot's time range.
func (s Slot) Range() TimeRange {
	return TimeRange{Start: s.Start, End: s.End}
}

// Record is one flat server availability row: a time range on a single day.
type Record struct {
	ID    ID             `json:"id,omitempty"`
	Start timecalc.Clock `json:"start"`
	End   timecalc.Clock `json:"end"`
	Day   Day            `json:"day"`
}
