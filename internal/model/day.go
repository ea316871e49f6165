package model

import (
	"encoding/json"
	"strings"
)

// Day is a weekday code as used by the marketplace backend.
type Day string

const (
	Monday    Day = "mon"
	Tuesday   Day = "tue"
	Wednesday Day = "wed"
	Thursday  Day = "thu"
	Friday    Day = "fri"
	Saturday  Day = "sat"
	Sunday    Day = "sun"
)

// Week lists all day codes in display order.
var Week = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay maps a short or long English day name, in any case, to its code.
func ParseDay(token string) (Day, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "mon", "monday":
		return Monday, true
	case "tue", "tues", "tuesday":
		return Tuesday, true
	case "wed", "wednesday":
		return Wednesday, true
	case "thu", "thur", "thurs", "thursday":
		return Thursday, true
	case "fri", "friday":
		return Friday, true
	case "sat", "saturday":
		return Saturday, true
	case "sun", "sunday":
		return Sunday, true
	}
	return "", false
}

func (d Day) index() int {
	for i, w := range Week {
		if w == d {
			return i
		}
	}
	return len(Week)
}

// Label returns the capitalised short name, e.g. "Mon".
func (d Day) Label() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

// DaySet is a duplicate-free set of days. Insertion order is kept for
// display; it carries no meaning for equality.
type DaySet struct {
	days []Day
}

// NewDaySet builds a set from days, dropping duplicates.
func NewDaySet(days ...Day) DaySet {
	var s DaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// With returns a set that also contains d. The receiver is not modified.
func (s DaySet) With(d Day) DaySet {
	if s.Contains(d) {
		return s
	}
	days := make([]Day, len(s.days), len(s.days)+1)
	copy(days, s.days)
	return DaySet{days: append(days, d)}
}

// Without returns a set that no longer contains d.
func (s DaySet) Without(d Day) DaySet {
	days := make([]Day, 0, len(s.days))
	for _, x := range s.days {
		if x != d {
			days = append(days, x)
		}
	}
	return DaySet{days: days}
}

// Union merges other into s, keeping s's order first.
func (s DaySet) Union(other DaySet) DaySet {
	out := s
	for _, d := range other.days {
		out = out.With(d)
	}
	return out
}

// Contains reports whether d is in the set.
func (s DaySet) Contains(d Day) bool {
	for _, x := range s.days {
		if x == d {
			return true
		}
	}
	return false
}

// Len returns the number of days.
func (s DaySet) Len() int { return len(s.days) }

// Days returns the days in insertion order.
func (s DaySet) Days() []Day {
	out := make([]Day, len(s.days))
	copy(out, s.days)
	return out
}

// Sorted returns the days in week order, Monday first.
func (s DaySet) Sorted() []Day {
	out := make([]Day, 0, len(s.days))
	for _, w := range Week {
		if s.Contains(w) {
			out = append(out, w)
		}
	}
	return out
}

// Equal reports set equality, ignoring order.
func (s DaySet) Equal(o DaySet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, d := range s.days {
		if !o.Contains(d) {
			return false
		}
	}
	return true
}

// String renders the set as "Mon, Wed".
func (s DaySet) String() string {
	labels := make([]string, 0, len(s.days))
	for _, d := range s.Sorted() {
		labels = append(labels, d.Label())
	}
	return strings.Join(labels, ", ")
}

func (s DaySet) MarshalJSON() ([]byte, error) {
	if s.days == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.days)
}

func (s *DaySet) UnmarshalJSON(b []byte) error {
	var days []Day
	if err := json.Unmarshal(b, &days); err != nil {
		return err
	}
	*s = NewDaySet(days...)
	return nil
}
