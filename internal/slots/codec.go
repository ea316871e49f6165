package slots

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/timecalc"
)

// WireRecord is an availability row as the backend returns it. Days may be
// sent as a single code in days_of_week, as a list in days, or both.
type WireRecord struct {
	ID         model.ID `json:"id"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time"`
	DaysOfWeek dayField `json:"days_of_week,omitempty"`
	Days       dayField `json:"days,omitempty"`
}

// dayField accepts a bare string, a list of strings, or null.
type dayField []string

func (f *dayField) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*f = nil
		return nil
	case strings.HasPrefix(raw, "["):
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*f = list
		return nil
	default:
		var single string
		if err := json.Unmarshal(b, &single); err != nil {
			return fmt.Errorf("day field: %w", err)
		}
		*f = dayField{single}
		return nil
	}
}

// Normalize turns server rows into flat records, one per (range, day) pair.
// Both day shapes are merged into one duplicate-free set. Rows with a
// malformed time, or without a single known weekday, are skipped with a
// warning so the rest of the schedule still renders. The ids of skipped rows
// are returned separately: the rows still exist on the server and a full
// replace has to delete them.
func Normalize(rows []WireRecord, log *zap.Logger) (records []model.Record, skipped []model.ID) {
	if log == nil {
		log = zap.NewNop()
	}
	skip := func(i int, row WireRecord, msg string, fields ...zap.Field) {
		log.Warn(msg, append([]zap.Field{zap.Int("index", i), zap.String("id", string(row.ID))}, fields...)...)
		if row.ID != "" {
			skipped = append(skipped, row.ID)
		}
	}
	for i, row := range rows {
		start, err := timecalc.ParseClock(row.StartTime)
		if err != nil {
			skip(i, row, "skipping availability record", zap.Error(err))
			continue
		}
		end, err := timecalc.ParseClock(row.EndTime)
		if err != nil {
			skip(i, row, "skipping availability record", zap.Error(err))
			continue
		}

		var days model.DaySet
		for _, tok := range append(append([]string{}, row.DaysOfWeek...), row.Days...) {
			d, ok := model.ParseDay(tok)
			if !ok {
				log.Warn("ignoring unknown day", zap.Int("index", i), zap.String("day", tok))
				continue
			}
			days = days.With(d)
		}
		if days.Len() == 0 {
			skip(i, row, "skipping availability record without days")
			continue
		}

		for _, d := range days.Days() {
			records = append(records, model.Record{ID: row.ID, Start: start, End: end, Day: d})
		}
	}
	return records, skipped
}

// Group collapses flat records into grouped slots keyed by (start, end).
// Slots appear in the order their range was first seen. Record ids are
// dropped.
func Group(records []model.Record) []model.Slot {
	index := map[string]int{}
	var out []model.Slot
	for _, r := range records {
		key := r.Start.String() + "-" + r.End.String()
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, model.Slot{Start: r.Start, End: r.End, Days: model.NewDaySet(r.Day)})
			continue
		}
		out[i].Days = out[i].Days.With(r.Day)
	}
	return out
}

// Decode converts the server's flat rows into the grouped editing form.
func Decode(rows []WireRecord, log *zap.Logger) []model.Slot {
	records, _ := Normalize(rows, log)
	return Group(records)
}

// Encode expands grouped slots into one flat record per day. No ids are set;
// the server assigns them on create.
func Encode(slots []model.Slot) []model.Record {
	var out []model.Record
	for _, s := range slots {
		for _, d := range s.Days.Days() {
			out = append(out, model.Record{Start: s.Start, End: s.End, Day: d})
		}
	}
	return out
}

// Merge folds slots that share a range into one, so a (range, day) pair
// occurs at most once. Slot order follows the first occurrence of each
// range and keys are dropped.
func Merge(slots []model.Slot) []model.Slot {
	return Group(Encode(slots))
}

// Body is the create payload for one flat record.
func Body(r model.Record) map[string]string {
	return map[string]string{
		"start_time":   r.Start.String(),
		"end_time":     r.End.String(),
		"days_of_week": string(r.Day),
	}
}

// Signature identifies a slot for duplicate detection: its range plus its
// days in week order.
func Signature(s model.Slot) string {
	days := make([]string, 0, s.Days.Len())
	for _, d := range s.Days.Sorted() {
		days = append(days, string(d))
	}
	return s.Start.String() + "-" + s.End.String() + "|" + strings.Join(days, ",")
}
