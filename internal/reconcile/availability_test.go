package reconcile_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/reconcile"
	"github.com/Tiliavir/tutor-hub/internal/timecalc"
)

func record(id model.ID, start, end string, day model.Day) model.Record {
	return model.Record{ID: id, Start: timecalc.MustParseClock(start), End: timecalc.MustParseClock(end), Day: day}
}

func slot(start, end string, days ...model.Day) model.Slot {
	return model.Slot{Start: timecalc.MustParseClock(start), End: timecalc.MustParseClock(end), Days: model.NewDaySet(days...)}
}

func TestPlanAvailabilityFullReplace(t *testing.T) {
	snap := reconcile.CaptureAvailability([]model.Record{record("11", "16:00", "18:00", model.Monday)})
	current := []model.Slot{slot("16:00", "18:00", model.Monday, model.Wednesday)}

	plan := reconcile.PlanAvailability(current, snap)

	require.True(t, plan.Replace)
	assert.Equal(t, []model.ID{"11"}, plan.Deletes)
	require.Len(t, plan.Creates, 2)
	for _, c := range plan.Creates {
		assert.Empty(t, c.ID)
		assert.Equal(t, "16:00", c.Start.String())
	}
	assert.Equal(t, model.Monday, plan.Creates[0].Day)
	assert.Equal(t, model.Wednesday, plan.Creates[1].Day)
}

func TestPlanAvailabilityUnchanged(t *testing.T) {
	snap := reconcile.CaptureAvailability([]model.Record{
		record("1", "16:00", "18:00", model.Monday),
		record("2", "16:00", "18:00", model.Wednesday),
		record("3", "09:00", "10:00", model.Friday),
	})

	tests := []struct {
		name    string
		current []model.Slot
		changed bool
	}{
		{"same", []model.Slot{slot("16:00", "18:00", model.Monday, model.Wednesday), slot("09:00", "10:00", model.Friday)}, false},
		{"day order is irrelevant", []model.Slot{slot("16:00", "18:00", model.Wednesday, model.Monday), slot("09:00", "10:00", model.Friday)}, false},
		{"slot order matters", []model.Slot{slot("09:00", "10:00", model.Friday), slot("16:00", "18:00", model.Monday, model.Wednesday)}, true},
		{"removed slot", []model.Slot{slot("16:00", "18:00", model.Monday, model.Wednesday)}, true},
		{"changed end", []model.Slot{slot("16:00", "19:00", model.Monday, model.Wednesday), slot("09:00", "10:00", model.Friday)}, true},
		{"cleared", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.changed, reconcile.AvailabilityChanged(tt.current, snap))
			plan := reconcile.PlanAvailability(tt.current, snap)
			assert.Equal(t, !tt.changed, plan.Empty())
			if tt.changed {
				assert.Equal(t, []model.ID{"1", "2", "3"}, plan.Deletes)
			}
		})
	}
}

func TestPlanAvailabilityMergesSharedRanges(t *testing.T) {
	snap := reconcile.CaptureAvailability([]model.Record{
		record("1", "10:00", "12:00", model.Monday),
		record("2", "10:00", "12:00", model.Wednesday),
	})

	split := []model.Slot{slot("10:00", "12:00", model.Monday), slot("10:00", "12:00", model.Wednesday)}
	assert.False(t, reconcile.AvailabilityChanged(split, snap))
	assert.True(t, reconcile.PlanAvailability(split, snap).Empty())

	overlapping := []model.Slot{slot("10:00", "12:00", model.Monday), slot("10:00", "12:00", model.Monday, model.Friday)}
	plan := reconcile.PlanAvailability(overlapping, snap)
	require.True(t, plan.Replace)
	require.Len(t, plan.Creates, 2)
	assert.Equal(t, model.Monday, plan.Creates[0].Day)
	assert.Equal(t, model.Friday, plan.Creates[1].Day)
}

func TestUnreadableRowsAreDeletedOnReplace(t *testing.T) {
	snap := reconcile.CaptureAvailability([]model.Record{record("1", "16:00", "18:00", model.Monday)}, "7", "1")

	assert.Equal(t, []model.ID{"1", "7"}, snap.RecordIDs())
	assert.True(t, reconcile.PlanAvailability(snap.Slots(), snap).Empty())

	plan := reconcile.PlanAvailability(nil, snap)
	assert.Equal(t, []model.ID{"1", "7"}, plan.Deletes)

	next := snap.Apply([]model.ID{"1"}, nil)
	assert.Equal(t, []model.ID{"7"}, next.Unreadable())
	next = next.Apply([]model.ID{"7"}, nil)
	assert.Empty(t, next.RecordIDs())
}

func TestAvailabilityRecordIDsDeduplicated(t *testing.T) {
	snap := reconcile.CaptureAvailability([]model.Record{
		record("1", "16:00", "18:00", model.Monday),
		record("1", "16:00", "18:00", model.Wednesday),
		record("", "09:00", "10:00", model.Friday),
	})
	assert.Equal(t, []model.ID{"1"}, snap.RecordIDs())
}

func TestAvailabilityApply(t *testing.T) {
	snap := reconcile.CaptureAvailability([]model.Record{
		record("1", "16:00", "18:00", model.Monday),
		record("2", "09:00", "10:00", model.Friday),
	})

	// delete of 2 failed
	next := snap.Apply([]model.ID{"1"}, []model.Record{
		record("5", "16:00", "18:00", model.Monday),
		record("6", "16:00", "18:00", model.Wednesday),
	})

	assert.Equal(t, []model.ID{"2", "5", "6"}, next.RecordIDs())
	assert.Len(t, snap.Records(), 2)
	assert.True(t, reconcile.AvailabilityChanged([]model.Slot{slot("16:00", "18:00", model.Monday, model.Wednesday)}, next))
}

func TestAvailabilitySnapshotJSON(t *testing.T) {
	b, err := json.Marshal(reconcile.AvailabilitySnapshot{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"records": []}`, string(b))

	snap := reconcile.CaptureAvailability([]model.Record{record("4", "08:00", "09:30", model.Tuesday)}, "9")
	b, err = json.Marshal(snap)
	require.NoError(t, err)

	var back reconcile.AvailabilitySnapshot
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, snap.Records(), back.Records())
	assert.Equal(t, []model.ID{"9"}, back.Unreadable())

	var legacy reconcile.AvailabilitySnapshot
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"4","start":"08:00","end":"09:30","day":"tue"}]`), &legacy))
	assert.Equal(t, []model.ID{"4"}, legacy.RecordIDs())
}
