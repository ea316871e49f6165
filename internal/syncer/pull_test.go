package syncer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/syncer"
)

func TestPull(t *testing.T) {
	b := newBackend()
	b.gets["tutors/42/"] = `{"id": 42, "first_name": "Ada", "last_name": "Lovelace", "subjects": ["math", "physics"], "hourly_rate": 40, "photo": null}`
	b.gets["tutors/42/availability/"] = `[
		{"id": 1, "start_time": "16:00:00", "end_time": "18:00:00", "days_of_week": "mon"},
		{"id": 2, "start_time": "16:00:00", "end_time": "18:00:00", "days": ["wed", "Monday"]},
		{"id": 3, "start_time": "bogus", "end_time": "18:00:00", "days_of_week": "fri"}
	]`
	b.gets["tutors/42/education/"] = `{"count": 1, "results": [
		{"id": "e5", "institution": "MIT", "degree": "BSc", "start_year": 2010, "certificate": "https://files.example/mit.pdf"}
	]}`
	b.gets["tutors/42/qualifications/"] = `[]`

	ex, _ := newExecutor(b, "")
	d, err := ex.Pull(context.Background(), model.OwnerTutor, "42")
	require.NoError(t, err)

	assert.Equal(t, "tutor/42", d.Name())
	assert.Equal(t, model.ID("42"), d.Profile.ID)
	assert.Equal(t, "math, physics", d.Profile.Field("subjects"))
	assert.Equal(t, "40", d.Profile.Field("hourly_rate"))
	assert.False(t, d.Profile.Attachment.IsRemote())

	require.Len(t, d.Availability, 1)
	assert.Equal(t, "Mon, Wed", d.Availability[0].Days.String())
	assert.NotEmpty(t, d.Availability[0].Key)
	assert.Equal(t, []model.ID{"1", "2", "3"}, d.AvailabilitySnapshot.RecordIDs())
	assert.Equal(t, []model.ID{"3"}, d.AvailabilitySnapshot.Unreadable())

	require.Len(t, d.Education, 1)
	assert.Equal(t, model.ID("e5"), d.Education[0].ID)
	assert.Equal(t, "2010", d.Education[0].Field("start_year"))
	assert.Equal(t, "https://files.example/mit.pdf", d.Education[0].Attachment.URL)
	assert.Empty(t, d.Qualifications)

	assert.True(t, syncer.BuildPlans(d).Empty())
}

func TestPullThenReplaceDeletesUnreadableRows(t *testing.T) {
	b := newBackend()
	b.gets["jobs/7/"] = `{"id": 7, "title": "Chemistry help", "subject": "chemistry"}`
	b.gets["jobs/7/availability/"] = `[
		{"id": 1, "start_time": "16:00:00", "end_time": "18:00:00", "days_of_week": "mon"},
		{"id": 2, "start_time": "1600", "end_time": "18:00:00", "days_of_week": "tue"},
		{"id": 3, "start_time": 9, "end_time": "10:00:00", "days_of_week": "wed"}
	]`

	ex, _ := newExecutor(b, "tok")
	d, err := ex.Pull(context.Background(), model.OwnerJob, "7")
	require.NoError(t, err)
	require.Len(t, d.Availability, 1)

	d.Availability = nil
	plan := syncer.BuildPlans(d).Availability
	require.False(t, plan.Empty())
	assert.Equal(t, []model.ID{"1", "3", "2"}, plan.Deletes)

	b.calls = nil
	_, err = ex.Submit(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DELETE availability/1/",
		"DELETE availability/3/",
		"DELETE availability/2/",
	}, b.keys())
	assert.Empty(t, d.AvailabilitySnapshot.RecordIDs())
	assert.True(t, syncer.BuildPlans(d).Empty())
}

func TestPullJobSkipsCredentials(t *testing.T) {
	b := newBackend()
	b.gets["jobs/7/"] = `{"id": 7, "title": "Chemistry help", "subject": "chemistry"}`
	b.gets["jobs/7/availability/"] = `[]`

	ex, _ := newExecutor(b, "")
	d, err := ex.Pull(context.Background(), model.OwnerJob, "7")
	require.NoError(t, err)

	assert.Equal(t, []string{"GET jobs/7/", "GET jobs/7/availability/"}, b.keys())
	assert.Empty(t, d.Availability)
	assert.True(t, syncer.BuildPlans(d).Empty())
}

func TestPullFailure(t *testing.T) {
	b := newBackend()
	b.fail["GET tutors/9/"] = assert.AnError

	ex, _ := newExecutor(b, "")
	_, err := ex.Pull(context.Background(), model.OwnerTutor, "9")
	assert.ErrorIs(t, err, assert.AnError)
}
