package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/tutor-hub/internal/model"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		input string
		want  model.Day
		ok    bool
	}{
		{"mon", model.Monday, true},
		{"Monday", model.Monday, true},
		{"TUES", model.Tuesday, true},
		{" thu ", model.Thursday, true},
		{"sunday", model.Sunday, true},
		{"funday", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := model.ParseDay(tt.input)
		assert.Equal(t, tt.ok, ok, "ParseDay(%q)", tt.input)
		assert.Equal(t, tt.want, got, "ParseDay(%q)", tt.input)
	}
}

func TestDaySet(t *testing.T) {
	s := model.NewDaySet(model.Wednesday, model.Monday, model.Wednesday)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []model.Day{model.Wednesday, model.Monday}, s.Days())
	assert.Equal(t, []model.Day{model.Monday, model.Wednesday}, s.Sorted())
	assert.Equal(t, "Mon, Wed", s.String())

	other := model.NewDaySet(model.Monday, model.Wednesday)
	assert.True(t, s.Equal(other))
	assert.False(t, s.Equal(other.With(model.Friday)))

	// With must not leak into the original set.
	base := model.NewDaySet(model.Monday)
	a := base.With(model.Tuesday)
	b := base.With(model.Friday)
	assert.Equal(t, []model.Day{model.Monday, model.Tuesday}, a.Days())
	assert.Equal(t, []model.Day{model.Monday, model.Friday}, b.Days())
	assert.Equal(t, 1, base.Len())

	assert.Equal(t, []model.Day{model.Monday}, a.Without(model.Tuesday).Days())
	assert.Equal(t, []model.Day{model.Monday, model.Tuesday, model.Friday}, a.Union(b).Days())
}

func TestDaySetJSON(t *testing.T) {
	data, err := json.Marshal(model.DaySet{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	var s model.DaySet
	require.NoError(t, json.Unmarshal([]byte(`["fri","mon","fri"]`), &s))
	assert.Equal(t, []model.Day{model.Friday, model.Monday}, s.Days())
}

func TestIDUnmarshal(t *testing.T) {
	var rec struct {
		ID model.ID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42}`), &rec))
	assert.Equal(t, model.ID("42"), rec.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "a1b2"}`), &rec))
	assert.Equal(t, model.ID("a1b2"), rec.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": null}`), &rec))
	assert.Equal(t, model.ID(""), rec.ID)
}

func TestResourceClone(t *testing.T) {
	r := model.Resource{ID: "1", Fields: map[string]string{"degree": "BSc"}}
	c := r.Clone()
	c.Fields["degree"] = "MSc"
	assert.Equal(t, "BSc", r.Field("degree"))
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "Field of study", model.FieldLabel("field_of_study"))
	assert.Equal(t, "Start time", model.FieldLabel("start_time"))
	assert.Equal(t, "Institution", model.FieldLabel("institution"))
	assert.Equal(t, "", model.FieldLabel("_"))
}

func TestParseOwnerKind(t *testing.T) {
	k, err := model.ParseOwnerKind("tutors")
	require.NoError(t, err)
	assert.Equal(t, model.OwnerTutor, k)
	assert.True(t, k.HasCredentials())
	assert.Equal(t, "tutors", k.Collection())

	k, err = model.ParseOwnerKind("Job")
	require.NoError(t, err)
	assert.Equal(t, model.OwnerJob, k)
	assert.False(t, k.HasCredentials())
	assert.Equal(t, model.JobSchema.Kind, k.Schema().Kind)

	_, err = model.ParseOwnerKind("school")
	assert.Error(t, err)
}

func TestValidateResource(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{"valid", map[string]string{"institution": "MIT", "degree": "BSc", "start_year": "2015", "end_year": "2019"}, ""},
		{"missing institution", map[string]string{"degree": "BSc"}, "Education 1: Institution is required."},
		{"non numeric year", map[string]string{"institution": "MIT", "degree": "BSc", "start_year": "twenty"}, "Education 1: Start year must be a number."},
		{"short year", map[string]string{"institution": "MIT", "degree": "BSc", "end_year": "19"}, "Education 1: End year must be 4 digits."},
		{"inverted years", map[string]string{"institution": "MIT", "degree": "BSc", "start_year": "2019", "end_year": "2015"}, "Education 1: End year must not be before start year."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidateResource(model.EducationSchema, model.Resource{Fields: tt.fields}, 1)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Message)
		})
	}
}

func TestValidateCollectionLimit(t *testing.T) {
	entry := model.Resource{Fields: map[string]string{"institution": "X", "degree": "BSc"}}
	items := []model.Resource{entry, entry, entry, entry}

	err := model.ValidateCollection(model.EducationSchema, items, 3)
	require.Error(t, err)
	assert.Equal(t, "You can add at most 3 education entries.", err.Error())

	assert.NoError(t, model.ValidateCollection(model.EducationSchema, items, 0))
	assert.NoError(t, model.ValidateCollection(model.EducationSchema, items[:3], 3))
}

func TestValidateProfilePhone(t *testing.T) {
	r := model.Resource{Fields: map[string]string{"first_name": "Ada", "last_name": "L", "phone": "12345"}}
	err := model.ValidateResource(model.TutorSchema, r, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Phone must be a phone number")

	r.Fields["phone"] = "+15551234567"
	assert.NoError(t, model.ValidateResource(model.TutorSchema, r, 0))
}
