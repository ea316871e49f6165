package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Schema declares the tracked fields of one resource kind, the validator
// rules applied before submit, and the multipart field used for its file.
type Schema struct {
	Kind      string
	Label     string
	Fields    []string
	Rules     map[string]string
	FileField string
}

var (
	EducationSchema = Schema{
		Kind:   "education",
		Label:  "Education",
		Fields: []string{"institution", "degree", "field_of_study", "start_year", "end_year"},
		Rules: map[string]string{
			"institution": "required,max=200",
			"degree":      "required,max=100",
			"start_year":  "omitempty,numeric,len=4",
			"end_year":    "omitempty,numeric,len=4",
		},
		FileField: "certificate",
	}

	QualificationSchema = Schema{
		Kind:   "qualification",
		Label:  "Qualification",
		Fields: []string{"title", "issuer", "year"},
		Rules: map[string]string{
			"title":  "required,max=200",
			"issuer": "max=200",
			"year":   "omitempty,numeric,len=4",
		},
		FileField: "document",
	}

	TutorSchema = Schema{
		Kind:   "tutor",
		Label:  "Profile",
		Fields: []string{"first_name", "last_name", "bio", "subjects", "hourly_rate", "phone"},
		Rules: map[string]string{
			"first_name":  "required,max=100",
			"last_name":   "required,max=100",
			"hourly_rate": "omitempty,numeric",
			"phone":       "omitempty,e164",
		},
		FileField: "photo",
	}

	JobSchema = Schema{
		Kind:   "job",
		Label:  "Job",
		Fields: []string{"title", "description", "subject", "location", "budget"},
		Rules: map[string]string{
			"title":   "required,max=200",
			"subject": "required",
			"budget":  "omitempty,numeric",
		},
	}
)

// Has reports whether name is a declared field.
func (s Schema) Has(name string) bool {
	for _, f := range s.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// OwnerKind distinguishes the two kinds of availability owners.
type OwnerKind string

const (
	OwnerTutor OwnerKind = "tutor"
	OwnerJob   OwnerKind = "job"
)

// ParseOwnerKind accepts "tutor"/"tutors" and "job"/"jobs".
func ParseOwnerKind(s string) (OwnerKind, error) {
	switch strings.ToLower(strings.TrimSuffix(s, "s")) {
	case "tutor":
		return OwnerTutor, nil
	case "job":
		return OwnerJob, nil
	}
	return "", fmt.Errorf("unknown owner kind %q (want tutor or job)", s)
}

// Schema returns the profile schema of the owner kind.
func (k OwnerKind) Schema() Schema {
	if k == OwnerJob {
		return JobSchema
	}
	return TutorSchema
}

// HasCredentials reports whether the owner carries education and
// qualification entries. Job posts only have availability.
func (k OwnerKind) HasCredentials() bool {
	return k == OwnerTutor
}

// Collection is the plural path segment, e.g. "tutors".
func (k OwnerKind) Collection() string {
	return string(k) + "s"
}

// FieldLabel turns a server field name into a sentence-case label:
// "field_of_study" becomes "Field of study".
func FieldLabel(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	if len(words) == 0 {
		return ""
	}
	words[0] = cases.Title(language.English).String(words[0])
	return strings.Join(words, " ")
}
