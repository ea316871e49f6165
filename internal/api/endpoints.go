package api

import (
	"fmt"

	"github.com/Tiliavir/tutor-hub/internal/model"
)

// Profiles is the collection of an owner kind, used to create a profile.
func Profiles(kind model.OwnerKind) string {
	return kind.Collection() + "/"
}

func Profile(kind model.OwnerKind, id model.ID) string {
	return fmt.Sprintf("%s/%s/", kind.Collection(), id)
}

func Availability(kind model.OwnerKind, owner model.ID) string {
	return fmt.Sprintf("%s/%s/availability/", kind.Collection(), owner)
}

func AvailabilityRecord(id model.ID) string {
	return fmt.Sprintf("availability/%s/", id)
}

// segments maps a sub-resource kind to its URL segment.
var segments = map[string]string{
	model.EducationSchema.Kind:     "education",
	model.QualificationSchema.Kind: "qualifications",
}

// Entries is the collection of a tutor's education or qualification entries.
func Entries(schema model.Schema, owner model.ID) string {
	return fmt.Sprintf("%s/%s/%s/", model.OwnerTutor.Collection(), owner, segments[schema.Kind])
}

// Entry addresses one education or qualification entry.
func Entry(schema model.Schema, id model.ID) string {
	return fmt.Sprintf("%s/%s/", segments[schema.Kind], id)
}
