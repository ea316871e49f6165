package syncer

import (
	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/reconcile"
	"github.com/Tiliavir/tutor-hub/internal/slots"
	"github.com/Tiliavir/tutor-hub/internal/storage"
)

// Plans holds one plan per resource type of a draft.
type Plans struct {
	Profile        reconcile.Plan
	Availability   reconcile.AvailabilityPlan
	Education      reconcile.Plan
	Qualifications reconcile.Plan
}

// BuildPlans diffs every collection of d against its snapshot. Profiles are
// never deleted, so the profile plan only creates or updates.
func BuildPlans(d *storage.Draft) Plans {
	p := Plans{
		Profile:      reconcile.Diff(d.Kind.Schema().Fields, []model.Resource{d.Profile}, d.ProfileSnapshot),
		Availability: reconcile.PlanAvailability(d.Availability, d.AvailabilitySnapshot),
	}
	p.Profile.Deletes = nil
	if d.Kind.HasCredentials() {
		p.Education = reconcile.Diff(model.EducationSchema.Fields, d.Education, d.EducationSnapshot)
		p.Qualifications = reconcile.Diff(model.QualificationSchema.Fields, d.Qualifications, d.QualificationSnapshot)
	}
	return p
}

// Empty reports whether the draft matches the server.
func (p Plans) Empty() bool {
	return p.Profile.Empty() && p.Availability.Empty() && p.Education.Empty() && p.Qualifications.Empty()
}

// Validate runs every local check that must pass before anything is sent
// and returns the first failure as a *model.ValidationError.
func Validate(d *storage.Draft, limits Limits) error {
	if err := model.ValidateResource(d.Kind.Schema(), d.Profile, 0); err != nil {
		return err
	}
	if err := slots.Validate(d.Availability).Err(); err != nil {
		return err
	}
	if !d.Kind.HasCredentials() {
		return nil
	}
	if err := model.ValidateCollection(model.EducationSchema, d.Education, limits.Education); err != nil {
		return err
	}
	return model.ValidateCollection(model.QualificationSchema, d.Qualifications, limits.Qualification)
}
