package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/reconcile"
	"github.com/Tiliavir/tutor-hub/internal/storage"
	"github.com/Tiliavir/tutor-hub/internal/syncer"
)

var statusCmd = &cobra.Command{
	Use:   "status [draft]",
	Short: "Show what a push would change",
	Long: `status compares a draft with the state last confirmed by the server and
prints the operations a push would run. Without an argument every draft is
listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runList(cmd, args)
	}
	d, err := storage.ResolveDraft(cfg.DataDir, args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if d.InFlight {
		fmt.Fprintln(w, "A push is in progress for this draft.")
	}
	printPlans(w, d, syncer.BuildPlans(d))
	if err := syncer.Validate(d, syncer.Limits{Education: cfg.Limits.Education, Qualification: cfg.Limits.Qualification}); err != nil {
		fmt.Fprintf(w, "\nCannot push yet: %v\n", err)
	}
	return nil
}

// printPlans prints every planned operation of d, grouped by resource type.
func printPlans(w io.Writer, d *storage.Draft, p syncer.Plans) {
	fmt.Fprintf(w, "%s  %s\n", d.Name(), ownerTitle(d))
	if p.Empty() {
		fmt.Fprintln(w, "  No changes.")
		return
	}

	schema := d.Kind.Schema()
	for _, c := range p.Profile.Creates {
		fmt.Fprintf(w, "  + create %s %s\n", lowerLabel(schema), entryTitle(schema, c))
	}
	for _, u := range p.Profile.Updates {
		fmt.Fprintf(w, "  ~ update %s #%s\n", lowerLabel(schema), u.ID)
	}

	if !p.Availability.Empty() {
		fmt.Fprintf(w, "  ~ replace availability: delete %d records, create %d records\n",
			len(p.Availability.Deletes), len(p.Availability.Creates))
		for _, r := range p.Availability.Creates {
			fmt.Fprintf(w, "      %s %s\n", r.Day.Label(), model.TimeRange{Start: r.Start, End: r.End})
		}
	}

	printEntryPlan(w, model.EducationSchema, p.Education, d.EducationSnapshot)
	printEntryPlan(w, model.QualificationSchema, p.Qualifications, d.QualificationSnapshot)
}

func printEntryPlan(w io.Writer, schema model.Schema, p reconcile.Plan, snap reconcile.Snapshot) {
	label := lowerLabel(schema)
	for _, id := range p.Deletes {
		prev, _ := snap.Get(id)
		fmt.Fprintf(w, "  - delete %s #%s %s\n", label, id, entryTitle(schema, prev))
	}
	for _, c := range p.Creates {
		fmt.Fprintf(w, "  + create %s %s%s\n", label, entryTitle(schema, c), uploadNote(c))
	}
	for _, u := range p.Updates {
		fmt.Fprintf(w, "  ~ update %s #%s %s%s\n", label, u.ID, entryTitle(schema, u.Resource), uploadNote(u.Resource))
	}
}

func uploadNote(r model.Resource) string {
	if r.Attachment.IsLocal() {
		return " (uploads " + r.Attachment.String() + ")"
	}
	return ""
}

// entryTitle is the first non-empty field of r, quoted.
func entryTitle(schema model.Schema, r model.Resource) string {
	for _, f := range schema.Fields {
		if v := r.Field(f); v != "" {
			return fmt.Sprintf("%q", v)
		}
	}
	return ""
}
