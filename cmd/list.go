package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tutor-hub/internal/storage"
	"github.com/Tiliavir/tutor-hub/internal/syncer"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List local drafts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	drafts, err := storage.ListDrafts(cfg.DataDir)
	if err != nil {
		return err
	}
	printDrafts(cmd.OutOrStdout(), drafts)
	return nil
}

// printDrafts prints one line per draft with its pending operation count.
func printDrafts(w io.Writer, drafts []*storage.Draft) {
	if len(drafts) == 0 {
		fmt.Fprintln(w, "No drafts found. Start with 'thub pull tutor <id>' or 'thub new tutor'.")
		return
	}
	for _, d := range drafts {
		plans := syncer.BuildPlans(d)
		state := "in sync"
		if n := pendingCount(plans); n > 0 {
			state = fmt.Sprintf("%d pending", n)
		}
		if d.InFlight {
			state += ", push in progress"
		}
		fmt.Fprintf(w, "%-24s %-28s %s  (%s)\n", d.Name(), ownerTitle(d), d.UpdatedAt.Local().Format("2006-01-02 15:04"), state)
	}
}

func pendingCount(p syncer.Plans) int {
	n := p.Profile.Len() + p.Education.Len() + p.Qualifications.Len()
	if !p.Availability.Empty() {
		n++
	}
	return n
}

// ownerTitle is a display name for the draft's owner.
func ownerTitle(d *storage.Draft) string {
	if t := d.Profile.Field("title"); t != "" {
		return t
	}
	name := d.Profile.Field("first_name")
	if last := d.Profile.Field("last_name"); last != "" {
		if name != "" {
			name += " "
		}
		name += last
	}
	if name == "" {
		return "(unnamed)"
	}
	return name
}
