package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tutor-hub/internal/storage"
	"github.com/Tiliavir/tutor-hub/internal/syncer"
)

var (
	pushDryRun bool
	pushForce  bool
)

var pushCmd = &cobra.Command{
	Use:   "push <draft>",
	Short: "Send the changes of a draft to the server",
	Long: `push validates the draft, then creates, updates and deletes exactly what
changed since the last pull or push. Operations run one at a time; a failed
operation is reported and the rest still run. Run push again to retry what
failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func init() {
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Print planned operations without sending them")
	pushCmd.Flags().BoolVar(&pushForce, "force", false, "Push even if an earlier push did not finish")
}

func runPush(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	d, err := storage.ResolveDraft(cfg.DataDir, args[0])
	if err != nil {
		return err
	}
	if d.InFlight && !pushForce {
		return storage.ErrInFlight
	}

	if pushDryRun {
		printPlans(out, d, syncer.BuildPlans(d))
		return nil
	}

	ctx := context.Background()
	ex, err := newExecutor(ctx, out)
	if err != nil {
		return err
	}

	oldRef := d.Ref()
	d.InFlight = true
	if err := storage.SaveDraft(cfg.DataDir, d); err != nil {
		return err
	}

	fmt.Fprintf(out, "Pushing %s...\n", d.Name())
	result, submitErr := ex.Submit(ctx, d)

	d.InFlight = false
	if err := storage.SaveDraft(cfg.DataDir, d); err != nil {
		return errors.Join(submitErr, err)
	}
	if d.Ref() != oldRef {
		if err := storage.DeleteDraft(cfg.DataDir, d.Kind, oldRef); err != nil {
			log.Sugar().Warnf("could not remove old draft file: %v", err)
		}
		fmt.Fprintf(out, "Draft is now %s.\n", d.Name())
	}

	if result != (syncer.Result{}) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Summary:")
		fmt.Fprintf(out, "  %d created\n", result.Created)
		fmt.Fprintf(out, "  %d updated\n", result.Updated)
		fmt.Fprintf(out, "  %d deleted\n", result.Deleted)
		if result.Failed() {
			fmt.Fprintf(out, "  %d failed - fix the problems above and run 'thub push %s' again\n", result.Errors, d.Name())
		}
	}
	if submitErr != nil {
		return shownError{submitErr}
	}
	return nil
}
