package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/storage"
	"github.com/Tiliavir/tutor-hub/internal/syncer"
)

var (
	pullForce bool
	newFields []string
)

var pullCmd = &cobra.Command{
	Use:   "pull <tutor|job> <id>",
	Short: "Load a profile from the server into a local draft",
	Args:  cobra.ExactArgs(2),
	RunE:  runPull,
}

var newCmd = &cobra.Command{
	Use:   "new <tutor|job>",
	Short: "Start a draft for a profile that does not exist yet",
	Args:  cobra.ExactArgs(1),
	RunE:  runNew,
}

var discardCmd = &cobra.Command{
	Use:   "discard <draft>",
	Short: "Delete a local draft without pushing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiscard,
}

func init() {
	pullCmd.Flags().BoolVar(&pullForce, "force", false, "Overwrite a draft that has unpushed changes")
	newCmd.Flags().StringArrayVar(&newFields, "field", nil, "Profile field as name=value (repeatable)")
}

func runPull(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseOwnerKind(args[0])
	if err != nil {
		return err
	}
	id := model.ID(args[1])

	existing, err := storage.LoadDraft(cfg.DataDir, kind, string(id))
	switch {
	case err == nil:
		if existing.InFlight {
			return storage.ErrInFlight
		}
		if !pullForce && !syncer.BuildPlans(existing).Empty() {
			return fmt.Errorf("%s has unpushed changes; push them first or use --force", existing.Name())
		}
	case !errors.Is(err, storage.ErrDraftNotFound):
		return err
	}

	ctx := context.Background()
	ex, err := newExecutor(ctx, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	d, err := ex.Pull(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := storage.SaveDraft(cfg.DataDir, d); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pulled %s.\n", d.Name())
	fmt.Fprintf(out, "  %d availability slots\n", len(d.Availability))
	if kind.HasCredentials() {
		fmt.Fprintf(out, "  %d education entries\n", len(d.Education))
		fmt.Fprintf(out, "  %d qualifications\n", len(d.Qualifications))
	}
	return nil
}

func runNew(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseOwnerKind(args[0])
	if err != nil {
		return err
	}
	fields, err := parseFields(kind.Schema(), newFields)
	if err != nil {
		return err
	}

	d := storage.NewDraft(kind)
	for k, v := range fields {
		d.Profile.Fields[k] = v
	}
	if err := storage.SaveDraft(cfg.DataDir, d); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created draft %s. It is created on the server with 'thub push %s'.\n", d.Name(), d.Name())
	return nil
}

func runDiscard(cmd *cobra.Command, args []string) error {
	d, err := storage.ResolveDraft(cfg.DataDir, args[0])
	if err != nil {
		return err
	}
	if err := d.CheckEditable(); err != nil {
		return err
	}
	if err := storage.DeleteDraft(cfg.DataDir, d.Kind, d.Ref()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Discarded %s.\n", d.Name())
	return nil
}
