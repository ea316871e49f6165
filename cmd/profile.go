package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/storage"
)

var (
	profileFields []string
	profileFile   string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the profile fields of a draft",
}

var profileShowCmd = &cobra.Command{
	Use:   "show <draft>",
	Short: "Show profile fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := storage.ResolveDraft(cfg.DataDir, args[0])
		if err != nil {
			return err
		}
		printEntries(cmd.OutOrStdout(), d.Kind.Schema(), []model.Resource{d.Profile})
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <draft>",
	Short: "Set profile fields, e.g. --field bio='Maths and physics'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := editDraft(args[0], func(d *storage.Draft) error {
			schema := d.Kind.Schema()
			fields, err := parseFields(schema, profileFields)
			if err != nil {
				return err
			}
			if profileFile != "" {
				if d.Profile.Attachment, err = stageFile(schema, profileFile); err != nil {
					return err
				}
			}
			if d.Profile.Fields == nil {
				d.Profile.Fields = map[string]string{}
			}
			for k, v := range fields {
				d.Profile.Fields[k] = v
			}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s.\n", d.Name())
		return nil
	},
}

func init() {
	profileSetCmd.Flags().StringArrayVar(&profileFields, "field", nil, "Field as name=value (repeatable)")
	profileSetCmd.Flags().StringVar(&profileFile, "file", "", "Profile photo to upload")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}
