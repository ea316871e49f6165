package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/storage"
)

// newEntriesCmd builds the list/add/edit/remove commands for one kind of
// profile entry.
func newEntriesCmd(schema model.Schema, use, alias string) *cobra.Command {
	label := lowerLabel(schema)
	root := &cobra.Command{
		Use:     use,
		Aliases: []string{alias},
		Short:   fmt.Sprintf("Edit the %s entries of a tutor draft (fields: %s)", label, strings.Join(schema.Fields, ", ")),
	}

	list := &cobra.Command{
		Use:   "list <draft>",
		Short: "List " + label + " entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := storage.ResolveDraft(cfg.DataDir, args[0])
			if err != nil {
				return err
			}
			if err := requireCredentials(d, schema); err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), schema, *d.Entries(schema))
			return nil
		},
	}

	var addFields []string
	var addFile string
	add := &cobra.Command{
		Use:   "add <draft>",
		Short: "Add a " + label + " entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(schema, addFields)
			if err != nil {
				return err
			}
			entry := model.Resource{Key: storage.NewKey(), Fields: fields}
			if addFile != "" {
				if entry.Attachment, err = stageFile(schema, addFile); err != nil {
					return err
				}
			}
			_, err = editDraft(args[0], func(d *storage.Draft) error {
				if err := requireCredentials(d, schema); err != nil {
					return err
				}
				items := d.Entries(schema)
				*items = append(*items, entry)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s [%s].\n", label, entryTitle(schema, entry), storage.ShortKey(entry.Key))
			return nil
		},
	}
	add.Flags().StringArrayVar(&addFields, "field", nil, "Field as name=value (repeatable)")
	add.Flags().StringVar(&addFile, "file", "", "File to upload with the entry")

	var editFields []string
	var editFile string
	edit := &cobra.Command{
		Use:   "edit <draft> <entry>",
		Short: "Change fields or the file of a " + label + " entry (by number or key prefix)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(schema, editFields)
			if err != nil {
				return err
			}
			var staged model.Attachment
			if editFile != "" {
				if staged, err = stageFile(schema, editFile); err != nil {
					return err
				}
			}
			d, err := editDraft(args[0], func(d *storage.Draft) error {
				if err := requireCredentials(d, schema); err != nil {
					return err
				}
				items := *d.Entries(schema)
				i, err := findByHandle(resourceKeys(items), args[1])
				if err != nil {
					return err
				}
				e := items[i].Clone()
				for k, v := range fields {
					e.Fields[k] = v
				}
				if staged.IsLocal() {
					e.Attachment = staged
				}
				items[i] = e
				return nil
			})
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), schema, *d.Entries(schema))
			return nil
		},
	}
	edit.Flags().StringArrayVar(&editFields, "field", nil, "Field as name=value (repeatable)")
	edit.Flags().StringVar(&editFile, "file", "", "Replace the uploaded file")

	remove := &cobra.Command{
		Use:   "remove <draft> <entry>",
		Short: "Remove a " + label + " entry (by number or key prefix)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed model.Resource
			_, err := editDraft(args[0], func(d *storage.Draft) error {
				if err := requireCredentials(d, schema); err != nil {
					return err
				}
				items := d.Entries(schema)
				i, err := findByHandle(resourceKeys(*items), args[1])
				if err != nil {
					return err
				}
				removed = (*items)[i]
				*items = append((*items)[:i:i], (*items)[i+1:]...)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s.\n", label, entryTitle(schema, removed))
			return nil
		},
	}

	root.AddCommand(list, add, edit, remove)
	return root
}

func requireCredentials(d *storage.Draft, schema model.Schema) error {
	if !d.Kind.HasCredentials() {
		return fmt.Errorf("%s has no %s entries; only tutor profiles do", d.Name(), lowerLabel(schema))
	}
	return nil
}

// stageFile checks that path is a readable file and stages it for upload.
func stageFile(schema model.Schema, path string) (model.Attachment, error) {
	if schema.FileField == "" {
		return model.Attachment{}, fmt.Errorf("%s entries have no file", lowerLabel(schema))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.Attachment{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("cannot attach %s: %w", path, err)
	}
	if info.IsDir() {
		return model.Attachment{}, fmt.Errorf("cannot attach %s: is a directory", path)
	}
	return model.LocalFile(abs), nil
}

// printEntries prints one numbered block per entry with its fields.
func printEntries(w io.Writer, schema model.Schema, items []model.Resource) {
	if len(items) == 0 {
		fmt.Fprintf(w, "No %s entries.\n", lowerLabel(schema))
		return
	}
	for i, e := range items {
		id := "new"
		if e.HasID() {
			id = "#" + string(e.ID)
		}
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, storage.ShortKey(e.Key), id)
		for _, f := range schema.Fields {
			if v := e.Field(f); v != "" {
				fmt.Fprintf(w, "      %-16s %s\n", model.FieldLabel(f)+":", v)
			}
		}
		if schema.FileField != "" && e.Attachment.Kind != model.AttachmentNone {
			fmt.Fprintf(w, "      %-16s %s\n", model.FieldLabel(schema.FileField)+":", e.Attachment)
		}
	}
}
