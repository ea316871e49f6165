package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/notify"
	"github.com/Tiliavir/tutor-hub/internal/slots"
	"github.com/Tiliavir/tutor-hub/internal/storage"
	"github.com/Tiliavir/tutor-hub/internal/timecalc"
)

var (
	slotStart      string
	slotEnd        string
	slotDays       []string
	slotAddDays    []string
	slotRemoveDays []string
)

var availabilityCmd = &cobra.Command{
	Use:     "availability",
	Aliases: []string{"avail"},
	Short:   "Edit the weekly availability of a draft",
}

var availabilityListCmd = &cobra.Command{
	Use:   "list <draft>",
	Short: "List availability slots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := storage.ResolveDraft(cfg.DataDir, args[0])
		if err != nil {
			return err
		}
		printSlots(cmd.OutOrStdout(), d.Availability)
		return nil
	},
}

var availabilityAddCmd = &cobra.Command{
	Use:   "add <draft>",
	Short: "Add a slot, e.g. --start 16:00 --end 18:00 --days mon,wed",
	Args:  cobra.ExactArgs(1),
	RunE:  runAvailabilityAdd,
}

var availabilityEditCmd = &cobra.Command{
	Use:   "edit <draft> <slot>",
	Short: "Change the range or days of a slot (by number or key prefix)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAvailabilityEdit,
}

var availabilityRemoveCmd = &cobra.Command{
	Use:   "remove <draft> <slot>",
	Short: "Remove a slot (by number or key prefix)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAvailabilityRemove,
}

var availabilityClearCmd = &cobra.Command{
	Use:   "clear <draft>",
	Short: "Remove every slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := editDraft(args[0], func(d *storage.Draft) error {
			d.Availability = nil
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Availability cleared.")
		return nil
	},
}

func init() {
	availabilityAddCmd.Flags().StringVar(&slotStart, "start", "", "Start time (HH:MM)")
	availabilityAddCmd.Flags().StringVar(&slotEnd, "end", "", "End time (HH:MM)")
	availabilityAddCmd.Flags().StringSliceVar(&slotDays, "days", nil, "Days, e.g. mon,wed or Monday")
	_ = availabilityAddCmd.MarkFlagRequired("start")
	_ = availabilityAddCmd.MarkFlagRequired("end")

	availabilityEditCmd.Flags().StringVar(&slotStart, "start", "", "New start time (HH:MM)")
	availabilityEditCmd.Flags().StringVar(&slotEnd, "end", "", "New end time (HH:MM)")
	availabilityEditCmd.Flags().StringSliceVar(&slotDays, "days", nil, "Replace the days")
	availabilityEditCmd.Flags().StringSliceVar(&slotAddDays, "add-day", nil, "Add days")
	availabilityEditCmd.Flags().StringSliceVar(&slotRemoveDays, "remove-day", nil, "Remove days")

	availabilityCmd.AddCommand(availabilityListCmd)
	availabilityCmd.AddCommand(availabilityAddCmd)
	availabilityCmd.AddCommand(availabilityEditCmd)
	availabilityCmd.AddCommand(availabilityRemoveCmd)
	availabilityCmd.AddCommand(availabilityClearCmd)
}

func runAvailabilityAdd(cmd *cobra.Command, args []string) error {
	start, err := timecalc.ParseClock(slotStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := timecalc.ParseClock(slotEnd)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	days, err := parseDays(slotDays)
	if err != nil {
		return err
	}

	d, err := editDraft(args[0], func(d *storage.Draft) error {
		d.Availability = append(d.Availability, model.Slot{Key: storage.NewKey(), Start: start, End: end, Days: days})
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s.\n", model.TimeRange{Start: start, End: end}, days)
	warnInvalidSlots(cmd.OutOrStdout(), d.Availability)
	return nil
}

func runAvailabilityEdit(cmd *cobra.Command, args []string) error {
	d, err := editDraft(args[0], func(d *storage.Draft) error {
		i, err := findByHandle(slotKeys(d.Availability), args[1])
		if err != nil {
			return err
		}
		s := d.Availability[i]
		if slotStart != "" {
			if s.Start, err = timecalc.ParseClock(slotStart); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
		}
		if slotEnd != "" {
			if s.End, err = timecalc.ParseClock(slotEnd); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
		}
		if len(slotDays) > 0 {
			if s.Days, err = parseDays(slotDays); err != nil {
				return err
			}
		}
		add, err := parseDays(slotAddDays)
		if err != nil {
			return err
		}
		s.Days = s.Days.Union(add)
		remove, err := parseDays(slotRemoveDays)
		if err != nil {
			return err
		}
		for _, day := range remove.Days() {
			s.Days = s.Days.Without(day)
		}
		d.Availability[i] = s
		return nil
	})
	if err != nil {
		return err
	}
	printSlots(cmd.OutOrStdout(), d.Availability)
	warnInvalidSlots(cmd.OutOrStdout(), d.Availability)
	return nil
}

func runAvailabilityRemove(cmd *cobra.Command, args []string) error {
	var removed model.Slot
	_, err := editDraft(args[0], func(d *storage.Draft) error {
		i, err := findByHandle(slotKeys(d.Availability), args[1])
		if err != nil {
			return err
		}
		removed = d.Availability[i]
		d.Availability = append(d.Availability[:i:i], d.Availability[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s.\n", removed.Range(), removed.Days)
	return nil
}

// parseDays accepts day codes and English day names.
func parseDays(tokens []string) (model.DaySet, error) {
	var days model.DaySet
	for _, tok := range tokens {
		d, ok := model.ParseDay(tok)
		if !ok {
			return model.DaySet{}, fmt.Errorf("unknown day %q (use mon, tue, wed, thu, fri, sat, sun)", tok)
		}
		days = days.With(d)
	}
	return days, nil
}

// warnInvalidSlots shows the problem that would block a push.
func warnInvalidSlots(w io.Writer, s []model.Slot) {
	if res := slots.Validate(s); !res.Valid {
		notify.Console{Out: w}.Notify(notify.Warning, res.Errors[0])
	}
}

func slotKeys(s []model.Slot) []string {
	keys := make([]string, len(s))
	for i, x := range s {
		keys[i] = x.Key
	}
	return keys
}

// printSlots prints one numbered line per slot.
func printSlots(w io.Writer, s []model.Slot) {
	if len(s) == 0 {
		fmt.Fprintln(w, "No availability.")
		return
	}
	for i, x := range s {
		dur := ""
		if x.Range().Valid() {
			dur = fmt.Sprintf(" (%s)", timecalc.FormatDuration(timecalc.SpanSeconds(x.Start, x.End)))
		}
		days := x.Days.String()
		if days == "" {
			days = "no days"
		}
		fmt.Fprintf(w, "%2d. [%s] %s  %s%s\n", i+1, storage.ShortKey(x.Key), x.Range(), days, dur)
	}
}
