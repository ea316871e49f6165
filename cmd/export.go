package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/slots"
	"github.com/Tiliavir/tutor-hub/internal/storage"
	"github.com/Tiliavir/tutor-hub/internal/timecalc"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <draft>",
	Short: "Export the weekly availability of a draft to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
}

func runExport(cmd *cobra.Command, args []string) error {
	d, err := storage.ResolveDraft(cfg.DataDir, args[0])
	if err != nil {
		return err
	}
	records := slots.Encode(slots.Merge(d.Availability))
	w := cmd.OutOrStdout()

	switch exportFormat {
	case "json":
		return printJSON(w, records)
	case "md":
		printMarkdown(w, d, records)
	case "csv":
		printCSV(w, records)
	default:
		return fmt.Errorf("unknown format %q (use csv, json or md)", exportFormat)
	}
	return nil
}

type exportRecord struct {
	Day             model.Day `json:"day"`
	Start           string    `json:"start"`
	End             string    `json:"end"`
	DurationMinutes int64     `json:"duration_minutes"`
}

func toExport(r model.Record) exportRecord {
	return exportRecord{
		Day:             r.Day,
		Start:           r.Start.String(),
		End:             r.End.String(),
		DurationMinutes: timecalc.SpanSeconds(r.Start, r.End) / 60,
	}
}

func printJSON(w io.Writer, records []model.Record) error {
	out := make([]exportRecord, 0, len(records))
	for _, r := range records {
		out = append(out, toExport(r))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printCSV(w io.Writer, records []model.Record) {
	fmt.Fprintln(w, "day,start,end,duration_minutes")
	for _, r := range records {
		e := toExport(r)
		fmt.Fprintf(w, "%s,%s,%s,%d\n",
			csvEscape(string(e.Day)),
			csvEscape(e.Start),
			csvEscape(e.End),
			e.DurationMinutes,
		)
	}
}

// printMarkdown renders the schedule as a table in week order.
func printMarkdown(w io.Writer, d *storage.Draft, records []model.Record) {
	fmt.Fprintf(w, "## Availability: %s\n\n", ownerTitle(d))
	if len(records) == 0 {
		fmt.Fprintln(w, "_No availability._")
		return
	}
	fmt.Fprintln(w, "| Day | From | To | Duration |")
	fmt.Fprintln(w, "|-----|------|----|----------|")
	for _, day := range model.Week {
		for _, r := range records {
			if r.Day != day {
				continue
			}
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", day.Label(), r.Start, r.End,
				timecalc.FormatDuration(timecalc.SpanSeconds(r.Start, r.End)))
		}
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
