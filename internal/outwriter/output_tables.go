package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/idescope/core/measure"
	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/internal/parquet"
	"github.com/huangsam/idescope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteChannelTables outputs channel tables, dispatching based on the output format configured.
func WriteChannelTables(tables []*schema.ChannelTable, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, tables)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForTables(w, tables, fmtFloat, intFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertChannelTables(tables))
		}, "Wrote Parquet")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChannelTablesText(w, tables, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
}

// writeChannelTablesText renders one table per dataset followed by a summary.
func writeChannelTablesText(w io.Writer, tables []*schema.ChannelTable, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	nameWidth := GetMaxNameWidth(cfg)
	totalRows, totalSamples := 0, 0

	for _, t := range tables {
		if _, err := fmt.Fprintf(w, "%s | %s\n", datasetTitle(t), windowTitle(t, cfg.Timestamps)); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Channel", "Name", "Type", "Units", "Rate", "Start", "End", "Duration", "Samples", "Measured"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		data := make([][]string, 0, len(t.Rows))
		for _, r := range t.Rows {
			measured := "-"
			if r.MeasuredRate != nil {
				measured = fmtFloat(*r.MeasuredRate) + " Hz"
			}
			duration := "-"
			if r.Duration != nil {
				duration = FormatDuration(*r.Duration)
			}
			data = append(data, []string{
				r.Channel,
				contract.TruncateText(r.Name, nameWidth),
				typeLabel(r.Type, cfg.UseColors),
				r.Units,
				FormatRate(r.Rate),
				formatTime(r.Start, cfg.Timestamps),
				formatTime(r.End, cfg.Timestamps),
				duration,
				fmt.Sprintf(intFmt, r.Samples),
				measured,
			})
			totalSamples += r.Samples
		}
		totalRows += len(t.Rows)

		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Showing %d rows from %d dataset(s) (total samples: %d)\n", totalRows, len(tables), totalSamples); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Query completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// datasetTitle names a table's dataset and session start.
func datasetTitle(t *schema.ChannelTable) string {
	title := t.Dataset
	if t.Path != "" && t.Path != t.Dataset {
		title = fmt.Sprintf("%s (%s)", t.Dataset, t.Path)
	}
	if !t.SessionStart.IsZero() {
		title += " @ " + t.SessionStart.Format(time.RFC3339)
	}
	if t.Filter != "" {
		title += " | types: " + t.Filter
	}
	return title
}

// windowTitle describes the resolved window of a table.
func windowTitle(t *schema.ChannelTable, timestamps bool) string {
	if t.Start == nil && t.End == nil {
		return "window: all"
	}
	return fmt.Sprintf("window: %s .. %s", formatTime(t.Start, timestamps), formatTime(t.End, timestamps))
}

// typeLabel colors a quantity label by its measurement family.
func typeLabel(label string, useColors bool) string {
	if !useColors {
		return label
	}
	return contract.GetColorLabel(measure.Default.Match(label), label)
}

// writeCSVResultsForTables writes every table row as one CSV record.
func writeCSVResultsForTables(w io.Writer, tables []*schema.ChannelTable, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"dataset",
		"channel",
		"channel_id",
		"subchannel",
		"name",
		"type",
		"units",
		"rate",
		"start_us",
		"end_us",
		"duration_us",
		"samples",
		"measured_rate",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, t := range tables {
			for _, r := range t.Rows {
				rec := []string{
					t.Dataset,
					r.Channel,
					strconv.Itoa(r.ChannelID),
					strconv.Itoa(r.SubChannel),
					r.Name,
					r.Type,
					r.Units,
					fmtFloat(r.Rate),
					optionalInt(r.Start),
					optionalInt(r.End),
					optionalInt(r.Duration),
					fmt.Sprintf(intFmt, r.Samples),
					optionalFloat(r.MeasuredRate, fmtFloat),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
