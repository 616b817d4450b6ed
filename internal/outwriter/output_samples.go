package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/internal/parquet"
	"github.com/huangsam/idescope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSampleFrame outputs exported samples, dispatching based on the output format configured.
func WriteSampleFrame(frame *schema.SampleFrame, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, frame)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForSamples(w, frame)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertSampleFrame(frame))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSampleFrameText(w, frame, fmtFloat)
		}, "Wrote table")
	}
}

// timeColumn names the time column of a frame.
func timeColumn(mode schema.TimeMode) string {
	switch mode {
	case schema.TimedeltaTime:
		return "offset_us"
	case schema.DatetimeTime:
		return "datetime"
	default:
		return "seconds"
	}
}

// stampString renders the time field of row that mode sets.
func stampString(row schema.SampleFrameRow, mode schema.TimeMode) string {
	switch {
	case mode == schema.TimedeltaTime && row.Offset != nil:
		return strconv.FormatInt(*row.Offset, 10)
	case mode == schema.DatetimeTime && row.Datetime != nil:
		return row.Datetime.Format(time.RFC3339Nano)
	case row.Seconds != nil:
		return strconv.FormatFloat(*row.Seconds, 'f', -1, 64)
	default:
		return ""
	}
}

func writeSampleFrameText(w io.Writer, frame *schema.SampleFrame, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", frame.Channel, frame.Name); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header(append([]string{timeColumn(frame.TimeMode)}, frame.Columns...))
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(frame.Rows))
	for _, row := range frame.Rows {
		rec := []string{stampString(row, frame.TimeMode)}
		for _, v := range row.Values {
			rec = append(rec, sampleValue(v, fmtFloat, "-"))
		}
		data = append(data, rec)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d sample(s)\n", len(frame.Rows))
	return err
}

// writeCSVResultsForSamples writes full-precision sample values.
func writeCSVResultsForSamples(w io.Writer, frame *schema.SampleFrame) error {
	header := append([]string{timeColumn(frame.TimeMode)}, frame.Columns...)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range frame.Rows {
			rec := []string{stampString(row, frame.TimeMode)}
			for _, v := range row.Values {
				rec = append(rec, sampleValue(v, fullPrecision, ""))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func fullPrecision(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// sampleValue renders v, or missing when the source had no sample at that time.
func sampleValue(v float64, fmtFloat func(float64) string, missing string) string {
	if math.IsNaN(v) {
		return missing
	}
	return fmtFloat(v)
}
