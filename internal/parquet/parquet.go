// Package parquet provides data structures and functions for exporting channel
// tables, sample frames and query history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/idescope/schema"
	"github.com/parquet-go/parquet-go"
)

// QueryRun represents a single channel table query with metadata.
// This struct maps to the idescope_query_runs database table.
type QueryRun struct {
	// RunID is the unique identifier for this query run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the query began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the query completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRows is the number of channel rows produced by this run
	TotalRows int32 `parquet:"total_rows,snappy"`

	// QueryParams contains the JSON-encoded query parameters (nullable)
	QueryParams *string `parquet:"query_params,optional,snappy"`
}

// ChannelRowEntry is one channel table row recorded by a query run.
// This struct maps to the idescope_channel_rows database table.
type ChannelRowEntry struct {
	RunID        int64    `parquet:"run_id,snappy"`
	Dataset      string   `parquet:"dataset,snappy"`
	Channel      string   `parquet:"channel,snappy"`
	Name         string   `parquet:"name,snappy"`
	TypeLabel    string   `parquet:"type_label,snappy"`
	Units        string   `parquet:"units,snappy"`
	NominalRate  float64  `parquet:"nominal_rate,snappy"`
	StartUs      *int64   `parquet:"start_us,optional,snappy"`
	EndUs        *int64   `parquet:"end_us,optional,snappy"`
	DurationUs   *int64   `parquet:"duration_us,optional,snappy"`
	Samples      int32    `parquet:"samples,snappy"`
	MeasuredRate *float64 `parquet:"measured_rate,optional,snappy"`
}

// TableRow is one row of a channel table written with --output parquet.
// Rows from several datasets share a file, so the dataset is a column.
type TableRow struct {
	Dataset      string   `parquet:"dataset,snappy"`
	Channel      string   `parquet:"channel,snappy"`
	ChannelID    int32    `parquet:"channel_id,snappy"`
	SubChannel   int32    `parquet:"subchannel,snappy"`
	Name         string   `parquet:"name,snappy"`
	Type         string   `parquet:"type,snappy"`
	Units        string   `parquet:"units,snappy"`
	Rate         float64  `parquet:"rate,snappy"`
	Start        *int64   `parquet:"start_us,optional,snappy"`
	End          *int64   `parquet:"end_us,optional,snappy"`
	Duration     *int64   `parquet:"duration_us,optional,snappy"`
	Samples      int32    `parquet:"samples,snappy"`
	MeasuredRate *float64 `parquet:"measured_rate,optional,snappy"`
}

// SampleRow is one exported sample. The time column that is set follows the
// frame's time mode; values keep the frame's column order.
type SampleRow struct {
	Seconds  *float64   `parquet:"seconds,optional,snappy"`
	OffsetUs *int64     `parquet:"offset_us,optional,snappy"`
	Datetime *time.Time `parquet:"datetime,optional,snappy"`
	Values   []float64  `parquet:"values,list"`
}

// Write encodes data as a Parquet stream on w. The schema is derived from
// the struct tags of T.
func Write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet stream: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet stream: %w", err)
	}
	return nil
}

// WriteFile writes data to a new Parquet file at outputPath.
func WriteFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Write(file, data)
}

// WriteQueryRunsParquet writes query runs to a Parquet file.
func WriteQueryRunsParquet(data []QueryRun, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WriteChannelRowsParquet writes recorded channel rows to a Parquet file.
func WriteChannelRowsParquet(data []ChannelRowEntry, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ConvertQueryRunRecords converts schema.QueryRunRecord to QueryRun for Parquet export.
func ConvertQueryRunRecords(records []schema.QueryRunRecord) []QueryRun {
	result := make([]QueryRun, len(records))
	for i, record := range records {
		result[i] = QueryRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRows:     record.TotalRows,
			QueryParams:   record.QueryParams,
		}
	}
	return result
}

// ConvertChannelRowRecords converts schema.ChannelRowRecord to ChannelRowEntry for Parquet export.
func ConvertChannelRowRecords(records []schema.ChannelRowRecord) []ChannelRowEntry {
	result := make([]ChannelRowEntry, len(records))
	for i, r := range records {
		result[i] = ChannelRowEntry{
			RunID:        r.RunID,
			Dataset:      r.Dataset,
			Channel:      r.Channel,
			Name:         r.Name,
			TypeLabel:    r.TypeLabel,
			Units:        r.Units,
			NominalRate:  r.NominalRate,
			StartUs:      r.StartUs,
			EndUs:        r.EndUs,
			DurationUs:   r.DurationUs,
			Samples:      r.Samples,
			MeasuredRate: r.MeasuredRate,
		}
	}
	return result
}

// ConvertChannelTables flattens tables into Parquet rows, in table order.
func ConvertChannelTables(tables []*schema.ChannelTable) []TableRow {
	var result []TableRow
	for _, table := range tables {
		for _, r := range table.Rows {
			result = append(result, TableRow{
				Dataset:      table.Dataset,
				Channel:      r.Channel,
				ChannelID:    int32(r.ChannelID),
				SubChannel:   int32(r.SubChannel),
				Name:         r.Name,
				Type:         r.Type,
				Units:        r.Units,
				Rate:         r.Rate,
				Start:        r.Start,
				End:          r.End,
				Duration:     r.Duration,
				Samples:      int32(r.Samples),
				MeasuredRate: r.MeasuredRate,
			})
		}
	}
	return result
}

// ConvertSampleFrame converts the rows of a sample frame.
func ConvertSampleFrame(frame *schema.SampleFrame) []SampleRow {
	result := make([]SampleRow, len(frame.Rows))
	for i, r := range frame.Rows {
		result[i] = SampleRow{
			Seconds:  r.Seconds,
			OffsetUs: r.Offset,
			Datetime: r.Datetime,
			Values:   r.Values,
		}
	}
	return result
}
