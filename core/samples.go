package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/huangsam/idescope/core/timeparse"
	"github.com/huangsam/idescope/schema"
)

// ErrInvalidTimeMode is returned for an unknown sample time mode.
var ErrInvalidTimeMode = errors.New("invalid time mode")

// SampleOptions controls a sample export.
type SampleOptions struct {
	Mode  schema.TimeMode // How timestamps are rendered; empty means seconds
	Start any             // Window start, nil for unbounded
	End   any             // Window end, nil for unbounded
	Limit int             // Maximum rows; 0 for no limit
}

// BuildSampleFrame exports the samples of src within the window. Datetime stamps
// are the session start plus each offset; a zero session start counts from the
// Unix epoch.
func BuildSampleFrame(src schema.Source, sessionStart time.Time, opts SampleOptions) (*schema.SampleFrame, error) {
	mode := opts.Mode
	if mode == "" {
		mode = schema.SecondsTime
	}
	if _, ok := schema.ValidTimeModes[mode]; !ok {
		return nil, fmt.Errorf("%w %q: must be seconds, timedelta or datetime", ErrInvalidTimeMode, opts.Mode)
	}
	start, err := timeparse.ParseRelative(opts.Start, sessionStart)
	if err != nil {
		return nil, err
	}
	end, err := timeparse.ParseRelative(opts.End, sessionStart)
	if err != nil {
		return nil, err
	}

	frame := &schema.SampleFrame{
		Channel:  src.DisplayID(),
		Name:     src.DisplayName(),
		TimeMode: mode,
		Columns:  columnNames(src),
		Rows:     []schema.SampleFrameRow{},
	}

	series := src.Samples()
	if series == nil {
		return nil, fmt.Errorf("%s: %w", frame.Channel, schema.ErrNoData)
	}
	row, err := buildRow(src, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", frame.Channel, err)
	}
	if row.Start == nil {
		return frame, nil
	}

	first, _, err := series.FirstAtOrAfter(*row.Start)
	if err != nil {
		return nil, err
	}
	to := first.Index + row.Samples
	if opts.Limit > 0 {
		to = min(to, first.Index+opts.Limit)
	}
	samples, err := series.Slice(first.Index, to)
	if err != nil {
		return nil, err
	}

	epoch := sessionStart
	if epoch.IsZero() {
		epoch = time.Unix(0, 0).UTC()
	}
	for _, sample := range samples {
		frame.Rows = append(frame.Rows, stampRow(sample, mode, epoch))
	}
	return frame, nil
}

func stampRow(sample schema.Sample, mode schema.TimeMode, epoch time.Time) schema.SampleFrameRow {
	row := schema.SampleFrameRow{Values: sample.Values}
	switch mode {
	case schema.TimedeltaTime:
		offset := sample.Time
		row.Offset = &offset
	case schema.DatetimeTime:
		stamp := epoch.Add(time.Duration(sample.Time) * time.Microsecond)
		row.Datetime = &stamp
	default:
		secs := float64(sample.Time) / float64(timeparse.Second)
		secs = math.Round(secs*1e6) / 1e6
		row.Seconds = &secs
	}
	return row
}

// columnNames lists one value column per leaf of src.
func columnNames(src schema.Source) []string {
	leaves := src.Leaves()
	names := make([]string, len(leaves))
	for i, sub := range leaves {
		names[i] = sub.Name
	}
	return names
}
