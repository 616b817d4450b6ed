package core

import (
	"errors"
	"math"
	"time"

	"github.com/huangsam/idescope/core/measure"
	"github.com/huangsam/idescope/core/timeparse"
	"github.com/huangsam/idescope/schema"
)

// TableOptions controls which sources a channel table covers.
type TableOptions struct {
	Filter measure.Filter // Measurement type filter
	Start  any            // Window start; anything timeparse accepts, nil for unbounded
	End    any            // Window end; anything timeparse accepts, nil for unbounded
	Whole  bool           // One row per channel instead of per subchannel
}

// TableBuilder builds channel tables.
type TableBuilder struct {
	selector *Selector
}

// NewTableBuilder returns a builder selecting with sel, or the default selector when nil.
func NewTableBuilder(sel *Selector) *TableBuilder {
	if sel == nil {
		sel = defaultSelector
	}
	return &TableBuilder{selector: sel}
}

// BuildChannelTable summarizes the channels of ds selected by opts. Times are
// resolved relative to the dataset session start.
func (b *TableBuilder) BuildChannelTable(ds *schema.Dataset, opts TableOptions) (*schema.ChannelTable, error) {
	sources, err := b.selector.GetChannels(ds, opts.Filter, !opts.Whole)
	if err != nil {
		return nil, err
	}
	table, err := b.BuildTableFor(sources, ds.SessionStart, opts)
	if err != nil {
		return nil, err
	}
	table.Dataset = ds.Name
	table.Path = ds.Path
	table.SessionStart = ds.SessionStart
	return table, nil
}

// BuildTableFor summarizes an explicit list of sources. opts.Filter is recorded
// on the table but not applied.
func (b *TableBuilder) BuildTableFor(sources []schema.Source, ref time.Time, opts TableOptions) (*schema.ChannelTable, error) {
	start, err := timeparse.ParseRelative(opts.Start, ref)
	if err != nil {
		return nil, err
	}
	end, err := timeparse.ParseRelative(opts.End, ref)
	if err != nil {
		return nil, err
	}

	table := &schema.ChannelTable{
		Filter: opts.Filter.String(),
		Start:  start.Ptr(),
		End:    end.Ptr(),
		Rows:   make([]schema.ChannelRow, 0, len(sources)),
	}
	for _, src := range sources {
		row, err := buildRow(src, start, end)
		if errors.Is(err, schema.ErrNoData) {
			continue
		}
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// BuildChannelTable builds a table for ds with the default registry.
func BuildChannelTable(ds *schema.Dataset, opts TableOptions) (*schema.ChannelTable, error) {
	return NewTableBuilder(nil).BuildChannelTable(ds, opts)
}

// buildRow summarizes src between start and end. A source without a series
// reports schema.ErrNoData.
func buildRow(src schema.Source, start, end timeparse.Bound) (schema.ChannelRow, error) {
	channelID, subIndex := src.Address()
	row := schema.ChannelRow{
		Channel:    src.DisplayID(),
		ChannelID:  channelID,
		SubChannel: subIndex,
		Name:       src.DisplayName(),
		Type:       src.TypeLabel(),
		Units:      src.UnitsLabel(),
		Rate:       src.NominalRate(),
	}

	series := src.Samples()
	if series == nil {
		return row, schema.ErrNoData
	}

	lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
	if start.Valid {
		lo = start.Micros
	}
	if end.Valid {
		hi = end.Micros
	}

	first, ok, err := series.FirstAtOrAfter(lo)
	if err != nil {
		return row, err
	}
	if !ok || lo > hi {
		return row, nil
	}
	last, ok, err := series.LastAtOrBefore(hi)
	if err != nil {
		return row, err
	}
	if !ok || last.Index < first.Index {
		return row, nil
	}

	duration := last.Time - first.Time
	row.Start = &first.Time
	row.End = &last.Time
	row.Duration = &duration
	row.Samples = last.Index - first.Index + 1
	row.MeasuredRate = measuredRate(row.Samples, duration)
	return row, nil
}

// measuredRate is the observed sample rate in Hz: sample intervals over elapsed
// seconds. It is nil when fewer than two samples span a positive duration.
func measuredRate(samples int, duration int64) *float64 {
	if samples < 2 || duration <= 0 {
		return nil
	}
	rate := float64(samples-1) * float64(timeparse.Second) / float64(duration)
	return &rate
}
