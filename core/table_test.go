package core

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/idescope/core/measure"
	"github.com/huangsam/idescope/core/timeparse"
	"github.com/huangsam/idescope/internal/dataset"
	"github.com/huangsam/idescope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func rowByID(t *testing.T, table *schema.ChannelTable, id string) schema.ChannelRow {
	t.Helper()
	for _, row := range table.Rows {
		if row.Channel == id {
			return row
		}
	}
	require.Failf(t, "row not found", "no row %s", id)
	return schema.ChannelRow{}
}

func TestBuildChannelTableUnbounded(t *testing.T) {
	ds := dataset.Fixture()
	table, err := BuildChannelTable(ds, TableOptions{Filter: measure.Spec("acc")})
	require.NoError(t, err)

	assert.Equal(t, "fixture", table.Dataset)
	assert.Equal(t, "acc", table.Filter)
	assert.Equal(t, ds.SessionStart, table.SessionStart)
	assert.Nil(t, table.Start)
	assert.Nil(t, table.End)
	require.Len(t, table.Rows, 6)

	ids := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		ids[i] = row.Channel
	}
	assert.Equal(t, []string{"8.0", "8.1", "8.2", "80.0", "80.1", "80.2"}, ids)

	row := table.Rows[0]
	assert.Equal(t, schema.ChannelRow{
		Channel:      "8.0",
		ChannelID:    8,
		SubChannel:   0,
		Name:         "X (100g)",
		Type:         "Acceleration",
		Units:        "g",
		Rate:         5000,
		Start:        ptr(int64(0)),
		End:          ptr(int64(2_000_000)),
		Duration:     ptr(int64(2_000_000)),
		Samples:      10001,
		MeasuredRate: ptr(5000.0),
	}, row)

	dc := rowByID(t, table, "80.2")
	assert.Equal(t, 801, dc.Samples)
	assert.InDelta(t, 400, *dc.MeasuredRate, 1e-9)
	assert.Equal(t, "acc", dc.Type, "recorded label wins over the type name")
}

func TestBuildChannelTableWindow(t *testing.T) {
	ds := dataset.Fixture()

	tests := []struct {
		name        string
		start, end  any
		id          string
		wantStart   *int64
		wantEnd     *int64
		wantSamples int
	}{
		{"seconds strings", "0.5", "1.5", "8.0", ptr(int64(500_000)), ptr(int64(1_500_000)), 5001},
		{"microsecond numbers", 100, 900, "8.0", ptr(int64(200)), ptr(int64(800)), 4},
		{"durations", 250 * time.Millisecond, time.Second, "80.0", ptr(int64(250_000)), ptr(int64(1_000_000)), 301},
		{"open start", nil, ":01", "59.2", ptr(int64(0)), ptr(int64(1_000_000)), 11},
		{"open end", "1.95", nil, "36.1", ptr(int64(2_000_000)), ptr(int64(2_000_000)), 1},
		{"starts after data begins", nil, "0.4", "36.0", nil, nil, 0},
		{"past the end", "10", nil, "47.1", nil, nil, 0},
		{"start after end", "1.5", "0.5", "8.0", nil, nil, 0},
		{"between samples", 1_100_000, 1_200_000, "76.0", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := BuildChannelTable(ds, TableOptions{Start: tt.start, End: tt.end})
			require.NoError(t, err)
			row := rowByID(t, table, tt.id)
			assert.Equal(t, tt.wantStart, row.Start)
			assert.Equal(t, tt.wantEnd, row.End)
			assert.Equal(t, tt.wantSamples, row.Samples)
			if tt.wantStart == nil {
				assert.Nil(t, row.Duration)
				assert.Nil(t, row.MeasuredRate)
			} else {
				assert.Equal(t, *tt.wantEnd-*tt.wantStart, *row.Duration)
			}
		})
	}
}

func TestBuildChannelTableResolvesNearRequestedBounds(t *testing.T) {
	ds := dataset.LongFixture()
	build := func(opts TableOptions) *schema.ChannelTable {
		table, err := BuildChannelTable(ds, opts)
		require.NoError(t, err)
		require.Len(t, table.Rows, len(ds.Plots()), "one row per subchannel")
		return table
	}
	startOnly := build(TableOptions{Start: "2s"})
	endOnly := build(TableOptions{End: "10s"})
	both := build(TableOptions{Start: "2s", End: "10s"})

	for i, row := range both.Rows {
		t.Run(row.Channel, func(t *testing.T) {
			require.Greater(t, row.Rate, 1.0)
			interval := float64(timeparse.Second) / row.Rate

			require.NotNil(t, startOnly.Rows[i].Start)
			assert.InDelta(t, 2_000_000, float64(*startOnly.Rows[i].Start), interval)
			assert.GreaterOrEqual(t, *startOnly.Rows[i].Start, int64(2_000_000))

			require.NotNil(t, endOnly.Rows[i].End)
			assert.InDelta(t, 10_000_000, float64(*endOnly.Rows[i].End), interval)
			assert.LessOrEqual(t, *endOnly.Rows[i].End, int64(10_000_000))

			assert.Equal(t, startOnly.Rows[i].Start, row.Start)
			assert.Equal(t, endOnly.Rows[i].End, row.End)
		})
	}
}

func TestBuildChannelTableDatetimeBounds(t *testing.T) {
	ds := dataset.Fixture()
	start := ds.SessionStart.Add(time.Second)
	end := ds.SessionStart.Add(1500 * time.Millisecond)

	table, err := BuildChannelTable(ds, TableOptions{Filter: measure.Spec("rh"), Start: start, End: &end})
	require.NoError(t, err)
	assert.Equal(t, ptr(int64(1_000_000)), table.Start)
	assert.Equal(t, ptr(int64(1_500_000)), table.End)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 6, table.Rows[0].Samples)

	table, err = BuildChannelTable(ds, TableOptions{Filter: measure.Spec("rh"), Start: "2021-06-11T16:59:10Z"})
	require.NoError(t, err)
	assert.Equal(t, ptr(int64(1_000_000)), table.Start)
}

func TestBuildChannelTableOmitsNoData(t *testing.T) {
	ds := dataset.Fixture()

	table, err := BuildChannelTable(ds, TableOptions{Filter: measure.Spec("volt")})
	require.NoError(t, err)
	assert.NotNil(t, table.Rows)
	assert.Empty(t, table.Rows)

	table, err = BuildChannelTable(ds, TableOptions{})
	require.NoError(t, err)
	assert.Len(t, table.Rows, len(ds.Plots())-1)
	for _, row := range table.Rows {
		assert.NotEqual(t, 99, row.ChannelID)
	}
}

func TestBuildChannelTableEmptySelection(t *testing.T) {
	table, err := BuildChannelTable(dataset.Fixture(), TableOptions{Filter: measure.Spec("gps")})
	require.NoError(t, err)
	assert.Empty(t, table.Rows)

	table, err = BuildChannelTable(&schema.Dataset{Name: "empty"}, TableOptions{Filter: measure.All()})
	require.NoError(t, err)
	assert.Equal(t, "empty", table.Dataset)
	assert.Empty(t, table.Rows)
}

func TestBuildChannelTableWholeChannels(t *testing.T) {
	ds := dataset.Fixture()
	table, err := BuildChannelTable(ds, TableOptions{Filter: measure.Spec("light pres"), Whole: true})
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	light := rowByID(t, table, "76.*")
	assert.Equal(t, schema.WholeChannel, light.SubChannel)
	assert.Equal(t, "Light, light", light.Type)
	assert.Equal(t, "lux, index", light.Units)
	assert.Equal(t, 7, light.Samples, "both subchannels count")
	assert.Equal(t, ptr(int64(0)), light.Start)
	assert.Equal(t, ptr(int64(1_750_000)), light.End)
	assert.InDelta(t, 6/1.75, *light.MeasuredRate, 1e-9)

	pt := rowByID(t, table, "59.*")
	assert.Equal(t, "Pressure, Temperature, Relative Humidity", pt.Type)
	assert.Equal(t, 21, pt.Samples)
	assert.InDelta(t, 10, *pt.MeasuredRate, 1e-9)

	table, err = BuildChannelTable(ds, TableOptions{Filter: measure.Spec("light"), Whole: true, Start: "1.2"})
	require.NoError(t, err)
	light = rowByID(t, table, "76.*")
	assert.Equal(t, ptr(int64(1_500_000)), light.Start, "only the second subchannel has data this late")
	assert.Equal(t, 2, light.Samples)
}

func TestBuildChannelTableErrors(t *testing.T) {
	ds := dataset.Fixture()

	_, err := BuildChannelTable(ds, TableOptions{Start: "bogus"})
	assert.ErrorIs(t, err, timeparse.ErrTimeFormat)

	_, err = BuildChannelTable(ds, TableOptions{End: []int{1}})
	assert.ErrorIs(t, err, timeparse.ErrTimeType)

	_, err = BuildChannelTable(ds, TableOptions{Filter: measure.Spec("nope")})
	assert.ErrorIs(t, err, measure.ErrUnknownType)
}

type brokenSeries struct{ err error }

func (b brokenSeries) Len() int { return 0 }
func (b brokenSeries) FirstAtOrAfter(int64) (schema.Sample, bool, error) {
	return schema.Sample{}, false, b.err
}
func (b brokenSeries) LastAtOrBefore(int64) (schema.Sample, bool, error) {
	return schema.Sample{}, false, b.err
}
func (b brokenSeries) Slice(int, int) ([]schema.Sample, error) { return nil, b.err }

func TestBuildTableForPropagatesSeriesErrors(t *testing.T) {
	readErr := errors.New("checksum mismatch")
	ch := &schema.Channel{ID: 5, Name: "Broken"}
	sub := ch.AddSubChannel(&schema.SubChannel{Name: "a", Type: measure.Acceleration, Series: brokenSeries{err: readErr}})

	_, err := NewTableBuilder(nil).BuildTableFor([]schema.Source{sub}, time.Time{}, TableOptions{})
	assert.ErrorIs(t, err, readErr)

	wrapped := brokenSeries{err: errors.Join(errors.New("segment 3"), schema.ErrNoData)}
	sub.Series = wrapped
	table, err := NewTableBuilder(nil).BuildTableFor([]schema.Source{sub}, time.Time{}, TableOptions{})
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestBuildTableForExplicitSources(t *testing.T) {
	ds := dataset.Fixture()
	sources := []schema.Source{ds.Channels[80].SubChannels[1], ds.Channels[8].SubChannels[2]}

	table, err := NewTableBuilder(nil).BuildTableFor(sources, ds.SessionStart, TableOptions{
		Filter: measure.Spec("gyro"),
		End:    "1",
	})
	require.NoError(t, err)
	assert.Equal(t, "gyro", table.Filter, "filter is recorded, not applied")
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "80.1", table.Rows[0].Channel)
	assert.Equal(t, "8.2", table.Rows[1].Channel)
	assert.Equal(t, 401, table.Rows[0].Samples)
	assert.Empty(t, table.Dataset)
}

func TestMeasuredRate(t *testing.T) {
	assert.Nil(t, measuredRate(1, 0))
	assert.Nil(t, measuredRate(3, 0))
	assert.InDelta(t, 2.0, *measuredRate(3, 1_000_000), 1e-12)
}
