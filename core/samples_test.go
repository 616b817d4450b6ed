package core

import (
	"math"
	"testing"
	"time"

	"github.com/huangsam/idescope/internal/dataset"
	"github.com/huangsam/idescope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSampleFrameModes(t *testing.T) {
	ds := dataset.Fixture()
	lux := ds.Channels[76].SubChannels[0]

	frame, err := BuildSampleFrame(lux, ds.SessionStart, SampleOptions{})
	require.NoError(t, err)
	assert.Equal(t, "76.0", frame.Channel)
	assert.Equal(t, "Lux", frame.Name)
	assert.Equal(t, schema.SecondsTime, frame.TimeMode)
	assert.Equal(t, []string{"Lux"}, frame.Columns)
	require.Len(t, frame.Rows, 5)
	assert.Equal(t, ptr(0.25), frame.Rows[1].Seconds)
	assert.Nil(t, frame.Rows[1].Offset)
	assert.Equal(t, []float64{12}, frame.Rows[1].Values)

	frame, err = BuildSampleFrame(lux, ds.SessionStart, SampleOptions{Mode: schema.TimedeltaTime})
	require.NoError(t, err)
	assert.Equal(t, ptr(int64(750_000)), frame.Rows[3].Offset)
	assert.Nil(t, frame.Rows[3].Seconds)

	frame, err = BuildSampleFrame(lux, ds.SessionStart, SampleOptions{Mode: schema.DatetimeTime})
	require.NoError(t, err)
	assert.Equal(t, ds.SessionStart.Add(250*time.Millisecond), *frame.Rows[1].Datetime)

	frame, err = BuildSampleFrame(lux, time.Time{}, SampleOptions{Mode: schema.DatetimeTime})
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1, 0).UTC(), *frame.Rows[4].Datetime)
}

func TestBuildSampleFrameWindowAndLimit(t *testing.T) {
	ds := dataset.Fixture()
	pt := ds.Channels[36]

	frame, err := BuildSampleFrame(pt, ds.SessionStart, SampleOptions{Start: "1", End: "1.25"})
	require.NoError(t, err)
	assert.Equal(t, "36.*", frame.Channel)
	assert.Equal(t, []string{"Pressure", "Temperature"}, frame.Columns)
	require.Len(t, frame.Rows, 3)
	assert.Equal(t, ptr(1.0), frame.Rows[0].Seconds)
	assert.Equal(t, []float64{101325, 101325}, frame.Rows[0].Values)

	frame, err = BuildSampleFrame(pt, ds.SessionStart, SampleOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, frame.Rows, 2)
	assert.Equal(t, ptr(0.5), frame.Rows[0].Seconds)

	frame, err = BuildSampleFrame(pt, ds.SessionStart, SampleOptions{End: "0.1"})
	require.NoError(t, err)
	assert.NotNil(t, frame.Rows)
	assert.Empty(t, frame.Rows)
}

func TestBuildSampleFrameWholeChannelMergesColumns(t *testing.T) {
	ds := dataset.Fixture()

	frame, err := BuildSampleFrame(ds.Channels[76], ds.SessionStart, SampleOptions{})
	require.NoError(t, err)
	assert.Equal(t, "76.*", frame.Channel)
	assert.Equal(t, []string{"Lux", "UV"}, frame.Columns)
	require.Len(t, frame.Rows, 7)
	for _, row := range frame.Rows {
		assert.Len(t, row.Values, len(frame.Columns))
	}

	first := frame.Rows[0]
	assert.InDelta(t, 10, first.Values[0], 0)
	assert.True(t, math.IsNaN(first.Values[1]))

	uv := frame.Rows[5]
	assert.Equal(t, ptr(1.5), uv.Seconds)
	assert.True(t, math.IsNaN(uv.Values[0]))
	assert.InDelta(t, 3, uv.Values[1], 0)

	frame, err = BuildSampleFrame(ds.Channels[76], ds.SessionStart, SampleOptions{Start: "0.9", Limit: 2})
	require.NoError(t, err)
	require.Len(t, frame.Rows, 2)
	assert.Equal(t, ptr(1.0), frame.Rows[0].Seconds)
	assert.Equal(t, ptr(1.5), frame.Rows[1].Seconds)
}

func TestBuildSampleFrameErrors(t *testing.T) {
	ds := dataset.Fixture()
	lux := ds.Channels[76].SubChannels[0]

	_, err := BuildSampleFrame(lux, ds.SessionStart, SampleOptions{Mode: "fortnights"})
	assert.ErrorIs(t, err, ErrInvalidTimeMode)

	_, err = BuildSampleFrame(ds.Channels[99].SubChannels[0], ds.SessionStart, SampleOptions{})
	assert.ErrorIs(t, err, schema.ErrNoData)

	_, err = BuildSampleFrame(&schema.SubChannel{Name: "orphan"}, ds.SessionStart, SampleOptions{})
	assert.ErrorIs(t, err, schema.ErrNoData)

	_, err = BuildSampleFrame(lux, ds.SessionStart, SampleOptions{Start: "whenever"})
	assert.Error(t, err)
}
