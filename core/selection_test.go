package core

import (
	"testing"

	"github.com/huangsam/idescope/core/measure"
	"github.com/huangsam/idescope/internal/dataset"
	"github.com/huangsam/idescope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func channelNodes(ds *schema.Dataset) []schema.Node {
	var nodes []schema.Node
	for _, ch := range ds.OrderedChannels() {
		nodes = append(nodes, ch)
	}
	return nodes
}

func nodeIDs(nodes []schema.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.(schema.Source).DisplayID()
	}
	return ids
}

func sourceIDs(sources []schema.Source) []string {
	ids := make([]string, len(sources))
	for i, s := range sources {
		ids[i] = s.DisplayID()
	}
	return ids
}

func TestGetMeasurementTypes(t *testing.T) {
	ds := dataset.Fixture()

	assert.Equal(t, []*measure.Type{measure.Acceleration, measure.Acceleration, measure.Acceleration},
		GetMeasurementTypes(ds.Channels[80]))
	assert.Equal(t, []*measure.Type{measure.Pressure, measure.Temperature, measure.Humidity},
		GetMeasurementTypes(ds.Channels[59]))
	assert.Same(t, measure.Temperature, GetMeasurementType(ds.Channels[36].SubChannels[1]))
	assert.Equal(t, []*measure.Type{measure.Light}, GetMeasurementTypes(ds.Channels[76].SubChannels[0]))

	untyped := &schema.SubChannel{Name: "raw"}
	assert.Nil(t, GetMeasurementType(untyped))
	assert.Nil(t, GetMeasurementType(nil))
	assert.Equal(t, []*measure.Type{nil}, GetMeasurementTypes(untyped))
}

func TestFilterChannels(t *testing.T) {
	ds := dataset.Fixture()
	all := []string{"8.*", "36.*", "47.*", "59.*", "76.*", "80.*", "99.*"}

	tests := []struct {
		name   string
		filter measure.Filter
		want   []string
	}{
		{"no filter", measure.None(), all},
		{"empty spec", measure.Spec(""), all},
		{"wildcard", measure.All(), all},
		{"single type", measure.Spec("acc"), []string{"8.*", "80.*"}},
		{"single type value", measure.Only(measure.Acceleration), []string{"8.*", "80.*"}},
		{"complement", measure.Spec("-acc"), []string{"36.*", "47.*", "59.*", "76.*", "99.*"}},
		{"union", measure.Spec("acc gyro"), []string{"8.*", "47.*", "80.*"}},
		{"any leaf passes", measure.Spec("pres -temp"), []string{"36.*", "59.*"}},
		{"algebra", measure.FromExpr(measure.Humidity.Combine(measure.Light)), []string{"59.*", "76.*"}},
		{"wildcard minus", measure.Spec("* -acc -gyro -light"), []string{"36.*", "59.*", "99.*"}},
		{"nothing matches", measure.Spec("gps"), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterChannels(channelNodes(ds), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, nodeIDs(got))
		})
	}
}

func TestFilterComplementPartitions(t *testing.T) {
	ds := dataset.Fixture()
	for _, abbrev := range []string{"acc", "gyro", "light", "volt"} {
		in, err := FilterChannels(channelNodes(ds), measure.Spec(abbrev))
		require.NoError(t, err)
		out, err := FilterChannels(channelNodes(ds), measure.Spec("-"+abbrev))
		require.NoError(t, err)
		assert.Len(t, append(in, out...), len(ds.Channels), abbrev)
		assert.NotSubset(t, in, out, abbrev)
	}
}

func TestFilterMapMatchesList(t *testing.T) {
	ds := dataset.Fixture()
	sel := NewSelector(nil)
	for _, spec := range []string{"", "*", "acc", "-acc", "pres temp", "* -rh"} {
		fromMap, err := sel.FilterChannelMap(ds.Channels, measure.Spec(spec))
		require.NoError(t, err)
		fromList, err := sel.FilterNodes(channelNodes(ds), measure.Spec(spec))
		require.NoError(t, err)
		assert.Equal(t, fromList, fromMap, "spec %q", spec)
	}
}

func TestFilterNodesMixedAndDuplicates(t *testing.T) {
	ds := dataset.Fixture()
	x := ds.Channels[8].SubChannels[0]
	nodes := []schema.Node{x, ds.Channels[36], nil, x, ds.Channels[80], ds.Channels[80]}

	got, err := FilterChannels(nodes, measure.Spec("acc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"8.0", "80.*"}, nodeIDs(got))

	got, err = FilterChannels(nodes, measure.None())
	require.NoError(t, err)
	assert.Equal(t, []string{"8.0", "36.*", "80.*"}, nodeIDs(got))
}

func TestFilterUnknownType(t *testing.T) {
	ds := dataset.Fixture()
	_, err := FilterChannels(channelNodes(ds), measure.Spec("acc bogus"))
	assert.ErrorIs(t, err, measure.ErrUnknownType)

	_, err = GetChannels(ds, measure.Spec("-bogus"), true)
	assert.ErrorIs(t, err, measure.ErrUnknownType)
}

func TestGetChannels(t *testing.T) {
	ds := dataset.Fixture()

	tests := []struct {
		name        string
		filter      measure.Filter
		subchannels bool
		want        []string
	}{
		{"accelerometer subchannels", measure.Spec("acc"), true, []string{"8.0", "8.1", "8.2", "80.0", "80.1", "80.2"}},
		{"only matching leaves", measure.Only(measure.Pressure), true, []string{"36.0", "59.0"}},
		{"excluded leaves dropped", measure.Spec("pres temp -temp"), true, []string{"36.0", "59.0"}},
		{"whole channels", measure.Spec("temp"), false, []string{"36.*", "59.*"}},
		{"all channels", measure.All(), false, []string{"8.*", "36.*", "47.*", "59.*", "76.*", "80.*", "99.*"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetChannels(ds, tt.filter, tt.subchannels)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sourceIDs(got))
		})
	}

	everything, err := GetChannels(ds, measure.None(), true)
	require.NoError(t, err)
	assert.Len(t, everything, len(ds.Plots()))

	noAcc, err := GetChannels(ds, measure.Spec("* -acc"), true)
	require.NoError(t, err)
	assert.Len(t, noAcc, len(ds.Plots())-6)
}

func TestSelectorUsesOwnRegistry(t *testing.T) {
	reg := measure.NewRegistry()
	widget := reg.Get("Widget", "wdg")

	ds := &schema.Dataset{}
	ch := ds.AddChannel(&schema.Channel{ID: 1})
	ch.AddSubChannel(&schema.SubChannel{Name: "w", Type: widget})
	ch.AddSubChannel(&schema.SubChannel{Name: "raw"})

	sel := NewSelector(reg)
	assert.Same(t, reg, sel.Registry())

	got, err := sel.GetChannels(ds, measure.Spec("wdg"), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0"}, sourceIDs(got))

	got, err = sel.GetChannels(ds, measure.Spec("-wdg"), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1"}, sourceIDs(got), "untyped leaves pass exclusion-only filters")

	_, err = sel.GetChannels(ds, measure.Spec("acc"), true)
	assert.ErrorIs(t, err, measure.ErrUnknownType)
}
