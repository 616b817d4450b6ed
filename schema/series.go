package schema

import (
	"errors"
	"math"
	"slices"
	"sort"
	"sync"
)

// ErrNoData is returned by a SampleSeries that has no data to offer at all.
// Table rows backed by such a series are omitted.
var ErrNoData = errors.New("no data available")

// Sample is one timestamped record of a series.
type Sample struct {
	Index  int       `json:"index"`  // Position within the series
	Time   int64     `json:"time"`   // Microseconds from the session start
	Values []float64 `json:"values"` // One value per subchannel, when available
}

// SampleSeries is a time-ordered, time-indexed sample sequence.
type SampleSeries interface {
	// Len returns the number of samples.
	Len() int

	// FirstAtOrAfter returns the first sample with Time >= t.
	FirstAtOrAfter(t int64) (Sample, bool, error)

	// LastAtOrBefore returns the last sample with Time <= t.
	LastAtOrBefore(t int64) (Sample, bool, error)

	// Slice returns samples with from <= Index < to.
	Slice(from, to int) ([]Sample, error)
}

// mergedSeries joins the series of a channel's subchannels on their timestamps.
// Each merged sample has one value per subchannel, NaN where that subchannel
// has no sample at the time. Subchannels without data are skipped; when none
// has data every query reports ErrNoData.
type mergedSeries struct {
	parts   []SampleSeries
	once    sync.Once
	samples []Sample
	err     error
}

func (m *mergedSeries) load() ([]Sample, error) {
	m.once.Do(func() {
		m.samples, m.err = mergeParts(m.parts)
	})
	return m.samples, m.err
}

func mergeParts(parts []SampleSeries) ([]Sample, error) {
	byTime := make(map[int64][]float64)
	var times []int64
	available := false
	for i, part := range parts {
		if part == nil {
			continue
		}
		samples, err := part.Slice(0, part.Len())
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return nil, err
		}
		available = true
		for _, s := range samples {
			values, ok := byTime[s.Time]
			if !ok {
				values = make([]float64, len(parts))
				for c := range values {
					values[c] = math.NaN()
				}
				byTime[s.Time] = values
				times = append(times, s.Time)
			}
			if len(s.Values) > 0 {
				values[i] = s.Values[0]
			}
		}
	}
	if !available {
		return nil, ErrNoData
	}

	slices.Sort(times)
	out := make([]Sample, len(times))
	for i, t := range times {
		out[i] = Sample{Index: i, Time: t, Values: byTime[t]}
	}
	return out, nil
}

// Len returns the number of distinct timestamps, 0 when the parts cannot be read.
func (m *mergedSeries) Len() int {
	samples, _ := m.load()
	return len(samples)
}

// FirstAtOrAfter returns the earliest merged sample with Time >= t.
func (m *mergedSeries) FirstAtOrAfter(t int64) (Sample, bool, error) {
	samples, err := m.load()
	if err != nil {
		return Sample{}, false, err
	}
	i := sort.Search(len(samples), func(i int) bool { return samples[i].Time >= t })
	if i == len(samples) {
		return Sample{}, false, nil
	}
	return samples[i], true, nil
}

// LastAtOrBefore returns the latest merged sample with Time <= t.
func (m *mergedSeries) LastAtOrBefore(t int64) (Sample, bool, error) {
	samples, err := m.load()
	if err != nil {
		return Sample{}, false, err
	}
	i := sort.Search(len(samples), func(i int) bool { return samples[i].Time > t }) - 1
	if i < 0 {
		return Sample{}, false, nil
	}
	return samples[i], true, nil
}

// Slice returns merged samples with index in [from, to), clamped to the bounds.
func (m *mergedSeries) Slice(from, to int) ([]Sample, error) {
	samples, err := m.load()
	if err != nil {
		return nil, err
	}
	from = max(from, 0)
	to = min(to, len(samples))
	if from >= to {
		return nil, nil
	}
	return slices.Clone(samples[from:to]), nil
}
