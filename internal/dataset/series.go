package dataset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/huangsam/idescope/schema"
)

// ErrUnsorted is returned when timestamps are not in non-decreasing order.
var ErrUnsorted = errors.New("timestamps are not sorted")

// Series is an in-memory sample series: sorted timestamps (µs) plus one value column
// per subchannel. It implements schema.SampleSeries.
type Series struct {
	times   []int64
	columns [][]float64
	err     error
}

var _ schema.SampleSeries = &Series{} // Compile-time check

// NewSeries validates the inputs and builds a series. Every column must have the
// same length as times.
func NewSeries(times []int64, columns ...[]float64) (*Series, error) {
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, fmt.Errorf("%w: index %d (%d < %d)", ErrUnsorted, i, times[i], times[i-1])
		}
	}
	for i, col := range columns {
		if len(col) != len(times) {
			return nil, fmt.Errorf("column %d has %d values for %d timestamps", i, len(col), len(times))
		}
	}
	return &Series{times: times, columns: columns}, nil
}

// Unavailable returns a series whose every query fails with schema.ErrNoData.
func Unavailable() *Series {
	return &Series{err: schema.ErrNoData}
}

// Column returns a view over the same timestamps carrying only column i.
// An out-of-range index yields a view with no values.
func (s *Series) Column(i int) *Series {
	view := &Series{times: s.times, err: s.err}
	if i >= 0 && i < len(s.columns) {
		view.columns = [][]float64{s.columns[i]}
	}
	return view
}

// Width returns the number of value columns.
func (s *Series) Width() int {
	return len(s.columns)
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.times)
}

// FirstAtOrAfter returns the earliest sample with time >= t.
func (s *Series) FirstAtOrAfter(t int64) (schema.Sample, bool, error) {
	if s.err != nil {
		return schema.Sample{}, false, s.err
	}
	i := sort.Search(len(s.times), func(i int) bool { return s.times[i] >= t })
	if i == len(s.times) {
		return schema.Sample{}, false, nil
	}
	return s.sample(i), true, nil
}

// LastAtOrBefore returns the latest sample with time <= t.
func (s *Series) LastAtOrBefore(t int64) (schema.Sample, bool, error) {
	if s.err != nil {
		return schema.Sample{}, false, s.err
	}
	i := sort.Search(len(s.times), func(i int) bool { return s.times[i] > t }) - 1
	if i < 0 {
		return schema.Sample{}, false, nil
	}
	return s.sample(i), true, nil
}

// Slice returns samples with index in [from, to), clamped to the series bounds.
func (s *Series) Slice(from, to int) ([]schema.Sample, error) {
	if s.err != nil {
		return nil, s.err
	}
	from = max(from, 0)
	to = min(to, len(s.times))
	if from >= to {
		return nil, nil
	}
	out := make([]schema.Sample, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, s.sample(i))
	}
	return out, nil
}

func (s *Series) sample(i int) schema.Sample {
	values := make([]float64, len(s.columns))
	for c, col := range s.columns {
		values[c] = col[i]
	}
	return schema.Sample{Index: i, Time: s.times[i], Values: values}
}
