package dataset

import (
	"fmt"
	"math"

	"github.com/huangsam/idescope/core/timeparse"
)

// Wave describes a generated sample series.
type Wave struct {
	Rate      float64 // Samples per second
	Duration  int64   // Span from the first to the last sample (µs)
	Offset    int64   // Time of the first sample (µs)
	Amplitude float64 // Peak value of each column
	Frequency float64 // Sine frequency in Hz; 0 yields a constant Amplitude
	Columns   int     // Value columns; each is phase-shifted by a quarter turn
}

// Synthetic generates evenly spaced samples from w. The sample count is
// floor(Duration * Rate) + 1 so both window edges carry a sample.
func Synthetic(w Wave) (*Series, error) {
	if w.Rate <= 0 {
		return nil, fmt.Errorf("synthetic rate must be positive (received %g)", w.Rate)
	}
	if w.Duration < 0 {
		return nil, fmt.Errorf("synthetic duration must not be negative (received %d)", w.Duration)
	}
	n := int(math.Floor(float64(w.Duration)*w.Rate/float64(timeparse.Second))) + 1
	period := float64(timeparse.Second) / w.Rate

	times := make([]int64, n)
	for i := range times {
		times[i] = w.Offset + int64(math.Round(float64(i)*period))
	}

	columns := make([][]float64, max(w.Columns, 0))
	for c := range columns {
		col := make([]float64, n)
		phase := float64(c) * math.Pi / 2
		for i, t := range times {
			if w.Frequency == 0 {
				col[i] = w.Amplitude
				continue
			}
			secs := float64(t) / float64(timeparse.Second)
			col[i] = w.Amplitude * math.Sin(2*math.Pi*w.Frequency*secs+phase)
		}
		columns[c] = col
	}
	return NewSeries(times, columns...)
}
