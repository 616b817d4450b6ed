package schema

import (
	"encoding/json"
	"math"
	"time"
)

// WholeChannel is the SubChannel value of a row that summarizes an entire channel.
const WholeChannel = -1

// ChannelRow summarizes one source over the requested window.
// Start, End, Duration and MeasuredRate are nil when the window holds no samples.
type ChannelRow struct {
	Channel      string   `json:"channel"`       // "{ch}.{sub}" or "{ch}.*"
	ChannelID    int      `json:"channel_id"`    // Parent channel id
	SubChannel   int      `json:"subchannel"`    // Subchannel index, or WholeChannel
	Name         string   `json:"name"`          // Display name
	Type         string   `json:"type"`          // Quantity label
	Units        string   `json:"units"`         // Units label
	Rate         float64  `json:"rate"`          // Nominal sample rate in Hz
	Start        *int64   `json:"start"`         // First in-window sample time (µs)
	End          *int64   `json:"end"`           // Last in-window sample time (µs)
	Duration     *int64   `json:"duration"`      // End - Start (µs)
	Samples      int      `json:"samples"`       // Samples within [Start, End]
	MeasuredRate *float64 `json:"measured_rate"` // Observed rate in Hz
}

// ChannelTable is the summary of one dataset.
type ChannelTable struct {
	Dataset      string       `json:"dataset"`       // Dataset name
	Path         string       `json:"path"`          // Dataset path
	SessionStart time.Time    `json:"session_start"` // Recording start
	Filter       string       `json:"filter"`        // Filter spec used for selection
	Start        *int64       `json:"start"`         // Resolved window start (µs); nil when unbounded
	End          *int64       `json:"end"`           // Resolved window end (µs); nil when unbounded
	Rows         []ChannelRow `json:"rows"`          // One row per selected source, in selection order
}

// SampleFrame is an exported slice of one source's samples.
type SampleFrame struct {
	Channel  string           `json:"channel"`
	Name     string           `json:"name"`
	TimeMode TimeMode         `json:"time_mode"`
	Columns  []string         `json:"columns"`
	Rows     []SampleFrameRow `json:"rows"`
}

// SampleFrameRow is one exported sample. Exactly one of the time fields is set,
// according to the frame's TimeMode.
type SampleFrameRow struct {
	Seconds  *float64   `json:"seconds,omitempty"`
	Offset   *int64     `json:"offset_us,omitempty"`
	Datetime *time.Time `json:"datetime,omitempty"`
	Values   []float64  `json:"values"`
}

// MarshalJSON writes missing values (NaN) as null.
func (r SampleFrameRow) MarshalJSON() ([]byte, error) {
	type plain SampleFrameRow
	values := make([]*float64, len(r.Values))
	for i := range r.Values {
		if !math.IsNaN(r.Values[i]) {
			values[i] = &r.Values[i]
		}
	}
	return json.Marshal(struct {
		plain
		Values []*float64 `json:"values"`
	}{plain(r), values})
}

// TypeInfo describes one registered measurement type.
type TypeInfo struct {
	Name   string `json:"name"`
	Abbrev string `json:"abbrev"`
}

// ChannelInfo describes one selected channel or subchannel without reading samples.
type ChannelInfo struct {
	Channel     string  `json:"channel"`     // "{ch}.{sub}" or "{ch}.*"
	Name        string  `json:"name"`        // Display name
	Type        string  `json:"type"`        // Quantity label
	Units       string  `json:"units"`       // Units label
	Rate        float64 `json:"rate"`        // Nominal sample rate in Hz
	SubChannels int     `json:"subchannels"` // Leaves under the node
	Samples     int     `json:"samples"`     // Total samples, 0 when no data
}

// ParsedTime is a resolved time expression.
type ParsedTime struct {
	Input  string     `json:"input"`
	Ref    *time.Time `json:"ref,omitempty"`
	Micros *int64     `json:"micros"` // nil when the expression is unbounded
}
