package dataset

// Manifest is the on-disk description of a recording. JSON manifests use the
// same keys, since yaml.v3 reads both.
type Manifest struct {
	Name         string         `yaml:"name"`
	SessionStart string         `yaml:"session_start"` // RFC3339; empty when unknown
	Channels     []ChannelEntry `yaml:"channels"`
}

// ChannelEntry describes one channel. Samples shared by every subchannel come from
// Times (with per-subchannel Values) or from Synthetic.
type ChannelEntry struct {
	ID          int               `yaml:"id"`
	Name        string            `yaml:"name"`
	Rate        float64           `yaml:"rate"`
	Times       []int64           `yaml:"times"`
	Synthetic   *SyntheticEntry   `yaml:"synthetic"`
	Unavailable bool              `yaml:"unavailable"`
	SubChannels []SubChannelEntry `yaml:"subchannels"`
}

// SubChannelEntry describes one subchannel. Times or Synthetic override the
// channel's shared samples.
type SubChannelEntry struct {
	Name        string          `yaml:"name"`
	Quantity    string          `yaml:"quantity"` // Type name or abbreviation, e.g. "Acceleration" or "acc"
	Units       string          `yaml:"units"`
	Rate        float64         `yaml:"rate"`
	Times       []int64         `yaml:"times"`
	Values      []float64       `yaml:"values"`
	Synthetic   *SyntheticEntry `yaml:"synthetic"`
	Unavailable bool            `yaml:"unavailable"`
}

// SyntheticEntry generates samples instead of listing them. Duration and Offset
// accept anything timeparse understands: "2s", "0:02", or a number of µs.
type SyntheticEntry struct {
	Rate      float64 `yaml:"rate"`
	Duration  any     `yaml:"duration"`
	Offset    any     `yaml:"offset"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}
