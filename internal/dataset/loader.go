// Package dataset loads recordings described by YAML or JSON manifests into the
// schema model, backed by in-memory sample series.
package dataset

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/idescope/core/measure"
	"github.com/huangsam/idescope/core/timeparse"
	"github.com/huangsam/idescope/schema"
	"gopkg.in/yaml.v3"
)

// Loader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrInvalidManifest   = errors.New("invalid dataset manifest")
)

// Loader reads manifests and tags subchannels using a measurement type registry.
type Loader struct {
	registry *measure.Registry
}

// NewLoader returns a loader using reg, or measure.Default when reg is nil.
func NewLoader(reg *measure.Registry) *Loader {
	if reg == nil {
		reg = measure.Default
	}
	return &Loader{registry: reg}
}

// Load reads and decodes the manifest at path.
func (l *Loader) Load(ctx context.Context, path string) (*schema.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := schema.ValidDatasetExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: %q (expected .yaml, .yml or .json)", ErrUnsupportedFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	ds, err := l.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.Path = path
	if ds.Name == "" {
		ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return ds, nil
}

// Decode builds a dataset from manifest bytes.
func (l *Loader) Decode(data []byte) (*schema.Dataset, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return l.Build(&m)
}

// Build converts a decoded manifest into a dataset.
func (l *Loader) Build(m *Manifest) (*schema.Dataset, error) {
	ds := &schema.Dataset{Name: m.Name}
	if m.SessionStart != "" {
		start, err := time.Parse(time.RFC3339Nano, m.SessionStart)
		if err != nil {
			return nil, fmt.Errorf("%w: session_start: %v", ErrInvalidManifest, err)
		}
		ds.SessionStart = start.UTC()
	}

	for _, entry := range m.Channels {
		if _, dup := ds.Channels[entry.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate channel id %d", ErrInvalidManifest, entry.ID)
		}
		ch, err := l.buildChannel(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: channel %d: %v", ErrInvalidManifest, entry.ID, err)
		}
		ds.AddChannel(ch)
	}
	return ds, nil
}

func (l *Loader) buildChannel(entry ChannelEntry) (*schema.Channel, error) {
	ch := &schema.Channel{ID: entry.ID, Name: entry.Name, Rate: entry.Rate}
	if ch.Name == "" {
		ch.Name = fmt.Sprintf("Channel %d", entry.ID)
	}

	shared, err := sharedSeries(entry)
	if err != nil {
		return nil, err
	}
	if shared != nil {
		ch.Series = shared
	}

	for i, subEntry := range entry.SubChannels {
		sub := &schema.SubChannel{
			Name:  subEntry.Name,
			Label: subEntry.Quantity,
			Units: subEntry.Units,
			Rate:  subEntry.Rate,
			Type:  l.classify(subEntry.Quantity),
		}
		if sub.Name == "" {
			sub.Name = fmt.Sprintf("%s %d", ch.Name, i)
		}
		series, err := subChannelSeries(subEntry, shared, i, entry.Rate)
		if err != nil {
			return nil, fmt.Errorf("subchannel %d: %w", i, err)
		}
		sub.Series = series
		ch.AddSubChannel(sub)
	}
	return ch, nil
}

// classify maps a quantity label to a registered type. Labels the registry does
// not know are tagged as unknown rather than left untyped.
func (l *Loader) classify(quantity string) *measure.Type {
	if quantity == "" {
		return nil
	}
	if t := l.registry.Match(quantity); t != nil {
		return t
	}
	return l.registry.Match(measure.UnknownType.Abbrev())
}

func sharedSeries(entry ChannelEntry) (*Series, error) {
	switch {
	case entry.Unavailable:
		return Unavailable(), nil
	case entry.Synthetic != nil:
		return fromSynthetic(entry.Synthetic, entry.Rate, len(entry.SubChannels))
	case entry.Times != nil:
		columns := make([][]float64, len(entry.SubChannels))
		for i, sub := range entry.SubChannels {
			columns[i] = sub.Values
			if sub.Values == nil {
				columns[i] = make([]float64, len(entry.Times))
			}
		}
		return NewSeries(entry.Times, columns...)
	}
	return nil, nil
}

func subChannelSeries(entry SubChannelEntry, shared *Series, index int, channelRate float64) (*Series, error) {
	switch {
	case entry.Unavailable:
		return Unavailable(), nil
	case entry.Synthetic != nil:
		return fromSynthetic(entry.Synthetic, cmp.Or(entry.Rate, channelRate), 1)
	case entry.Times != nil:
		values := entry.Values
		if values == nil {
			values = make([]float64, len(entry.Times))
		}
		return NewSeries(entry.Times, values)
	case shared != nil:
		return shared.Column(index), nil
	}
	return NewSeries(nil)
}

func fromSynthetic(entry *SyntheticEntry, fallbackRate float64, columns int) (*Series, error) {
	rate := entry.Rate
	if rate == 0 {
		rate = fallbackRate
	}
	duration, err := timeparse.Parse(entry.Duration)
	if err != nil {
		return nil, fmt.Errorf("synthetic duration: %w", err)
	}
	offset, err := timeparse.Parse(entry.Offset)
	if err != nil {
		return nil, fmt.Errorf("synthetic offset: %w", err)
	}
	return Synthetic(Wave{
		Rate:      rate,
		Duration:  duration.Micros,
		Offset:    offset.Micros,
		Amplitude: entry.Amplitude,
		Frequency: entry.Frequency,
		Columns:   columns,
	})
}
