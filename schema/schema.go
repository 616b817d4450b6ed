// Package schema has the dataset model, result rows and shared constants for idescope.
package schema

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/idescope/core/measure"
)

// Node is anything that can be reduced to typed leaves.
// A Channel yields its subchannels and a SubChannel yields itself.
type Node interface {
	Leaves() []*SubChannel
}

// Source is a selectable node that can be summarized as one table row.
type Source interface {
	Node
	Address() (channel, subchannel int)
	DisplayID() string
	DisplayName() string
	TypeLabel() string
	UnitsLabel() string
	NominalRate() float64
	Samples() SampleSeries
}

// Channel is a group of subchannels recorded by one sensor.
type Channel struct {
	ID          int           // Channel id as written by the recorder
	Name        string        // Display name
	Rate        float64       // Nominal sample rate in Hz
	SubChannels []*SubChannel // Ordered subchannels
	Series      SampleSeries  // Shared timestamps; may be nil when each subchannel carries its own
}

// SubChannel is a single typed stream within a channel.
type SubChannel struct {
	Index  int           // Position within the parent channel
	Name   string        // Display name
	Parent *Channel      // Owning channel
	Type   *measure.Type // Measurement type; nil when untyped
	Label  string        // Quantity label as recorded, e.g. "Acceleration"
	Units  string        // Units label, e.g. "g"
	Rate   float64       // Nominal sample rate in Hz; 0 inherits the parent rate
	Series SampleSeries  // Own samples; nil inherits the parent series
}

var (
	_ Source = &Channel{}    // Compile-time check
	_ Source = &SubChannel{} // Compile-time check
)

// AddSubChannel appends sub to the channel and sets its parent and index.
func (c *Channel) AddSubChannel(sub *SubChannel) *SubChannel {
	sub.Parent = c
	sub.Index = len(c.SubChannels)
	c.SubChannels = append(c.SubChannels, sub)
	return sub
}

// Leaves returns the channel's subchannels.
func (c *Channel) Leaves() []*SubChannel {
	return c.SubChannels
}

// Address returns the channel id and WholeChannel.
func (c *Channel) Address() (int, int) {
	return c.ID, WholeChannel
}

// DisplayID returns "{id}.*".
func (c *Channel) DisplayID() string {
	return fmt.Sprintf("%d.*", c.ID)
}

// DisplayName returns the channel name.
func (c *Channel) DisplayName() string {
	return c.Name
}

// TypeLabel joins the distinct quantity labels of the subchannels.
func (c *Channel) TypeLabel() string {
	return joinDistinct(c.SubChannels, (*SubChannel).TypeLabel)
}

// UnitsLabel joins the distinct units of the subchannels.
func (c *Channel) UnitsLabel() string {
	return joinDistinct(c.SubChannels, (*SubChannel).UnitsLabel)
}

// NominalRate returns the channel rate in Hz.
func (c *Channel) NominalRate() float64 {
	return c.Rate
}

// Samples returns the shared channel series. Without one, the subchannels'
// own series are merged on their timestamps, one value column per subchannel.
func (c *Channel) Samples() SampleSeries {
	if c.Series != nil {
		return c.Series
	}
	parts := make([]SampleSeries, len(c.SubChannels))
	found := false
	for i, sub := range c.SubChannels {
		parts[i] = sub.Series
		found = found || sub.Series != nil
	}
	if !found {
		return nil
	}
	return &mergedSeries{parts: parts}
}

// Leaves returns the subchannel itself.
func (s *SubChannel) Leaves() []*SubChannel {
	return []*SubChannel{s}
}

// Address returns the parent channel id and the subchannel index.
// The channel id is -1 when the subchannel has no parent.
func (s *SubChannel) Address() (int, int) {
	if s.Parent == nil {
		return -1, s.Index
	}
	return s.Parent.ID, s.Index
}

// DisplayID returns "{channel}.{subchannel}".
func (s *SubChannel) DisplayID() string {
	if s.Parent == nil {
		return fmt.Sprintf("?.%d", s.Index)
	}
	return fmt.Sprintf("%d.%d", s.Parent.ID, s.Index)
}

// DisplayName returns the subchannel name.
func (s *SubChannel) DisplayName() string {
	return s.Name
}

// TypeLabel returns the recorded quantity label, or the type name when the label is empty.
func (s *SubChannel) TypeLabel() string {
	if s.Label == "" && s.Type != nil {
		return s.Type.Name()
	}
	return s.Label
}

// UnitsLabel returns the units.
func (s *SubChannel) UnitsLabel() string {
	return s.Units
}

// NominalRate returns the subchannel rate, or the parent's when unset.
func (s *SubChannel) NominalRate() float64 {
	if s.Rate == 0 && s.Parent != nil {
		return s.Parent.Rate
	}
	return s.Rate
}

// Samples returns the subchannel series, or the parent's when unset.
func (s *SubChannel) Samples() SampleSeries {
	if s.Series == nil && s.Parent != nil {
		return s.Parent.Series
	}
	return s.Series
}

// Dataset is one parsed recording.
type Dataset struct {
	Name         string           // Recording name
	Path         string           // Where the recording was loaded from
	SessionStart time.Time        // UTC start of the recording session; zero if unknown
	Channels     map[int]*Channel // Channels keyed by id
}

// AddChannel registers ch under its id, creating the map when needed.
func (d *Dataset) AddChannel(ch *Channel) *Channel {
	if d.Channels == nil {
		d.Channels = make(map[int]*Channel)
	}
	d.Channels[ch.ID] = ch
	return ch
}

// ChannelIDs returns the channel ids in ascending order.
func (d *Dataset) ChannelIDs() []int {
	ids := make([]int, 0, len(d.Channels))
	for id := range d.Channels {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// OrderedChannels returns the channels in ascending id order.
func (d *Dataset) OrderedChannels() []*Channel {
	ids := d.ChannelIDs()
	out := make([]*Channel, len(ids))
	for i, id := range ids {
		out[i] = d.Channels[id]
	}
	return out
}

// Plots returns every subchannel in channel order.
func (d *Dataset) Plots() []*SubChannel {
	var out []*SubChannel
	for _, ch := range d.OrderedChannels() {
		out = append(out, ch.SubChannels...)
	}
	return out
}

// ErrDisplayID is returned for a malformed channel display id.
var ErrDisplayID = errors.New("bad channel id")

// ParseDisplayID splits "{ch}.{sub}" or "{ch}.*" into its parts.
// The subchannel is WholeChannel for the "*" form; a bare "{ch}" is treated the same.
func ParseDisplayID(s string) (channel, subchannel int, err error) {
	chPart, subPart, hasSub := strings.Cut(strings.TrimSpace(s), ".")
	channel, err = strconv.Atoi(chPart)
	if err != nil || channel < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrDisplayID, s)
	}
	if !hasSub || subPart == "*" {
		return channel, WholeChannel, nil
	}
	subchannel, err = strconv.Atoi(subPart)
	if err != nil || subchannel < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrDisplayID, s)
	}
	return channel, subchannel, nil
}

// Source returns the channel or subchannel named by a display id.
func (d *Dataset) Source(id string) (Source, error) {
	chID, subIdx, err := ParseDisplayID(id)
	if err != nil {
		return nil, err
	}
	ch, ok := d.Channels[chID]
	if !ok {
		return nil, fmt.Errorf("%w: no channel %d", ErrDisplayID, chID)
	}
	if subIdx == WholeChannel {
		return ch, nil
	}
	if subIdx >= len(ch.SubChannels) {
		return nil, fmt.Errorf("%w: channel %d has no subchannel %d", ErrDisplayID, chID, subIdx)
	}
	return ch.SubChannels[subIdx], nil
}

func joinDistinct(subs []*SubChannel, get func(*SubChannel) string) string {
	var parts []string
	for _, sub := range subs {
		v := get(sub)
		if v != "" && !slices.Contains(parts, v) {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
