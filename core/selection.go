package core

import (
	"github.com/huangsam/idescope/core/measure"
	"github.com/huangsam/idescope/schema"
)

// matcher applies split type sets to leaves.
type matcher struct {
	included measure.TypeSet
	excluded measure.TypeSet
}

// none reports whether the matcher lets everything through.
func (m matcher) none() bool {
	return len(m.included) == 0 && len(m.excluded) == 0
}

// leaf reports whether a single subchannel passes the filter.
func (m matcher) leaf(sub *schema.SubChannel) bool {
	t := GetMeasurementType(sub)
	if m.excluded.Has(t) {
		return false
	}
	return len(m.included) == 0 || m.included.Has(t)
}

// node reports whether any leaf of n passes the filter.
func (m matcher) node(n schema.Node) bool {
	if m.none() {
		return true
	}
	for _, sub := range n.Leaves() {
		if m.leaf(sub) {
			return true
		}
	}
	return false
}

func (s *Selector) matcher(f measure.Filter) (matcher, error) {
	included, excluded, err := s.registry.Split(f)
	if err != nil {
		return matcher{}, err
	}
	return matcher{included: included, excluded: excluded}, nil
}

// FilterNodes returns the nodes matching f, in input order and without duplicates.
// A channel matches when any of its subchannels does.
func (s *Selector) FilterNodes(nodes []schema.Node, f measure.Filter) ([]schema.Node, error) {
	m, err := s.matcher(f)
	if err != nil {
		return nil, err
	}
	return m.filter(nodes), nil
}

// FilterChannelMap is FilterNodes over an id-keyed channel map, visited by ascending id.
func (s *Selector) FilterChannelMap(channels map[int]*schema.Channel, f measure.Filter) ([]schema.Node, error) {
	ds := schema.Dataset{Channels: channels}
	nodes := make([]schema.Node, 0, len(channels))
	for _, ch := range ds.OrderedChannels() {
		nodes = append(nodes, ch)
	}
	return s.FilterNodes(nodes, f)
}

// GetChannels selects channels of ds matching f. With subchannels set, the result is
// flattened to the matching subchannels; otherwise whole channels are returned.
func (s *Selector) GetChannels(ds *schema.Dataset, f measure.Filter, subchannels bool) ([]schema.Source, error) {
	m, err := s.matcher(f)
	if err != nil {
		return nil, err
	}

	var out []schema.Source
	for _, ch := range ds.OrderedChannels() {
		if !m.node(ch) {
			continue
		}
		if !subchannels {
			out = append(out, ch)
			continue
		}
		for _, sub := range ch.SubChannels {
			if m.none() || m.leaf(sub) {
				out = append(out, sub)
			}
		}
	}
	return out, nil
}

func (m matcher) filter(nodes []schema.Node) []schema.Node {
	seen := make(map[schema.Node]struct{}, len(nodes))
	out := make([]schema.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if m.node(n) {
			out = append(out, n)
		}
	}
	return out
}
