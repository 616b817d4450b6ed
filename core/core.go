// Package core has the channel selection and channel table logic for idescope.
package core

import (
	"github.com/huangsam/idescope/core/measure"
	"github.com/huangsam/idescope/schema"
)

// Selector picks channels and subchannels by measurement type.
type Selector struct {
	registry *measure.Registry
}

// NewSelector returns a selector resolving filters against reg,
// or measure.Default when reg is nil.
func NewSelector(reg *measure.Registry) *Selector {
	if reg == nil {
		reg = measure.Default
	}
	return &Selector{registry: reg}
}

// Registry returns the registry the selector resolves filters against.
func (s *Selector) Registry() *measure.Registry {
	return s.registry
}

// defaultSelector backs the package-level helpers.
var defaultSelector = NewSelector(nil)

// GetMeasurementType returns the type of a subchannel, or nil when it is untyped.
func GetMeasurementType(sub *schema.SubChannel) *measure.Type {
	if sub == nil {
		return nil
	}
	return sub.Type
}

// GetMeasurementTypes returns one type per leaf of n, in leaf order.
// Untyped leaves yield nil entries.
func GetMeasurementTypes(n schema.Node) []*measure.Type {
	leaves := n.Leaves()
	out := make([]*measure.Type, len(leaves))
	for i, sub := range leaves {
		out[i] = GetMeasurementType(sub)
	}
	return out
}

// FilterChannels applies f to nodes with the default registry.
func FilterChannels(nodes []schema.Node, f measure.Filter) ([]schema.Node, error) {
	return defaultSelector.FilterNodes(nodes, f)
}

// GetChannels selects from ds with the default registry.
func GetChannels(ds *schema.Dataset, f measure.Filter, subchannels bool) ([]schema.Source, error) {
	return defaultSelector.GetChannels(ds, f, subchannels)
}
