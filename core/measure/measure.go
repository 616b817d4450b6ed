// Package measure has the measurement type registry and the filter algebra
// used to select channels by physical quantity.
package measure

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownType is returned when a filter references an abbreviation that is not registered.
var ErrUnknownType = errors.New("unknown measurement type")

// Type is a canonical measurement type keyed by its abbreviation.
// A Registry hands out at most one *Type per abbreviation.
type Type struct {
	name   string
	abbrev string
}

// Name returns the human-readable name.
func (t *Type) Name() string {
	return t.name
}

// Abbrev returns the abbreviation, which is the canonical key.
func (t *Type) Abbrev() string {
	return t.abbrev
}

// String returns the abbreviation so a Type can be used directly in filter specs.
func (t *Type) String() string {
	return t.abbrev
}

// Equal reports whether v is this type's abbreviation or a Type with the same abbreviation.
func (t *Type) Equal(v any) bool {
	if t == nil {
		return v == nil
	}
	switch other := v.(type) {
	case string:
		return other == t.abbrev
	case *Type:
		return other != nil && other.abbrev == t.abbrev
	case Type:
		return other.abbrev == t.abbrev
	default:
		return false
	}
}

// Registry maps abbreviations to their canonical Type.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
	order []*Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Get returns the Type registered under abbrev, creating it with name if absent.
// An existing entry keeps the name it was first registered with.
func (r *Registry) Get(name, abbrev string) *Type {
	r.mu.RLock()
	t, ok := r.types[abbrev]
	r.mu.RUnlock()
	if ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.types[abbrev]; ok {
		return t
	}
	t = &Type{name: name, abbrev: abbrev}
	r.types[abbrev] = t
	r.order = append(r.order, t)
	return t
}

// Lookup returns the Type registered under abbrev.
func (r *Registry) Lookup(abbrev string) (*Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.types[abbrev]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, abbrev)
}

// Match resolves a free-form quantity label, such as the one a recorder writes
// next to a subchannel, to a registered Type. Both the type name and the
// abbreviation are accepted, ignoring case. It returns nil when nothing matches.
func (r *Registry) Match(label string) *Type {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.types[label]; ok {
		return t
	}
	for _, t := range r.order {
		if strings.EqualFold(t.name, label) || strings.EqualFold(t.abbrev, label) {
			return t
		}
	}
	return nil
}

// All returns every registered Type in registration order.
func (r *Registry) All() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
