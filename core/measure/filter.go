package measure

import (
	"fmt"
	"sort"
	"strings"
)

// WildcardToken selects every registered type.
const WildcardToken = "*"

// FilterKind tells which variant a Filter holds.
type FilterKind int

// Filter variants.
const (
	NoFilter FilterKind = iota
	Wildcard
	Expression
)

// String returns the variant name.
func (k FilterKind) String() string {
	switch k {
	case Wildcard:
		return "wildcard"
	case Expression:
		return "expression"
	default:
		return "none"
	}
}

// Filter selects measurement types. The zero value matches everything
// without filtering.
type Filter struct {
	kind FilterKind
	spec string
	expr *Expr
}

// None returns a filter that applies no filtering.
func None() Filter {
	return Filter{kind: NoFilter}
}

// All returns a filter including every registered type.
func All() Filter {
	return Filter{kind: Wildcard, spec: WildcardToken}
}

// Spec wraps a textual filter such as "acc pres -light". Tokens are resolved
// by Registry.Split. An empty spec means no filtering and "*" means every
// registered type.
func Spec(s string) Filter {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return None()
	case WildcardToken:
		return All()
	default:
		return Filter{kind: Expression, spec: s}
	}
}

// Only returns a filter including a single type.
func Only(t *Type) Filter {
	if t == nil {
		return None()
	}
	return FromExpr(Expr{terms: []term{{t: t}}})
}

// FromExpr returns a filter from a composed expression.
func FromExpr(e Expr) Filter {
	if e.IsEmpty() {
		return None()
	}
	return Filter{kind: Expression, spec: e.String(), expr: &e}
}

// Kind returns the filter variant.
func (f Filter) Kind() FilterKind {
	return f.kind
}

// String returns the filter in spec-string form; empty for NoFilter.
func (f Filter) String() string {
	return f.spec
}

// TypeSet is a set of types keyed by abbreviation.
type TypeSet map[string]*Type

// Has reports whether t is in the set.
func (s TypeSet) Has(t *Type) bool {
	if t == nil {
		return false
	}
	_, ok := s[t.abbrev]
	return ok
}

// Add inserts t into the set.
func (s TypeSet) Add(t *Type) {
	if t != nil {
		s[t.abbrev] = t
	}
}

// Abbrevs returns the sorted abbreviations in the set.
func (s TypeSet) Abbrevs() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Split resolves a filter into disjoint included and excluded sets.
// Both sets are empty when the filter applies no filtering.
// An excluded type never appears in the included set.
func (r *Registry) Split(f Filter) (included, excluded TypeSet, err error) {
	included, excluded = TypeSet{}, TypeSet{}

	switch f.kind {
	case NoFilter:
		return included, excluded, nil
	case Wildcard:
		for _, t := range r.All() {
			included.Add(t)
		}
		return included, excluded, nil
	}

	if f.expr != nil {
		for _, t := range f.expr.Included() {
			included.Add(t)
		}
		for _, t := range f.expr.Excluded() {
			excluded.Add(t)
		}
	} else {
		for tok := range strings.FieldsSeq(f.spec) {
			if tok == WildcardToken {
				for _, t := range r.All() {
					included.Add(t)
				}
				continue
			}
			target := included
			if rest, ok := strings.CutPrefix(tok, "-"); ok {
				target, tok = excluded, rest
			}
			t, err := r.Lookup(tok)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid filter %q: %w", f.spec, err)
			}
			target.Add(t)
		}
	}

	for k := range excluded {
		delete(included, k)
	}
	return included, excluded, nil
}

// SplitTypes resolves a textual filter against the Default registry.
func SplitTypes(spec string) (included, excluded TypeSet, err error) {
	return Default.Split(Spec(spec))
}
