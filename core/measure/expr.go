package measure

import "strings"

// term is one token of a filter expression.
type term struct {
	t       *Type
	exclude bool
}

// Expr is a composite filter built from Types. It keeps the included and
// excluded types in token order and renders the same space-separated format
// accepted by Spec.
type Expr struct {
	terms []term
}

// Combine returns an expression matching t or any of others ("A B").
func (t *Type) Combine(others ...*Type) Expr {
	return Expr{terms: []term{{t: t}}}.Combine(others...)
}

// Exclude returns an expression excluding t ("-A").
func (t *Type) Exclude() Expr {
	return Expr{terms: []term{{t: t, exclude: true}}}
}

// WithExclusion returns an expression matching t but excluding others ("A -B").
func (t *Type) WithExclusion(others ...*Type) Expr {
	return Expr{terms: []term{{t: t}}}.WithExclusion(others...)
}

// Combine appends included types to the expression.
func (e Expr) Combine(types ...*Type) Expr {
	out := e.clone(len(types))
	for _, t := range types {
		if t != nil {
			out.terms = append(out.terms, term{t: t})
		}
	}
	return out
}

// WithExclusion appends excluded types to the expression.
func (e Expr) WithExclusion(types ...*Type) Expr {
	out := e.clone(len(types))
	for _, t := range types {
		if t != nil {
			out.terms = append(out.terms, term{t: t, exclude: true})
		}
	}
	return out
}

// Merge appends all terms of other to the expression.
func (e Expr) Merge(other Expr) Expr {
	out := e.clone(len(other.terms))
	out.terms = append(out.terms, other.terms...)
	return out
}

// Included returns the included types in expression order.
func (e Expr) Included() []*Type {
	return e.collect(false)
}

// Excluded returns the excluded types in expression order.
func (e Expr) Excluded() []*Type {
	return e.collect(true)
}

// IsEmpty reports whether the expression has no terms.
func (e Expr) IsEmpty() bool {
	return len(e.terms) == 0
}

// String renders the expression, e.g. "acc pres -light".
func (e Expr) String() string {
	parts := make([]string, 0, len(e.terms))
	for _, tm := range e.terms {
		if tm.exclude {
			parts = append(parts, "-"+tm.t.abbrev)
		} else {
			parts = append(parts, tm.t.abbrev)
		}
	}
	return strings.Join(parts, " ")
}

func (e Expr) clone(extra int) Expr {
	terms := make([]term, len(e.terms), len(e.terms)+extra)
	copy(terms, e.terms)
	return Expr{terms: terms}
}

func (e Expr) collect(exclude bool) []*Type {
	var out []*Type
	for _, tm := range e.terms {
		if tm.exclude == exclude {
			out = append(out, tm.t)
		}
	}
	return out
}
