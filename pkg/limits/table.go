/*
Package limits implements the limit model of wcnt: per-directory Limits.toml
files declaring how many warnings of each kind (and category) a subtree is
allowed to have, the nearest-ancestor resolver that attributes a source file
to its governing Limits.toml, and the update/prune rewrite that ratchets
limits downward after a clean run.

A limit is either a non-negative count or infinite. A kind's limits are
either one scalar value for every category, or a per-category table where
the "_" entry is the wildcard applied to undeclared categories.
*/
package limits

import "strconv"

// Wildcard is the category name that matches any category without an
// explicit entry.
const Wildcard = "_"

// Limit is the maximum permitted warning count for one (location, kind,
// category). The zero value is a finite limit of 0.
type Limit struct {
	n   int
	inf bool
}

// Infinite is the limit that is never violated and never rewritten.
var Infinite = Limit{inf: true}

// Finite returns a finite limit of n.
func Finite(n int) Limit {
	return Limit{n: n}
}

// IsInfinite reports whether the limit is infinite.
func (l Limit) IsInfinite() bool {
	return l.inf
}

// Value returns the finite value. Only meaningful when !IsInfinite().
func (l Limit) Value() int {
	return l.n
}

// Allows reports whether an observed count stays within the limit.
func (l Limit) Allows(observed int) bool {
	return l.inf || observed <= l.n
}

func (l Limit) String() string {
	if l.inf {
		return "inf"
	}
	return strconv.Itoa(l.n)
}

// Table holds the declared limits for one kind at one location: either a
// single scalar applied to every category, or a per-category mapping.
// Category declaration order is retained so rewritten files produce stable
// diffs.
type Table struct {
	scalar     bool
	value      Limit
	categories []string
	limits     map[string]Limit
}

// NewScalar returns a scalar table, uniform across all categories.
func NewScalar(v Limit) *Table {
	return &Table{scalar: true, value: v}
}

// NewPerCategory returns an empty per-category table.
func NewPerCategory() *Table {
	return &Table{limits: make(map[string]Limit)}
}

// Scalar reports whether the table is a single scalar limit.
func (t *Table) Scalar() bool {
	return t.scalar
}

// Set declares or replaces a category entry. First declaration fixes the
// category's position in the table's order. Set on a scalar table is a
// programming error and panics.
func (t *Table) Set(category string, v Limit) {
	if t.scalar {
		panic("limits: Set on scalar table")
	}
	if _, ok := t.limits[category]; !ok {
		t.categories = append(t.categories, category)
	}
	t.limits[category] = v
}

// Categories returns the declared category names in declaration order.
// Empty for scalar tables.
func (t *Table) Categories() []string {
	return t.categories
}

// Get returns the explicitly declared entry for a category, without
// wildcard fallback.
func (t *Table) Get(category string) (Limit, bool) {
	if t.scalar {
		return t.value, category == Wildcard
	}
	l, ok := t.limits[category]
	return l, ok
}

// Lookup resolves the effective limit for a category: the exact entry if
// declared, else the wildcard entry, else 0. A scalar table behaves as a
// per-category table whose only entry is the wildcard.
func (t *Table) Lookup(category string) Limit {
	if t == nil {
		return Finite(0)
	}
	if t.scalar {
		return t.value
	}
	if l, ok := t.limits[category]; ok {
		return l
	}
	if l, ok := t.limits[Wildcard]; ok {
		return l
	}
	return Finite(0)
}

// HasInfinite reports whether any entry of the table is infinite.
func (t *Table) HasInfinite() bool {
	if t.scalar {
		return t.value.IsInfinite()
	}
	for _, l := range t.limits {
		if l.IsInfinite() {
			return true
		}
	}
	return false
}

// Equal reports whether two tables declare the same entries in the same
// order and form.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.scalar != o.scalar {
		return false
	}
	if t.scalar {
		return t.value == o.value
	}
	if len(t.categories) != len(o.categories) {
		return false
	}
	for i, cat := range t.categories {
		if o.categories[i] != cat || t.limits[cat] != o.limits[cat] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	if t.scalar {
		return NewScalar(t.value)
	}
	c := NewPerCategory()
	for _, cat := range t.categories {
		c.Set(cat, t.limits[cat])
	}
	return c
}
