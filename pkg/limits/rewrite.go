package limits

// Update returns a table with every finite entry lowered toward the
// observed counts. Infinite entries are never altered and no entry is ever
// raised, so applying Update to an already-minimal table is a no-op.
//
// observed maps category name to its deduplicated warning count; the
// Wildcard key carries the count of categoryless warnings. The wildcard
// entry (and a scalar table, which behaves as wildcard-only) lowers to the
// highest count among categories it covers, the least value that keeps
// re-evaluation violation-free.
func Update(t *Table, observed map[string]int) *Table {
	if t.Scalar() {
		if t.value.IsInfinite() {
			return t.Clone()
		}
		return NewScalar(lower(t.value, maxUncovered(t, observed)))
	}

	out := NewPerCategory()
	for _, cat := range t.categories {
		cur := t.limits[cat]
		switch {
		case cur.IsInfinite():
			out.Set(cat, cur)
		case cat == Wildcard:
			out.Set(cat, lower(cur, maxUncovered(t, observed)))
		default:
			out.Set(cat, lower(cur, observed[cat]))
		}
	}
	return out
}

// maxUncovered returns the highest observed count among categories that
// resolve through the wildcard, i.e. everything without an explicit entry
// of its own.
func maxUncovered(t *Table, observed map[string]int) int {
	max := 0
	for cat, n := range observed {
		if cat != Wildcard && !t.Scalar() {
			if _, declared := t.limits[cat]; declared {
				continue
			}
		}
		if n > max {
			max = n
		}
	}
	return max
}

// lower ratchets a finite limit down to the observed count. A limit is
// never raised: Update runs only on violation-free tallies, so observed
// exceeding the limit cannot happen in normal operation, but the guard
// keeps the "never loosen" invariant unconditional.
func lower(cur Limit, observed int) Limit {
	if observed < cur.n {
		return Finite(observed)
	}
	return cur
}

// Prune collapses a per-category table whose finite entries all share one
// value into the equivalent scalar. A table with any infinite entry cannot
// be collapsed and is returned unchanged, as are scalar tables. Prune never
// changes the effective limit of any category, declared or not: without a
// wildcard entry, undeclared categories default to 0, so a table lacking a
// wildcard only collapses when the shared value is 0.
func Prune(t *Table) *Table {
	if t.Scalar() || len(t.categories) == 0 || t.HasInfinite() {
		return t.Clone()
	}

	first := t.limits[t.categories[0]]
	for _, cat := range t.categories[1:] {
		if t.limits[cat] != first {
			return t.Clone()
		}
	}
	if _, hasWildcard := t.limits[Wildcard]; !hasWildcard && first.n != 0 {
		return t.Clone()
	}
	return NewScalar(first)
}
