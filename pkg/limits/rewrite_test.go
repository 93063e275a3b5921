package limits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLowersToObservedCounts(t *testing.T) {
	table := NewPerCategory()
	table.Set("-Wpedantic", Finite(3))
	table.Set("-Wcomment", Infinite)
	table.Set(Wildcard, Finite(5))

	updated := Update(table, map[string]int{
		"-Wpedantic": 2,
		"-Wcomment":  50,
		"-Wextra":    4,
	})

	assert.Equal(t, Finite(2), updated.Lookup("-Wpedantic"))
	// infinite entries are never altered
	assert.Equal(t, Infinite, updated.Lookup("-Wcomment"))
	// the wildcard lowers to the highest count resolving through it
	assert.Equal(t, Finite(4), updated.Lookup("-Wsomething-else"))
	// declaration order survives
	assert.Equal(t, []string{"-Wpedantic", "-Wcomment", "_"}, updated.Categories())
}

func TestUpdateUnobservedEntriesDropToZero(t *testing.T) {
	table := NewPerCategory()
	table.Set("-Wpedantic", Finite(3))
	table.Set(Wildcard, Finite(5))

	updated := Update(table, nil)
	assert.Equal(t, Finite(0), updated.Lookup("-Wpedantic"))
	assert.Equal(t, Finite(0), updated.Lookup("anything"))
}

func TestUpdateScalar(t *testing.T) {
	updated := Update(NewScalar(Finite(300)), map[string]int{Wildcard: 120})
	assert.True(t, updated.Scalar())
	assert.Equal(t, Finite(120), updated.Lookup("anything"))

	// a scalar covers every category, so the highest count wins
	updated = Update(NewScalar(Finite(300)), map[string]int{"F401": 80, "E501": 40})
	assert.Equal(t, Finite(80), updated.Lookup("F401"))

	assert.Equal(t, Infinite, Update(NewScalar(Infinite), map[string]int{"x": 7}).Lookup("x"))
}

func TestUpdateNeverLoosens(t *testing.T) {
	table := NewPerCategory()
	table.Set("-Wpedantic", Finite(3))

	updated := Update(table, map[string]int{"-Wpedantic": 10})
	assert.Equal(t, Finite(3), updated.Lookup("-Wpedantic"))
}

func TestUpdateIsIdempotent(t *testing.T) {
	table := NewPerCategory()
	table.Set("-Wpedantic", Finite(7))
	table.Set(Wildcard, Finite(2))
	observed := map[string]int{"-Wpedantic": 4, "-Wother": 1}

	once := Update(table, observed)
	twice := Update(once, observed)
	assert.True(t, once.Equal(twice))
}

func TestUpdateThenEvaluateNeverViolates(t *testing.T) {
	table := NewPerCategory()
	table.Set("-Wpedantic", Finite(9))
	table.Set(Wildcard, Finite(9))
	observed := map[string]int{"-Wpedantic": 4, "-Wextra": 2, "-Wother": 3}

	updated := Update(table, observed)
	for cat, n := range observed {
		assert.True(t, updated.Lookup(cat).Allows(n), "category %s", cat)
	}
}

func TestPruneCollapsesUniformTable(t *testing.T) {
	table := NewPerCategory()
	table.Set("-Wpedantic", Finite(2))
	table.Set("-Wextra", Finite(2))
	table.Set(Wildcard, Finite(2))

	pruned := Prune(table)
	require.True(t, pruned.Scalar())
	assert.Equal(t, Finite(2), pruned.Lookup("anything"))
}

func TestPruneBlockedByInfiniteEntry(t *testing.T) {
	table := NewPerCategory()
	table.Set("-Wpedantic", Finite(2))
	table.Set("-Wcomment", Infinite)
	table.Set(Wildcard, Finite(2))

	pruned := Prune(table)
	assert.False(t, pruned.Scalar())
	assert.True(t, table.Equal(pruned))
}

func TestPruneKeepsNonUniformTable(t *testing.T) {
	table := NewPerCategory()
	table.Set("-Wpedantic", Finite(2))
	table.Set(Wildcard, Finite(0))

	pruned := Prune(table)
	assert.True(t, table.Equal(pruned))
}

func TestPruneWithoutWildcardOnlyCollapsesZero(t *testing.T) {
	// collapsing {a=3, b=3} to scalar 3 would raise undeclared categories
	// from 0 to 3
	table := NewPerCategory()
	table.Set("-Wa", Finite(3))
	table.Set("-Wb", Finite(3))
	pruned := Prune(table)
	assert.True(t, table.Equal(pruned))

	zeros := NewPerCategory()
	zeros.Set("-Wa", Finite(0))
	zeros.Set("-Wb", Finite(0))
	pruned = Prune(zeros)
	require.True(t, pruned.Scalar())
	assert.Equal(t, Finite(0), pruned.Lookup("anything"))
}

func TestPrunePreservesEffectiveLimits(t *testing.T) {
	table := NewPerCategory()
	table.Set("-Wpedantic", Finite(2))
	table.Set(Wildcard, Finite(2))

	pruned := Prune(table)
	for _, cat := range []string{"-Wpedantic", "-Wnew", Wildcard} {
		assert.Equal(t, table.Lookup(cat), pruned.Lookup(cat), "category %s", cat)
	}
}

func TestPruneIsIdempotent(t *testing.T) {
	table := NewPerCategory()
	table.Set("-Wpedantic", Finite(2))
	table.Set(Wildcard, Finite(2))

	once := Prune(table)
	twice := Prune(once)
	assert.True(t, once.Equal(twice))
}
