package tally

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"

	"github.com/silven/wcnt/pkg/limits"
	"github.com/silven/wcnt/pkg/rules"
)

// UpdateLimitFiles lowers declared limits to the counts a run observed and
// rewrites every Limits.toml that changed. It returns the rewritten paths,
// sorted.
//
// The update is ratchet-only and gated per (location, kind): a kind whose
// limit was violated at a location keeps its declaration there untouched,
// while clean kinds at the same location still tighten. Kinds excluded
// from the run and locations that failed to parse are never rewritten.
// When prune is set, uniform per-category tables additionally collapse to
// scalars where that does not change any effective limit.
func UpdateLimitFiles(fs afero.Fs, r *RunResult, resolver *limits.Resolver, set *rules.Set, prune bool) ([]string, error) {
	var updated []string
	for _, loc := range resolver.Locations() {
		if len(loc.Errs) > 0 {
			continue
		}
		next := loc.Clone()
		for _, kind := range next.Kinds {
			if set.Get(kind) == nil {
				continue
			}
			if r.Violated(loc.Path, kind) {
				continue
			}
			table := limits.Update(next.Tables[kind], r.Observed(loc.Path, kind))
			if prune {
				table = limits.Prune(table)
			}
			next.Tables[kind] = table
		}
		if next.Equal(loc) {
			continue
		}
		if err := afero.WriteFile(fs, loc.Path, limits.Render(next), 0o644); err != nil {
			return updated, fmt.Errorf("failed to rewrite %s: %w", loc.Path, err)
		}
		updated = append(updated, loc.Path)
	}
	sort.Strings(updated)
	return updated, nil
}
