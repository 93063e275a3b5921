package tally

import (
	"fmt"
	"sort"

	"github.com/silven/wcnt/pkg/intern"
	"github.com/silven/wcnt/pkg/limits"
	"github.com/silven/wcnt/pkg/rules"
	"github.com/silven/wcnt/pkg/scan"
)

// Verdict is the outcome for one (location, kind, category) triple: the
// deduplicated count observed against the limit that governs it. Category
// is the wildcard name for warnings without one.
type Verdict struct {
	Location string
	Kind     string
	Category string
	Observed int
	Limit    limits.Limit
	Violated bool
}

// RunResult is the evaluated outcome of a whole run.
type RunResult struct {
	Verdicts   []Verdict
	Violations int
	Errors     []error

	in       *intern.Interner
	warnings map[Key][]scan.Warning
	observed map[string]map[string]map[string]int
	violated map[string]map[string]bool
}

// Success reports whether the run stayed within every limit.
func (r *RunResult) Success() bool {
	return r.Violations == 0
}

// Observed returns the per-category counts seen for a kind at a location,
// keyed by category name. Nil when nothing was observed.
func (r *RunResult) Observed(location, kind string) map[string]int {
	return r.observed[location][kind]
}

// Violated reports whether any category of a kind exceeded its limit at a
// location.
func (r *RunResult) Violated(location, kind string) bool {
	return r.violated[location][kind]
}

// Detail is a single warning occurrence resolved back to strings for
// display. Line and Col are 0 when the pattern did not capture them.
type Detail struct {
	File     string
	Line     int
	Col      int
	Category string
	Desc     string
}

// Details returns the occurrences behind a verdict, ordered by file, line
// and column.
func (r *RunResult) Details(v Verdict) []Detail {
	cat := intern.None
	if v.Category != limits.Wildcard {
		if cat = r.in.Get(v.Category); cat == intern.None {
			return nil
		}
	}
	kind := r.in.Get(v.Kind)
	if kind == intern.None {
		return nil
	}
	key := Key{Location: v.Location, Kind: kind, Category: cat}

	ds := make([]Detail, 0, len(r.warnings[key]))
	for _, w := range r.warnings[key] {
		ds = append(ds, Detail{
			File:     r.in.Lookup(w.File),
			Line:     w.Line,
			Col:      w.Col,
			Category: r.in.Lookup(w.Category),
			Desc:     r.in.Lookup(w.Desc),
		})
	}
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].File != ds[j].File {
			return ds[i].File < ds[j].File
		}
		if ds[i].Line != ds[j].Line {
			return ds[i].Line < ds[j].Line
		}
		return ds[i].Col < ds[j].Col
	})
	return ds
}

// Evaluate compares the aggregated counts against every limit location and
// produces the run's verdicts.
//
// A verdict is emitted for every (location, kind) pair that either declares
// a limit or saw at least one warning, one per category: declared
// categories first in declaration order, then observed-only categories
// sorted by name. Declared but unobserved entries evaluate at 0, which is
// what lets a clean run ratchet them down later.
//
// Verdict order is deterministic: locations sorted by path with the
// no-limits location last, kinds in rule declaration order.
func Evaluate(a *Aggregator, set *rules.Set) *RunResult {
	r := &RunResult{
		in:       a.in,
		warnings: a.warnings,
		observed: make(map[string]map[string]map[string]int),
		violated: make(map[string]map[string]bool),
	}

	// Re-key the aggregate by resolved names for lookup and for the
	// rewrite stage.
	for key, n := range a.counts {
		cat := limits.Wildcard
		if key.Category != intern.None {
			cat = a.in.Lookup(key.Category)
		}
		kind := a.in.Lookup(key.Kind)
		byKind, ok := r.observed[key.Location]
		if !ok {
			byKind = make(map[string]map[string]int)
			r.observed[key.Location] = byKind
		}
		byCat, ok := byKind[kind]
		if !ok {
			byCat = make(map[string]int)
			byKind[kind] = byCat
		}
		byCat[cat] += n
	}

	locations := a.resolver.Locations()
	if _, ok := r.observed[""]; ok {
		locations = append(locations, limits.None)
	}

	for _, loc := range locations {
		r.Errors = append(r.Errors, loc.Errs...)
		for _, kind := range set.Kinds {
			r.evaluateKind(loc, kind)
		}
	}
	return r
}

func (r *RunResult) evaluateKind(loc *limits.File, kind *rules.Kind) {
	table := loc.Table(kind.Name)
	observed := r.observed[loc.Path][kind.Name]
	if table == nil && len(observed) == 0 {
		return
	}

	// A per-category table on a kind whose pattern cannot capture a
	// category can never match anything: surface it and fail the kind
	// closed.
	broken := false
	if table != nil && !table.Scalar() && !kind.Categorizable {
		for _, cat := range table.Categories() {
			if cat != limits.Wildcard {
				broken = true
				break
			}
		}
		if broken {
			r.Errors = append(r.Errors, fmt.Errorf(
				"limits %s: kind %q declares per-category limits but its pattern has no category group",
				loc.Path, kind.Name))
		}
	}

	cats := verdictCategories(table, observed)
	for _, cat := range cats {
		limit := limits.Finite(0)
		if !broken {
			limit = table.Lookup(cat)
		}
		n := observed[cat]
		v := Verdict{
			Location: loc.Path,
			Kind:     kind.Name,
			Category: cat,
			Observed: n,
			Limit:    limit,
			Violated: !limit.Allows(n),
		}
		r.Verdicts = append(r.Verdicts, v)
		if v.Violated {
			r.Violations++
			byKind, ok := r.violated[loc.Path]
			if !ok {
				byKind = make(map[string]bool)
				r.violated[loc.Path] = byKind
			}
			byKind[kind.Name] = true
		}
	}
}

// verdictCategories returns declared categories in declaration order
// followed by observed-only categories sorted by name. A scalar table
// declares exactly the wildcard.
func verdictCategories(table *limits.Table, observed map[string]int) []string {
	var cats []string
	declared := make(map[string]struct{})
	if table != nil {
		if table.Scalar() {
			cats = append(cats, limits.Wildcard)
			declared[limits.Wildcard] = struct{}{}
		} else {
			for _, c := range table.Categories() {
				cats = append(cats, c)
				declared[c] = struct{}{}
			}
		}
	}
	var extra []string
	for c := range observed {
		if _, ok := declared[c]; !ok {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(cats, extra...)
}
