/*
Package tally turns raw warning occurrences into verdicts: it deduplicates
warnings, attributes each one to its governing limit location, accumulates
per-(location, kind, category) counts, and compares them against the
declared limits.

Aggregation is a single-threaded reduction stage fed by the scanner's
unordered output, so the final counts are a pure function of the warning
multiset and never depend on worker scheduling.
*/
package tally

import (
	"github.com/silven/wcnt/pkg/intern"
	"github.com/silven/wcnt/pkg/limits"
	"github.com/silven/wcnt/pkg/logger"
	"github.com/silven/wcnt/pkg/scan"
)

// Key identifies one aggregate counter: a limit location (its Limits.toml
// path, "" for the no-limits location), a kind and a category. Handles keep
// the key cheap to hash and compare.
type Key struct {
	Location string
	Kind     intern.Handle
	Category intern.Handle
}

// Aggregator consumes warnings, collapses identical identities and counts
// the survivors against their limit locations.
type Aggregator struct {
	in       *intern.Interner
	resolver *limits.Resolver
	log      logger.Logger

	seen     map[scan.Warning]struct{}
	counts   map[Key]int
	warnings map[Key][]scan.Warning
}

// NewAggregator creates an aggregator sharing the run's interner and
// resolver.
func NewAggregator(in *intern.Interner, resolver *limits.Resolver, log logger.Logger) *Aggregator {
	return &Aggregator{
		in:       in,
		resolver: resolver,
		log:      log,
		seen:     make(map[scan.Warning]struct{}),
		counts:   make(map[Key]int),
		warnings: make(map[Key][]scan.Warning),
	}
}

// Add feeds one warning into the aggregate. A warning whose identity has
// been seen before counts as the same occurrence and is dropped: two build
// logs reporting the same diagnostic, or overlapping globs feeding one file
// to two patterns, must not double-count.
func (a *Aggregator) Add(w scan.Warning) {
	if _, dup := a.seen[w]; dup {
		a.log.WithFields(logger.Fields{
			"file": a.in.Lookup(w.File),
			"line": w.Line,
		}).Trace("Dropping duplicate warning")
		return
	}
	a.seen[w] = struct{}{}

	loc := a.resolver.Resolve(a.in.Lookup(w.File))
	key := Key{Location: loc.Path, Kind: w.Kind, Category: w.Category}
	a.counts[key]++
	a.warnings[key] = append(a.warnings[key], w)
}

// AddAll feeds a batch of warnings.
func (a *Aggregator) AddAll(ws []scan.Warning) {
	for _, w := range ws {
		a.Add(w)
	}
}

// Count returns the deduplicated count for a key.
func (a *Aggregator) Count(key Key) int {
	return a.counts[key]
}

// Distinct reports the number of distinct warning identities aggregated.
func (a *Aggregator) Distinct() int {
	return len(a.seen)
}
