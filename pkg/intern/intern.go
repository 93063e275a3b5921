// Package intern provides a process-wide string interner. Repeated strings
// (kind names, warning categories, culprit file paths) are reduced to small
// integer handles so that dedup keys and aggregate keys compare in O(1)
// instead of comparing text.
package intern

import "sync"

// Handle identifies an interned string. Handles are stable for the lifetime
// of the Interner that issued them and are pure identifiers; they carry no
// ownership semantics.
type Handle uint32

// None is the zero Handle. It never maps to a real string and is used for
// absent optional values (a warning without a category or description).
const None Handle = 0

// Interner hands out handles for strings. Equal strings always receive the
// same handle. Safe for concurrent use by scanner workers.
type Interner struct {
	mu   sync.RWMutex
	ids  map[string]Handle
	strs []string
}

// New creates an empty Interner. Index 0 is reserved for None.
func New() *Interner {
	return &Interner{
		ids:  make(map[string]Handle),
		strs: make([]string, 1),
	}
}

// Intern returns the handle for s, allocating a new one on first sight.
func (in *Interner) Intern(s string) Handle {
	in.mu.RLock()
	h, ok := in.ids[s]
	in.mu.RUnlock()
	if ok {
		return h
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if h, ok := in.ids[s]; ok {
		return h
	}
	h = Handle(len(in.strs))
	in.strs = append(in.strs, s)
	in.ids[s] = h
	return h
}

// Get returns the handle for s if it has been interned, or None.
func (in *Interner) Get(s string) Handle {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.ids[s]
}

// Lookup returns the string behind h. Lookup(None) returns "".
func (in *Interner) Lookup(h Handle) string {
	if h == None {
		return ""
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(h) >= len(in.strs) {
		return ""
	}
	return in.strs[h]
}

// Len reports the number of distinct strings interned so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.strs) - 1
}
