package limits

import (
	"os"
	gopath "path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/silven/wcnt/pkg/logger"
	"github.com/silven/wcnt/pkg/rules"
)

// Resolver maps a source-file path to its governing limit location: the
// nearest ancestor directory holding a Limits.toml, or None when no
// ancestor up to the scan root has one.
//
// Resolutions are cached per directory and each Limits.toml is parsed at
// most once, even when aggregation workers race to resolve paths beneath
// it.
type Resolver struct {
	fs    afero.Fs
	root  string
	rules *rules.Set
	log   logger.Logger

	mu   sync.Mutex
	dirs map[string]*dirEntry
}

type dirEntry struct {
	once sync.Once
	file *File
}

// NewResolver creates a resolver anchored at the scan root. Paths outside
// the root resolve to None.
func NewResolver(fs afero.Fs, root string, set *rules.Set, log logger.Logger) *Resolver {
	return &Resolver{
		fs:    fs,
		root:  normalize(root),
		rules: set,
		log:   log,
		dirs:  make(map[string]*dirEntry),
	}
}

// Resolve returns the limit location governing the given source-file path.
// Relative paths are taken relative to the scan root.
func (r *Resolver) Resolve(path string) *File {
	norm := r.anchor(path)
	if norm == "" {
		return None
	}
	return r.resolveDir(gopath.Dir(norm))
}

// Register makes sure the location holding the given Limits.toml path is
// parsed and cached, so a clean run can ratchet its limits even when no
// warning resolves to it.
func (r *Resolver) Register(limitsPath string) *File {
	return r.resolveDir(gopath.Dir(normalize(limitsPath)))
}

// Locations returns every real limit location resolved so far, sorted by
// path for deterministic iteration.
func (r *Resolver) Locations() []*File {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]*File)
	for _, e := range r.dirs {
		if e.file != nil && e.file.Path != "" {
			seen[e.file.Path] = e.file
		}
	}
	out := make([]*File, 0, len(seen))
	for _, f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// resolveDir walks dir and its ancestors up to the scan root, returning the
// first location found. Results are memoized per directory with
// single-flight semantics.
func (r *Resolver) resolveDir(dir string) *File {
	if !r.within(dir) {
		return None
	}

	r.mu.Lock()
	e, ok := r.dirs[dir]
	if !ok {
		e = &dirEntry{}
		r.dirs[dir] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		if f := r.probe(dir); f != nil {
			e.file = f
			return
		}
		if dir == r.root {
			e.file = None
			return
		}
		e.file = r.resolveDir(gopath.Dir(dir))
	})
	return e.file
}

// probe checks dir for a Limits.toml and parses it when present. A
// filesystem failure counts as "no limit file at this level"; the upward
// walk continues.
func (r *Resolver) probe(dir string) *File {
	limitsPath := gopath.Join(dir, FileName)
	if _, err := r.fs.Stat(limitsPath); err != nil {
		if !os.IsNotExist(err) {
			r.log.WithFields(logger.Fields{
				"path":  limitsPath,
				"error": err,
			}).Warn("Failed to probe for limits file, treating as absent")
		}
		return nil
	}

	f := ParseFile(r.fs, limitsPath, r.rules)
	r.log.WithFields(logger.Fields{
		"path":  limitsPath,
		"kinds": len(f.Kinds),
	}).Debug("Parsed limits file")
	return f
}

// anchor normalizes a culprit path and anchors relative paths at the scan
// root. Returns "" for paths outside the root.
func (r *Resolver) anchor(path string) string {
	norm := normalize(path)
	if !gopath.IsAbs(norm) && !filepath.IsAbs(path) {
		norm = gopath.Join(r.root, norm)
	}
	if !r.within(norm) {
		return ""
	}
	return norm
}

func (r *Resolver) within(path string) bool {
	return path == r.root || strings.HasPrefix(path, r.root+"/")
}

// normalize converts a path to cleaned, slash-separated form. Windows
// compilers emit backslashed culprit paths into logs regardless of the
// host.
func normalize(path string) string {
	return gopath.Clean(strings.ReplaceAll(path, "\\", "/"))
}
