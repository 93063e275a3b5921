// Package rules loads and represents the Wcnt.toml rule file: one named
// warning kind per TOML table, each with a regular expression and a set of
// file globs selecting the log files that kind scans.
//
//	[gcc]
//	regex = "^(?P<file>[^:]+):(?P<line>\\d+):(?P<column>\\d+): warning: (?P<description>.+) \\[(?P<category>.+)\\]$"
//	files = ["**/gcc.log", "**/make.log"]
//
// The regex must define a named capture group `file`; `line`, `column`,
// `category` and `description` are optional. A kind whose pattern captures
// `category` is categorizable and may be given per-category limits.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// Kind is one named category of warning. Immutable after Load.
type Kind struct {
	Name    string
	Pattern *regexp.Regexp
	Globs   []string

	// Categorizable is true when the pattern captures a category group.
	Categorizable bool

	globs []matcher

	// Subexpression indexes into Pattern, -1 when the group is absent.
	FileIdx int
	LineIdx int
	ColIdx  int
	CatIdx  int
	DescIdx int
}

// matcher pairs a compiled glob with the raw pattern it came from. Patterns
// without a path separator match against the base name only, so a bare
// "*.txt" matches at any depth.
type matcher struct {
	g        glob.Glob
	baseOnly bool
}

// Set is the full parsed rule file. Kinds keeps declaration order.
type Set struct {
	Kinds  []*Kind
	byName map[string]*Kind
}

type rawKind struct {
	Regex string   `toml:"regex"`
	Files []string `toml:"files"`
}

// Load reads and validates a Wcnt.toml rule file. Any malformed kind is a
// fatal error: the rule set is the contract the whole run depends on.
func Load(fs afero.Fs, path string) (*Set, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	set, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule file %s: %w", path, err)
	}
	return set, nil
}

// Parse parses rule file contents. Split from Load so tests can feed
// literals.
func Parse(contents string) (*Set, error) {
	var raw map[string]rawKind
	md, err := toml.Decode(contents, &raw)
	if err != nil {
		return nil, err
	}

	set := &Set{byName: make(map[string]*Kind, len(raw))}
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		name := key[0]
		rk, ok := raw[name]
		if !ok {
			continue
		}

		kind, err := newKind(name, rk)
		if err != nil {
			return nil, err
		}
		set.Kinds = append(set.Kinds, kind)
		set.byName[name] = kind
	}
	return set, nil
}

func newKind(name string, rk rawKind) (*Kind, error) {
	if rk.Regex == "" {
		return nil, fmt.Errorf("kind %q: missing required field `regex`", name)
	}
	if len(rk.Files) == 0 {
		return nil, fmt.Errorf("kind %q: missing required field `files`", name)
	}

	// Patterns apply to whole file contents so they may span lines.
	pattern, err := regexp.Compile("(?m)" + rk.Regex)
	if err != nil {
		return nil, fmt.Errorf("kind %q: invalid regex: %w", name, err)
	}

	kind := &Kind{
		Name:    name,
		Pattern: pattern,
		Globs:   rk.Files,
		FileIdx: -1,
		LineIdx: -1,
		ColIdx:  -1,
		CatIdx:  -1,
		DescIdx: -1,
	}
	for i, groupName := range pattern.SubexpNames() {
		switch groupName {
		case "file":
			kind.FileIdx = i
		case "line":
			kind.LineIdx = i
		case "column":
			kind.ColIdx = i
		case "category":
			kind.CatIdx = i
		case "description":
			kind.DescIdx = i
		}
	}
	if kind.FileIdx < 0 {
		return nil, fmt.Errorf("kind %q: regex does not capture the required group `file`", name)
	}
	kind.Categorizable = kind.CatIdx >= 0

	for _, p := range rk.Files {
		baseOnly := !strings.Contains(p, "/")
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("kind %q: invalid glob %q: %w", name, p, err)
		}
		kind.globs = append(kind.globs, matcher{g: g, baseOnly: baseOnly})

		// "**/x" should also match a bare "x" with no directory part.
		if rest, ok := strings.CutPrefix(p, "**/"); ok && rest != "" {
			rg, err := glob.Compile(rest, '/')
			if err != nil {
				return nil, fmt.Errorf("kind %q: invalid glob %q: %w", name, p, err)
			}
			kind.globs = append(kind.globs, matcher{g: rg, baseOnly: !strings.Contains(rest, "/")})
		}
	}

	return kind, nil
}

// Matches reports whether path is a log file this kind should scan. Paths
// are compared with forward slashes.
func (k *Kind) Matches(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	for _, m := range k.globs {
		if m.baseOnly {
			if m.g.Match(base) {
				return true
			}
		} else if m.g.Match(path) || m.g.Match(strings.TrimPrefix(path, "/")) {
			return true
		}
	}
	return false
}

// Get returns the kind with the given name, or nil.
func (s *Set) Get(name string) *Kind {
	return s.byName[name]
}

// Matching returns the kinds whose globs match path, in declaration order.
func (s *Set) Matching(path string) []*Kind {
	var out []*Kind
	for _, k := range s.Kinds {
		if k.Matches(path) {
			out = append(out, k)
		}
	}
	return out
}

// Restrict returns a set containing only the named kinds, preserving
// declaration order. Unknown names are an error so a typo in --only does
// not silently pass a run.
func (s *Set) Restrict(only []string) (*Set, error) {
	if len(only) == 0 {
		return s, nil
	}
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		if s.byName[name] == nil {
			return nil, fmt.Errorf("unknown kind %q in kind filter", name)
		}
		wanted[name] = true
	}

	out := &Set{byName: make(map[string]*Kind, len(wanted))}
	for _, k := range s.Kinds {
		if wanted[k.Name] {
			out.Kinds = append(out.Kinds, k)
			out.byName[k.Name] = k
		}
	}
	return out, nil
}

// Names returns the kind names in declaration order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Kinds))
	for _, k := range s.Kinds {
		names = append(names, k.Name)
	}
	return names
}
