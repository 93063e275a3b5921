package limits

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/silven/wcnt/pkg/rules"
)

// FileName is the name a limit-configuration file must have.
const FileName = "Limits.toml"

// File is one parsed Limits.toml: a limit location owning one Table per
// declared kind. Kind declaration order is retained for stable rewrites.
//
// Per-kind configuration errors do not abort the run; the affected kind
// fails closed (no table, so every lookup yields 0) and the error is kept
// in Errs for reporting.
type File struct {
	Path   string
	Kinds  []string
	Tables map[string]*Table
	Errs   []error
}

// None is the synthetic no-limits location governing files with no ancestor
// Limits.toml. Every lookup against it yields 0.
var None = &File{}

// Table returns the declared table for a kind, or nil when the kind has no
// entry at this location.
func (f *File) Table(kind string) *Table {
	if f == nil {
		return nil
	}
	return f.Tables[kind]
}

// Dir returns the directory this location governs, or "" for None.
func (f *File) Dir() string {
	if f.Path == "" {
		return ""
	}
	i := strings.LastIndexByte(f.Path, '/')
	if i < 0 {
		return ""
	}
	return f.Path[:i]
}

// ParseFile reads and parses a Limits.toml file. I/O and syntax failures
// fail the whole location closed: the returned File has no tables and
// carries the error.
func ParseFile(fs afero.Fs, path string, set *rules.Set) *File {
	f := &File{Path: path, Tables: make(map[string]*Table)}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		f.Errs = append(f.Errs, fmt.Errorf("failed to read %s: %w", path, err))
		return f
	}
	parseInto(f, string(data), set)
	return f
}

// parseInto decodes Limits.toml contents into f. Top-level integers and
// floats are scalar limits; tables are per-category limits. The only legal
// values are non-negative integers and the float literal inf.
func parseInto(f *File, contents string, set *rules.Set) {
	var raw map[string]interface{}
	md, err := toml.Decode(contents, &raw)
	if err != nil {
		f.Errs = append(f.Errs, fmt.Errorf("failed to parse %s: %w", f.Path, err))
		return
	}

	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		kindName := key[0]
		val, ok := raw[kindName]
		if !ok {
			continue
		}

		if set.Get(kindName) == nil {
			f.Errs = append(f.Errs, fmt.Errorf(
				"%s refers to kind %q which is not configured in the rule file", f.Path, kindName))
			continue
		}

		switch v := val.(type) {
		case map[string]interface{}:
			table := NewPerCategory()
			bad := false
			for _, sub := range md.Keys() {
				if len(sub) != 2 || sub[0] != kindName {
					continue
				}
				category := sub[1]
				limit, err := toLimit(v[category])
				if err != nil {
					f.Errs = append(f.Errs, fmt.Errorf(
						"%s: kind %q category %q: %w", f.Path, kindName, category, err))
					bad = true
					break
				}
				table.Set(category, limit)
			}
			if bad {
				continue
			}
			f.Kinds = append(f.Kinds, kindName)
			f.Tables[kindName] = table

		default:
			limit, err := toLimit(val)
			if err != nil {
				f.Errs = append(f.Errs, fmt.Errorf("%s: kind %q: %w", f.Path, kindName, err))
				continue
			}
			f.Kinds = append(f.Kinds, kindName)
			f.Tables[kindName] = NewScalar(limit)
		}
	}
}

func toLimit(val interface{}) (Limit, error) {
	switch v := val.(type) {
	case int64:
		if v < 0 {
			return Limit{}, fmt.Errorf("limit values can only be a non-negative integer or `inf`, got %d", v)
		}
		return Finite(int(v)), nil
	case float64:
		if math.IsInf(v, 1) {
			return Infinite, nil
		}
		return Limit{}, fmt.Errorf("limit values can only be a non-negative integer or `inf`, got %v", v)
	default:
		return Limit{}, fmt.Errorf("limit values can only be a non-negative integer or `inf`, got %T", val)
	}
}

// Render serializes a File in canonical form: scalar entries first, then one
// [kind] table per per-category kind, both in retained declaration order.
// TOML requires top-level values ahead of tables, which is why the scalars
// are grouped.
func Render(f *File) []byte {
	var b strings.Builder

	for _, kind := range f.Kinds {
		t := f.Tables[kind]
		if t != nil && t.Scalar() {
			fmt.Fprintf(&b, "%s = %s\n", kind, t.value)
		}
	}
	for _, kind := range f.Kinds {
		t := f.Tables[kind]
		if t == nil || t.Scalar() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s]\n", kind)
		for _, cat := range t.Categories() {
			fmt.Fprintf(&b, "%s = %s\n", quoteKey(cat), t.limits[cat])
		}
	}
	return []byte(b.String())
}

// quoteKey renders a TOML key, quoting when it is not a bare key. Category
// names like -Wpedantic are bare-safe; names with spaces or '=' are not.
func quoteKey(key string) string {
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Sprintf("%q", key)
		}
	}
	if key == "" {
		return `""`
	}
	return key
}

// Clone returns a deep copy of the file, sharing nothing with the original.
func (f *File) Clone() *File {
	c := &File{Path: f.Path, Tables: make(map[string]*Table, len(f.Tables))}
	c.Kinds = append(c.Kinds, f.Kinds...)
	c.Errs = append(c.Errs, f.Errs...)
	for kind, t := range f.Tables {
		c.Tables[kind] = t.Clone()
	}
	return c
}

// Equal reports whether two files declare identical tables in identical
// order.
func (f *File) Equal(o *File) bool {
	if len(f.Kinds) != len(o.Kinds) {
		return false
	}
	for i, kind := range f.Kinds {
		if o.Kinds[i] != kind || !f.Tables[kind].Equal(o.Tables[kind]) {
			return false
		}
	}
	return true
}

// SortedKinds returns the declared kind names sorted, for deterministic
// reporting independent of declaration order.
func (f *File) SortedKinds() []string {
	out := append([]string(nil), f.Kinds...)
	sort.Strings(out)
	return out
}
