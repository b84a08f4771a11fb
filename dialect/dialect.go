// Package dialect implements the project conventions a session runs under.
//
// A dialect decides how usages are extracted from a source file (structured
// call scanning or raw index lookups), where the locale table lives relative
// to that file, which layout the table uses and how new entries are seeded.
// Two dialects are built in:
//
//	sis   structured t()/$t() calls; one lang.ts next to the source file
//	      holding a cn and an en binding (combined layout)
//	myth  $lang['key'] lookups; lang.cn.js and lang.en.js next to the source
//	      file, each holding a $lang binding (split layout)
//
// Further dialects can be declared in the configuration file.
package dialect

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/minios-linux/i18nsync/diff"
	"github.com/minios-linux/i18nsync/extract"
	"github.com/minios-linux/i18nsync/jsfile"
	"github.com/minios-linux/i18nsync/table"
)

var (
	// ErrParse reports a locale file that exists but cannot be parsed.
	ErrParse = errors.New("locale table parse failure")
	// ErrWrite reports a failed write of a locale file.
	ErrWrite = errors.New("locale table write failure")
	// ErrMissingPath reports a save without a resolved locale table path.
	ErrMissingPath = errors.New("no locale table path")
)

// ---------------------------------------------------------------------------
// Placeholders
// ---------------------------------------------------------------------------

// PlaceholderMode selects how new entries created from usages are seeded.
type PlaceholderMode string

const (
	// PlaceholderKey seeds every locale with the key itself.
	PlaceholderKey PlaceholderMode = "key"
	// PlaceholderSuffix seeds zh with the key and other locales with the
	// key followed by a suffix.
	PlaceholderSuffix PlaceholderMode = "suffix"
)

// DefaultSuffix is appended by PlaceholderSuffix when no suffix is set.
const DefaultSuffix = "_en"

// Placeholder is the seeding policy for merged usages.
type Placeholder struct {
	Mode   PlaceholderMode
	Suffix string
}

// Value returns the placeholder for key in locale loc.
func (p Placeholder) Value(key string, loc table.LocaleID) string {
	if p.Mode != PlaceholderSuffix || loc == table.Zh {
		return key
	}
	suffix := p.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return key + suffix
}

// Entry returns a new table entry for key seeded with placeholders.
func (p Placeholder) Entry(key string) table.Entry {
	e := table.Entry{Key: key, Values: make(map[table.LocaleID]string, len(table.Locales))}
	for _, loc := range table.Locales {
		e.Values[loc] = p.Value(key, loc)
	}
	return e
}

// ---------------------------------------------------------------------------
// Dialect
// ---------------------------------------------------------------------------

// Dialect is one named set of conventions.
type Dialect struct {
	Name        string
	Description string

	// Extraction.
	Mode         extract.Mode
	CallNames    []string
	LookupObject string

	// Table location and shape.
	Layout table.Layout
	// Files holds file names relative to the usage file's directory. The
	// combined layout uses the same name for every locale.
	Files map[table.LocaleID]string
	// Bindings holds the binding name per locale.
	Bindings map[table.LocaleID]string
	// Declare is the keyword for bindings that have to be created.
	Declare string

	Placeholder Placeholder
}

// Validate checks that d is complete and consistent.
func (d *Dialect) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("dialect name is empty")
	}
	if _, err := extract.ParseMode(string(d.Mode)); err != nil {
		return fmt.Errorf("dialect %s: %w", d.Name, err)
	}
	switch d.Layout {
	case table.Combined, table.Split:
	default:
		return fmt.Errorf("dialect %s: unknown layout %q", d.Name, d.Layout)
	}
	for _, loc := range table.Locales {
		if d.Files[loc] == "" {
			return fmt.Errorf("dialect %s: no file for locale %s", d.Name, loc)
		}
		if d.Bindings[loc] == "" {
			return fmt.Errorf("dialect %s: no binding for locale %s", d.Name, loc)
		}
	}
	if d.Layout == table.Combined {
		if d.Files[table.Zh] != d.Files[table.En] {
			return fmt.Errorf("dialect %s: combined layout needs one file for every locale", d.Name)
		}
		if d.Bindings[table.Zh] == d.Bindings[table.En] {
			return fmt.Errorf("dialect %s: combined layout needs one binding per locale", d.Name)
		}
	} else if d.Files[table.Zh] == d.Files[table.En] {
		return fmt.Errorf("dialect %s: split layout needs one file per locale", d.Name)
	}
	switch d.Declare {
	case "", "const", "let", "var":
	default:
		return fmt.Errorf("dialect %s: invalid declaration keyword %q", d.Name, d.Declare)
	}
	switch d.Placeholder.Mode {
	case PlaceholderKey, PlaceholderSuffix:
	default:
		return fmt.Errorf("dialect %s: unknown placeholder mode %q", d.Name, d.Placeholder.Mode)
	}
	return nil
}

// ExtractOptions returns the extraction settings of d.
func (d *Dialect) ExtractOptions() extract.Options {
	return extract.Options{Mode: d.Mode, CallNames: d.CallNames, LookupObject: d.LookupObject}
}

// ExtractUsages finds the usages in the source file at path.
func (d *Dialect) ExtractUsages(path string) ([]table.Usage, error) {
	return extract.File(path, d.ExtractOptions())
}

// Paths resolves the locale table files for a usage file. override, when
// set, names the combined table file explicitly. In the combined layout a
// table file that does not exist is not resolved unless given explicitly;
// split layout paths are always resolved so missing files can be created.
func (d *Dialect) Paths(usageFile, override string) map[table.LocaleID]string {
	paths := make(map[table.LocaleID]string, len(table.Locales))
	dir := filepath.Dir(usageFile)
	if d.Layout == table.Combined {
		p := override
		if p == "" {
			p = filepath.Join(dir, d.Files[table.Zh])
			if !exists(p) {
				return paths
			}
		}
		for _, loc := range table.Locales {
			paths[loc] = p
		}
		return paths
	}
	for _, loc := range table.Locales {
		paths[loc] = filepath.Join(dir, d.Files[loc])
	}
	return paths
}

// Summary is a one-line description of the table layout.
func (d *Dialect) Summary() string {
	if d.Layout == table.Combined {
		return fmt.Sprintf("%s mode, %s with bindings %s", d.Mode, d.Files[table.Zh],
			strings.Join([]string{d.Bindings[table.Zh], d.Bindings[table.En]}, "/"))
	}
	return fmt.Sprintf("%s mode, %s + %s with binding %s", d.Mode, d.Files[table.Zh], d.Files[table.En], d.Bindings[table.Zh])
}

// ops converts the per-locale part of a diff into binding operations.
func ops(r diff.Result, loc table.LocaleID) jsfile.Ops {
	var o jsfile.Ops
	for _, e := range r.Push {
		o.Push = append(o.Push, table.KV{Key: e.Key, Value: e.Value(loc)})
	}
	for _, e := range r.Edits(loc) {
		o.Edit = append(o.Edit, table.KV{Key: e.Key, Value: e.Value(loc)})
	}
	for _, e := range r.Delete {
		o.Delete = append(o.Delete, e.Key)
	}
	return o
}
