// Package session holds the working state of one editing session: the
// usages found in a source file, the working copy of its locale table and
// the snapshot that working copy is diffed against on save.
package session

import (
	"errors"
	"fmt"

	"github.com/minios-linux/i18nsync/dialect"
	"github.com/minios-linux/i18nsync/diff"
	"github.com/minios-linux/i18nsync/table"
)

var (
	// ErrNotFound reports an operation on a key the working table lacks.
	ErrNotFound = errors.New("key not found")
	// ErrExists reports an add of a key the working table already has.
	ErrExists = errors.New("key already exists")
	// ErrUnknownLocale reports a locale outside table.Locales.
	ErrUnknownLocale = errors.New("unknown locale")
	// ErrMissingPath reports a save without a resolved locale table path.
	ErrMissingPath = dialect.ErrMissingPath
)

// Model is the in-memory session state. It never touches disk. The
// snapshot is deep-independent of the working table and only changes on
// Load and Reload.
type Model struct {
	usages      []table.Usage
	current     *table.Table
	snapshot    *table.Table
	placeholder dialect.Placeholder
}

// NewModel returns an empty model that seeds merged entries with p.
func NewModel(p dialect.Placeholder) *Model {
	return &Model{
		current:     table.New("", nil),
		snapshot:    table.New("", nil),
		placeholder: p,
	}
}

// Load replaces the usages and the working table. The snapshot becomes a
// deep copy of tbl.
func (m *Model) Load(usages []table.Usage, tbl *table.Table) {
	if tbl == nil {
		tbl = table.New("", nil)
	}
	m.usages = append([]table.Usage(nil), usages...)
	m.current = tbl.Clone()
	m.snapshot = tbl.Clone()
}

// Reload discards the working table and the snapshot in favor of freshly
// parsed state.
func (m *Model) Reload(usages []table.Usage, tbl *table.Table) {
	m.Load(usages, tbl)
}

// EditEntry sets the value of key in locale loc.
func (m *Model) EditEntry(key string, loc table.LocaleID, value string) error {
	if !loc.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownLocale, loc)
	}
	if !m.current.Has(key) {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	m.current.Set(key, loc, value)
	return nil
}

// AddEntry appends key seeded with placeholders.
func (m *Model) AddEntry(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrNotFound)
	}
	if m.current.Has(key) {
		return fmt.Errorf("%w: %q", ErrExists, key)
	}
	m.current.Append(m.placeholder.Entry(key))
	return nil
}

// DeleteUsage removes every usage of key. It reports how many were removed.
func (m *Model) DeleteUsage(key string) int {
	kept := m.usages[:0]
	for _, u := range m.usages {
		if u.Key != key {
			kept = append(kept, u)
		}
	}
	n := len(m.usages) - len(kept)
	m.usages = kept
	return n
}

// DeleteLocaleEntry removes key from the working table and reports whether
// it was present.
func (m *Model) DeleteLocaleEntry(key string) bool {
	return m.current.Delete(key)
}

// MergeUsagesIntoTable appends an entry for every distinct usage key the
// working table lacks, then clears the usage list. It returns the number of
// entries added.
func (m *Model) MergeUsagesIntoTable() int {
	n := 0
	for _, key := range table.Keys(m.usages) {
		if m.current.Has(key) {
			continue
		}
		m.current.Append(m.placeholder.Entry(key))
		n++
	}
	m.usages = nil
	return n
}

// Usages returns a copy of the usage list.
func (m *Model) Usages() []table.Usage {
	return append([]table.Usage(nil), m.usages...)
}

// Table returns a copy of the working table.
func (m *Model) Table() *table.Table { return m.current.Clone() }

// Snapshot returns a copy of the snapshot.
func (m *Model) Snapshot() *table.Table { return m.snapshot.Clone() }

// Diff compares the working table with the snapshot.
func (m *Model) Diff() diff.Result { return diff.Compute(m.snapshot, m.current) }

// Dirty reports whether there are unsaved changes.
func (m *Model) Dirty() bool { return !m.Diff().Empty() }
