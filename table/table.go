// Package table holds the data model shared by extraction, editing, diffing
// and patching: key usages found in source code and the ordered locale table
// that backs them.
package table

import (
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Locales
// ---------------------------------------------------------------------------

// LocaleID identifies one locale column of a table.
type LocaleID string

const (
	// Zh is the Chinese column, the source language of the tables.
	Zh LocaleID = "zh"
	// En is the English column.
	En LocaleID = "en"
)

// Locales lists every supported locale column in output order.
var Locales = []LocaleID{Zh, En}

// ParseLocale maps a user-supplied locale name to a LocaleID. Common aliases
// (cn, zh-CN, zh_Hans, en-US ...) are accepted.
func ParseLocale(s string) (LocaleID, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	switch {
	case norm == "zh" || norm == "cn" || strings.HasPrefix(norm, "zh-"):
		return Zh, nil
	case norm == "en" || strings.HasPrefix(norm, "en-"):
		return En, nil
	}
	return "", fmt.Errorf("unknown locale %q (supported: %s)", s, localeList())
}

// Valid reports whether l is one of Locales.
func (l LocaleID) Valid() bool {
	for _, loc := range Locales {
		if loc == l {
			return true
		}
	}
	return false
}

func localeList() string {
	names := make([]string, len(Locales))
	for i, l := range Locales {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// ---------------------------------------------------------------------------
// Usages
// ---------------------------------------------------------------------------

// Usage is one occurrence of a translation key in a source file.
type Usage struct {
	Key  string
	File string
	Line int
}

// Keys returns the distinct keys of usages in first-seen order.
func Keys(usages []Usage) []string {
	seen := make(map[string]bool, len(usages))
	var keys []string
	for _, u := range usages {
		if seen[u.Key] {
			continue
		}
		seen[u.Key] = true
		keys = append(keys, u.Key)
	}
	return keys
}

// ---------------------------------------------------------------------------
// Entries
// ---------------------------------------------------------------------------

// Entry is one key with its value per locale. A missing locale reads as "".
type Entry struct {
	Key    string
	Values map[LocaleID]string
}

// NewEntry creates an entry with the given zh and en values.
func NewEntry(key, zh, en string) Entry {
	return Entry{Key: key, Values: map[LocaleID]string{Zh: zh, En: en}}
}

// Value returns the value for loc, or "" when the locale has none.
func (e Entry) Value(loc LocaleID) string {
	return e.Values[loc]
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	c := Entry{Key: e.Key, Values: make(map[LocaleID]string, len(e.Values))}
	for k, v := range e.Values {
		c.Values[k] = v
	}
	return c
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

// Layout is the on-disk arrangement of a table's locale columns.
type Layout string

const (
	// Combined keeps every locale column in one file, one binding per locale.
	Combined Layout = "combined"
	// Split keeps one file per locale, each with the same binding name.
	Split Layout = "split"
)

// Table is an ordered key to Entry mapping. Keys are unique and insertion
// order is preserved. The zero value is an empty table with no layout.
type Table struct {
	Layout Layout
	// Paths maps each locale column to the file it was read from. In the
	// combined layout every locale maps to the same file.
	Paths map[LocaleID]string

	entries []Entry
	index   map[string]int
}

// New creates an empty table for the given layout and paths.
func New(layout Layout, paths map[LocaleID]string) *Table {
	t := &Table{Layout: layout, Paths: make(map[LocaleID]string, len(paths))}
	for k, v := range paths {
		t.Paths[k] = v
	}
	return t
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Keys returns the keys in table order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns deep copies of all entries in table order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Clone()
	}
	return out
}

// Get returns a copy of the entry for key.
func (t *Table) Get(key string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	i, ok := t.index[key]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i].Clone(), true
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[key]
	return ok
}

// Set stores value for key in locale loc. A new key is appended at the end.
func (t *Table) Set(key string, loc LocaleID, value string) {
	i, ok := t.index[key]
	if !ok {
		t.Append(Entry{Key: key, Values: map[LocaleID]string{loc: value}})
		return
	}
	if t.entries[i].Values == nil {
		t.entries[i].Values = make(map[LocaleID]string)
	}
	t.entries[i].Values[loc] = value
}

// Append adds e at the end of the table. If the key already exists its
// values are replaced and its position is kept.
func (t *Table) Append(e Entry) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	e = e.Clone()
	if i, ok := t.index[e.Key]; ok {
		t.entries[i] = e
		return
	}
	t.index[e.Key] = len(t.entries)
	t.entries = append(t.entries, e)
}

// Delete removes key and reports whether it was present.
func (t *Table) Delete(key string) bool {
	i, ok := t.index[key]
	if !ok {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	delete(t.index, key)
	for j := i; j < len(t.entries); j++ {
		t.index[t.entries[j].Key] = j
	}
	return true
}

// Column returns the key to value mapping of one locale, limited to the
// entries that have a value for it.
func (t *Table) Column(loc LocaleID) map[string]string {
	col := make(map[string]string)
	if t == nil {
		return col
	}
	for _, e := range t.entries {
		if v, ok := e.Values[loc]; ok {
			col[e.Key] = v
		}
	}
	return col
}

// Clone returns a deep copy of t. Mutating the copy never affects t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := New(t.Layout, t.Paths)
	c.entries = make([]Entry, len(t.entries))
	c.index = make(map[string]int, len(t.entries))
	for i, e := range t.entries {
		c.entries[i] = e.Clone()
		c.index[e.Key] = i
	}
	return c
}

// SameSource reports whether t and other were read from the same layout and
// path set, which is required for a diff between them to be meaningful.
func (t *Table) SameSource(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Layout != other.Layout {
		return false
	}
	return samePaths(t.Paths, other.Paths)
}

// PathSet returns the distinct file paths of the table, sorted.
func (t *Table) PathSet() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	var paths []string
	for _, p := range t.Paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func samePaths(a, b map[LocaleID]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// Merge builds a table from per-locale columns. Keys are ordered by first
// appearance, walking the columns in Locales order, so keys of the zh column
// come first followed by keys only present in en. A locale missing for a key
// reads as "".
func Merge(layout Layout, paths map[LocaleID]string, columns map[LocaleID][]KV) *Table {
	t := New(layout, paths)
	for _, loc := range Locales {
		for _, kv := range columns[loc] {
			if !t.Has(kv.Key) {
				e := Entry{Key: kv.Key, Values: make(map[LocaleID]string, len(Locales))}
				for _, l := range Locales {
					e.Values[l] = ""
				}
				t.Append(e)
			}
			t.Set(kv.Key, loc, kv.Value)
		}
	}
	return t
}

// KV is a single key/value pair of one locale column.
type KV struct {
	Key   string
	Value string
}
