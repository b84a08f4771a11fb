// Package diff computes the per-locale change set between the snapshot of a
// locale table taken at load time and the working copy.
package diff

import (
	"fmt"
	"strings"

	"github.com/minios-linux/i18nsync/table"
)

// Result is the change set between two tables. Push and Delete are
// key-level; ZhEdit and EnEdit list entries whose value changed in that
// locale column only. An entry may appear in both edit lists.
type Result struct {
	Push   []table.Entry
	ZhEdit []table.Entry
	EnEdit []table.Entry
	Delete []table.Entry
}

// Compute returns the difference from snapshot to current. Push follows the
// order of current, Delete the order of snapshot, and the edit lists the
// order of current. Values are compared by exact string equality.
func Compute(snapshot, current *table.Table) Result {
	var r Result
	for _, e := range current.Entries() {
		old, ok := snapshot.Get(e.Key)
		if !ok {
			r.Push = append(r.Push, e)
			continue
		}
		if e.Value(table.Zh) != old.Value(table.Zh) {
			r.ZhEdit = append(r.ZhEdit, e)
		}
		if e.Value(table.En) != old.Value(table.En) {
			r.EnEdit = append(r.EnEdit, e)
		}
	}
	for _, e := range snapshot.Entries() {
		if !current.Has(e.Key) {
			r.Delete = append(r.Delete, e)
		}
	}
	return r
}

// Edits returns the edit list for loc.
func (r Result) Edits(loc table.LocaleID) []table.Entry {
	switch loc {
	case table.Zh:
		return r.ZhEdit
	case table.En:
		return r.EnEdit
	}
	return nil
}

// Empty reports whether the result holds no changes.
func (r Result) Empty() bool {
	return len(r.Push) == 0 && len(r.ZhEdit) == 0 && len(r.EnEdit) == 0 && len(r.Delete) == 0
}

// Summary returns a one-line count of every change class.
func (r Result) Summary() string {
	return fmt.Sprintf("%d added, %d zh edited, %d en edited, %d deleted",
		len(r.Push), len(r.ZhEdit), len(r.EnEdit), len(r.Delete))
}

// Text renders the result as a human readable listing, one change per line.
func (r Result) Text() string {
	var b strings.Builder
	for _, e := range r.Push {
		fmt.Fprintf(&b, "+ %s  zh=%q en=%q\n", e.Key, e.Value(table.Zh), e.Value(table.En))
	}
	for _, loc := range table.Locales {
		for _, e := range r.Edits(loc) {
			fmt.Fprintf(&b, "~ %s  %s=%q\n", e.Key, loc, e.Value(loc))
		}
	}
	for _, e := range r.Delete {
		fmt.Fprintf(&b, "- %s\n", e.Key)
	}
	return b.String()
}
