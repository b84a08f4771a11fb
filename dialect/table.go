package dialect

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/minios-linux/i18nsync/diff"
	"github.com/minios-linux/i18nsync/jsfile"
	"github.com/minios-linux/i18nsync/table"
)

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// ParseTable reads the locale columns from paths and merges them. A file
// that does not exist yields an empty column. A file that cannot be parsed
// also yields an empty column and is reported in the returned error, which
// wraps ErrParse; the table is usable either way.
func (d *Dialect) ParseTable(paths map[table.LocaleID]string) (*table.Table, error) {
	columns := make(map[table.LocaleID][]table.KV, len(table.Locales))
	parsed := make(map[string]*jsfile.File)
	var errs []error
	for _, loc := range table.Locales {
		p := paths[loc]
		if p == "" {
			continue
		}
		f, seen := parsed[p]
		if !seen {
			var err error
			f, err = readTableFile(p)
			if err != nil {
				errs = append(errs, err)
			}
			parsed[p] = f
		}
		if f == nil {
			continue
		}
		columns[loc] = f.Binding(d.Bindings[loc]).Strings()
	}
	return table.Merge(d.Layout, paths, columns), errors.Join(errs...)
}

// readTableFile parses the locale file at path. It returns nil without an
// error when the file does not exist.
func readTableFile(path string) (*jsfile.File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrParse, path, err)
	}
	f, err := jsfile.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// FileReport describes one written file.
type FileReport struct {
	Path    string
	Created bool
	Stats   jsfile.Stats
}

// WriteTable applies r to the locale files in paths. Every file is read
// and parsed again from disk first; if any of them fails, nothing is
// written and the error wraps ErrParse. Files whose content would not
// change are left alone. If a write fails, files already written are
// restored and the error wraps ErrWrite.
func (d *Dialect) WriteTable(paths map[table.LocaleID]string, r diff.Result) ([]FileReport, error) {
	if r.Empty() {
		return nil, nil
	}
	for _, loc := range table.Locales {
		if paths[loc] == "" {
			return nil, fmt.Errorf("%w for locale %s", ErrMissingPath, loc)
		}
	}

	// Group the binding changes by file, keeping locale order.
	var order []string
	changes := make(map[string][]jsfile.Change)
	for _, loc := range table.Locales {
		p := paths[loc]
		if _, ok := changes[p]; !ok {
			order = append(order, p)
		}
		changes[p] = append(changes[p], jsfile.Change{
			Binding: d.Bindings[loc],
			Ops:     ops(r, loc),
			Declare: d.Declare,
		})
	}

	var writes []pendingWrite
	var reports []FileReport
	for _, p := range order {
		w, stats, err := planFile(p, changes[p])
		if err != nil {
			return nil, err
		}
		if w == nil {
			continue
		}
		writes = append(writes, *w)
		reports = append(reports, FileReport{Path: p, Created: !w.existed, Stats: stats})
	}
	if err := commit(writes); err != nil {
		return nil, err
	}
	return reports, nil
}

// planFile computes the new content of one file. It returns a nil write
// when the content does not change.
func planFile(path string, changes []jsfile.Change) (*pendingWrite, jsfile.Stats, error) {
	w := &pendingWrite{path: path, perm: 0644}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		w.existed = true
		w.orig = data
		if info, err := os.Stat(path); err == nil {
			w.perm = info.Mode().Perm()
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, jsfile.Stats{}, fmt.Errorf("%w: reading %s: %v", ErrParse, path, err)
	}

	f, err := jsfile.Parse(data)
	if err != nil {
		return nil, jsfile.Stats{}, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	out, stats, err := f.Apply(changes)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	if bytes.Equal(out, data) {
		return nil, stats, nil
	}
	w.data = out
	return w, stats, nil
}
