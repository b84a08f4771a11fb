package session

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/i18nsync/dialect"
	"github.com/minios-linux/i18nsync/diff"
	"github.com/minios-linux/i18nsync/table"
)

// View is what a caller displays after every operation.
type View struct {
	Usages []table.Usage
	Table  *table.Table
}

// Service binds a Model to one usage file and its locale table on disk.
type Service struct {
	usageFile string
	langFile  string
	dialect   *dialect.Dialect
	model     *Model

	paths        map[table.LocaleID]string
	fingerprints dialect.Fingerprints
	lastSave     []dialect.FileReport
}

// Start extracts the usages of usageFile, parses the locale table the
// dialect resolves for it and returns the session. langFile, when set,
// names the combined table file explicitly. Extraction and table parse
// failures are logged and leave the affected part empty.
func Start(usageFile string, d *dialect.Dialect, langFile string) (*Service, View) {
	s := &Service{
		usageFile: usageFile,
		langFile:  langFile,
		dialect:   d,
		model:     NewModel(d.Placeholder),
	}
	s.load()
	return s, s.view()
}

func (s *Service) load() {
	usages, err := s.dialect.ExtractUsages(s.usageFile)
	if err != nil {
		log.Warn().Err(err).Str("file", s.usageFile).Msg("usage extraction failed, continuing without usages")
		usages = nil
	}
	s.paths = s.dialect.Paths(s.usageFile, s.langFile)
	tbl, err := s.dialect.ParseTable(s.paths)
	if err != nil {
		log.Warn().Err(err).Msg("locale table only partly loaded")
	}
	s.model.Load(usages, tbl)
	s.fingerprints = dialect.Fingerprint(s.paths)
	log.Debug().
		Str("dialect", s.dialect.Name).
		Int("usages", len(usages)).
		Int("entries", tbl.Len()).
		Strs("paths", tbl.PathSet()).
		Msg("session loaded")
}

func (s *Service) view() View {
	return View{Usages: s.model.Usages(), Table: s.model.Table()}
}

// Edit sets the value of key in locale loc.
func (s *Service) Edit(key string, loc table.LocaleID, value string) (View, error) {
	err := s.model.EditEntry(key, loc, value)
	return s.view(), err
}

// Add appends key seeded with the dialect's placeholders.
func (s *Service) Add(key string) (View, error) {
	err := s.model.AddEntry(key)
	return s.view(), err
}

// DeleteUsage drops every usage of key from the usage list.
func (s *Service) DeleteUsage(key string) (View, error) {
	if s.model.DeleteUsage(key) == 0 {
		return s.view(), fmt.Errorf("%w: no usage of %q", ErrNotFound, key)
	}
	return s.view(), nil
}

// DeleteEntry removes key from the working table. Deleting an absent key
// leaves the state unchanged and reports ErrNotFound.
func (s *Service) DeleteEntry(key string) (View, error) {
	if !s.model.DeleteLocaleEntry(key) {
		return s.view(), fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return s.view(), nil
}

// Merge adds an entry for every usage key the table lacks and clears the
// usage list. It returns the number of entries added.
func (s *Service) Merge() (View, int) {
	n := s.model.MergeUsagesIntoTable()
	return s.view(), n
}

// Save writes the pending changes to disk and reloads on success. With no
// pending changes nothing is written. On failure the snapshot is left
// as it was.
func (s *Service) Save() (bool, error) {
	s.lastSave = nil
	r := s.model.Diff()
	if r.Empty() {
		log.Debug().Msg("nothing to save")
		return true, nil
	}
	if changed := s.fingerprints.Changed(); len(changed) > 0 {
		log.Warn().Strs("files", changed).Msg("locale files changed on disk since load, their changes may be overwritten")
	}
	reports, err := s.dialect.WriteTable(s.paths, r)
	if err != nil {
		return false, err
	}
	for _, rep := range reports {
		log.Debug().
			Str("file", rep.Path).
			Bool("created", rep.Created).
			Int("inserted", rep.Stats.Inserted).
			Int("updated", rep.Stats.Updated).
			Int("removed", rep.Stats.Removed).
			Msg("locale file written")
	}
	s.load()
	s.lastSave = reports
	return true, nil
}

// Reload re-extracts and re-parses from disk, discarding unsaved changes.
func (s *Service) Reload() View {
	s.load()
	return s.view()
}

// View returns the current state.
func (s *Service) View() View { return s.view() }

// Diff returns the pending changes.
func (s *Service) Diff() diff.Result { return s.model.Diff() }

// Dirty reports whether there are unsaved changes.
func (s *Service) Dirty() bool { return s.model.Dirty() }

// MergePatch previews the pending changes of one locale column as a JSON
// merge patch.
func (s *Service) MergePatch(loc table.LocaleID) ([]byte, error) {
	return diff.MergePatch(s.model.Snapshot(), s.model.Table(), loc)
}

// Paths returns the resolved locale table files.
func (s *Service) Paths() map[table.LocaleID]string {
	out := make(map[table.LocaleID]string, len(s.paths))
	for k, v := range s.paths {
		out[k] = v
	}
	return out
}

// Dialect returns the dialect the session runs under.
func (s *Service) Dialect() *dialect.Dialect { return s.dialect }

// UsageFile returns the source file the session was started for.
func (s *Service) UsageFile() string { return s.usageFile }

// LastSave returns the files written by the most recent Save.
func (s *Service) LastSave() []dialect.FileReport { return s.lastSave }
