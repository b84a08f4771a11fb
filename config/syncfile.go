// Package config loads the project configuration of i18nsync: the
// .i18nsync.yaml file, the .env file and the process environment.
//
// A .i18nsync.yaml file is optional. It selects the default dialect, can
// point the combined layout at an explicit table file, and can declare
// project-specific dialects, either from scratch or by extending a
// built-in one.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/i18nsync/dialect"
	"github.com/minios-linux/i18nsync/extract"
	"github.com/minios-linux/i18nsync/table"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// SyncFile is the top-level .i18nsync.yaml structure.
type SyncFile struct {
	// Dialect is the default dialect name (default "sis").
	Dialect string `yaml:"dialect,omitempty"`
	// LangFile names the combined-layout table file, relative to the
	// config file's directory.
	LangFile string `yaml:"lang_file,omitempty"`
	// Dialects declares additional dialects.
	Dialects []DialectDef `yaml:"dialects,omitempty"`

	// dir is the directory the file was loaded from.
	dir string
}

// DialectDef declares one dialect. Unset fields are taken from Extends
// when it names a built-in dialect.
type DialectDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Extends names the dialect this one starts from.
	Extends string `yaml:"extends,omitempty"`

	// Mode: "structured" or "pattern".
	Mode         string   `yaml:"mode,omitempty"`
	CallNames    []string `yaml:"call_names,omitempty"`
	LookupObject string   `yaml:"lookup_object,omitempty"`

	// Layout: "combined" or "split".
	Layout string `yaml:"layout,omitempty"`
	// Files maps a locale (zh, en, or an alias such as zh-CN) to a file
	// name relative to the usage file's directory.
	Files map[string]string `yaml:"files,omitempty"`
	// Bindings maps a locale to its binding name.
	Bindings map[string]string `yaml:"bindings,omitempty"`
	Declare  string            `yaml:"declare,omitempty"`

	// Placeholder: "key" or "suffix".
	Placeholder       string `yaml:"placeholder,omitempty"`
	PlaceholderSuffix string `yaml:"placeholder_suffix,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// SyncFileName is the default config file name.
const SyncFileName = ".i18nsync.yaml"

// LoadSyncFile loads and validates .i18nsync.yaml from rootDir. It returns
// nil if the file does not exist.
func LoadSyncFile(rootDir string) (*SyncFile, error) {
	return LoadSyncFilePath(filepath.Join(rootDir, SyncFileName))
}

// LoadSyncFilePath is LoadSyncFile for an explicit path.
func LoadSyncFilePath(path string) (*SyncFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var sf SyncFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil && !errors.Is(err, io.EOF) {
		if strings.Contains(err.Error(), "not found in type") {
			return nil, fmt.Errorf("parsing %s: unsupported key: %w", path, err)
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	sf.dir = filepath.Dir(path)

	if sf.Dialect == "" {
		sf.Dialect = dialect.DefaultName
	}
	seen := make(map[string]bool)
	for i, def := range sf.Dialects {
		if def.Name == "" {
			return nil, fmt.Errorf("%s: dialect #%d has no name", path, i+1)
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("%s: dialect %q declared twice", path, def.Name)
		}
		seen[def.Name] = true
	}
	return &sf, nil
}

// LangFilePath returns the configured table file as an absolute path, or ""
// when none is set.
func (sf *SyncFile) LangFilePath() string {
	if sf == nil || sf.LangFile == "" {
		return ""
	}
	if filepath.IsAbs(sf.LangFile) {
		return sf.LangFile
	}
	return filepath.Join(sf.dir, sf.LangFile)
}

// Register adds the declared dialects to r. A dialect may extend a
// built-in dialect or one declared earlier in the file.
func (sf *SyncFile) Register(r *dialect.Registry) error {
	if sf == nil {
		return nil
	}
	for _, def := range sf.Dialects {
		d, err := def.build(r)
		if err != nil {
			return err
		}
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

func (def DialectDef) build(r *dialect.Registry) (*dialect.Dialect, error) {
	d := &dialect.Dialect{
		Files:    make(map[table.LocaleID]string),
		Bindings: make(map[table.LocaleID]string),
		Declare:  "const",
		Mode:     extract.Structured,
		Layout:   table.Combined,
		Placeholder: dialect.Placeholder{
			Mode: dialect.PlaceholderKey,
		},
	}
	if def.Extends != "" {
		base, ok := r.Get(def.Extends)
		if !ok {
			return nil, fmt.Errorf("dialect %s: extends unknown dialect %q", def.Name, def.Extends)
		}
		*d = *base
		d.CallNames = append([]string(nil), base.CallNames...)
		d.Files = copyLocales(base.Files)
		d.Bindings = copyLocales(base.Bindings)
	}
	d.Name = def.Name
	if def.Description != "" {
		d.Description = def.Description
	}
	if def.Mode != "" {
		m, err := extract.ParseMode(def.Mode)
		if err != nil {
			return nil, fmt.Errorf("dialect %s: %w", def.Name, err)
		}
		d.Mode = m
	}
	if len(def.CallNames) > 0 {
		d.CallNames = def.CallNames
	}
	if def.LookupObject != "" {
		d.LookupObject = def.LookupObject
	}
	if def.Layout != "" {
		d.Layout = table.Layout(def.Layout)
	}
	if err := mergeLocales(d.Files, def.Files); err != nil {
		return nil, fmt.Errorf("dialect %s: files: %w", def.Name, err)
	}
	if err := mergeLocales(d.Bindings, def.Bindings); err != nil {
		return nil, fmt.Errorf("dialect %s: bindings: %w", def.Name, err)
	}
	if def.Declare != "" {
		d.Declare = def.Declare
	}
	if def.Placeholder != "" {
		d.Placeholder.Mode = dialect.PlaceholderMode(def.Placeholder)
	}
	if def.PlaceholderSuffix != "" {
		d.Placeholder.Suffix = def.PlaceholderSuffix
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func copyLocales(m map[table.LocaleID]string) map[table.LocaleID]string {
	out := make(map[table.LocaleID]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func mergeLocales(dst map[table.LocaleID]string, src map[string]string) error {
	for name, v := range src {
		loc, err := localeKey(name)
		if err != nil {
			return err
		}
		dst[loc] = v
	}
	return nil
}

// localeKey maps a configured locale name to a table column by its base
// language: zh-Hant-TW and zh_CN name the zh column, en-GB the en column.
// The non-standard alias cn is accepted as well.
func localeKey(name string) (table.LocaleID, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "cn") {
		return table.Zh, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", name, err)
	}
	base, _ := tag.Base()
	loc, err := table.ParseLocale(base.String())
	if err != nil {
		return "", fmt.Errorf("locale %q (%s) is not a table column (supported: zh, en)", name, base)
	}
	return loc, nil
}
