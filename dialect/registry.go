package dialect

import (
	"fmt"
	"sort"

	"github.com/minios-linux/i18nsync/extract"
	"github.com/minios-linux/i18nsync/table"
)

// Sis returns the built-in combined-layout dialect.
func Sis() *Dialect {
	return &Dialect{
		Name:        "sis",
		Description: "t()/$t() calls, lang.ts with cn and en bindings",
		Mode:        extract.Structured,
		CallNames:   extract.DefaultCallNames,
		Layout:      table.Combined,
		Files:       map[table.LocaleID]string{table.Zh: "lang.ts", table.En: "lang.ts"},
		Bindings:    map[table.LocaleID]string{table.Zh: "cn", table.En: "en"},
		Declare:     "const",
		Placeholder: Placeholder{Mode: PlaceholderSuffix, Suffix: DefaultSuffix},
	}
}

// Myth returns the built-in split-layout dialect.
func Myth() *Dialect {
	return &Dialect{
		Name:         "myth",
		Description:  "$lang['key'] lookups, lang.cn.js and lang.en.js with a $lang binding",
		Mode:         extract.Pattern,
		LookupObject: extract.DefaultLookupObject,
		Layout:       table.Split,
		Files:        map[table.LocaleID]string{table.Zh: "lang.cn.js", table.En: "lang.en.js"},
		Bindings:     map[table.LocaleID]string{table.Zh: "$lang", table.En: "$lang"},
		Declare:      "var",
		Placeholder:  Placeholder{Mode: PlaceholderKey},
	}
}

// DefaultName is the dialect used when none is selected.
const DefaultName = "sis"

// Registry holds dialects by name.
type Registry struct {
	byName map[string]*Dialect
}

// NewRegistry returns a registry holding the built-in dialects.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Dialect)}
	r.byName["sis"] = Sis()
	r.byName["myth"] = Myth()
	return r
}

// Register adds d, replacing any dialect with the same name.
func (r *Registry) Register(d *Dialect) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.byName[d.Name] = d
	return nil
}

// Get returns the dialect called name.
func (r *Registry) Get(name string) (*Dialect, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Lookup is Get with an error listing the known names.
func (r *Registry) Lookup(name string) (*Dialect, error) {
	if name == "" {
		name = DefaultName
	}
	if d, ok := r.Get(name); ok {
		return d, nil
	}
	return nil, fmt.Errorf("unknown dialect %q (known: %v)", name, r.Names())
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
