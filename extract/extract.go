// Package extract finds the translation keys a source file references.
//
// Two modes are supported. Structured mode tokenizes the file and records
// calls such as t('key'), $t("key") or this.$t('key') whose first argument
// is a string literal. In .jsx and .tsx files element text is skipped, so
// apostrophes or URLs in it do not hide later calls. Vue single-file
// components are split into blocks first; their markup is scanned with a
// regular expression since it is not necessarily valid script. Pattern mode skips tokenizing and matches index
// lookups such as $lang['key'] in the raw text.
//
// Usages are returned in file order without deduplication.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/i18nsync/table"
)

// ErrParse is wrapped by every error caused by unreadable source text.
var ErrParse = errors.New("cannot parse source file")

// Mode selects the extraction strategy.
type Mode string

const (
	Structured Mode = "structured"
	Pattern    Mode = "pattern"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Structured, Pattern:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown extraction mode %q (want %s or %s)", s, Structured, Pattern)
}

// DefaultCallNames are the function names recognized in structured mode.
var DefaultCallNames = []string{"t", "$t"}

// DefaultLookupObject is the object indexed in pattern mode.
const DefaultLookupObject = "$lang"

// Options configures extraction.
type Options struct {
	Mode Mode
	// CallNames are matched as bare calls, name(...), and as member calls,
	// obj.name(...) or obj?.name(...).
	CallNames []string
	// LookupObject is the identifier indexed in pattern mode.
	LookupObject string
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = Structured
	}
	if len(o.CallNames) == 0 {
		o.CallNames = DefaultCallNames
	}
	if o.LookupObject == "" {
		o.LookupObject = DefaultLookupObject
	}
	return o
}

// SourceKind is the dialect of a source file as far as extraction cares.
type SourceKind string

const (
	KindScript SourceKind = "script"
	KindJSX    SourceKind = "jsx"
	KindVue    SourceKind = "vue"
)

// KindOf classifies path by extension. Everything that is not a Vue
// component or a JSX file is treated as script; TypeScript syntax is
// tolerated everywhere.
func KindOf(path string) SourceKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vue":
		return KindVue
	case ".jsx", ".tsx":
		return KindJSX
	}
	return KindScript
}

// File reads path and extracts its usages.
func File(path string, opts Options) ([]table.Usage, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Source(path, src, opts)
}

// Source extracts usages from src, which was read from path. On failure no
// usages are returned.
func Source(path string, src []byte, opts Options) ([]table.Usage, error) {
	opts = opts.withDefaults()

	var found []located
	var err error
	switch {
	case opts.Mode == Pattern:
		found, err = scanLookups(src, opts.LookupObject)
	case KindOf(path) == KindVue:
		found, err = scanVue(src, opts.CallNames)
	default:
		found, err = scanScript(src, 0, 1, opts.CallNames, KindOf(path) == KindJSX)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrParse, path, err)
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].offset < found[j].offset })
	usages := make([]table.Usage, len(found))
	for i, l := range found {
		usages[i] = table.Usage{Key: l.key, File: path, Line: l.line}
	}
	return usages, nil
}

// located is a key together with where it was found.
type located struct {
	key    string
	offset int
	line   int
}
