// Package langmeta provides display metadata (names and emoji flags) for
// locale columns in CLI output.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Name is the language's name in itself, e.g. 简体中文.
	Name string
	// English is the language's English name.
	English string
	Flag    string
}

// Label returns "flag name" or just the name when there is no flag.
func (m Meta) Label() string {
	if m.Flag == "" {
		return m.Name
	}
	return m.Flag + " " + m.Name
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 && len(parts[1]) == 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// aliases maps locale column names that are not language tags.
var aliases = map[string]string{"cn": "zh-CN"}

// Resolve returns best-effort metadata for a language code. Variants like
// zh_CN and en-us are accepted; unknown codes are passed through as the
// name.
func Resolve(lang string) Meta {
	code := canonicalize(lang)
	if a, ok := aliases[code]; ok {
		code = a
	}
	tag, err := language.Parse(code)
	if err != nil || tag == language.Und {
		return Meta{Name: lang, English: lang}
	}
	m := Meta{
		Name:    display.Self.Name(tag),
		English: display.English.Tags().Name(tag),
	}
	if m.Name == "" {
		m.Name = lang
	}
	if m.English == "" {
		m.English = lang
	}
	if region, conf := tag.Region(); conf != language.No {
		m.Flag = flag(region.String())
	}
	return m
}

// flag builds the regional indicator pair for a two-letter region code.
func flag(region string) string {
	if len(region) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(region) {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + c - 'A')
	}
	return b.String()
}
