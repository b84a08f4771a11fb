// Package i18n translates the user-facing strings of i18nsync itself.
//
// It wraps the gotext library with T(), N() and Tf(). Catalogs are embedded
// from locales/{lang}/LC_MESSAGES/i18nsync.po and selected at startup by
// Init, which matches the requested language against the catalogs that
// exist.
//
//	i18n.Init("")  // LANGUAGE, LC_ALL, LC_MESSAGES, LANG
//	fmt.Println(i18n.T("Session saved"))
//	fmt.Println(i18n.N("%d usage", "%d usages", count))
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

const domain = "i18nsync"

// catalogs maps each supported tag to its directory under locales/. English
// is the source language and has no catalog.
var catalogs = []struct {
	tag language.Tag
	dir string
}{
	{language.English, ""},
	{language.SimplifiedChinese, "zh_CN"},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(catalogs))
	for i, c := range catalogs {
		tags[i] = c.tag
	}
	return language.NewMatcher(tags)
}()

var (
	po      *gotext.Locale
	current = "en"
)

// Init selects the catalog for lang. If lang is empty it is read from the
// environment the way GNU gettext does.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	dir := catalogDir(lang)
	if dir == "" {
		po, current = nil, "en"
		return
	}
	po = gotext.NewLocaleFSWithPath(dir, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
	current = dir
}

// Current returns the selected catalog name, "en" when untranslated.
func Current() string { return current }

// catalogDir returns the catalog directory best matching lang.
func catalogDir(lang string) string {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return ""
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return ""
	}
	return catalogs[idx].dir
}

// T translates msgid, returning it unchanged when there is no translation.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// Tf translates format and formats it with args.
func Tf(format string, args ...any) string {
	return fmt.Sprintf(T(format), args...)
}

// N translates a message with plural forms; the rules come from the
// catalog's plural formula.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return fmt.Sprintf(singular, n)
		}
		return fmt.Sprintf(plural, n)
	}
	return po.GetN(singular, plural, n, n)
}

// detectLanguage follows GNU gettext: LANGUAGE > LC_ALL > LC_MESSAGES > LANG.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// ru_RU.UTF-8 -> ru_RU
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return "en"
}
