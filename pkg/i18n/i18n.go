// Package i18n holds the user-facing message catalogs. The translator is
// constructed once at startup and passed to the HTTP layer explicitly; the
// locale itself travels in the request context.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed locales/*.json
var localesFS embed.FS

type Translator struct {
	defaultLocale string
	catalogs      map[string]map[string]string
}

func New(defaultLocale string) (*Translator, error) {
	entries, err := fs.ReadDir(localesFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	catalogs := make(map[string]map[string]string, len(entries))

	for _, e := range entries {
		locale := strings.TrimSuffix(e.Name(), ".json")

		b, err := localesFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %q: %w", locale, err)
		}

		var catalog map[string]string
		if err := json.Unmarshal(b, &catalog); err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", locale, err)
		}

		catalogs[locale] = catalog
	}

	if _, ok := catalogs[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no catalog", defaultLocale)
	}

	return &Translator{
		defaultLocale: defaultLocale,
		catalogs:      catalogs,
	}, nil
}

// Get resolves key in locale, falling back to the default locale and
// finally to the key itself so a missing translation is visible, not fatal.
func (t *Translator) Get(locale, key string) string {
	if catalog, ok := t.catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}

	if msg, ok := t.catalogs[t.defaultLocale][key]; ok {
		return msg
	}

	return key
}

// Getf resolves key and applies fmt-style arguments.
func (t *Translator) Getf(locale, key string, args ...any) string {
	return fmt.Sprintf(t.Get(locale, key), args...)
}

func (t *Translator) Locales() []string {
	locales := make([]string, 0, len(t.catalogs))
	for locale := range t.catalogs {
		locales = append(locales, locale)
	}

	return locales
}
