// Package i18n renders the human-readable filter descriptions ("qill") in the
// configured locale. Message keys are the English text; untranslated keys
// fall back to themselves.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator formats messages for one locale. A nil *Translator formats
// English.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New creates a Translator for tag using the built-in catalog.
func New(tag language.Tag) *Translator {
	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builtin)),
	}
}

// Parse creates a Translator from a BCP 47 locale string ("en", "fr-CA").
func Parse(locale string) (*Translator, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return New(tag), nil
}

// Tag returns the translator's language.
func (t *Translator) Tag() language.Tag {
	if t == nil {
		return language.English
	}
	return t.tag
}

// T translates key and formats args into it with fmt verbs.
func (t *Translator) T(key string, args ...any) string {
	if t == nil {
		return fmt.Sprintf(key, args...)
	}
	return t.printer.Sprintf(key, args...)
}

var builtin = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range french {
		// keys are static; SetString only fails on malformed tags
		_ = b.SetString(language.French, key, msg)
	}
	return b
}

var french = map[string]string{
	"Activity Type":            "Type d'activité",
	"Activity Status":          "Statut de l'activité",
	"Activity Date":            "Date de l'activité",
	"Activity Tag %s":          "Mot-clé d'activité %s",
	"Activity Id(s) %s":        "Identifiant(s) d'activité %s",
	"Activity is a Test":       "L'activité est un test",
	"Activity created by":      "Activité créée par",
	"Activity assigned to":     "Activité assignée à",
	"Activity targeted to":     "Activité ciblant",
	"Campaigns %s":             "Campagnes %s",
	"Engagement Index":         "Indice d'engagement",
	"Subject":                  "Sujet",
	"Survey":                   "Enquête",
	"or":                       "ou",
	"OR":                       "OU",
	"AND":                      "ET",
	"greater than or equal to": "supérieur ou égal à",
	"less than or equal to":    "inférieur ou égal à",
}
