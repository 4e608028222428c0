package i18n

import (
	"golang.org/x/text/language"

	"github.com/jsamuelsen/lingo-service/internal/domain"
)

// TranslationConfig is the per-response input to Translate.
type TranslationConfig struct {
	// RequestedLocales are the caller's preferences, most preferred first.
	RequestedLocales []language.Tag

	// FallbackLocale is tried after every requested locale has missed.
	FallbackLocale language.Tag

	// Args are substitution values shared by every node in the tree.
	// Node args take precedence on collision.
	Args map[string]string
}

// TranslatedError is the client-facing rendering of an ErrorNode.
type TranslatedError struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Children []TranslatedError `json:"children"`

	// Locale is the catalog locale that rendered Message, empty when the
	// message degraded to the raw code.
	Locale string `json:"-"`
}

// Translator renders error trees against a Catalog. It holds no mutable
// state and is safe for concurrent use.
type Translator struct {
	catalog  Catalog
	fallback language.Tag
}

// NewTranslator creates a Translator using fallback as the default locale.
func NewTranslator(catalog Catalog, fallback language.Tag) *Translator {
	return &Translator{catalog: catalog, fallback: fallback}
}

// Fallback returns the default locale.
func (t *Translator) Fallback() language.Tag {
	return t.fallback
}

// Config builds a TranslationConfig for the given requested locales using
// the translator's fallback.
func (t *Translator) Config(requested []language.Tag, args map[string]string) TranslationConfig {
	return TranslationConfig{
		RequestedLocales: requested,
		FallbackLocale:   t.fallback,
		Args:             args,
	}
}

// Translate renders node and its children. Locale resolution runs per node:
// the requested locales in order, then the fallback, and finally the raw
// code as the message. It never fails.
func (t *Translator) Translate(node domain.ErrorNode, cfg TranslationConfig) TranslatedError {
	tmpl, locale, ok := t.resolve(node.Code, cfg)

	out := TranslatedError{
		Code:     node.Code,
		Message:  node.Code,
		Children: make([]TranslatedError, 0, len(node.Children)),
	}

	if ok {
		out.Message = interpolate(tmpl, node.Args, cfg.Args)
		out.Locale = locale.String()
	}

	for _, child := range node.Children {
		out.Children = append(out.Children, t.Translate(child, cfg))
	}

	return out
}

// Message renders a single code, for success-path content that still needs
// localization.
func (t *Translator) Message(code string, requested []language.Tag, args map[string]string) string {
	tmpl, _, ok := t.resolve(code, t.Config(requested, nil))
	if !ok {
		return code
	}

	return interpolate(tmpl, args, nil)
}

func (t *Translator) resolve(code string, cfg TranslationConfig) (string, language.Tag, bool) {
	if t.catalog == nil {
		return "", language.Und, false
	}

	for _, locale := range cfg.RequestedLocales {
		if tmpl, ok := t.catalog.Lookup(code, locale); ok {
			return tmpl, locale, true
		}
	}

	if tmpl, ok := t.catalog.Lookup(code, cfg.FallbackLocale); ok {
		return tmpl, cfg.FallbackLocale, true
	}

	return "", language.Und, false
}
