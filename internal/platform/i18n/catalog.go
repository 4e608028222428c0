// Package i18n renders error trees into localized messages.
//
// The catalog is loaded once at startup and never mutated afterwards, so it is
// shared across requests without locking.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

// bundleExt is the file extension of catalog bundles.
const bundleExt = ".yaml"

//go:embed locales/*.yaml
var builtinLocales embed.FS

// ErrMissingFallback is returned when the fallback locale has no bundle.
var ErrMissingFallback = errors.New("fallback locale has no catalog bundle")

// Catalog looks up the message template bound to a code in a locale.
// Implementations must be safe for concurrent use and must not block.
type Catalog interface {
	Lookup(code string, locale language.Tag) (string, bool)
}

// StaticCatalog is an immutable, fully loaded Catalog.
type StaticCatalog struct {
	bundles map[string]map[string]string
}

// NewStaticCatalog builds a catalog from locale tag -> code -> template.
// Tags are canonicalized; invalid tags are rejected.
func NewStaticCatalog(bundles map[string]map[string]string) (*StaticCatalog, error) {
	c := &StaticCatalog{bundles: make(map[string]map[string]string, len(bundles))}

	for tag, entries := range bundles {
		if err := c.merge(tag, entries); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// LoadCatalog loads the built-in bundles, then overlays every bundle found
// in dir (if non-empty). Bundle files are named <locale>.yaml and may use
// either nested keys or dotted keys. The fallback locale must be present.
func LoadCatalog(dir string, fallback language.Tag) (*StaticCatalog, error) {
	c := &StaticCatalog{bundles: make(map[string]map[string]string)}

	if err := c.loadFS(builtinLocales, "locales"); err != nil {
		return nil, fmt.Errorf("loading built-in locales: %w", err)
	}

	if dir != "" {
		if err := c.loadFS(os.DirFS(dir), "."); err != nil {
			return nil, fmt.Errorf("loading locales from %q: %w", dir, err)
		}
	}

	if _, ok := c.bundles[fallback.String()]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingFallback, fallback)
	}

	return c, nil
}

// Lookup implements Catalog. A lookup for a regional or scripted tag falls
// back through the tag's parents and finally its base language, so a
// request for zh-TW can be served by a zh bundle.
func (c *StaticCatalog) Lookup(code string, locale language.Tag) (string, bool) {
	for _, candidate := range candidates(locale) {
		if entries, ok := c.bundles[candidate]; ok {
			if tmpl, ok := entries[code]; ok {
				return tmpl, true
			}
		}
	}

	return "", false
}

// Locales returns the canonical tags that have a bundle.
func (c *StaticCatalog) Locales() []string {
	out := make([]string, 0, len(c.bundles))
	for tag := range c.bundles {
		out = append(out, tag)
	}

	return out
}

func (c *StaticCatalog) loadFS(fsys fs.FS, dir string) error {
	files, err := fs.Glob(fsys, path.Join(dir, "*"+bundleExt))
	if err != nil {
		return err
	}

	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}

		entries, err := parseBundle(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}

		tag := strings.TrimSuffix(path.Base(name), bundleExt)
		if err := c.merge(tag, entries); err != nil {
			return err
		}
	}

	return nil
}

func (c *StaticCatalog) merge(tag string, entries map[string]string) error {
	parsed, err := language.Parse(tag)
	if err != nil {
		return fmt.Errorf("invalid locale %q: %w", tag, err)
	}

	key := parsed.String()
	if c.bundles[key] == nil {
		c.bundles[key] = make(map[string]string, len(entries))
	}

	maps.Copy(c.bundles[key], entries)

	return nil
}

// parseBundle flattens a YAML bundle into dotted code -> template pairs.
func parseBundle(data []byte) (map[string]string, error) {
	raw, err := yaml.Parser().Unmarshal(data)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(raw, "."), nil); err != nil {
		return nil, err
	}

	flat := k.All()
	entries := make(map[string]string, len(flat))

	for code, v := range flat {
		if s, ok := v.(string); ok {
			entries[code] = s
			continue
		}

		entries[code] = fmt.Sprint(v)
	}

	return entries, nil
}

// candidates lists the bundle keys to try for a tag, most specific first.
func candidates(locale language.Tag) []string {
	if locale.IsRoot() {
		return nil
	}

	seen := make(map[string]struct{}, 4)
	out := make([]string, 0, 4)

	add := func(t language.Tag) {
		key := t.String()
		if _, dup := seen[key]; dup {
			return
		}

		seen[key] = struct{}{}
		out = append(out, key)
	}

	for t := locale; !t.IsRoot(); t = t.Parent() {
		add(t)
	}

	if base, conf := locale.Base(); conf != language.No {
		if t, err := language.Parse(base.String()); err == nil && !t.IsRoot() {
			add(t)
		}
	}

	return out
}
