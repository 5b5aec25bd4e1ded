// Package i18n resolves symbolic label keys to display text per language.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed bundles/*.yaml
var embedded embed.FS

// DefaultLanguage is used when a requested language has no bundle
const DefaultLanguage = "ru"

// Bundles holds label texts keyed by language then key
type Bundles struct {
	fallback string
	langs    map[string]map[string]string
}

// Default returns the bundles shipped with the binary
func Default() (*Bundles, error) {
	b := &Bundles{fallback: DefaultLanguage, langs: map[string]map[string]string{}}
	if err := b.addFS(embedded, "bundles"); err != nil {
		return nil, err
	}
	return b, nil
}

// Load returns the shipped bundles overlaid with every <lang>.yaml in dir.
// Keys in dir override shipped keys; an empty dir loads nothing extra.
func Load(dir, fallback string) (*Bundles, error) {
	b, err := Default()
	if err != nil {
		return nil, err
	}
	if fallback != "" {
		b.fallback = fallback
	}
	if dir != "" {
		if err := b.addFS(os.DirFS(dir), "."); err != nil {
			return nil, fmt.Errorf("failed to load label bundles from %s: %w", filepath.Clean(dir), err)
		}
	}
	if _, ok := b.langs[b.fallback]; !ok {
		return nil, fmt.Errorf("no bundle for default language %q", b.fallback)
	}
	return b, nil
}

// Parse decodes a flat key: text YAML document
func Parse(data []byte) (map[string]string, error) {
	labels := map[string]string{}
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("invalid label bundle: %w", err)
	}
	return labels, nil
}

// Add merges labels into a language, overriding existing keys
func (b *Bundles) Add(lang string, labels map[string]string) {
	dst, ok := b.langs[lang]
	if !ok {
		dst = make(map[string]string, len(labels))
		b.langs[lang] = dst
	}
	for k, v := range labels {
		dst[k] = v
	}
}

// Languages lists the loaded languages, sorted
func (b *Bundles) Languages() []string {
	out := make([]string, 0, len(b.langs))
	for lang := range b.langs {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Has reports whether a bundle exists for lang
func (b *Bundles) Has(lang string) bool {
	_, ok := b.langs[lang]
	return ok
}

// Lookup returns label(key) for a language. Unknown languages use the
// default language; keys missing there too resolve to the key itself.
func (b *Bundles) Lookup(lang string) func(key string) string {
	primary := b.langs[lang]
	fallback := b.langs[b.fallback]
	return func(key string) string {
		if text, ok := primary[key]; ok {
			return text
		}
		if text, ok := fallback[key]; ok {
			return text
		}
		return key
	}
}

func (b *Bundles) addFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		ext := path.Ext(name)
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return err
		}
		labels, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		b.Add(strings.TrimSuffix(name, ext), labels)
	}
	return nil
}
