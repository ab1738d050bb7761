// Package i18n loads locale string tables and resolves the preferred language
// for a request.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Bundle holds the loaded string tables for the supported locales.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
	matcher   language.Matcher
}

// Load reads <lang>.yaml files from dir for each supported locale. A missing
// file is tolerated for non-fallback locales.
func Load(dir string, fallback string, supported []string) (*Bundle, error) {
	if len(supported) == 0 {
		supported = []string{"ja", "en"}
	}
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: map[string]struct{}{},
	}

	// matcher prefers the fallback when nothing else fits
	tags := []language.Tag{language.Make(fallback)}
	for _, l := range supported {
		b.supported[l] = struct{}{}
		if l != fallback {
			tags = append(tags, language.Make(l))
		}
		path := filepath.Join(dir, l+".yaml")
		raw, err := os.ReadFile(path)
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("i18n: load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback locale %s not loaded", fallback)
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// NewStatic builds a bundle from in-memory tables. Test helper.
func NewStatic(fallback string, dict map[string]map[string]string) *Bundle {
	b := &Bundle{
		dict:      dict,
		fallback:  fallback,
		supported: map[string]struct{}{},
	}
	tags := []language.Tag{language.Make(fallback)}
	if _, ok := dict[fallback]; !ok {
		if b.dict == nil {
			b.dict = map[string]map[string]string{}
		}
		b.dict[fallback] = map[string]string{}
	}
	langs := make([]string, 0, len(dict))
	for l := range dict {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	for _, l := range langs {
		b.supported[l] = struct{}{}
		if l != fallback {
			tags = append(tags, language.Make(l))
		}
	}
	b.supported[fallback] = struct{}{}
	b.matcher = language.NewMatcher(tags)
	return b
}

// Supported returns the supported locale codes, sorted.
func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang is a supported locale code.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.supported[lang]
	return ok
}

// T returns the translation for key in lang, falling back to the default
// locale and finally the key itself.
func (b *Bundle) T(lang, key string) string {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Resolve chooses the best supported language for an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	if acceptLang == "" {
		return b.fallback
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	tag, _, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return b.fallback
	}
	base, _ := tag.Base()
	lang := base.String()
	if b.IsSupported(lang) {
		return lang
	}
	return b.fallback
}
