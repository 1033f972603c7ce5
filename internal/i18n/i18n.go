// internal/i18n/i18n.go
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

const fallbackLang = "en"

type I18n struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

var instance *I18n
var once sync.Once

// Initialize loads the embedded locales. defaultLang is used when a key is
// missing in the requested language.
func Initialize(defaultLang string) error {
	var err error
	once.Do(func() {
		i := New(defaultLang)
		if err = i.LoadTranslations(embeddedLocales, "locales"); err == nil {
			instance = i
		}
	})
	return err
}

func New(defaultLang string) *I18n {
	if defaultLang == "" {
		defaultLang = fallbackLang
	}
	return &I18n{
		translations: make(map[string]map[string]string),
		defaultLang:  defaultLang,
	}
}

func (i *I18n) LoadTranslations(fsys fs.FS, dir string) error {
	files, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list locale files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no locale files found in %s", dir)
	}

	for _, file := range files {
		lang := strings.TrimSuffix(path.Base(file), ".json")

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", file, err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", file, err)
		}

		i.mu.Lock()
		i.translations[lang] = translations
		i.mu.Unlock()
	}

	return nil
}

func (i *I18n) T(lang, key string, args ...interface{}) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	for _, l := range []string{lang, i.defaultLang, fallbackLang} {
		if translations, exists := i.translations[l]; exists {
			if text, exists := translations[key]; exists {
				if len(args) > 0 {
					return fmt.Sprintf(text, args...)
				}
				return text
			}
		}
	}

	// Return key if no translation found
	return key
}

func (i *I18n) Supports(lang string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.translations[lang]
	return ok
}

// Global functions
func T(lang, key string, args ...interface{}) string {
	if instance != nil {
		return instance.T(lang, key, args...)
	}
	return key
}

func DefaultLanguage() string {
	if instance != nil {
		return instance.defaultLang
	}
	return fallbackLang
}

// Normalize maps an Accept-Language style tag to a supported locale name.
func Normalize(tag string) string {
	tag = strings.TrimSpace(strings.Split(strings.Split(tag, ",")[0], ";")[0])
	switch strings.ToLower(strings.ReplaceAll(tag, "_", "-")) {
	case "pt", "pt-br", "pt-pt":
		return "pt_BR"
	case "en", "en-us", "en-gb":
		return "en"
	case "":
		return DefaultLanguage()
	}
	if instance != nil && instance.Supports(tag) {
		return tag
	}
	return DefaultLanguage()
}
