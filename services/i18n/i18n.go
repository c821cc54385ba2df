package i18n

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

var supported = []language.Tag{language.English, language.Japanese}

type Translator interface {
	T(key string) string
}

type Catalog struct {
	tag      language.Tag
	messages map[string]string
	fallback map[string]string
}

// New picks the closest supported language for locale ("ja_JP.UTF-8", "en-US", ...).
func New(locale string) (*Catalog, error) {
	tag := match(locale)

	fallback, err := loadMessages(language.English)
	if err != nil {
		return nil, err
	}
	messages := fallback
	if tag != language.English {
		if messages, err = loadMessages(tag); err != nil {
			return nil, err
		}
	}

	return &Catalog{tag: tag, messages: messages, fallback: fallback}, nil
}

func (c *Catalog) Language() language.Tag {
	return c.tag
}

// T falls back to English and then to the key itself.
func (c *Catalog) T(key string) string {
	if message, ok := c.messages[key]; ok {
		return message
	}
	if message, ok := c.fallback[key]; ok {
		return message
	}
	return key
}

func match(locale string) language.Tag {
	// POSIX locales look like ja_JP.UTF-8
	locale, _, _ = strings.Cut(locale, ".")
	locale = strings.ReplaceAll(locale, "_", "-")

	matcher := language.NewMatcher(supported)
	_, index, confidence := matcher.Match(language.Make(locale))
	if confidence == language.No {
		return language.English
	}
	return supported[index]
}

func loadMessages(tag language.Tag) (map[string]string, error) {
	base, _ := tag.Base()
	data, err := localeFiles.ReadFile(path.Join("locales", base.String()+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("no catalog for %s: %w", tag, err)
	}

	messages := make(map[string]string)
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("could not parse catalog for %s: %w", tag, err)
	}
	return messages, nil
}
