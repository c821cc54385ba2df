package expand

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/logger"
)

var ErrEmptyText = errors.New("nothing to expand")

// Expander turns typed text into a regular expression matching its readings.
type Expander interface {
	Expand(text string) (string, error)
}

type DictionaryStore interface {
	ScanPrefix(bucket string, prefix string, limit int) ([]kvdb.KV, error)
	SetMany(bucket string, entries []kvdb.KV) error
	Count(bucket string) (int, error)
}

// Dictionary expands romaji into hiragana, katakana and the dictionary words whose
// reading starts with the hiragana form.
type Dictionary struct {
	logger   logger.Logger
	store    DictionaryStore
	maxWords int
}

func NewDictionary(logger logger.Logger, store DictionaryStore, maxWords int) *Dictionary {
	return &Dictionary{logger: logger, store: store, maxWords: maxWords}
}

func (d *Dictionary) Expand(text string) (string, error) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return "", ErrEmptyText
	}

	hiragana := toHiragana(lowered)
	alternatives := []string{lowered, hiragana, toKatakana(hiragana)}

	// A trailing consonant ("kan") has no reading yet; look up what precedes it.
	reading := strings.TrimRightFunc(hiragana, func(r rune) bool { return r <= unicode.MaxASCII })
	if reading != "" {
		entries, err := d.store.ScanPrefix(kvdb.DictionaryBucket, reading, d.maxWords)
		if err != nil {
			d.logger.Error("could not look up dictionary", "reading", reading, "err", err.Error())
			return "", fmt.Errorf("could not look up %q in dictionary: %w", reading, err)
		}
		for _, entry := range entries {
			alternatives = append(alternatives, strings.Split(entry.Value, wordSeparator)...)
		}
	}

	return buildPattern(alternatives), nil
}

// buildPattern quotes, dedupes and orders alternatives longest first.
func buildPattern(alternatives []string) string {
	seen := make(map[string]struct{}, len(alternatives))
	unique := make([]string, 0, len(alternatives))
	for _, alternative := range alternatives {
		if alternative == "" {
			continue
		}
		if _, ok := seen[alternative]; ok {
			continue
		}
		seen[alternative] = struct{}{}
		unique = append(unique, alternative)
	}

	slices.SortStableFunc(unique, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	quoted := make([]string, len(unique))
	for i, alternative := range unique {
		quoted[i] = regexp.QuoteMeta(alternative)
	}

	return "(" + strings.Join(quoted, "|") + ")"
}
