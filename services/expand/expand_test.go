package expand

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const testDictionary = `; comment line
かい	貝	会
かいしゃ	会社
かき	柿
さけ	酒	鮭
`

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestDictionary(t *testing.T) *Dictionary {
	t.Helper()
	store, err := kvdb.Open(newTestLogger(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewDictionary(newTestLogger(), store, 16)
}

var toHiraganaTestCases = []struct {
	input    string
	expected string
}{
	{input: "kaisha", expected: "かいしゃ"},
	{input: "kanji", expected: "かんじ"},
	{input: "konnichiha", expected: "こんにちは"},
	{input: "gakkou", expected: "がっこう"},
	{input: "tsukue", expected: "つくえ"},
	{input: "kan", expected: "かn"},
	{input: "report", expected: "れぽrt"},
	{input: "ra-men", expected: "らーめn"},
}

func TestToHiragana(t *testing.T) {
	for _, testCase := range toHiraganaTestCases {
		t.Run(testCase.input, func(t *testing.T) {
			require.Equal(t, testCase.expected, toHiragana(testCase.input))
		})
	}
}

func TestToKatakana(t *testing.T) {
	require.Equal(t, "カイシャn", toKatakana("かいしゃn"))
}

func TestImportAndExpand(t *testing.T) {
	assert := require.New(t)
	dict := newTestDictionary(t)

	count, err := dict.Import(strings.NewReader(testDictionary), "utf-8")
	assert.NoError(err)
	assert.Equal(4, count)

	pattern, err := dict.Expand("kai")
	assert.NoError(err)
	assert.Equal("(かい|カイ|会社|kai|貝|会)", pattern)

	re := regexp.MustCompile(pattern)
	assert.True(re.MatchString("株式会社.txt"))
	assert.True(re.MatchString("カイロ.png"))
	assert.False(re.MatchString("酒.txt"))
}

func TestExpandIsDeterministic(t *testing.T) {
	assert := require.New(t)
	dict := newTestDictionary(t)
	_, err := dict.Import(strings.NewReader(testDictionary), "")
	assert.NoError(err)

	first, err := dict.Expand("sake")
	assert.NoError(err)
	second, err := dict.Expand("SAKE")
	assert.NoError(err)
	assert.Equal(first, second)
}

func TestExpandQuotesMetacharacters(t *testing.T) {
	assert := require.New(t)
	dict := newTestDictionary(t)

	pattern, err := dict.Expand("a.b")
	assert.NoError(err)
	assert.Contains(pattern, `a\.b`)
	_, err = regexp.Compile(pattern)
	assert.NoError(err)
}

func TestExpandEmpty(t *testing.T) {
	_, err := newTestDictionary(t).Expand("   ")
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestImportShiftJIS(t *testing.T) {
	assert := require.New(t)
	dict := newTestDictionary(t)

	var encoded bytes.Buffer
	writer := transform.NewWriter(&encoded, japanese.ShiftJIS.NewEncoder())
	_, err := writer.Write([]byte(testDictionary))
	assert.NoError(err)
	assert.NoError(writer.Close())

	count, err := dict.Import(&encoded, "cp932")
	assert.NoError(err)
	assert.Equal(4, count)

	pattern, err := dict.Expand("sake")
	assert.NoError(err)
	assert.Contains(pattern, "鮭")
}

func TestImportUnsupportedEncoding(t *testing.T) {
	_, err := newTestDictionary(t).Import(strings.NewReader(testDictionary), "latin-9")
	require.Error(t, err)
}

func TestEnsureImported(t *testing.T) {
	assert := require.New(t)
	dict := newTestDictionary(t)

	path := filepath.Join(t.TempDir(), "migemo-dict")
	assert.NoError(os.WriteFile(path, []byte(testDictionary), 0644))

	assert.NoError(dict.EnsureImported(path, "utf-8"))
	count, err := dict.store.Count(kvdb.DictionaryBucket)
	assert.NoError(err)
	assert.Equal(4, count)

	// Missing file is not fatal once entries exist, or when nothing was imported yet.
	assert.NoError(dict.EnsureImported(filepath.Join(t.TempDir(), "missing"), "utf-8"))
	assert.NoError(newTestDictionary(t).EnsureImported(filepath.Join(t.TempDir(), "missing"), "utf-8"))
}
