package expand

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meghashyamc/migemosearch/db/kvdb"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const (
	wordSeparator   = "\t"
	commentPrefix   = ";"
	importBatchSize = 5000
)

// NewDecodingReader wraps r so a migemo-dict in the given encoding reads as UTF-8.
func NewDecodingReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "cp932", "shift_jis", "shift-jis", "sjis":
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder()), nil
	case "euc-jp", "eucjp":
		return transform.NewReader(r, japanese.EUCJP.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported dictionary encoding %q", encoding)
	}
}

// Import loads "reading<TAB>word<TAB>word..." lines into the dictionary and returns how
// many readings were written. Lines starting with ";" are comments.
func (d *Dictionary) Import(r io.Reader, encoding string) (int, error) {
	decoded, err := NewDecodingReader(r, encoding)
	if err != nil {
		return 0, err
	}

	words := make(map[string][]string)
	var order []string

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		fields := strings.Split(line, wordSeparator)
		reading := strings.TrimSpace(fields[0])
		if reading == "" || len(fields) < 2 {
			continue
		}
		if _, ok := words[reading]; !ok {
			order = append(order, reading)
		}
		for _, word := range fields[1:] {
			if word = strings.TrimSpace(word); word != "" {
				words[reading] = append(words[reading], word)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		d.logger.Error("could not read dictionary", "err", err.Error())
		return 0, fmt.Errorf("could not read dictionary: %w", err)
	}

	batch := make([]kvdb.KV, 0, importBatchSize)
	for i, reading := range order {
		batch = append(batch, kvdb.KV{Key: reading, Value: strings.Join(words[reading], wordSeparator)})
		if len(batch) == importBatchSize || i == len(order)-1 {
			if err := d.store.SetMany(kvdb.DictionaryBucket, batch); err != nil {
				return 0, fmt.Errorf("could not store dictionary entries: %w", err)
			}
			batch = batch[:0]
		}
	}

	d.logger.Info("imported dictionary", "readings", len(order))
	return len(order), nil
}

// EnsureImported imports the dictionary file once; it does nothing when entries exist.
func (d *Dictionary) EnsureImported(path string, encoding string) error {
	count, err := d.store.Count(kvdb.DictionaryBucket)
	if err != nil {
		return fmt.Errorf("could not count dictionary entries: %w", err)
	}
	if count > 0 {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		d.logger.Warn("dictionary file not available, expansion will use kana only", "path", path, "err", err.Error())
		return nil
	}
	defer file.Close()

	_, err = d.Import(file, encoding)
	return err
}
