package searchdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/migemosearch/config"
	"github.com/meghashyamc/migemosearch/logger"
)

const IndexingBatchSize = 100

// PatternPrefix marks a query string as a regular expression rather than a literal.
const PatternPrefix = "@"

const lowercaseKeywordAnalyzer = "lowercase_keyword"

const (
	indexFieldName    = "name"
	indexFieldPath    = "path"
	indexFieldParent  = "parent"
	indexFieldType    = "type"
	indexFieldSize    = "size"
	indexFieldModTime = "mod_time"
)

var ErrInvalidPattern = errors.New("invalid search pattern")

type BleveDB struct {
	indexPath string
	logger    logger.Logger
	index     bleve.Index
}

func New(logger logger.Logger, cfg *config.Config) (*BleveDB, error) {
	return Open(logger, filepath.Join(cfg.GetStoragePath(), cfg.GetIndexPath()))
}

// Open creates the index at indexPath or opens the existing one.
func Open(logger logger.Logger, indexPath string) (*BleveDB, error) {
	mapping, err := createIndexMapping()
	if err != nil {
		logger.Error("could not create index mapping", "err", err.Error())
		return nil, err
	}
	index, err := bleve.New(indexPath, mapping)
	if err != nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Error("could not open index", "path", indexPath, "err", err.Error())
			return nil, err
		}
	}
	return &BleveDB{indexPath: indexPath, logger: logger, index: index}, nil
}

func (b *BleveDB) BuildIndex(documents []*Document) error {

	batch := b.index.NewBatch()

	for i, doc := range documents {

		err := batch.Index(doc.ID, doc)
		if err != nil {
			b.logger.Error("could not index document", "err", err.Error())
			return err
		}

		// Execute batch when it reaches the batch size
		if (i+1)%IndexingBatchSize == 0 {
			err = b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index document", "err", err.Error())
			return err
		}
	}

	return nil
}

func createIndexMapping() (mapping.IndexMapping, error) {

	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(lowercaseKeywordAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}

	docMapping := bleve.NewDocumentMapping()

	// Name field - whole file name as one lowercased term, so patterns see the full name
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = lowercaseKeywordAnalyzer
	docMapping.AddFieldMappingsAt(indexFieldName, nameFieldMapping)

	// Path fields - not analyzed (exact match, sortable)
	pathFieldMapping := bleve.NewTextFieldMapping()
	pathFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt(indexFieldPath, pathFieldMapping)

	parentFieldMapping := bleve.NewTextFieldMapping()
	parentFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt(indexFieldParent, parentFieldMapping)

	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt(indexFieldType, typeFieldMapping)

	sizeFieldMapping := bleve.NewNumericFieldMapping()
	docMapping.AddFieldMappingsAt(indexFieldSize, sizeFieldMapping)

	modTimeFieldMapping := bleve.NewDateTimeFieldMapping()
	docMapping.AddFieldMappingsAt(indexFieldModTime, modTimeFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	indexMapping.DefaultAnalyzer = keyword.Name

	return indexMapping, nil
}

func (b *BleveDB) Search(ctx context.Context, queryString string, limit int, offset int) (*Response, error) {
	start := time.Now()

	searchQuery, err := buildSearchQuery(queryString)
	if err != nil {
		b.logger.Warn("could not build search query", "query", queryString, "err", err.Error())
		return nil, err
	}

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, offset, false)
	searchRequest.Fields = []string{indexFieldPath, indexFieldName, indexFieldParent, indexFieldType, indexFieldSize, indexFieldModTime}
	searchRequest.SortBy([]string{indexFieldPath})

	searchResult, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		b.logger.Error("search failed", "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, len(searchResult.Hits))
	for i, hit := range searchResult.Hits {
		result := Result{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if path, ok := hit.Fields[indexFieldPath].(string); ok {
			result.Path = path
		}
		if name, ok := hit.Fields[indexFieldName].(string); ok {
			result.Name = name
		}
		if parent, ok := hit.Fields[indexFieldParent].(string); ok {
			result.Parent = parent
		}
		if docType, ok := hit.Fields[indexFieldType].(string); ok {
			result.Type = docType
		}
		if size, ok := hit.Fields[indexFieldSize].(float64); ok {
			result.Size = int64(size)
		}
		if modTime, ok := hit.Fields[indexFieldModTime].(string); ok {
			result.ModTime = modTime
		}

		results[i] = result
	}

	response := &Response{
		Results:    results,
		Total:      searchResult.Total,
		SearchTime: time.Since(start).String(),
	}

	return response, nil
}

// buildSearchQuery treats "@..." as a regular expression over the file name and anything
// else as whitespace-separated substrings (with * and ? wildcards) that must all match.
func buildSearchQuery(queryString string) (query.Query, error) {

	queryString = strings.TrimSpace(queryString)

	if queryString == "" {
		return bleve.NewMatchAllQuery(), nil
	}

	if pattern, ok := strings.CutPrefix(queryString, PatternPrefix); ok {
		pattern = strings.ToLower(pattern)
		if pattern == "" {
			return bleve.NewMatchAllQuery(), nil
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, err.Error())
		}
		regexpQuery := bleve.NewRegexpQuery(".*(" + pattern + ").*")
		regexpQuery.SetField(indexFieldName)
		return regexpQuery, nil
	}

	conjunctQuery := bleve.NewConjunctionQuery()
	for _, term := range strings.Fields(strings.ToLower(queryString)) {
		wildcardQuery := bleve.NewWildcardQuery("*" + term + "*")
		wildcardQuery.SetField(indexFieldName)
		conjunctQuery.AddQuery(wildcardQuery)
	}

	return conjunctQuery, nil
}

func (b *BleveDB) DeleteDocuments(documentIDs []string) error {
	batch := b.index.NewBatch()

	for i, docID := range documentIDs {
		batch.Delete(docID)

		// Execute batch when it reaches the batch size
		if (i+1)%IndexingBatchSize == 0 {
			err := b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not delete documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func (b *BleveDB) GetDocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}
