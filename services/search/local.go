package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
)

// Local searches an index opened in this process.
type Local struct {
	logger logger.Logger
	db     searchdb.DB
}

func NewLocal(logger logger.Logger, db searchdb.DB) *Local {
	return &Local{logger: logger, db: db}
}

func (l *Local) Search(ctx context.Context, text string, maxCount int) ([]Hit, error) {
	if l.db == nil {
		return nil, ErrBackendUnavailable
	}

	response, err := l.db.Search(ctx, text, maxCount, 0)
	if err != nil {
		if errors.Is(err, bleve.ErrorIndexClosed) {
			l.logger.Warn("search index is closed", "err", err.Error())
			return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, err.Error())
		}
		return nil, err
	}

	return hitsFromResults(response.Results), nil
}

// Reset is a no-op: the in-process index keeps no per-search state.
func (l *Local) Reset() {}

func hitsFromResults(results []searchdb.Result) []Hit {
	hits := make([]Hit, 0, len(results))
	for _, result := range results {
		hitType := HitTypeFile
		if result.Type == searchdb.TypeFolder {
			hitType = HitTypeFolder
		}
		hits = append(hits, Hit{
			Path:   result.Path,
			Name:   result.Name,
			Parent: result.Parent,
			Type:   hitType,
		})
	}
	return hits
}
