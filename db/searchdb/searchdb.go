package searchdb

import "context"

type DB interface {
	BuildIndex(documents []*Document) error
	DeleteDocuments(documentIDs []string) error
	Search(ctx context.Context, queryString string, limit int, offset int) (*Response, error)
	GetDocCount() (uint64, error)
	Close() error
}
