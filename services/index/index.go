package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
	"golang.org/x/sync/errgroup"
)

// Indexer represents the search database operations needed for index creation
type Indexer interface {
	BuildIndex(documents []*searchdb.Document) error
	DeleteDocuments(documentIDs []string) error
}

const (
	ProgressStatusStep1    = 10
	ProgressStatusStep2    = 20
	ProgressStatusComplete = 100
	ProgressStatusFailed   = -1

	maxGoRoutinesForIndexing = 50
	maxIndexBuildingTime     = 2 * time.Hour
	progressReportInterval   = 1000
)

var ErrIndexingInProgress = errors.New("indexing already in progress")

type Service struct {
	logger        logger.Logger
	indexer       Indexer
	metadataStore MetadataStore
	buildIndexC   chan indexRequest
	building      atomic.Bool
}

type indexRequest struct {
	rootPath       string
	excludeFolders []string
	requestID      string
}

func New(ctx context.Context, logger logger.Logger, indexer Indexer, metadataStore MetadataStore) *Service {
	indexService := &Service{
		logger:        logger,
		indexer:       indexer,
		metadataStore: metadataStore,
		buildIndexC:   make(chan indexRequest, 1),
	}

	go indexService.build(ctx)
	return indexService
}

// Build queues an index run for rootPath. Only one run may be pending or in progress at a time.
func (s *Service) Build(rootPath string, excludeFolders []string, requestID string) error {
	if !s.building.CompareAndSwap(false, true) {
		s.logger.Warn("request to index while indexing is already in progress", "request_id", requestID)
		return ErrIndexingInProgress
	}

	s.setRequestStatus(requestID, 0)
	s.buildIndexC <- indexRequest{rootPath: rootPath, excludeFolders: excludeFolders, requestID: requestID}
	return nil
}

// GetStatus retrieves the progress status for index creation
func (s *Service) GetStatus(requestID string) (int, error) {
	value, err := s.metadataStore.Get(kvdb.RequestsBucket, requestID)
	if err != nil {
		return 0, fmt.Errorf("request not found: %w", err)
	}

	status, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid status value: %w", err)
	}

	return status, nil
}

func (s *Service) build(ctx context.Context) {
	for {
		select {
		case req := <-s.buildIndexC:
			indexTimeoutCtx, cancel := context.WithTimeout(ctx, maxIndexBuildingTime)
			status := s.buildIndex(indexTimeoutCtx, req.rootPath, req.excludeFolders, req.requestID)
			cancel()
			// A request may be accepted as soon as the final status is visible.
			s.building.Store(false)
			s.setRequestStatus(req.requestID, status)
		case <-ctx.Done():
			s.logger.Info("index service stopped", "reason", ctx.Err())
			return
		}
	}
}

// buildIndex returns the final progress status of the run.
func (s *Service) buildIndex(ctx context.Context, rootPath string, excludeFolders []string, requestID string) int {
	s.logger.Info("performing incremental indexing", "request_id", requestID, "root", rootPath)
	entries, err := s.discoverModifiedEntries(rootPath, excludeFolders)
	if err != nil {
		return s.fail(requestID, err)
	}
	s.logger.Info("discovered modified entries", slog.Int("num_of_entries", len(entries)))
	s.setRequestStatus(requestID, ProgressStatusStep1)

	deleted, err := s.getDeletedPaths()
	if err != nil {
		return s.fail(requestID, err)
	}
	if err := s.removeDeletedPaths(deleted); err != nil {
		return s.fail(requestID, err)
	}
	s.setRequestStatus(requestID, ProgressStatusStep2)

	if err := s.indexEntries(ctx, entries, requestID); err != nil {
		return s.fail(requestID, err)
	}

	s.logger.Info("finished indexing", "request_id", requestID, "entries", len(entries))
	return ProgressStatusComplete
}

func (s *Service) fail(requestID string, err error) int {
	s.logger.Error("failed to create index", "request_id", requestID, "err", err.Error())
	return ProgressStatusFailed
}

func (s *Service) removeDeletedPaths(deleted []string) error {
	if len(deleted) == 0 {
		return nil
	}
	s.logger.Info("removing deleted paths from index", "deleted_paths", len(deleted))
	if err := s.indexer.DeleteDocuments(deleted); err != nil {
		s.logger.Error("failed to delete documents from search index", "err", err.Error())
		return fmt.Errorf("failed to delete documents from search index: %w", err)
	}

	for _, path := range deleted {
		if err := s.metadataStore.Delete(kvdb.FilesBucket, path); err != nil {
			s.logger.Error("failed to delete file metadata", "path", path, "err", err.Error())
		}
	}
	return nil
}

// indexEntries writes entries in batches from a bounded set of goroutines, recording metadata per
// successful batch so the next run skips them.
func (s *Service) indexEntries(ctx context.Context, entries []Entry, requestID string) error {
	if len(entries) == 0 {
		s.logger.Info("nothing to index")
		return nil
	}

	indexTime := time.Now().UTC()
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxGoRoutinesForIndexing)

	var mu sync.Mutex
	indexed := 0

	for start := 0; start < len(entries); start += searchdb.IndexingBatchSize {
		batch := entries[start:min(start+searchdb.IndexingBatchSize, len(entries))]
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if err := s.indexBatch(batch); err != nil {
				return err
			}
			s.updateMetadata(batch, indexTime)

			mu.Lock()
			before := indexed
			indexed += len(batch)
			done := indexed
			mu.Unlock()

			if before/progressReportInterval != done/progressReportInterval {
				s.logger.Info("indexed entries", "count", fmt.Sprintf("%d/%d", done, len(entries)))
				s.setRequestStatus(requestID, getProgressPercentage(done, len(entries), ProgressStatusStep2, ProgressStatusComplete-1))
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("indexing stopped: %w", err)
	}
	return nil
}

func (s *Service) indexBatch(batch []Entry) error {
	documents := make([]*searchdb.Document, 0, len(batch))
	for _, entry := range batch {
		documents = append(documents, entry.document())
	}

	if err := s.indexer.BuildIndex(documents); err != nil {
		s.logger.Error("failed to index batch", "size", len(batch), "err", err.Error())
		return fmt.Errorf("failed to index batch: %w", err)
	}
	return nil
}

func (s *Service) updateMetadata(batch []Entry, indexTime time.Time) {
	for _, entry := range batch {
		_ = s.setFileMetadata(entry.Path, kvdb.FileMetadata{LastIndexed: indexTime})
	}
}

func (s *Service) setFileMetadata(path string, metadata kvdb.FileMetadata) error {
	if path == "" {
		s.logger.Error("path cannot be empty")
		return fmt.Errorf("path cannot be empty")
	}

	data, err := json.Marshal(metadata)
	if err != nil {
		s.logger.Error("failed to marshal metadata", "path", path, "err", err.Error())
		return fmt.Errorf("failed to marshal metadata for %s: %w", path, err)
	}

	if err := s.metadataStore.Set(kvdb.FilesBucket, path, string(data)); err != nil {
		s.logger.Error("failed to set file metadata", "path", path, "err", err.Error())
		return err
	}

	return nil
}

func (s *Service) getFileMetadata(path string) (*kvdb.FileMetadata, error) {
	value, err := s.metadataStore.Get(kvdb.FilesBucket, path)
	if err != nil {
		return nil, err
	}

	var metadata kvdb.FileMetadata
	if err := json.Unmarshal([]byte(value), &metadata); err != nil {
		s.logger.Error("failed to unmarshal metadata", "path", path, "err", err.Error())
		return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", path, err)
	}

	return &metadata, nil
}

func (s *Service) getDeletedPaths() ([]string, error) {
	allKeys, err := s.metadataStore.GetAllKeys(kvdb.FilesBucket)
	if err != nil {
		s.logger.Error("failed to get all keys from database", "err", err.Error())
		return nil, fmt.Errorf("failed to get all keys from database: %w", err)
	}

	var deleted []string
	for _, key := range allKeys {
		if _, err := os.Stat(key); errors.Is(err, os.ErrNotExist) {
			deleted = append(deleted, key)
		}
	}

	return deleted, nil
}

func (s *Service) setRequestStatus(requestID string, status int) {
	if err := s.metadataStore.Set(kvdb.RequestsBucket, requestID, strconv.Itoa(status)); err != nil {
		s.logger.Error("failed to update request status", "request_id", requestID, "progress", status, "err", err.Error())
	}
}

func getProgressPercentage(done int, total int, initial int, final int) int {
	if done == 0 || total == 0 {
		return initial
	}

	if done >= total {
		return final
	}

	progress := float64(done) / float64(total)
	result := float64(initial) + progress*float64(final-initial)

	return int(result)
}
