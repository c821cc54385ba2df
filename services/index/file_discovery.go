package index

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/db/searchdb"
)

type Entry struct {
	Path    string
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

func (e Entry) document() *searchdb.Document {
	docType := searchdb.TypeFile
	if e.IsDir {
		docType = searchdb.TypeFolder
	}
	return &searchdb.Document{
		ID:      e.Path,
		Path:    e.Path,
		Name:    e.Name,
		Parent:  filepath.Dir(e.Path),
		Type:    docType,
		Size:    e.Size,
		ModTime: e.ModTime,
	}
}

// discoverModifiedEntries walks rootPath and returns the files and folders changed since they were last indexed.
// Hidden entries and excluded folders are skipped with everything under them.
func (s *Service) discoverModifiedEntries(rootPath string, excludeFolders []string) ([]Entry, error) {
	var modified []Entry
	excludeSet := make(map[string]struct{}, len(excludeFolders))
	for _, folder := range excludeFolders {
		excludeSet[filepath.Clean(folder)] = struct{}{}
	}

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Error("could not walk through file or directory", "path", path, "err", err.Error())
			if errors.Is(err, os.ErrPermission) {
				return nil
			}
			return err
		}
		if path == rootPath {
			return nil
		}

		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() && (hidden || isInExcludedPath(path, excludeSet)) {
			return filepath.SkipDir
		}
		if hidden {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Warn("could not stat entry", "path", path, "err", err.Error())
			return nil
		}

		if s.shouldBeIndexed(path, info.ModTime()) {
			entry := Entry{Path: path, Name: d.Name(), IsDir: d.IsDir(), ModTime: info.ModTime()}
			if !entry.IsDir {
				entry.Size = info.Size()
			}
			modified = append(modified, entry)
		}
		return nil
	})

	return modified, err
}

func (s *Service) shouldBeIndexed(path string, modTime time.Time) bool {
	metadata, err := s.getFileMetadata(path)
	if err != nil {
		var notFoundErr *kvdb.NotFoundError
		var invalidKeyErr *kvdb.InvalidKeyError

		switch {
		case errors.As(err, &notFoundErr):
		case errors.As(err, &invalidKeyErr):
			s.logger.Error("invalid key for file path", "key", path, "err", err.Error())
		default:
			s.logger.Error("failed to get metadata", "path", path, "err", err.Error())
		}
		return true
	}

	return modTime.After(metadata.LastIndexed)
}

// Assumes currentPath is clean
func isInExcludedPath(currentPath string, excludeSet map[string]struct{}) bool {
	_, ok := excludeSet[currentPath]
	return ok
}
