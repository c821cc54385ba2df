package search

import (
	"context"
	"errors"
)

// ErrBackendUnavailable means the search backend's control channel could not be reached.
var ErrBackendUnavailable = errors.New("search backend is not running")

type HitType string

const (
	HitTypeFile   HitType = "file"
	HitTypeFolder HitType = "folder"
)

type Hit struct {
	Path   string  `json:"path"`
	Name   string  `json:"name"`
	Parent string  `json:"parent"`
	Type   HitType `json:"type"`
}

// Backend is a bounded filename search. A text starting with "@" is a pattern.
type Backend interface {
	Search(ctx context.Context, text string, maxCount int) ([]Hit, error)
	// Reset drops any cursor or session state held for the previous search.
	Reset()
}
