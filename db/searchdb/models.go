package searchdb

import "time"

const (
	TypeFile   = "file"
	TypeFolder = "folder"
)

// Document is keyed by its path, so re-indexing a path replaces it.
type Document struct {
	ID      string    `json:"id"`
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Parent  string    `json:"parent"`
	Type    string    `json:"type"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

type Result struct {
	ID      string  `json:"id"`
	Path    string  `json:"path"`
	Name    string  `json:"name"`
	Parent  string  `json:"parent"`
	Type    string  `json:"type"`
	Score   float64 `json:"score"`
	Size    int64   `json:"size"`
	ModTime string  `json:"mod_time"`
}

type Response struct {
	Results    []Result `json:"results"`
	Total      uint64   `json:"total"`
	SearchTime string   `json:"search_time"`
}
