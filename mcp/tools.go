package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meghashyamc/migemosearch/services/query"
	"github.com/meghashyamc/migemosearch/services/search"
)

const toolFindFiles = "find_files"

type fileResult struct {
	Name    string         `json:"name"`
	Path    string         `json:"path"`
	Type    search.HitType `json:"type"`
	Pattern string         `json:"pattern"`
}

type findFilesResponse struct {
	Results []fileResult `json:"results"`
	Count   int          `json:"count"`
}

func (s *Server) handleFindFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("query")
	if err != nil || strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("query is required"), nil //nolint:nilerr
	}

	maxCount := getInt(req, "max", 0)
	if maxCount < 0 {
		return mcp.NewToolResultError("max must not be negative"), nil
	}

	// Find rather than the launcher's debounced Query: concurrent calls must not supersede each other.
	records := s.searcher.Find(ctx, text)

	response := findFilesResponse{Results: []fileResult{}}
	for _, record := range records {
		if record.Failure != query.FailureNone {
			s.logger.Warn("find_files failed", "query", text, "failure", record.Failure.String(), "title", record.Title)
			return mcp.NewToolResultError(record.Title), nil
		}
		if record.ContextData == nil {
			continue
		}
		if maxCount > 0 && len(response.Results) == maxCount {
			break
		}
		response.Results = append(response.Results, fileResult{
			Name:    record.ContextData.Name,
			Path:    record.ContextData.Path,
			Type:    record.ContextData.Type,
			Pattern: record.SubTitle,
		})
	}
	response.Count = len(response.Results)

	s.logger.Info("find_files", "query", text, "count", response.Count)
	return jsonResult(response)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// getInt reads a numeric argument; JSON numbers arrive as float64.
func getInt(req mcp.CallToolRequest, name string, def int) int {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(float64); ok {
		return int(v)
	}
	return def
}
