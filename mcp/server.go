// Package mcp exposes the migemo file search to agents over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/plugin"
)

const (
	ServerName    = "migemosearch"
	ServerVersion = "1.0.0"
)

type Server struct {
	logger   logger.Logger
	searcher plugin.Finder
	mcp      *server.MCPServer
}

func NewServer(logger logger.Logger, searcher plugin.Finder) *Server {
	s := &Server{
		logger:   logger,
		searcher: searcher,
		mcp: server.NewMCPServer(
			ServerName,
			ServerVersion,
			server.WithToolCapabilities(true),
		),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool(toolFindFiles,
			mcp.WithDescription("Find files and folders by name. Romaji input also matches kana and kanji spellings. Prefix the query with @ to pass a regular expression."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Filename text, romaji, or @pattern")),
			mcp.WithNumber("max", mcp.Description("Lowers the number of results; it cannot raise them above the configured search count. Omitted or 0 returns up to the configured count")),
		),
		s.handleFindFiles,
	)
}

// Serve answers requests on stdin/stdout until ctx is done or stdin closes.
// Logs must not go to stdout while this runs.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server ready", "version", ServerVersion, "transport", "stdio")

	err := server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		s.logger.Info("mcp server stopped")
		return nil
	}
	return err
}
