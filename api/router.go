package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/migemosearch/api/handlers"
	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/validation"
)

func setupRoutes(ctx context.Context, router *gin.Engine, logger logger.Logger, searchDB searchdb.DB, kvDB kvdb.DB, validator *validation.Validator) {
	router.GET("/health", health())

	handlers.SetupIndex(ctx, router, logger, searchDB, kvDB, validator)
	handlers.SetupSearch(router, logger, searchDB, validator)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

// NewRouter wires every daemon route. ctx bounds the background indexer.
func NewRouter(ctx context.Context, logger logger.Logger, searchDB searchdb.DB, kvDB kvdb.DB, validator *validation.Validator) *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(corsMiddleware())
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	setupRoutes(ctx, router, logger, searchDB, kvDB, validator)
	return router
}
