package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/migemosearch/api/handlers"
	"github.com/meghashyamc/migemosearch/logger"
)

var (
	corsAllowedHeaders = strings.Join([]string{"Content-Type", "Content-Length", "Accept", "Accept-Encoding", "Origin", "Cache-Control", "X-Requested-With"}, ", ")
	corsAllowedMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")
)

// loggingMiddleware logs one line per request; index status polling is logged at debug.
func loggingMiddleware(logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{"method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "duration", time.Since(start).String()}
		if c.Request.Method == http.MethodGet && c.FullPath() == "/index/:id" {
			logger.Debug("request", args...)
			return
		}
		logger.Info("request", args...)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		header.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		header.Set("Access-Control-Expose-Headers", handlers.HeaderTotalCount)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
