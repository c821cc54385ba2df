package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/services/index"
	"github.com/meghashyamc/migemosearch/validation"
)

type IndexRequest struct {
	Path           string   `json:"path" validate:"required,valid_path"`
	ExcludeFolders []string `json:"exclude_folders" validate:"dive,valid_path"`
}

type IndexResponse struct {
	ID string `json:"id"`
}

type IndexStatusResponse struct {
	ID       string `json:"id"`
	Progress int    `json:"progress"`
}

func SetupIndex(ctx context.Context, router *gin.Engine, logger logger.Logger, searchDB searchdb.DB, kvDB kvdb.DB, validator *validation.Validator) {
	service := index.New(ctx, logger, searchDB, kvDB)
	router.POST("/index", handleIndex(service, logger, validator))
	router.GET("/index/:id", handleIndexStatus(service, logger))
}

func handleIndex(service *index.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := IndexRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from index request", "err", err.Error())
			abortWithError(c, http.StatusUnprocessableEntity, "failed to extract request body parameters")
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate index request", "err", err.Error())
			abortWithError(c, http.StatusNotAcceptable, err.Error())
			return
		}

		excludeFolders := make([]string, 0, len(request.ExcludeFolders))
		for _, folder := range request.ExcludeFolders {
			excludeFolders = append(excludeFolders, filepath.Clean(folder))
		}

		requestID := uuid.New().String()
		if err := service.Build(filepath.Clean(request.Path), excludeFolders, requestID); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, index.ErrIndexingInProgress) {
				status = http.StatusConflict
			}
			logger.Warn("could not start indexing", "err", err.Error())
			abortWithError(c, status, err.Error())
			return
		}

		writeResponse(c, IndexResponse{ID: requestID}, http.StatusAccepted, nil)
	}
}

func handleIndexStatus(service *index.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("id")
		if _, err := uuid.Parse(requestID); err != nil {
			logger.Warn("invalid index request id", "id", requestID)
			abortWithError(c, http.StatusNotAcceptable, "invalid request id")
			return
		}

		progress, err := service.GetStatus(requestID)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, kvdb.ErrNotFound) {
				status = http.StatusNotFound
			}
			abortWithError(c, status, err.Error())
			return
		}

		writeResponse(c, IndexStatusResponse{ID: requestID, Progress: progress}, http.StatusOK, nil)
	}
}
