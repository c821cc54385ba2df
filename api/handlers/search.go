package handlers

import (
	"errors"
	"net/http"

	"github.com/blevesearch/bleve/v2"
	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/validation"
)

const defaultMaxResults = 50

type SearchRequest struct {
	// Query also carries expanded "@" patterns from remote launchers.
	Query string `form:"query" validate:"required,valid_query,valid_pattern,min=1,max=4096"`
	Max   int    `form:"max" validate:"min=0,max=1000"`
	Page  int    `form:"page" validate:"min=0"`
}

func (r *SearchRequest) setDefaults() {
	if r.Max == 0 {
		r.Max = defaultMaxResults
	}

	if r.Page == 0 {
		r.Page = 1
	}
}

type SearchResponse struct {
	Results     []searchdb.Result `json:"results"`
	Total       uint64            `json:"total"`
	PageDetails PageDetails       `json:"page_details"`
}

func SetupSearch(router *gin.Engine, logger logger.Logger, searchDB searchdb.DB, validator *validation.Validator) {
	router.GET("/search", handleSearch(searchDB, logger, validator))
}

func handleSearch(searchDB searchdb.DB, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			abortWithError(c, http.StatusUnprocessableEntity, "failed to extract request query parameters")
			return
		}
		request.setDefaults()

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			abortWithError(c, http.StatusNotAcceptable, err.Error())
			return
		}

		limit := request.Max
		offset := (request.Page - 1) * request.Max
		results, err := searchDB.Search(c.Request.Context(), request.Query, limit, offset)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, bleve.ErrorIndexClosed):
				status = http.StatusServiceUnavailable
			case errors.Is(err, searchdb.ErrInvalidPattern):
				status = http.StatusNotAcceptable
			}
			logger.Error("search failed", "err", err.Error())
			abortWithError(c, status, err.Error())
			return
		}

		searchResponse := SearchResponse{
			Results:     results.Results,
			Total:       results.Total,
			PageDetails: newPageDetails(int(results.Total), limit, offset),
		}

		setTotalCount(c, results.Total)
		writeResponse(c, searchResponse, http.StatusOK, nil)
	}
}
