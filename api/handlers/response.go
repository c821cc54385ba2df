package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HeaderTotalCount carries the total hit count of a search; the CORS setup exposes it.
const HeaderTotalCount = "X-Pagination-Total-Count"

type envelope struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data any, statusCode int, errors []string) {
	if statusCode == http.StatusNoContent {
		c.Status(statusCode)
		return
	}

	c.JSON(statusCode, envelope{Data: data, Errors: errors})
}

// abortWithError stops the handler chain and writes a single error message.
func abortWithError(c *gin.Context, statusCode int, message string) {
	c.Abort()
	writeResponse(c, nil, statusCode, []string{message})
}

type PageDetails struct {
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	TotalPages   int  `json:"total_pages"`
	HasNextPage  bool `json:"has_next_page"`
	HasPrevPage  bool `json:"has_prev_page"`
	TotalResults int  `json:"total_results"`
}

func newPageDetails(total int, pageSize int, offset int) PageDetails {
	if pageSize <= 0 {
		pageSize = defaultMaxResults
	}
	current := offset/pageSize + 1
	pages := max(1, (total+pageSize-1)/pageSize)

	return PageDetails{
		CurrentPage:  current,
		PageSize:     pageSize,
		TotalPages:   pages,
		HasNextPage:  current < pages,
		HasPrevPage:  current > 1,
		TotalResults: total,
	}
}

func setTotalCount(c *gin.Context, total uint64) {
	c.Header(HeaderTotalCount, strconv.FormatUint(total, 10))
}
