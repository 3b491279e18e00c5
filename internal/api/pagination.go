package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

// PaginatedResponse is the list envelope: total count plus links to the
// neighbouring pages.
type PaginatedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func newPaginatedResponse(c *gin.Context, total int64, page, limit int, results interface{}) PaginatedResponse {
	resp := PaginatedResponse{
		Count:   total,
		Results: results,
	}

	if int64(page*limit) < total {
		next := pageURL(c, page+1)
		resp.Next = &next
	}
	if page > 1 {
		previous := pageURL(c, page-1)
		resp.Previous = &previous
	}
	return resp
}

func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, u.RequestURI())
}
