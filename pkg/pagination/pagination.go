package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
	MinSize     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Size   int
	Offset int
}

// Meta is the pagination block returned alongside listed records
type Meta struct {
	TotalRecords int64 `json:"totalRecords"`
	TotalPages   int64 `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
	PageSize     int   `json:"pageSize"`
}

// New clamps page and size into their valid ranges.
func New(page, size int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if size < MinSize {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Params{
		Page:   page,
		Size:   size,
		Offset: (page - 1) * size,
	}
}

// Parse extracts and validates page/size from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultSize)))
	return New(page, size)
}

// MetaFor builds the pagination block for total matching records.
func (p Params) MetaFor(total int64) Meta {
	pages := int64(0)
	if total > 0 {
		pages = (total + int64(p.Size) - 1) / int64(p.Size)
	}
	return Meta{
		TotalRecords: total,
		TotalPages:   pages,
		CurrentPage:  p.Page,
		PageSize:     p.Size,
	}
}
