package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(1, 20)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(3, 10)
	assert.Equal(t, uint64(20), offset)
	assert.Equal(t, 10, limit)

	// Out-of-range sizes fall back to the default.
	offset, limit = CalculateOffsetLimit(2, 0)
	assert.Equal(t, uint64(DefaultPageSize), offset)
	assert.Equal(t, DefaultPageSize, limit)

	_, limit = CalculateOffsetLimit(1, MaxPageSize+1)
	assert.Equal(t, DefaultPageSize, limit)

	// Pages below 1 clamp to the first page.
	offset, _ = CalculateOffsetLimit(0, 10)
	assert.Equal(t, uint64(0), offset)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 10)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 5, info.TotalPages)
	assert.Equal(t, 10, info.PageSize)
	assert.Equal(t, 45, info.TotalItems)

	// Empty result sets still render one empty page.
	info = NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, info.CurrentPage)
	assert.Equal(t, 1, info.TotalPages)
	assert.Equal(t, 0, info.TotalItems)

	// A page past the end clamps to the last page.
	info = NewPaginationInfo(15, 9, 10)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 2, info.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parse := func(query string) (int, int) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/students"+query, nil)
		return ParsePaginationParams(c)
	}

	page, size := parse("")
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = parse("?page=3&size=50")
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)

	page, size = parse("?page=abc&size=-5")
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	_, size = parse("?size=500")
	assert.Equal(t, DefaultPageSize, size)
}
