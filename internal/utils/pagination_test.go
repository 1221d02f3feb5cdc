package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramsFor(t *testing.T, query string) PaginationParams {
	t.Helper()
	app := fiber.New()
	var got PaginationParams
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetPaginationParams(c)
		return nil
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/?"+query, nil))
	require.NoError(t, err)
	resp.Body.Close()
	return got
}

func TestGetPaginationParams(t *testing.T) {
	p := paramsFor(t, "page=3&limit=50&search=silva")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, "silva", p.Search)

	p = paramsFor(t, "page=0&limit=37")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.Limit)
}

func TestCalculatePagination(t *testing.T) {
	meta := CalculatePagination(2, 25, 60)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 3, meta.LastPage)
	assert.Equal(t, 26, meta.From)
	assert.Equal(t, 50, meta.To)
	assert.True(t, meta.HasMore)

	meta = CalculatePagination(3, 25, 60)
	assert.Equal(t, 60, meta.To)
	assert.False(t, meta.HasMore)

	meta = CalculatePagination(1, 25, 0)
	assert.Equal(t, 0, meta.From)
	assert.Equal(t, 0, meta.To)
}

func TestGetOffset(t *testing.T) {
	assert.Equal(t, 0, GetOffset(1, 25))
	assert.Equal(t, 50, GetOffset(3, 25))
}
