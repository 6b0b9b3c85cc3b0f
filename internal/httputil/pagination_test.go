package httputil_test

import (
	"net/http/httptest"
	"testing"

	"educapta/internal/httputil"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	t.Run("RoundsUpPartialPage", func(t *testing.T) {
		p := httputil.NewPagination(1, 10, 23)
		assert.Equal(t, 3, p.Pages)
		assert.Equal(t, 23, p.Total)
	})

	t.Run("ExactMultiple", func(t *testing.T) {
		p := httputil.NewPagination(2, 10, 30)
		assert.Equal(t, 3, p.Pages)
	})

	t.Run("EmptyResult", func(t *testing.T) {
		p := httputil.NewPagination(1, 10, 0)
		assert.Equal(t, 0, p.Pages)
	})
}

func TestParsePagination(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/students", nil)
		page, limit := httputil.ParsePagination(r)
		assert.Equal(t, 1, page)
		assert.Equal(t, 10, limit)
	})

	t.Run("ExplicitValues", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/students?page=3&limit=25", nil)
		page, limit := httputil.ParsePagination(r)
		assert.Equal(t, 3, page)
		assert.Equal(t, 25, limit)
	})

	t.Run("MalformedFallsBackToDefaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/students?page=abc&limit=-5", nil)
		page, limit := httputil.ParsePagination(r)
		assert.Equal(t, 1, page)
		assert.Equal(t, 10, limit)
	})
}
