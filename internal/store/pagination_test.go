package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationParams_Clamping(t *testing.T) {
	p := NewPaginationParams(0, 0, "q")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultPageSize, p.PageSize)
	assert.Equal(t, "q", p.Search)

	p = NewPaginationParams(3, 500, "")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, maxPageSize, p.PageSize)
}

func TestCalculatePagination(t *testing.T) {
	t.Run("Middle page", func(t *testing.T) {
		r := CalculatePagination(45, 2, 10)
		assert.Equal(t, 5, r.TotalPages)
		assert.True(t, r.HasPrev)
		assert.True(t, r.HasNext)
		assert.Equal(t, 1, r.PrevPage)
		assert.Equal(t, 3, r.NextPage)
	})

	t.Run("Past the end snaps to the last page", func(t *testing.T) {
		r := CalculatePagination(45, 99, 10)
		assert.Equal(t, 5, r.CurrentPage)
		assert.False(t, r.HasNext)
	})

	t.Run("Empty set", func(t *testing.T) {
		r := CalculatePagination(0, 1, 10)
		assert.Equal(t, 0, r.TotalPages)
		assert.False(t, r.HasPrev)
		assert.False(t, r.HasNext)
	})
}
