package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginateSplitsThirteenItemsAcrossTwoPages(t *testing.T) {
	first := Paginate("1", 13, 10)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 0, first.Offset)
	assert.Equal(t, 2, first.TotalPages)
	assert.False(t, first.HasPrev)
	assert.True(t, first.HasNext)

	second := Paginate("2", 13, 10)
	assert.Equal(t, 2, second.Page)
	assert.Equal(t, 10, second.Offset)
	assert.True(t, second.HasPrev)
	assert.False(t, second.HasNext)
	// 13 items, page size 10: three items remain on page two
	assert.Equal(t, int64(3), second.Total-int64(second.Offset))
}

func TestPaginateClampsOutOfRangePages(t *testing.T) {
	assert.Equal(t, 2, Paginate("99", 13, 10).Page)
	assert.Equal(t, 1, Paginate("0", 13, 10).Page)
	assert.Equal(t, 1, Paginate("-3", 13, 10).Page)
}

func TestPaginateDefaultsToFirstPage(t *testing.T) {
	assert.Equal(t, 1, Paginate("", 13, 10).Page)
	assert.Equal(t, 1, Paginate("abc", 13, 10).Page)
}

func TestPaginateEmptyListingHasOneEmptyPage(t *testing.T) {
	pg := Paginate("1", 0, 10)
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, 1, pg.TotalPages)
	assert.False(t, pg.HasPrev)
	assert.False(t, pg.HasNext)
}
