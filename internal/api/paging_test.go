package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextPage(t *testing.T) {
	tests := []struct {
		paging   Paging
		nextPage int
		hasNext  bool
	}{
		// 95 items at 20 per page means 5 pages.
		{Paging{Total: 95, Page: 1, PageSize: 20}, 2, true},
		{Paging{Total: 95, Page: 4, PageSize: 20}, 5, true},
		{Paging{Total: 95, Page: 5, PageSize: 20}, 0, false},
		// An exact multiple has no partial final page.
		{Paging{Total: 100, Page: 5, PageSize: 20}, 0, false},
		{Paging{Total: 100, Page: 4, PageSize: 20}, 5, true},
		// Degenerate cases terminate.
		{Paging{Total: 0, Page: 1, PageSize: 20}, 0, false},
		{Paging{Total: 95, Page: 1, PageSize: 0}, 0, false},
		{Paging{Total: 1, Page: 1, PageSize: 1}, 0, false},
	}

	for _, test := range tests {
		nextPage, hasNext := test.paging.NextPage()

		assert.Equal(t, test.hasNext, hasNext, "paging %+v", test.paging)
		assert.Equal(t, test.nextPage, nextPage, "paging %+v", test.paging)
	}
}
