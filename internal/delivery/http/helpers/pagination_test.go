package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"invitationadmin/internal/domain"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  domain.PaginationParams
	}{
		{name: "defaults", query: "", want: domain.PaginationParams{Page: 1, Limit: 20}},
		{name: "explicit", query: "?page=3&limit=15", want: domain.PaginationParams{Page: 3, Limit: 15}},
		{name: "limit clamped", query: "?limit=1000", want: domain.PaginationParams{Page: 1, Limit: MaxLimit}},
		{name: "zero and negative fall back", query: "?page=0&limit=-4", want: domain.PaginationParams{Page: 1, Limit: 20}},
		{name: "garbage falls back", query: "?page=abc&limit=x", want: domain.PaginationParams{Page: 1, Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/items"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(r))
		})
	}
}

func TestNewPaginationMeta(t *testing.T) {
	assert.Equal(t, PaginationMeta{Page: 1, Limit: 20, Total: 0, TotalPages: 0}, NewPaginationMeta(domain.PaginationParams{Page: 1, Limit: 20}, 0))
	assert.Equal(t, PaginationMeta{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, NewPaginationMeta(domain.PaginationParams{Page: 2, Limit: 20}, 41))
	assert.Equal(t, 2, NewPaginationMeta(domain.PaginationParams{Page: 1, Limit: 20}, 40).TotalPages)
	assert.Equal(t, 0, NewPaginationMeta(domain.PaginationParams{Page: 1}, 10).TotalPages)
}
