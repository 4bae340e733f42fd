// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain"
)

// ListQuery contains pagination parameters.
type ListQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a domain filter with defaults applied.
func (q ListQuery) ToFilter() domain.ListFilter {
	return domain.ListFilter{Limit: q.Limit, Offset: q.Offset}.Normalize()
}

// ListResponse wraps one page of results.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse maps a domain page with fn.
func NewListResponse[E, T any](res domain.ListResult[E], fn func(E) T) ListResponse[T] {
	items := make([]T, 0, len(res.Items))
	for _, e := range res.Items {
		items = append(items, fn(e))
	}
	return ListResponse[T]{
		Items:      items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	}
}

// Amount renders money with exactly two fractional digits.
func Amount(m types.Money) string {
	return m.StringFixed(types.MoneyPlaces)
}

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}
