package service

import (
	"fmt"

	"alcyxob/training-planner/internal/domain"
)

// Pagination holds the page-size bounds applied to every listing.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// PageResult is one page of a listing together with the window that produced it.
type PageResult[T any] struct {
	Items  []T
	Total  int64
	Limit  int
	Offset int
}

// window resolves the requested limit and offset. A zero limit means the default.
func (p Pagination) window(limit, offset int) (int, int, error) {
	var errs []domain.FieldError
	if limit == 0 {
		limit = p.DefaultLimit
	}
	if limit < 1 || limit > p.MaxLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", p.MaxLimit)})
	}
	if offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must not be negative"})
	}
	return limit, offset, domain.NewValidationError(errs)
}
