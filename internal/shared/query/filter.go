// Package query holds storage-agnostic paging helpers shared by repositories.
package query

import "github.com/orris-inc/billing/internal/shared/constants"

// PageFilter is a 1-based page request.
type PageFilter struct {
	Page     int
	PageSize int
}

// NewPageFilter applies defaults and clamps PageSize to MaxPageSize.
func NewPageFilter(page, pageSize int) PageFilter {
	if page < 1 {
		page = constants.DefaultPage
	}
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	return PageFilter{Page: page, PageSize: pageSize}
}

func (f PageFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

func (f PageFilter) Limit() int {
	return f.PageSize
}
