package models

import (
	"fmt"
	"strings"
)

// Page is the backend's page window: one slice plus pagination metadata.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// Clone copies the page so callers may read it without holding a store lock.
func (p *Page[T]) Clone() *Page[T] {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Content = append([]T(nil), p.Content...)
	return &cp
}

// PageRequest selects one page of routes.
type PageRequest struct {
	Page int    `json:"page"`
	Size int    `json:"size"`
	Sort string `json:"sort,omitempty"`
}

// Normalize trims the sort expression and rejects out-of-range numbers.
func (r PageRequest) Normalize() (PageRequest, error) {
	if r.Page < 0 {
		return r, ValidationError(fmt.Sprintf("page must be >= 0, got %d", r.Page))
	}
	if r.Size <= 0 {
		return r, ValidationError(fmt.Sprintf("size must be > 0, got %d", r.Size))
	}
	r.Sort = strings.TrimSpace(r.Sort)
	return r, nil
}
