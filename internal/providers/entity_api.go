package providers

import (
	"context"
	"fmt"
	"net/http"

	"routegraph/dashboard/internal/models"
)

// EntityAPI is the CRUD surface shared by routes, locations and coordinates.
type EntityAPI[T any] struct {
	p    *BackendProvider
	path string
}

func (a *EntityAPI[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := a.p.doRequest(ctx, http.MethodGet, a.path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *EntityAPI[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := a.p.doRequest(ctx, http.MethodGet, fmt.Sprintf("%s/%d", a.path, id), &out)
	return out, err
}

func (a *EntityAPI[T]) Create(ctx context.Context, body T) (T, error) {
	var out T
	err := a.p.doRequest(ctx, http.MethodPost, a.path, &out, withJSON(body))
	return out, err
}

func (a *EntityAPI[T]) Update(ctx context.Context, id int64, body T) (T, error) {
	var out T
	err := a.p.doRequest(ctx, http.MethodPut, fmt.Sprintf("%s/%d", a.path, id), &out, withJSON(body))
	return out, err
}

func (a *EntityAPI[T]) Delete(ctx context.Context, id int64) error {
	return a.p.doRequest(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", a.path, id), nil)
}

func (p *BackendProvider) Locations() *EntityAPI[models.Location] {
	return &EntityAPI[models.Location]{p: p, path: "/locations"}
}

func (p *BackendProvider) Coordinates() *EntityAPI[models.Coordinates] {
	return &EntityAPI[models.Coordinates]{p: p, path: "/coordinates"}
}
