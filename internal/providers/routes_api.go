package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
)

// RoutesAPI adds paging and the special operations to the route CRUD surface.
type RoutesAPI struct {
	EntityAPI[models.Route]
}

func (p *BackendProvider) Routes() *RoutesAPI {
	return &RoutesAPI{EntityAPI: EntityAPI[models.Route]{p: p, path: "/routes"}}
}

// Page fetches one page window. Sort is omitted when blank.
func (a *RoutesAPI) Page(ctx context.Context, req models.PageRequest) (*models.Page[models.Route], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("size", strconv.Itoa(req.Size))
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}

	var page models.Page[models.Route]
	if err := a.p.doRequest(ctx, http.MethodGet, a.path, &page, withQuery(q)); err != nil {
		return nil, err
	}
	if page.Content == nil {
		page.Content = []models.Route{}
	}
	return &page, nil
}

func (a *RoutesAPI) MinDistance(ctx context.Context) (models.Route, error) {
	var out models.Route
	err := a.p.doRequest(ctx, http.MethodGet, a.path+"/min-distance", &out)
	return out, err
}

// GroupByRating returns route counts keyed by rating.
func (a *RoutesAPI) GroupByRating(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	if err := a.p.doRequest(ctx, http.MethodGet, a.path+"/group-by-rating", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *RoutesAPI) UniqueRatings(ctx context.Context) ([]int64, error) {
	var out []int64
	if err := a.p.doRequest(ctx, http.MethodGet, a.path+"/unique-ratings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *RoutesAPI) FindBetween(ctx context.Context, fromID, toID int64, sortBy models.RouteSortField) ([]models.Route, error) {
	if fromID <= 0 || toID <= 0 {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "fromId and toId must be positive",
		}
	}
	q := url.Values{}
	q.Set("fromId", strconv.FormatInt(fromID, 10))
	q.Set("toId", strconv.FormatInt(toID, 10))
	q.Set("sortBy", string(sortBy))

	var out []models.Route
	if err := a.p.doRequest(ctx, http.MethodGet, a.path+"/between", &out, withQuery(q)); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *RoutesAPI) AddBetween(ctx context.Context, fromID, toID int64, body models.Route) (models.Route, error) {
	q := url.Values{}
	q.Set("fromId", strconv.FormatInt(fromID, 10))
	q.Set("toId", strconv.FormatInt(toID, 10))

	var out models.Route
	err := a.p.doRequest(ctx, http.MethodPost, a.path+"/between", &out, withQuery(q), withJSON(body))
	return out, err
}
