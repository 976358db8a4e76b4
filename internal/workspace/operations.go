package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/store"
)

var ErrInvalidSortBy = errors.New(constants.MsgSortByInvalid)

// Login signs the session in and loads the tab it was showing.
func (w *Workspace) Login(ctx context.Context, username, password string) error {
	if err := w.Auth.Login(ctx, username, password); err != nil {
		return err
	}
	id, err := w.Identity()
	if err != nil {
		// a logout overtook the login
		return err
	}
	tab := w.Tab()
	if tab.AdminOnly() && !id.IsAdmin() {
		tab = TabRoutes
		w.mu.Lock()
		w.tab = tab
		w.mu.Unlock()
	}
	return w.EnsureLoaded(ctx, tab)
}

// Logout forgets the identity and empties every store, so whoever signs in
// next on this session starts from unloaded listings.
func (w *Workspace) Logout(ctx context.Context) {
	w.Auth.Logout(ctx)
	w.ResetSearches()
	w.Routes.Reset()
	w.Locations.Reset()
	w.Coordinates.Reset()
	w.Imports.Reset()
	w.Users.Reset()
	if w.watcher != nil {
		w.watcher.Stop(w.ID)
	}
}

// CreateRoute resolves the draft's references from the cached pickers and
// sends the full route.
func (w *Workspace) CreateRoute(ctx context.Context, draft models.RouteDraft) (models.Route, error) {
	route, err := draft.Resolve(w.Coordinates.Get, w.Locations.Get)
	if err != nil {
		return models.Route{}, err
	}
	return w.Routes.Create(ctx, route)
}

func (w *Workspace) UpdateRoute(ctx context.Context, id int64, draft models.RouteDraft) (models.Route, error) {
	if id <= 0 {
		return models.Route{}, store.ErrInvalidID
	}
	route, err := draft.Resolve(w.Coordinates.Get, w.Locations.Get)
	if err != nil {
		return models.Route{}, err
	}
	route.ID = models.IDPtr(id)
	return w.Routes.Update(ctx, id, route)
}

func (w *Workspace) DeleteRoute(ctx context.Context, id int64) error {
	if id <= 0 {
		return store.ErrInvalidID
	}
	return w.Routes.Delete(ctx, id)
}

// AddRouteBetween creates a route pinned to two cached locations.
func (w *Workspace) AddRouteBetween(ctx context.Context, draft models.BetweenDraft) (models.Route, error) {
	if err := draft.Validate(); err != nil {
		return models.Route{}, err
	}
	from, ok := w.Locations.Get(draft.FromID)
	if !ok {
		return models.Route{}, fmt.Errorf("from location %d: %w", draft.FromID, models.ErrReferenceNotFound)
	}
	to, ok := w.Locations.Get(draft.ToID)
	if !ok {
		return models.Route{}, fmt.Errorf("to location %d: %w", draft.ToID, models.ErrReferenceNotFound)
	}
	return w.Routes.AddBetween(ctx, draft.FromID, draft.ToID, draft.Route(from, to))
}

// SetRoutesPage selects and fetches another page of routes.
func (w *Workspace) SetRoutesPage(ctx context.Context, req models.PageRequest) error {
	if err := w.Routes.SetPageRequest(req); err != nil {
		return err
	}
	return w.Routes.FetchPage(ctx)
}

// SaveLocation creates the location when id is 0 and updates it otherwise.
func (w *Workspace) SaveLocation(ctx context.Context, id int64, draft models.LocationDraft) (models.Location, error) {
	if err := draft.Validate(); err != nil {
		return models.Location{}, err
	}
	body := draft.Location()
	if id == 0 {
		body.ID = nil
		return w.Locations.Create(ctx, body)
	}
	if id < 0 {
		return models.Location{}, store.ErrInvalidID
	}
	body.ID = models.IDPtr(id)
	return w.Locations.Update(ctx, id, body)
}

func (w *Workspace) SaveCoordinates(ctx context.Context, id int64, draft models.CoordinatesDraft) (models.Coordinates, error) {
	if err := draft.Validate(); err != nil {
		return models.Coordinates{}, err
	}
	body := draft.Coordinates()
	if id == 0 {
		body.ID = nil
		return w.Coordinates.Create(ctx, body)
	}
	if id < 0 {
		return models.Coordinates{}, store.ErrInvalidID
	}
	body.ID = models.IDPtr(id)
	return w.Coordinates.Update(ctx, id, body)
}

func (w *Workspace) MinDistanceRoute(ctx context.Context) (models.Route, error) {
	return w.Backend.Routes().MinDistance(ctx)
}

func (w *Workspace) RoutesByRating(ctx context.Context) (map[string]int64, error) {
	return w.Backend.Routes().GroupByRating(ctx)
}

func (w *Workspace) UniqueRatings(ctx context.Context) ([]int64, error) {
	return w.Backend.Routes().UniqueRatings(ctx)
}

// FindRoutesBetween lists routes between two locations ordered by sortBy.
func (w *Workspace) FindRoutesBetween(ctx context.Context, fromID, toID int64, sortBy string) ([]models.Route, error) {
	field, err := models.ParseRouteSortField(strings.TrimSpace(sortBy))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSortBy, err)
	}
	return w.Backend.Routes().FindBetween(ctx, fromID, toID, field)
}

// UploadRoutes starts an import and, while it runs, keeps the import
// history polled.
func (w *Workspace) UploadRoutes(ctx context.Context, filename string, file io.Reader) (models.ImportOperation, error) {
	op, err := w.Imports.Upload(ctx, filename, file)
	if err != nil {
		return op, err
	}
	if w.watcher != nil && w.Imports.Pending() {
		w.watcher.Watch(w.ID, w.Imports)
	}
	return op, nil
}

// ChangeUserRole is only offered to admins.
func (w *Workspace) ChangeUserRole(ctx context.Context, userID int64, role constants.Role) (models.User, error) {
	id, err := w.Identity()
	if err != nil {
		return models.User{}, err
	}
	if !id.IsAdmin() {
		return models.User{}, ErrAdminOnly
	}
	return w.Users.UpdateRole(ctx, userID, role)
}

func (w *Workspace) RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return w.Backend.RequestPasswordReset(ctx, strings.TrimSpace(req.Email))
}

// ConfirmPasswordReset checks the new password against its confirmation
// before sending it with the emailed token.
func (w *Workspace) ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirm) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return w.Backend.ConfirmPasswordReset(ctx, req.Token, req.NewPassword)
}
