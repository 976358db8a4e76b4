package workspace

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/metrics"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
	"routegraph/dashboard/internal/store"
	"routegraph/dashboard/internal/workers"
)

// ImportWatcher follows an accepted upload until it settles.
type ImportWatcher interface {
	Watch(sessionID string, src workers.ImportSource)
	Stop(sessionID string)
}

// Options are shared by every workspace of a process.
type Options struct {
	BackendBaseURL string
	Placement      constants.PagePlacement
	PageSize       int
	Storage        store.IdentityStorage
	Watcher        ImportWatcher
	Metrics        *metrics.MetricsRegistry
}

// Workspace is the state of one browser session: its credential holder,
// its backend client and one instance of every store.
type Workspace struct {
	ID      string
	Context *auth.RequestContext
	Backend *providers.BackendProvider

	Auth        *store.AuthStore
	Routes      *store.RoutesPageStore
	Locations   *store.CollectionStore[models.Location]
	Coordinates *store.CollectionStore[models.Coordinates]
	Imports     *store.ImportsStore
	Users       *store.UsersStore

	RouteSearch       *store.SearchSlot[models.Route]
	LocationSearch    *store.SearchSlot[models.Location]
	CoordinatesSearch *store.SearchSlot[models.Coordinates]

	watcher ImportWatcher
	metrics *metrics.MetricsRegistry

	mu  sync.Mutex
	tab Tab
}

func New(id string, opts Options) *Workspace {
	rc := auth.NewRequestContext()
	backend := providers.NewBackendProvider(opts.BackendBaseURL, rc, opts.Metrics)

	w := &Workspace{
		ID:      id,
		Context: rc,
		Backend: backend,
		watcher: opts.Watcher,
		metrics: opts.Metrics,
		tab:     TabRoutes,
	}

	w.Auth = store.NewAuthStore(id, backend, rc, opts.Storage)
	w.Routes = store.NewRoutesPageStore(backend.Routes(), opts.Placement, opts.PageSize, opts.Metrics)
	w.Locations = store.NewCollectionStore[models.Location](
		models.EntityLocation, backend.Locations(), constants.MsgFetchLocationsFailed, opts.Metrics)
	w.Coordinates = store.NewCollectionStore[models.Coordinates](
		models.EntityCoordinates, backend.Coordinates(), constants.MsgFetchCoordsFailed, opts.Metrics)
	w.Imports = store.NewImportsStore(backend, opts.Metrics,
		w.Routes.FetchPage, w.Locations.FetchAll, w.Coordinates.FetchAll)
	w.Users = store.NewUsersStore(backend)

	w.RouteSearch = store.NewSearchSlot(backend.Routes().Get)
	w.LocationSearch = store.NewSearchSlot(backend.Locations().Get)
	w.CoordinatesSearch = store.NewSearchSlot(backend.Coordinates().Get)
	return w
}

// HandleRoute applies a pushed route event to the loaded page.
func (w *Workspace) HandleRoute(event models.ChangeEvent[models.Route]) {
	if err := w.Routes.ApplyEvent(event); errors.Is(err, store.ErrNotLoaded) {
		logging.Debug("route event before first page", "session_id", w.ID, "action", event.Action)
	}
}

func (w *Workspace) HandleLocation(event models.ChangeEvent[models.Location]) {
	w.Locations.ApplyEvent(event)
}

func (w *Workspace) HandleCoordinates(event models.ChangeEvent[models.Coordinates]) {
	w.Coordinates.ApplyEvent(event)
}

// Identity returns the signed-in identity or ErrNotSignedIn.
func (w *Workspace) Identity() (auth.Identity, error) {
	id, ok := w.Auth.Identity()
	if !ok {
		return auth.Identity{}, ErrNotSignedIn
	}
	return id, nil
}

func (w *Workspace) Tab() Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tab
}

// SelectTab switches the visible tab, clears the search slots and loads
// what the tab shows if it has not been loaded yet.
func (w *Workspace) SelectTab(ctx context.Context, tab Tab) error {
	id, err := w.Identity()
	if err != nil {
		return err
	}
	if tab.AdminOnly() && !id.IsAdmin() {
		return ErrAdminOnly
	}

	w.mu.Lock()
	w.tab = tab
	w.mu.Unlock()

	w.ResetSearches()
	return w.EnsureLoaded(ctx, tab)
}

func (w *Workspace) ResetSearches() {
	w.RouteSearch.Reset()
	w.LocationSearch.Reset()
	w.CoordinatesSearch.Reset()
}

// EnsureLoaded fetches, concurrently, every listing tab needs whose status
// is still idle. Routes forms also need the locations and coordinates
// pickers.
func (w *Workspace) EnsureLoaded(ctx context.Context, tab Tab) error {
	var loaders []func(context.Context) error
	idle := func(s models.FetchStatus) bool { return s == models.StatusIdle }

	switch tab {
	case TabRoutes:
		if idle(w.Routes.Snapshot().Status) {
			loaders = append(loaders, w.Routes.FetchPage)
		}
		fallthrough
	case TabSpecial:
		if idle(w.Locations.Status()) {
			loaders = append(loaders, w.Locations.FetchAll)
		}
		if tab == TabRoutes && idle(w.Coordinates.Status()) {
			loaders = append(loaders, w.Coordinates.FetchAll)
		}
	case TabLocations:
		if idle(w.Locations.Status()) {
			loaders = append(loaders, w.Locations.FetchAll)
		}
	case TabCoordinates:
		if idle(w.Coordinates.Status()) {
			loaders = append(loaders, w.Coordinates.FetchAll)
		}
	case TabImport:
		if idle(w.Imports.Snapshot().Status) {
			loaders = append(loaders, w.Imports.Refresh)
		}
	case TabUsers:
		if idle(w.Users.Snapshot().Status) {
			loaders = append(loaders, w.Users.FetchAll)
		}
	}

	// a failing listing must not cancel its siblings
	var g errgroup.Group
	for _, load := range loaders {
		g.Go(func() error { return load(ctx) })
	}
	return g.Wait()
}

// Close stops background work owned by the workspace.
func (w *Workspace) Close() {
	if w.watcher != nil {
		w.watcher.Stop(w.ID)
	}
}
