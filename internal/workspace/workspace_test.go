package workspace

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/live"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/store"
	"routegraph/dashboard/internal/testutil"
	"routegraph/dashboard/internal/workers"
)

type testStorage struct {
	mu    sync.Mutex
	saved map[string]auth.Identity
}

func newTestStorage() *testStorage { return &testStorage{saved: map[string]auth.Identity{}} }

func (s *testStorage) Save(_ context.Context, sessionID string, id auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[sessionID] = id
	return nil
}

func (s *testStorage) Load(_ context.Context, sessionID string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.saved[sessionID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (s *testStorage) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, sessionID)
	return nil
}

func newWorkspace(t *testing.T, backend *testutil.FakeBackend, id string, watcher ImportWatcher) *Workspace {
	t.Helper()
	return New(id, Options{
		BackendBaseURL: backend.URL(),
		Placement:      constants.PlacementOptimistic,
		PageSize:       10,
		Storage:        newTestStorage(),
		Watcher:        watcher,
	})
}

func signedIn(t *testing.T, backend *testutil.FakeBackend, id string, role constants.Role) *Workspace {
	t.Helper()
	name := "user-" + id
	backend.AddAccount(name, "secret1", role)
	w := newWorkspace(t, backend, id, nil)
	require.NoError(t, w.Login(context.Background(), name, "secret1"))
	return w
}

func TestLogin_LoadsRoutesTab(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	from := backend.SeedLocation(models.Location{Y: 1, Z: 1})
	to := backend.SeedLocation(models.Location{Y: 2, Z: 2})
	backend.SeedRoute(models.Route{Name: "r1", Rating: 3, From: from, To: to})

	w := signedIn(t, backend, "s-1", constants.RoleUser)

	st := w.Snapshot()
	assert.Equal(t, models.AuthAuthenticated, st.Auth.Status)
	assert.Equal(t, "user-s-1", st.Auth.Username)
	assert.Equal(t, models.StatusSucceeded, st.Routes.Status)
	require.NotNil(t, st.Routes.Page)
	assert.Len(t, st.Routes.Page.Content, 1)
	assert.Len(t, st.Locations.Items, 2)
	assert.Equal(t, models.StatusSucceeded, st.Coordinates.Status)
	assert.NotContains(t, st.Tabs, TabUsers)
	assert.Nil(t, st.Users)
}

func TestLogin_WrongPassword(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.AddAccount("alice", "secret1", constants.RoleUser)
	w := newWorkspace(t, backend, "s-1", nil)

	err := w.Login(context.Background(), "alice", "nope")
	require.Error(t, err)

	st := w.Snapshot()
	assert.Equal(t, models.AuthError, st.Auth.Status)
	assert.Equal(t, constants.MsgLoginFailed, st.Auth.Error)
	_, ok := w.Context.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, backend.Calls("GET /routes"))
}

func TestSelectTab_AdminGate(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	ctx := context.Background()

	user := signedIn(t, backend, "u", constants.RoleUser)
	assert.ErrorIs(t, user.SelectTab(ctx, TabUsers), ErrAdminOnly)
	assert.Equal(t, TabRoutes, user.Tab())

	admin := signedIn(t, backend, "a", constants.RoleAdmin)
	require.NoError(t, admin.SelectTab(ctx, TabUsers))
	st := admin.Snapshot()
	require.NotNil(t, st.Users)
	assert.Equal(t, models.StatusSucceeded, st.Users.Status)
	assert.Len(t, st.Users.Users, 2)
	assert.Contains(t, st.Tabs, TabUsers)
}

func TestSelectTab_RequiresSignIn(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	w := newWorkspace(t, backend, "s-1", nil)
	assert.ErrorIs(t, w.SelectTab(context.Background(), TabLocations), ErrNotSignedIn)
}

func TestSelectTab_ResetsSearchesAndLoadsOnce(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	loc := backend.SeedLocation(models.Location{Y: 4, Z: 5})
	w := signedIn(t, backend, "s-1", constants.RoleUser)
	ctx := context.Background()

	id, _ := loc.EntityID()
	require.NoError(t, w.LocationSearch.Search(ctx, strconv.FormatInt(id, 10)))
	require.NotNil(t, w.LocationSearch.Snapshot().Item)

	require.NoError(t, w.SelectTab(ctx, TabLocations))
	assert.Nil(t, w.LocationSearch.Snapshot().Item)
	assert.Equal(t, models.StatusIdle, w.LocationSearch.Snapshot().Status)

	// the routes tab already loaded locations
	assert.Equal(t, 1, backend.Calls("GET /locations"))
}

func TestSearch_NotFoundDoesNotTouchBulkStatus(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	w := signedIn(t, backend, "s-1", constants.RoleUser)

	err := w.RouteSearch.Search(context.Background(), "9999")
	require.Error(t, err)

	res := w.RouteSearch.Snapshot()
	assert.Equal(t, models.StatusFailed, res.Status)
	assert.Equal(t, constants.GetErrorMessage(constants.ErrCodeNotFound), res.Error)
	assert.Equal(t, models.StatusSucceeded, w.Routes.Snapshot().Status)
}

func TestCreateRoute_ResolvesCachedReferences(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	from := backend.SeedLocation(models.Location{Y: 1, Z: 1})
	coords := backend.SeedCoordinates(models.Coordinates{X: 3, Y: 4})
	w := signedIn(t, backend, "s-1", constants.RoleUser)

	fromID, _ := from.EntityID()
	coordsID, _ := coords.EntityID()
	draft := models.RouteDraft{
		Name:        "  harbour  ",
		Rating:      2,
		Coordinates: models.CoordinatesRef{ExistingID: &coordsID},
		From:        models.LocationRef{ExistingID: &fromID},
		To:          models.LocationRef{New: &models.LocationDraft{Y: models.IDPtr(9), Z: f64(9)}},
	}
	created, err := w.CreateRoute(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "harbour", created.Name)
	assert.Equal(t, coords.X, created.Coordinates.X)

	page := w.Routes.Snapshot().Page
	require.Len(t, page.Content, 1)
	assert.Equal(t, int64(1), page.TotalElements)

	missing := int64(424242)
	draft.From = models.LocationRef{ExistingID: &missing}
	_, err = w.CreateRoute(context.Background(), draft)
	assert.ErrorIs(t, err, models.ErrReferenceNotFound)
}

func TestAddRouteBetween(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	from := backend.SeedLocation(models.Location{Y: 1, Z: 1})
	to := backend.SeedLocation(models.Location{Y: 2, Z: 2})
	w := signedIn(t, backend, "s-1", constants.RoleUser)
	ctx := context.Background()

	fromID, _ := from.EntityID()
	toID, _ := to.EntityID()
	draft := models.BetweenDraft{FromID: fromID, ToID: toID, Name: "bridge", Rating: 5, Coordinates: models.BetweenCoordinates{X: f64(1), Y: f64(1)}}

	created, err := w.AddRouteBetween(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "bridge", created.Name)
	assert.Equal(t, int64(1), w.Routes.Snapshot().Page.TotalElements)

	found, err := w.FindRoutesBetween(ctx, fromID, toID, "rating")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = w.FindRoutesBetween(ctx, fromID, toID, "length")
	assert.ErrorIs(t, err, ErrInvalidSortBy)

	draft.ToID = 987654
	_, err = w.AddRouteBetween(ctx, draft)
	assert.ErrorIs(t, err, models.ErrReferenceNotFound)
}

func TestSpecialOperations(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	short, long := 2.5, 40.0
	backend.SeedRoute(models.Route{Name: "long", Rating: 3, Distance: &long})
	backend.SeedRoute(models.Route{Name: "short", Rating: 3, Distance: &short})
	backend.SeedRoute(models.Route{Name: "plain", Rating: 1})
	w := signedIn(t, backend, "s-1", constants.RoleUser)
	ctx := context.Background()

	best, err := w.MinDistanceRoute(ctx)
	require.NoError(t, err)
	assert.Equal(t, "short", best.Name)

	groups, err := w.RoutesByRating(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 1, "3": 2}, groups)

	ratings, err := w.UniqueRatings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ratings)
}

// Two sessions share one hub. A mutation made through one session reaches
// the other through the pushed event, and the echo to the author is merged
// without duplicating.
func TestPushReachesOtherSession(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	hub := live.NewHub(nil)
	ctx := context.Background()

	a := signedIn(t, backend, "a", constants.RoleUser)
	b := signedIn(t, backend, "b", constants.RoleUser)
	hub.Register(a.ID, a)
	hub.Register(b.ID, b)

	created, err := a.SaveLocation(ctx, 0, models.LocationDraft{Y: models.IDPtr(7), Z: f64(8)})
	require.NoError(t, err)

	hub.HandleLocation(models.ChangeEvent[models.Location]{
		Entity: models.EntityLocation, Action: models.ActionCreate, Data: created, Origin: models.OriginPush,
	})

	id, _ := created.EntityID()
	for _, w := range []*Workspace{a, b} {
		items := w.Locations.Snapshot().Items
		assert.Len(t, items, 1, w.ID)
		got, ok := w.Locations.Get(id)
		assert.True(t, ok, w.ID)
		assert.Equal(t, int64(7), got.Y)
	}

	route, err := a.CreateRoute(ctx, models.RouteDraft{
		Name:        "pushed",
		Rating:      1,
		Coordinates: models.CoordinatesRef{New: &models.CoordinatesDraft{X: f64(1), Y: f64(1)}},
		From:        models.LocationRef{ExistingID: &id},
		To:          models.LocationRef{ExistingID: &id},
	})
	require.NoError(t, err)
	hub.HandleRoute(models.ChangeEvent[models.Route]{
		Entity: models.EntityRoute, Action: models.ActionCreate, Data: route, Origin: models.OriginPush,
	})
	assert.Equal(t, int64(1), a.Routes.Snapshot().Page.TotalElements)
	assert.Equal(t, int64(1), b.Routes.Snapshot().Page.TotalElements)
}

type recordingWatcher struct {
	watched []string
	stopped []string
}

func (r *recordingWatcher) Watch(sessionID string, _ workers.ImportSource) {
	r.watched = append(r.watched, sessionID)
}

func (r *recordingWatcher) Stop(sessionID string) { r.stopped = append(r.stopped, sessionID) }

func TestUploadRoutes_StartsWatchWhilePending(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.AddAccount("alice", "secret1", constants.RoleUser)
	watcher := &recordingWatcher{}
	w := newWorkspace(t, backend, "s-1", watcher)
	ctx := context.Background()
	require.NoError(t, w.Login(ctx, "alice", "secret1"))

	op, err := w.UploadRoutes(ctx, "routes.json", strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Equal(t, models.ImportPending, op.Status)
	assert.Equal(t, []string{"s-1"}, watcher.watched)
	assert.Equal(t, 2, backend.Calls("GET /routes"))

	backend.SetUploadStatus(models.ImportSuccess)
	backend.FinishImports()
	require.NoError(t, w.Imports.Refresh(ctx))
	_, err = w.UploadRoutes(ctx, "more.json", strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Len(t, watcher.watched, 1)

	w.Logout(ctx)
	assert.Equal(t, []string{"s-1"}, watcher.stopped)
}

func TestLogout_ClearsListings(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.SeedLocation(models.Location{Y: 1, Z: 1})
	backend.SeedCoordinates(models.Coordinates{X: 1, Y: 1})
	w := signedIn(t, backend, "s-1", constants.RoleAdmin)
	ctx := context.Background()
	require.NoError(t, w.SelectTab(ctx, TabRoutes))
	require.NoError(t, w.SelectTab(ctx, TabUsers))
	require.NotEmpty(t, w.Locations.Snapshot().Items)

	w.Logout(ctx)

	assert.Empty(t, w.Locations.Snapshot().Items)
	assert.Equal(t, models.StatusIdle, w.Locations.Snapshot().Status)
	assert.Empty(t, w.Coordinates.Snapshot().Items)
	assert.Nil(t, w.Routes.Snapshot().Page)
	assert.Equal(t, models.StatusIdle, w.Routes.Snapshot().Status)
	assert.Empty(t, w.Users.Snapshot().Users)
	assert.Empty(t, w.Imports.Snapshot().Operations)
	assert.Equal(t, constants.ImportsScopeMine, w.Imports.Scope())
}

func TestUploadRoutes_WatcherSeesCompletion(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.AddAccount("alice", "secret1", constants.RoleUser)
	watcher := workers.NewImportWatcher(context.Background(), 10*time.Millisecond, time.Second, nil)
	w := newWorkspace(t, backend, "s-1", watcher)
	ctx := context.Background()
	require.NoError(t, w.Login(ctx, "alice", "secret1"))

	_, err := w.UploadRoutes(ctx, "routes.json", strings.NewReader(`[]`))
	require.NoError(t, err)
	require.True(t, w.Imports.Pending())

	backend.FinishImports()
	require.Eventually(t, func() bool { return !w.Imports.Pending() }, time.Second, 10*time.Millisecond)
	assert.Equal(t, models.ImportSuccess, w.Imports.Snapshot().Operations[0].Status)
}

func TestChangeUserRole_AdminOnly(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	ctx := context.Background()

	user := signedIn(t, backend, "u", constants.RoleUser)
	_, err := user.ChangeUserRole(ctx, 1, constants.RoleAdmin)
	assert.ErrorIs(t, err, ErrAdminOnly)

	admin := signedIn(t, backend, "a", constants.RoleAdmin)
	require.NoError(t, admin.SelectTab(ctx, TabUsers))
	target := admin.Snapshot().Users.Users[0]
	updated, err := admin.ChangeUserRole(ctx, target.ID, constants.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleAdmin, updated.Role)
}

func TestPasswordReset(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	w := newWorkspace(t, backend, "s-1", nil)
	ctx := context.Background()

	require.NoError(t, w.RequestPasswordReset(ctx, models.PasswordResetRequest{Email: " a@b.test "}))
	assert.Equal(t, []string{"a@b.test"}, backend.ResetEmails())

	err := w.ConfirmPasswordReset(ctx, models.PasswordResetConfirm{Token: "tok", NewPassword: "secret1", ConfirmPassword: "secret2"})
	assert.EqualError(t, err, constants.MsgPasswordsDiffer)
	assert.Empty(t, backend.ResetTokens())

	require.NoError(t, w.ConfirmPasswordReset(ctx, models.PasswordResetConfirm{Token: "tok", NewPassword: "secret1", ConfirmPassword: "secret1"}))
	assert.Equal(t, []string{"tok"}, backend.ResetTokens())

	err = w.ConfirmPasswordReset(ctx, models.PasswordResetConfirm{Token: "expired", NewPassword: "secret1", ConfirmPassword: "secret1"})
	require.Error(t, err)
}

func TestSaveEntities_RequireAxes(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	w := signedIn(t, backend, "s-1", constants.RoleUser)
	ctx := context.Background()

	_, err := w.SaveLocation(ctx, 0, models.LocationDraft{X: models.IDPtr(1), Z: f64(2)})
	var fe models.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "y is required", fe["y"])

	_, err = w.SaveCoordinates(ctx, 0, models.CoordinatesDraft{X: f64(0)})
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "y")
	assert.NotContains(t, fe, "x", "an explicit zero is a value")

	assert.Empty(t, w.Locations.Snapshot().Items)
	assert.Empty(t, w.Coordinates.Snapshot().Items)

	created, err := w.SaveCoordinates(ctx, 0, models.CoordinatesDraft{X: f64(0), Y: f64(0)})
	require.NoError(t, err)
	assert.NotNil(t, created.ID)
}

func f64(v float64) *float64 { return &v }

func TestDeleteRoute_InvalidID(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	w := signedIn(t, backend, "s-1", constants.RoleUser)
	assert.True(t, errors.Is(w.DeleteRoute(context.Background(), 0), store.ErrInvalidID))
}

func TestParseTabAndVisibleTabs(t *testing.T) {
	tab, err := ParseTab(" Import ")
	require.NoError(t, err)
	assert.Equal(t, TabImport, tab)

	_, err = ParseTab("settings")
	assert.ErrorIs(t, err, ErrUnknownTab)
}
