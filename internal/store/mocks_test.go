package store

import (
	"context"
	"io"
	"net/http"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
)

type mockCollectionBackend[T any] struct {
	listFunc   func(ctx context.Context) ([]T, error)
	createFunc func(ctx context.Context, body T) (T, error)
	updateFunc func(ctx context.Context, id int64, body T) (T, error)
	deleteFunc func(ctx context.Context, id int64) error
}

func (m *mockCollectionBackend[T]) List(ctx context.Context) ([]T, error) { return m.listFunc(ctx) }
func (m *mockCollectionBackend[T]) Create(ctx context.Context, body T) (T, error) {
	return m.createFunc(ctx, body)
}
func (m *mockCollectionBackend[T]) Update(ctx context.Context, id int64, body T) (T, error) {
	return m.updateFunc(ctx, id, body)
}
func (m *mockCollectionBackend[T]) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

type mockRoutesBackend struct {
	pageFunc       func(ctx context.Context, req models.PageRequest) (*models.Page[models.Route], error)
	createFunc     func(ctx context.Context, body models.Route) (models.Route, error)
	updateFunc     func(ctx context.Context, id int64, body models.Route) (models.Route, error)
	deleteFunc     func(ctx context.Context, id int64) error
	addBetweenFunc func(ctx context.Context, fromID, toID int64, body models.Route) (models.Route, error)
}

func (m *mockRoutesBackend) Page(ctx context.Context, req models.PageRequest) (*models.Page[models.Route], error) {
	return m.pageFunc(ctx, req)
}
func (m *mockRoutesBackend) Create(ctx context.Context, body models.Route) (models.Route, error) {
	return m.createFunc(ctx, body)
}
func (m *mockRoutesBackend) Update(ctx context.Context, id int64, body models.Route) (models.Route, error) {
	return m.updateFunc(ctx, id, body)
}
func (m *mockRoutesBackend) Delete(ctx context.Context, id int64) error { return m.deleteFunc(ctx, id) }
func (m *mockRoutesBackend) AddBetween(ctx context.Context, fromID, toID int64, body models.Route) (models.Route, error) {
	return m.addBetweenFunc(ctx, fromID, toID, body)
}

type mockImportsBackend struct {
	listFunc   func(ctx context.Context, scope constants.ImportsScope) ([]models.ImportOperation, error)
	uploadFunc func(ctx context.Context, filename string, file io.Reader) (models.ImportOperation, error)
}

func (m *mockImportsBackend) ImportOperations(ctx context.Context, scope constants.ImportsScope) ([]models.ImportOperation, error) {
	return m.listFunc(ctx, scope)
}
func (m *mockImportsBackend) UploadRoutes(ctx context.Context, filename string, file io.Reader) (models.ImportOperation, error) {
	return m.uploadFunc(ctx, filename, file)
}

type mockUsersBackend struct {
	usersFunc      func(ctx context.Context) ([]models.User, error)
	updateRoleFunc func(ctx context.Context, id int64, role constants.Role) (models.User, error)
}

func (m *mockUsersBackend) Users(ctx context.Context) ([]models.User, error) { return m.usersFunc(ctx) }
func (m *mockUsersBackend) UpdateUserRole(ctx context.Context, id int64, role constants.Role) (models.User, error) {
	return m.updateRoleFunc(ctx, id, role)
}

type mockIdentityBackend struct {
	meFunc func(ctx context.Context, token string) (models.User, error)
}

func (m *mockIdentityBackend) Me(ctx context.Context, token string) (models.User, error) {
	return m.meFunc(ctx, token)
}

// memoryIdentityStorage keeps identities in a plain map.
type memoryIdentityStorage struct {
	data map[string]auth.Identity
}

func newMemoryIdentityStorage() *memoryIdentityStorage {
	return &memoryIdentityStorage{data: map[string]auth.Identity{}}
}

func (m *memoryIdentityStorage) Save(_ context.Context, sessionID string, id auth.Identity) error {
	m.data[sessionID] = id
	return nil
}
func (m *memoryIdentityStorage) Load(_ context.Context, sessionID string) (*auth.Identity, error) {
	id, ok := m.data[sessionID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}
func (m *memoryIdentityStorage) Delete(_ context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func httpError(status int, body string) error {
	return &providers.ProviderError{
		Code:          map[int]string{400: constants.ErrCodeValidation, 401: constants.ErrCodeAuthenticationFailed, 404: constants.ErrCodeNotFound, 500: constants.ErrCodeServerError}[status],
		Status:        status,
		Message:       http.StatusText(status),
		ServerMessage: body,
	}
}

func route(id int64, name string, rating int64) models.Route {
	return models.Route{ID: models.IDPtr(id), Name: name, Rating: rating}
}

func routeNames(routes []models.Route) []string {
	out := make([]string, len(routes))
	for i, r := range routes {
		out[i] = r.Name
	}
	return out
}
