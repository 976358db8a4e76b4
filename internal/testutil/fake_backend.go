// Package testutil holds an in-memory stand-in for the routes REST backend,
// shared by the workspace and api tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
)

// FakeBackend serves the REST surface the dashboard talks to.
type FakeBackend struct {
	Server *httptest.Server

	mu          sync.Mutex
	accounts    map[string]models.User
	routes      []models.Route
	locations   []models.Location
	coordinates []models.Coordinates
	imports     []models.ImportOperation
	nextID      int64
	calls       map[string]int

	uploadStatus models.ImportStatus
	resetEmails  []string
	resetTokens  []string
}

func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		accounts:     make(map[string]models.User),
		calls:        make(map[string]int),
		nextID:       100,
		uploadStatus: models.ImportPending,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", f.authed(f.me))
	mux.HandleFunc("GET /routes", f.authed(f.routesPage))
	mux.HandleFunc("POST /routes", f.authed(f.createRoute))
	mux.HandleFunc("GET /routes/{id}", f.authed(f.getRoute))
	mux.HandleFunc("PUT /routes/{id}", f.authed(f.updateRoute))
	mux.HandleFunc("DELETE /routes/{id}", f.authed(f.deleteRoute))
	mux.HandleFunc("GET /routes/min-distance", f.authed(f.minDistance))
	mux.HandleFunc("GET /routes/group-by-rating", f.authed(f.groupByRating))
	mux.HandleFunc("GET /routes/unique-ratings", f.authed(f.uniqueRatings))
	mux.HandleFunc("GET /routes/between", f.authed(f.between))
	mux.HandleFunc("POST /routes/between", f.authed(f.addBetween))
	mux.HandleFunc("GET /locations", f.authed(f.listLocations))
	mux.HandleFunc("POST /locations", f.authed(f.createLocation))
	mux.HandleFunc("GET /locations/{id}", f.authed(f.getLocation))
	mux.HandleFunc("PUT /locations/{id}", f.authed(updateEntity(f, func() *[]models.Location { return &f.locations }, setLocationID, "Location")))
	mux.HandleFunc("DELETE /locations/{id}", f.authed(deleteEntity(f, func() *[]models.Location { return &f.locations }, "Location")))
	mux.HandleFunc("GET /coordinates", f.authed(f.listCoordinates))
	mux.HandleFunc("POST /coordinates", f.authed(f.createCoordinates))
	mux.HandleFunc("GET /coordinates/{id}", f.authed(f.getCoordinates))
	mux.HandleFunc("PUT /coordinates/{id}", f.authed(updateEntity(f, func() *[]models.Coordinates { return &f.coordinates }, setCoordinatesID, "Coordinates")))
	mux.HandleFunc("DELETE /coordinates/{id}", f.authed(deleteEntity(f, func() *[]models.Coordinates { return &f.coordinates }, "Coordinates")))
	mux.HandleFunc("POST /import/routes", f.authed(f.upload))
	mux.HandleFunc("GET /import/operations/{scope}", f.authed(f.importOperations))
	mux.HandleFunc("GET /users", f.authed(f.listUsers))
	mux.HandleFunc("PATCH /users/{id}/role", f.authed(f.updateRole))
	mux.HandleFunc("POST /password-reset/request", f.resetRequest)
	mux.HandleFunc("POST /password-reset/confirm", f.resetConfirm)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeBackend) URL() string { return f.Server.URL }

// AddAccount registers a user that can sign in with username and password.
func (f *FakeBackend) AddAccount(username, password string, role constants.Role) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := models.User{ID: f.nextID, Username: username, Role: role}
	f.accounts[auth.BasicToken(username, password)] = u
	return u
}

func (f *FakeBackend) SeedLocation(l models.Location) models.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = f.newID()
	f.locations = append(f.locations, l)
	return l
}

func (f *FakeBackend) SeedCoordinates(c models.Coordinates) models.Coordinates {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.newID()
	f.coordinates = append(f.coordinates, c)
	return c
}

func (f *FakeBackend) SeedRoute(r models.Route) models.Route {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.newID()
	f.routes = append(f.routes, r)
	return r
}

// FinishImports marks every pending or running import as succeeded.
func (f *FakeBackend) FinishImports() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.imports {
		if f.imports[i].Status.InProgress() {
			f.imports[i].Status = models.ImportSuccess
		}
	}
}

// SetUploadStatus sets the status reported for newly accepted imports.
func (f *FakeBackend) SetUploadStatus(status models.ImportStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadStatus = status
}

// ResetEmails lists the addresses a reset was requested for.
func (f *FakeBackend) ResetEmails() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.resetEmails...)
}

// ResetTokens lists the tokens of accepted reset confirmations.
func (f *FakeBackend) ResetTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.resetTokens...)
}

// Calls returns how often a "METHOD pattern" was served.
func (f *FakeBackend) Calls(pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[pattern]
}

func (f *FakeBackend) newID() *int64 {
	f.nextID++
	return models.IDPtr(f.nextID)
}

func (f *FakeBackend) authed(next func(http.ResponseWriter, *http.Request, models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.Pattern]++
		user, ok := f.accounts[bearer(r)]
		f.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "")
			return
		}
		next(w, r, user)
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > len("Basic ") {
		return h[len("Basic "):]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"status": status, "message": message})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func find[T models.Identifiable](items []T, id int64) int {
	for i, item := range items {
		if got, ok := item.EntityID(); ok && got == id {
			return i
		}
	}
	return -1
}

func (f *FakeBackend) me(w http.ResponseWriter, r *http.Request, user models.User) {
	writeJSON(w, http.StatusOK, user)
}

func (f *FakeBackend) routesPage(w http.ResponseWriter, r *http.Request, _ models.User) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = constants.DefaultRoutesPageSize
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	total := len(f.routes)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	writeJSON(w, http.StatusOK, models.Page[models.Route]{
		Content:       append([]models.Route{}, f.routes[start:end]...),
		TotalElements: int64(total),
		TotalPages:    (total + size - 1) / size,
		Number:        page,
		Size:          size,
	})
}

func (f *FakeBackend) createRoute(w http.ResponseWriter, r *http.Request, _ models.User) {
	var body models.Route
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status": 400,
			"errors": []map[string]string{{"field": "name", "message": "must not be blank"}},
		})
		return
	}
	writeJSON(w, http.StatusCreated, f.SeedRoute(body))
}

func (f *FakeBackend) getRoute(w http.ResponseWriter, r *http.Request, _ models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := find(f.routes, pathID(r))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Route not found")
		return
	}
	writeJSON(w, http.StatusOK, f.routes[i])
}

func (f *FakeBackend) updateRoute(w http.ResponseWriter, r *http.Request, _ models.User) {
	var body models.Route
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := pathID(r)
	i := find(f.routes, id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Route not found")
		return
	}
	body.ID = models.IDPtr(id)
	f.routes[i] = body
	writeJSON(w, http.StatusOK, body)
}

func (f *FakeBackend) deleteRoute(w http.ResponseWriter, r *http.Request, _ models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := find(f.routes, pathID(r))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Route not found")
		return
	}
	f.routes = append(f.routes[:i], f.routes[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeBackend) minDistance(w http.ResponseWriter, r *http.Request, _ models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.Route
	for i := range f.routes {
		d := f.routes[i].Distance
		if d != nil && (best == nil || *d < *best.Distance) {
			best = &f.routes[i]
		}
	}
	if best == nil {
		writeError(w, http.StatusNotFound, "No routes with distance")
		return
	}
	writeJSON(w, http.StatusOK, best)
}

func (f *FakeBackend) groupByRating(w http.ResponseWriter, r *http.Request, _ models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int64{}
	for _, rt := range f.routes {
		out[strconv.FormatInt(rt.Rating, 10)]++
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeBackend) uniqueRatings(w http.ResponseWriter, r *http.Request, _ models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[int64]bool{}
	out := []int64{}
	for _, rt := range f.routes {
		if !seen[rt.Rating] {
			seen[rt.Rating] = true
			out = append(out, rt.Rating)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeBackend) between(w http.ResponseWriter, r *http.Request, _ models.User) {
	from, _ := strconv.ParseInt(r.URL.Query().Get("fromId"), 10, 64)
	to, _ := strconv.ParseInt(r.URL.Query().Get("toId"), 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Route{}
	for _, rt := range f.routes {
		fid, _ := rt.From.EntityID()
		tid, _ := rt.To.EntityID()
		if fid == from && tid == to {
			out = append(out, rt)
		}
	}
	if r.URL.Query().Get("sortBy") == string(models.SortByRating) {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating < out[j].Rating })
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeBackend) addBetween(w http.ResponseWriter, r *http.Request, _ models.User) {
	from, _ := strconv.ParseInt(r.URL.Query().Get("fromId"), 10, 64)
	to, _ := strconv.ParseInt(r.URL.Query().Get("toId"), 10, 64)
	var body models.Route
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad body")
		return
	}

	f.mu.Lock()
	fi, ti := find(f.locations, from), find(f.locations, to)
	if fi < 0 || ti < 0 {
		f.mu.Unlock()
		writeError(w, http.StatusNotFound, "Location not found")
		return
	}
	body.From, body.To = f.locations[fi], f.locations[ti]
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, f.SeedRoute(body))
}

func (f *FakeBackend) listLocations(w http.ResponseWriter, r *http.Request, _ models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Location{}, f.locations...))
}

func (f *FakeBackend) createLocation(w http.ResponseWriter, r *http.Request, _ models.User) {
	var body models.Location
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad body")
		return
	}
	writeJSON(w, http.StatusCreated, f.SeedLocation(body))
}

func (f *FakeBackend) getLocation(w http.ResponseWriter, r *http.Request, _ models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := find(f.locations, pathID(r))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Location not found")
		return
	}
	writeJSON(w, http.StatusOK, f.locations[i])
}

func (f *FakeBackend) listCoordinates(w http.ResponseWriter, r *http.Request, _ models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Coordinates{}, f.coordinates...))
}

func (f *FakeBackend) createCoordinates(w http.ResponseWriter, r *http.Request, _ models.User) {
	var body models.Coordinates
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad body")
		return
	}
	writeJSON(w, http.StatusCreated, f.SeedCoordinates(body))
}

func (f *FakeBackend) getCoordinates(w http.ResponseWriter, r *http.Request, _ models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := find(f.coordinates, pathID(r))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Coordinates not found")
		return
	}
	writeJSON(w, http.StatusOK, f.coordinates[i])
}

// updateEntity replaces the stored record with the request body under the
// path id.
func updateEntity[T models.Identifiable](f *FakeBackend, items func() *[]T, setID func(*T, int64), label string) func(http.ResponseWriter, *http.Request, models.User) {
	return func(w http.ResponseWriter, r *http.Request, _ models.User) {
		var body T
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "bad body")
			return
		}
		id := pathID(r)
		setID(&body, id)

		f.mu.Lock()
		defer f.mu.Unlock()
		list := items()
		i := find(*list, id)
		if i < 0 {
			writeError(w, http.StatusNotFound, label+" not found")
			return
		}
		(*list)[i] = body
		writeJSON(w, http.StatusOK, body)
	}
}

func setLocationID(l *models.Location, id int64)       { l.ID = models.IDPtr(id) }
func setCoordinatesID(c *models.Coordinates, id int64) { c.ID = models.IDPtr(id) }

func deleteEntity[T models.Identifiable](f *FakeBackend, items func() *[]T, label string) func(http.ResponseWriter, *http.Request, models.User) {
	return func(w http.ResponseWriter, r *http.Request, _ models.User) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := items()
		i := find(*list, pathID(r))
		if i < 0 {
			writeError(w, http.StatusNotFound, label+" not found")
			return
		}
		*list = append((*list)[:i], (*list)[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *FakeBackend) upload(w http.ResponseWriter, r *http.Request, user models.User) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	name := header.Filename
	op := models.ImportOperation{
		ID:               f.nextID,
		Username:         user.Username,
		ObjectType:       "ROUTE",
		Status:           f.uploadStatus,
		FileOriginalName: &name,
	}
	f.imports = append([]models.ImportOperation{op}, f.imports...)
	writeJSON(w, http.StatusAccepted, op)
}

func (f *FakeBackend) importOperations(w http.ResponseWriter, r *http.Request, user models.User) {
	scope := constants.ImportsScope(r.PathValue("scope"))
	if scope == constants.ImportsScopeAll && user.Role != constants.RoleAdmin {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ImportOperation{}
	for _, op := range f.imports {
		if scope == constants.ImportsScopeAll || op.Username == user.Username {
			out = append(out, op)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeBackend) listUsers(w http.ResponseWriter, r *http.Request, user models.User) {
	if user.Role != constants.RoleAdmin {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.accounts))
	for _, u := range f.accounts {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeBackend) updateRole(w http.ResponseWriter, r *http.Request, user models.User) {
	if user.Role != constants.RoleAdmin {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	var body models.RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := pathID(r)
	for token, u := range f.accounts {
		if u.ID == id {
			u.Role = body.Role
			f.accounts[token] = u
			writeJSON(w, http.StatusOK, u)
			return
		}
	}
	writeError(w, http.StatusNotFound, "User not found")
}

func (f *FakeBackend) resetRequest(w http.ResponseWriter, r *http.Request) {
	var body models.PasswordResetRequest
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.mu.Lock()
	f.resetEmails = append(f.resetEmails, body.Email)
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeBackend) resetConfirm(w http.ResponseWriter, r *http.Request) {
	var body models.PasswordResetConfirm
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Token == "expired" {
		writeError(w, http.StatusBadRequest, "Token expired")
		return
	}
	f.mu.Lock()
	f.resetTokens = append(f.resetTokens, body.Token)
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
