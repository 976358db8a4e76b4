package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*BackendProvider, *auth.RequestContext) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rc := auth.NewRequestContext()
	return NewBackendProvider(server.URL+"/api", rc, nil), rc
}

func TestBackendProvider_RoutesPage_Success(t *testing.T) {
	provider, rc := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Path != "/api/routes" {
			t.Errorf("Expected path /api/routes, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("sort"); got != "name,asc" {
			t.Errorf("Expected sort name,asc, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Basic tok" {
			t.Errorf("Expected session credential, got %q", got)
		}

		json.NewEncoder(w).Encode(models.Page[models.Route]{
			Content:       []models.Route{{ID: models.IDPtr(1), Name: "R1", Rating: 4}},
			TotalElements: 1,
			TotalPages:    1,
			Number:        0,
			Size:          10,
		})
	})
	rc.Set(auth.Identity{Username: "alice", Role: constants.RoleUser, Token: "tok"})

	page, err := provider.Routes().Page(context.Background(), models.PageRequest{Page: 0, Size: 10, Sort: "name,asc"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].Name != "R1" {
		t.Errorf("Unexpected page content: %+v", page.Content)
	}
}

func TestBackendProvider_RoutesPage_OmitsBlankSort(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("sort") {
			t.Errorf("Expected no sort parameter, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"content":null,"totalElements":0,"totalPages":0,"number":0,"size":10}`))
	})

	page, err := provider.Routes().Page(context.Background(), models.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.Content == nil {
		t.Error("Expected empty, non-nil content")
	}
}

func TestBackendProvider_Me_UsesExplicitToken(t *testing.T) {
	provider, rc := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Basic "+auth.BasicToken("bob", "pw") {
			t.Errorf("Expected explicit credential, got %q", got)
		}
		w.Write([]byte(`{"id":2,"username":"bob","role":"ADMIN"}`))
	})
	rc.Set(auth.Identity{Username: "alice", Role: constants.RoleUser, Token: "old"})

	user, err := provider.Me(context.Background(), auth.BasicToken("bob", "pw"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.Role != constants.RoleAdmin {
		t.Errorf("Expected ADMIN, got %s", user.Role)
	}
}

func TestBackendProvider_NotFound(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := provider.Locations().Get(context.Background(), 99)
	if !IsNotFound(err) {
		t.Fatalf("Expected NOT_FOUND, got %v", err)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Status != http.StatusNotFound {
		t.Errorf("Expected status 404, got %+v", pe)
	}
	if msg := UserMessage(err, "fallback"); msg != constants.GetErrorMessage(constants.ErrCodeNotFound) {
		t.Errorf("Unexpected message %q", msg)
	}
}

func TestBackendProvider_ValidationErrors(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":400,"message":"Validation failed","errors":[
			{"field":"name","message":"must not be blank"},
			{"field":"rating","message":"must be greater than 0"},
			{"message":"coordinates are required"},
			{"field":"distance","message":"must be greater than 1"}]}`))
	})

	_, err := provider.Coordinates().Create(context.Background(), models.Coordinates{X: 1, Y: 2})
	if CodeOf(err) != constants.ErrCodeValidation {
		t.Fatalf("Expected VALIDATION_ERROR, got %v", err)
	}
	want := "name: must not be blank; rating: must be greater than 0; coordinates are required"
	if got := UserMessage(err, "fallback"); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestBackendProvider_NetworkError(t *testing.T) {
	provider := NewBackendProvider("http://127.0.0.1:1/api", auth.NewRequestContext(), nil)

	_, err := provider.Users(context.Background())
	if CodeOf(err) != constants.ErrCodeNetworkError {
		t.Fatalf("Expected NETWORK_ERROR, got %v", err)
	}
}

func TestBackendProvider_DecodeError(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := provider.Routes().UniqueRatings(context.Background())
	if CodeOf(err) != constants.ErrCodeDecodeError {
		t.Fatalf("Expected DECODE_ERROR, got %v", err)
	}
}

func TestBackendProvider_UploadRoutes(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/import/routes" {
			t.Errorf("Expected /api/import/routes, got %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Expected multipart file, got %v", err)
			return
		}
		body, _ := io.ReadAll(file)
		if header.Filename != "routes.csv" || string(body) != "a,b" {
			t.Errorf("Unexpected upload %s %q", header.Filename, body)
		}
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"id":7,"username":"alice","objectType":"ROUTE","status":"PENDING"}`))
	})

	op, err := provider.UploadRoutes(context.Background(), "routes.csv", strings.NewReader("a,b"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if op.ID != 7 || !op.Status.InProgress() {
		t.Errorf("Unexpected operation %+v", op)
	}
}

func TestBackendProvider_FindBetween(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("fromId") != "1" || q.Get("toId") != "2" || q.Get("sortBy") != "distance" {
			t.Errorf("Unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id":3,"name":"R3","rating":2}]`))
	})

	routes, err := provider.Routes().FindBetween(context.Background(), 1, 2, models.SortByDistance)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(routes) != 1 {
		t.Errorf("Expected 1 route, got %d", len(routes))
	}

	if _, err := provider.Routes().FindBetween(context.Background(), 0, 2, models.SortByID); err == nil {
		t.Error("Expected error for non-positive fromId")
	}
}

func TestBackendProvider_UpdateUserRole(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/users/5/role" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body models.RoleChangeRequest
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"id":5,"username":"carol","role":"` + string(body.Role) + `"}`))
	})

	user, err := provider.UpdateUserRole(context.Background(), 5, constants.RoleAdmin)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.Role != constants.RoleAdmin {
		t.Errorf("Expected ADMIN, got %s", user.Role)
	}
}

func TestImportOperations_InvalidScope(t *testing.T) {
	provider := NewBackendProvider("http://unused/api", nil, nil)
	if _, err := provider.ImportOperations(context.Background(), "everyone"); err == nil {
		t.Error("Expected error for unknown scope")
	}
}

func TestEndpointLabel(t *testing.T) {
	cases := map[string]string{
		"/routes/12":      "/routes/{id}",
		"/users/5/role":   "/users/{id}/role",
		"/routes/between": "/routes/between",
		"/import/routes":  "/import/routes",
	}
	for in, want := range cases {
		if got := endpointLabel(in); got != want {
			t.Errorf("endpointLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
