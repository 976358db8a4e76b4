package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
	"routegraph/dashboard/internal/store"
	"routegraph/dashboard/internal/workspace"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"field errors", models.FieldErrors{"name": "name is required"}, http.StatusBadRequest, "name: name is required"},
		{"validation", models.ValidationError("page must be a number"), http.StatusBadRequest, "page must be a number"},
		{"sort field", fmt.Errorf("%w: colour", workspace.ErrInvalidSortBy), http.StatusBadRequest, constants.MsgSortByInvalid},
		{"invalid id", store.ErrInvalidID, http.StatusBadRequest, constants.MsgSearchIDInvalid},
		{"role change in flight", store.ErrRoleChangeInProgress, http.StatusConflict, constants.MsgRoleChangeInFlight},
		{"not signed in", workspace.ErrNotSignedIn, http.StatusUnauthorized, constants.MsgSignInFirst},
		{"admin only", workspace.ErrAdminOnly, http.StatusForbidden, constants.GetErrorMessage(constants.ErrCodeForbidden)},
		{
			"backend message",
			&providers.ProviderError{Code: constants.ErrCodeConflict, Status: http.StatusConflict, ServerMessage: "Name taken"},
			http.StatusConflict, "Name taken",
		},
		{
			"network failure",
			&providers.ProviderError{Code: constants.ErrCodeNetworkError, Err: errors.New("dial tcp: refused")},
			http.StatusBadGateway, "",
		},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := errorStatus(tt.err, "fallback")
			assert.Equal(t, tt.status, status)
			if tt.message != "" {
				assert.Equal(t, tt.message, message)
			}
		})
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a","pasword":"b"}`))
	var req loginRequest
	err := decodeJSON(r, &req)

	var validation models.ValidationError
	assert.True(t, errors.As(err, &validation))
}
