package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
)

// ============================================================================
// Imports
// ============================================================================

// UploadRoutes posts a routes file as multipart field "file".
func (p *BackendProvider) UploadRoutes(ctx context.Context, filename string, file io.Reader) (models.ImportOperation, error) {
	var out models.ImportOperation
	err := p.doMultipart(ctx, "/import/routes", "file", filename, file, &out)
	return out, err
}

// ImportOperations lists the caller's own operations or, for admins, all of them.
func (p *BackendProvider) ImportOperations(ctx context.Context, scope constants.ImportsScope) ([]models.ImportOperation, error) {
	if !scope.Valid() {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: fmt.Sprintf("unknown imports scope %q", scope),
		}
	}
	var out []models.ImportOperation
	if err := p.doRequest(ctx, http.MethodGet, "/import/operations/"+string(scope), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================================
// Users
// ============================================================================

func (p *BackendProvider) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := p.doRequest(ctx, http.MethodGet, "/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *BackendProvider) UpdateUserRole(ctx context.Context, id int64, role constants.Role) (models.User, error) {
	var out models.User
	err := p.doRequest(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/role", id), &out,
		withJSON(models.RoleChangeRequest{Role: role}))
	return out, err
}

// ============================================================================
// Authentication
// ============================================================================

// Me verifies token by calling the identity endpoint with it explicitly,
// independent of the session's current credential.
func (p *BackendProvider) Me(ctx context.Context, token string) (models.User, error) {
	var out models.User
	err := p.doRequest(ctx, http.MethodGet, "/me", &out, withToken(token))
	return out, err
}

func (p *BackendProvider) RequestPasswordReset(ctx context.Context, email string) error {
	return p.doRequest(ctx, http.MethodPost, "/password-reset/request", nil,
		withJSON(models.PasswordResetRequest{Email: email}))
}

func (p *BackendProvider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return p.doRequest(ctx, http.MethodPost, "/password-reset/confirm", nil,
		withJSON(models.PasswordResetConfirm{Token: token, NewPassword: newPassword}))
}
