package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"routegraph/dashboard/internal/common"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/middleware"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
	"routegraph/dashboard/internal/store"
	"routegraph/dashboard/internal/workspace"
)

const maxUploadBytes = 32 << 20

// errorStatus maps a failure to the HTTP status and the message shown to
// the user. fallback is used when nothing more specific is known.
func errorStatus(err error, fallback string) (int, string) {
	var fieldErrs models.FieldErrors
	var validation models.ValidationError
	var pe *providers.ProviderError

	switch {
	case errors.As(err, &fieldErrs):
		return http.StatusBadRequest, fieldErrs.Error()
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.Is(err, models.ErrReferenceNotFound):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, workspace.ErrInvalidSortBy):
		return http.StatusBadRequest, constants.MsgSortByInvalid
	case errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest, constants.MsgSearchIDInvalid
	case errors.Is(err, store.ErrInvalidScope):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrMissingCredentials):
		return http.StatusBadRequest, constants.MsgLoginFailedGeneric
	case errors.Is(err, store.ErrRoleChangeInProgress):
		return http.StatusConflict, constants.MsgRoleChangeInFlight
	case errors.Is(err, workspace.ErrNotSignedIn):
		return http.StatusUnauthorized, constants.MsgSignInFirst
	case errors.Is(err, workspace.ErrAdminOnly):
		return http.StatusForbidden, constants.GetErrorMessage(constants.ErrCodeForbidden)
	case errors.Is(err, workspace.ErrUnknownTab):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &pe):
		status := pe.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		return status, providers.UserMessage(err, fallback)
	default:
		return http.StatusInternalServerError, fallback
	}
}

func respondErr(w http.ResponseWriter, initTime time.Time, err error, fallback string) {
	status, message := errorStatus(err, fallback)
	common.RespondError(w, initTime, err, message, status)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return models.ValidationError(constants.GetErrorMessage(constants.ErrCodeInvalidDataFormat))
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.ErrInvalidID
	}
	return id, nil
}

func queryID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.ErrInvalidID
	}
	return id, nil
}

func session(r *http.Request) *workspace.Workspace {
	return middleware.WorkspaceFrom(r)
}
