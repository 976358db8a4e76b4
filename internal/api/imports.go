package api

import (
	"net/http"
	"time"

	"routegraph/dashboard/internal/common"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/store"
)

type scopeRequest struct {
	Scope constants.ImportsScope `json:"scope"`
}

func importsFallback(scope constants.ImportsScope) string {
	if scope == constants.ImportsScopeAll {
		return constants.MsgFetchImportsAll
	}
	return constants.MsgFetchImportsMine
}

// ImportsHandler handles GET /ui/api/imports
func ImportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		imports := session(r).Imports
		if err := imports.Refresh(r.Context()); err != nil {
			status, message := errorStatus(err, importsFallback(imports.Scope()))
			common.RespondErrorData(w, initTime, message, imports.Snapshot(), status)
			return
		}
		common.RespondSuccess(w, initTime, "", imports.Snapshot())
	}
}

// ImportsScopeHandler handles PUT /ui/api/imports/scope
func ImportsScopeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		imports := session(r).Imports

		var req scopeRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, initTime, err, constants.MsgFetchImportsMine)
			return
		}
		if !req.Scope.Valid() {
			respondErr(w, initTime, store.ErrInvalidScope, constants.MsgFetchImportsMine)
			return
		}
		if err := imports.SetScope(r.Context(), req.Scope); err != nil {
			status, message := errorStatus(err, importsFallback(req.Scope))
			common.RespondErrorData(w, initTime, message, imports.Snapshot(), status)
			return
		}
		common.RespondSuccess(w, initTime, "", imports.Snapshot())
	}
}

// UploadRoutesHandler handles POST /ui/api/imports (multipart field "file")
//
// @Summary      Import routes from a file
// @Description  Forwards the file to the backend. The accepted operation is prepended to the import history and watched until it settles.
// @Tags         Imports
// @Accept       multipart/form-data
// @Produce      json
// @Success      202  {object}  common.APIResponse
// @Failure      400  {object}  common.APIResponse
// @Router       /ui/api/imports [post]
func UploadRoutesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ws := session(r)

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			respondErr(w, initTime, models.ValidationError("Choose a file to import"), constants.MsgImportFailed)
			return
		}
		defer file.Close()

		op, err := ws.UploadRoutes(r.Context(), header.Filename, file)
		if err != nil {
			respondErr(w, initTime, err, constants.MsgImportFailed)
			return
		}
		common.RespondSuccess(w, initTime, "Import started", op, http.StatusAccepted)
	}
}
