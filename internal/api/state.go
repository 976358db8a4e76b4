package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"routegraph/dashboard/internal/common"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/workspace"
)

// StateHandler handles GET /ui/api/state
//
// @Summary      Session state
// @Description  Returns every store of the session: auth, routes page, locations, coordinates, imports, users (admins) and the search slots.
// @Tags         State
// @Produce      json
// @Success      200  {object}  common.APIResponse
// @Router       /ui/api/state [get]
func StateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "", session(r).Snapshot())
	}
}

// SelectTabHandler handles POST /ui/api/tabs/{tab}
func SelectTabHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ws := session(r)

		tab, err := workspace.ParseTab(chi.URLParam(r, "tab"))
		if err != nil {
			respondErr(w, initTime, err, err.Error())
			return
		}
		if err := ws.SelectTab(r.Context(), tab); err != nil {
			status, message := errorStatus(err, constants.GetErrorMessage(constants.ErrCodeServerError))
			common.RespondErrorData(w, initTime, message, ws.Snapshot(), status)
			return
		}
		common.RespondSuccess(w, initTime, "", ws.Snapshot())
	}
}
