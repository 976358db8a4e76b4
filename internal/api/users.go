package api

import (
	"net/http"
	"time"

	"routegraph/dashboard/internal/common"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
)

// UsersHandler handles GET /ui/api/users (admins only)
func UsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		users := session(r).Users
		if err := users.FetchAll(r.Context()); err != nil {
			status, message := errorStatus(err, constants.MsgFetchUsersFailed)
			common.RespondErrorData(w, initTime, message, users.Snapshot(), status)
			return
		}
		common.RespondSuccess(w, initTime, "", users.Snapshot())
	}
}

// ChangeRoleHandler handles PATCH /ui/api/users/{id}/role (admins only)
func ChangeRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ws := session(r)

		id, err := pathID(r)
		if err != nil {
			respondErr(w, initTime, err, constants.MsgChangeRoleFailed)
			return
		}
		var req models.RoleChangeRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, initTime, err, constants.MsgChangeRoleFailed)
			return
		}
		if _, err := constants.ParseRole(string(req.Role)); err != nil {
			respondErr(w, initTime, models.ValidationError(err.Error()), constants.MsgChangeRoleFailed)
			return
		}
		updated, err := ws.ChangeUserRole(r.Context(), id, req.Role)
		if err != nil {
			respondErr(w, initTime, err, constants.MsgChangeRoleFailed)
			return
		}
		common.RespondSuccess(w, initTime, "Role updated", updated)
	}
}
