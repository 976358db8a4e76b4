package api

import (
	"net/http"
	"strconv"
	"time"

	"routegraph/dashboard/internal/common"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
)

// RoutesPageHandler handles GET /ui/api/routes?page=&size=&sort=
//
// Missing parameters keep the current page request. The response is the
// page store after the fetch.
func RoutesPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ws := session(r)

		req := ws.Routes.Request()
		q := r.URL.Query()
		if v := q.Get("page"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				respondErr(w, initTime, models.ValidationError("page must be a number"), constants.MsgFetchRoutesFailed)
				return
			}
			req.Page = n
		}
		if v := q.Get("size"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				respondErr(w, initTime, models.ValidationError("size must be a number"), constants.MsgFetchRoutesFailed)
				return
			}
			req.Size = n
		}
		if q.Has("sort") {
			req.Sort = q.Get("sort")
		}

		if err := ws.SetRoutesPage(r.Context(), req); err != nil {
			status, message := errorStatus(err, constants.MsgFetchRoutesFailed)
			common.RespondErrorData(w, initTime, message, ws.Routes.Snapshot(), status)
			return
		}
		common.RespondSuccess(w, initTime, "", ws.Routes.Snapshot())
	}
}

// CreateRouteHandler handles POST /ui/api/routes
func CreateRouteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ws := session(r)

		var draft models.RouteDraft
		if err := decodeJSON(r, &draft); err != nil {
			respondErr(w, initTime, err, constants.MsgSaveRouteFailed)
			return
		}
		created, err := ws.CreateRoute(r.Context(), draft)
		if err != nil {
			respondErr(w, initTime, err, constants.MsgSaveRouteFailed)
			return
		}
		common.RespondSuccess(w, initTime, "Route created", created, http.StatusCreated)
	}
}

// UpdateRouteHandler handles PUT /ui/api/routes/{id}
func UpdateRouteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ws := session(r)

		id, err := pathID(r)
		if err != nil {
			respondErr(w, initTime, err, constants.MsgSaveRouteFailed)
			return
		}
		var draft models.RouteDraft
		if err := decodeJSON(r, &draft); err != nil {
			respondErr(w, initTime, err, constants.MsgSaveRouteFailed)
			return
		}
		updated, err := ws.UpdateRoute(r.Context(), id, draft)
		if err != nil {
			respondErr(w, initTime, err, constants.MsgSaveRouteFailed)
			return
		}
		common.RespondSuccess(w, initTime, "Route updated", updated)
	}
}

// DeleteRouteHandler handles DELETE /ui/api/routes/{id}
func DeleteRouteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ws := session(r)

		id, err := pathID(r)
		if err != nil {
			respondErr(w, initTime, err, constants.MsgDeleteRouteFailed)
			return
		}
		if err := ws.DeleteRoute(r.Context(), id); err != nil {
			respondErr(w, initTime, err, constants.MsgDeleteRouteFailed)
			return
		}
		common.RespondSuccess(w, initTime, "Route deleted", ws.Routes.Snapshot())
	}
}

// SearchRouteHandler handles GET /ui/api/routes/search?id=
func SearchRouteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		slot := session(r).RouteSearch
		if err := slot.Search(r.Context(), r.URL.Query().Get("id")); err != nil {
			status, _ := errorStatus(err, constants.MsgSearchFailed)
			res := slot.Snapshot()
			common.RespondErrorData(w, initTime, res.Error, res, status)
			return
		}
		common.RespondSuccess(w, initTime, "", slot.Snapshot())
	}
}

// MinDistanceHandler handles GET /ui/api/routes/min-distance
func MinDistanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		route, err := session(r).MinDistanceRoute(r.Context())
		if err != nil {
			respondErr(w, initTime, err, constants.MsgSearchFailed)
			return
		}
		common.RespondSuccess(w, initTime, "", route)
	}
}

// GroupByRatingHandler handles GET /ui/api/routes/group-by-rating
func GroupByRatingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		groups, err := session(r).RoutesByRating(r.Context())
		if err != nil {
			respondErr(w, initTime, err, constants.MsgFetchRoutesFailed)
			return
		}
		common.RespondSuccess(w, initTime, "", groups)
	}
}

// UniqueRatingsHandler handles GET /ui/api/routes/unique-ratings
func UniqueRatingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ratings, err := session(r).UniqueRatings(r.Context())
		if err != nil {
			respondErr(w, initTime, err, constants.MsgFetchRoutesFailed)
			return
		}
		common.RespondSuccess(w, initTime, "", ratings)
	}
}

// FindBetweenHandler handles GET /ui/api/routes/between?fromId=&toId=&sortBy=
func FindBetweenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		fromID, err := queryID(r, "fromId")
		if err != nil {
			respondErr(w, initTime, err, constants.MsgFetchRoutesFailed)
			return
		}
		toID, err := queryID(r, "toId")
		if err != nil {
			respondErr(w, initTime, err, constants.MsgFetchRoutesFailed)
			return
		}
		routes, err := session(r).FindRoutesBetween(r.Context(), fromID, toID, r.URL.Query().Get("sortBy"))
		if err != nil {
			respondErr(w, initTime, err, constants.MsgFetchRoutesFailed)
			return
		}
		common.RespondSuccess(w, initTime, "", routes)
	}
}

// AddBetweenHandler handles POST /ui/api/routes/between
func AddBetweenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var draft models.BetweenDraft
		if err := decodeJSON(r, &draft); err != nil {
			respondErr(w, initTime, err, constants.MsgSaveRouteFailed)
			return
		}
		created, err := session(r).AddRouteBetween(r.Context(), draft)
		if err != nil {
			respondErr(w, initTime, err, constants.MsgSaveRouteFailed)
			return
		}
		common.RespondSuccess(w, initTime, "Route created", created, http.StatusCreated)
	}
}
