package api

import (
	"context"
	"net/http"
	"time"

	"routegraph/dashboard/internal/common"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/store"
	"routegraph/dashboard/internal/workspace"
)

// EntityHandlers serves one unpaged collection of a session: listing,
// create, update, delete and lookup by id. Bodies are decoded as D, the
// form draft of T.
type EntityHandlers[T models.Identifiable, D any] struct {
	label         string
	collection    func(ws *workspace.Workspace) *store.CollectionStore[T]
	search        func(ws *workspace.Workspace) *store.SearchSlot[T]
	save          func(ws *workspace.Workspace, ctx context.Context, id int64, body D) (T, error)
	fetchFallback string
	saveFallback  string
}

var LocationHandlers = &EntityHandlers[models.Location, models.LocationDraft]{
	label:         "Location",
	collection:    func(ws *workspace.Workspace) *store.CollectionStore[models.Location] { return ws.Locations },
	search:        func(ws *workspace.Workspace) *store.SearchSlot[models.Location] { return ws.LocationSearch },
	save:          (*workspace.Workspace).SaveLocation,
	fetchFallback: constants.MsgFetchLocationsFailed,
	saveFallback:  constants.MsgSaveLocationFailed,
}

var CoordinatesHandlers = &EntityHandlers[models.Coordinates, models.CoordinatesDraft]{
	label:         "Coordinates",
	collection:    func(ws *workspace.Workspace) *store.CollectionStore[models.Coordinates] { return ws.Coordinates },
	search:        func(ws *workspace.Workspace) *store.SearchSlot[models.Coordinates] { return ws.CoordinatesSearch },
	save:          (*workspace.Workspace).SaveCoordinates,
	fetchFallback: constants.MsgFetchCoordsFailed,
	saveFallback:  constants.MsgSaveCoordsFailed,
}

// List refetches the collection and returns the store.
func (h *EntityHandlers[T, D]) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		c := h.collection(session(r))
		if err := c.FetchAll(r.Context()); err != nil {
			status, message := errorStatus(err, h.fetchFallback)
			common.RespondErrorData(w, initTime, message, c.Snapshot(), status)
			return
		}
		common.RespondSuccess(w, initTime, "", c.Snapshot())
	}
}

func (h *EntityHandlers[T, D]) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var body D
		if err := decodeJSON(r, &body); err != nil {
			respondErr(w, initTime, err, h.saveFallback)
			return
		}
		created, err := h.save(session(r), r.Context(), 0, body)
		if err != nil {
			respondErr(w, initTime, err, h.saveFallback)
			return
		}
		common.RespondSuccess(w, initTime, h.label+" created", created, http.StatusCreated)
	}
}

func (h *EntityHandlers[T, D]) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r)
		if err != nil {
			respondErr(w, initTime, err, h.saveFallback)
			return
		}
		var body D
		if err := decodeJSON(r, &body); err != nil {
			respondErr(w, initTime, err, h.saveFallback)
			return
		}
		updated, err := h.save(session(r), r.Context(), id, body)
		if err != nil {
			respondErr(w, initTime, err, h.saveFallback)
			return
		}
		common.RespondSuccess(w, initTime, h.label+" updated", updated)
	}
}

func (h *EntityHandlers[T, D]) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r)
		if err != nil {
			respondErr(w, initTime, err, h.saveFallback)
			return
		}
		c := h.collection(session(r))
		if err := c.Delete(r.Context(), id); err != nil {
			respondErr(w, initTime, err, h.saveFallback)
			return
		}
		common.RespondSuccess(w, initTime, h.label+" deleted", c.Snapshot())
	}
}

// Search fills the collection's search slot; the bulk listing is untouched.
func (h *EntityHandlers[T, D]) Search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		slot := h.search(session(r))
		if err := slot.Search(r.Context(), r.URL.Query().Get("id")); err != nil {
			status, _ := errorStatus(err, constants.MsgSearchFailed)
			res := slot.Snapshot()
			common.RespondErrorData(w, initTime, res.Error, res, status)
			return
		}
		common.RespondSuccess(w, initTime, "", slot.Snapshot())
	}
}
