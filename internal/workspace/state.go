package workspace

import (
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/store"
)

// State is everything the dashboard shell renders for one session.
type State struct {
	SessionID   string                                       `json:"sessionId"`
	Tab         Tab                                          `json:"tab"`
	Tabs        []Tab                                        `json:"tabs"`
	Auth        store.AuthSnapshot                           `json:"auth"`
	Routes      store.PageSnapshot                           `json:"routes"`
	Locations   store.CollectionSnapshot[models.Location]    `json:"locations"`
	Coordinates store.CollectionSnapshot[models.Coordinates] `json:"coordinates"`
	Imports     store.ImportsSnapshot                        `json:"imports"`
	Users       *store.UsersSnapshot                         `json:"users,omitempty"`
	Search      SearchState                                  `json:"search"`
}

type SearchState struct {
	Route       store.SearchResult[models.Route]       `json:"route"`
	Location    store.SearchResult[models.Location]    `json:"location"`
	Coordinates store.SearchResult[models.Coordinates] `json:"coordinates"`
}

// Snapshot copies every store. The users listing is only included for admins.
func (w *Workspace) Snapshot() State {
	st := State{
		SessionID:   w.ID,
		Tab:         w.Tab(),
		Auth:        w.Auth.Snapshot(),
		Routes:      w.Routes.Snapshot(),
		Locations:   w.Locations.Snapshot(),
		Coordinates: w.Coordinates.Snapshot(),
		Imports:     w.Imports.Snapshot(),
		Search: SearchState{
			Route:       w.RouteSearch.Snapshot(),
			Location:    w.LocationSearch.Snapshot(),
			Coordinates: w.CoordinatesSearch.Snapshot(),
		},
	}
	if id, ok := w.Auth.Identity(); ok {
		st.Tabs = VisibleTabs(id)
		if id.IsAdmin() {
			users := w.Users.Snapshot()
			st.Users = &users
		}
	}
	return st
}
