package models

// Coordinates is a standalone point referenced by routes.
type Coordinates struct {
	ID *int64  `json:"id,omitempty"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Location is a route endpoint. X is nullable on the backend.
type Location struct {
	ID *int64  `json:"id,omitempty"`
	X  *int64  `json:"x"`
	Y  int64   `json:"y"`
	Z  float64 `json:"z"`
}

// Route owns or references one Coordinates and two Locations.
type Route struct {
	ID           *int64      `json:"id,omitempty"`
	Name         string      `json:"name"`
	Coordinates  Coordinates `json:"coordinates"`
	From         Location    `json:"from"`
	To           Location    `json:"to"`
	Distance     *float64    `json:"distance,omitempty"`
	Rating       int64       `json:"rating"`
	CreationDate string      `json:"creationDate,omitempty"`
}

// Identifiable is implemented by every record kept in a collection.
// EntityID returns false for records the server has not assigned an id yet.
type Identifiable interface {
	EntityID() (int64, bool)
}

func (c Coordinates) EntityID() (int64, bool) { return derefID(c.ID) }
func (l Location) EntityID() (int64, bool)    { return derefID(l.ID) }
func (r Route) EntityID() (int64, bool)       { return derefID(r.ID) }

func derefID(id *int64) (int64, bool) {
	if id == nil {
		return 0, false
	}
	return *id, true
}

// IDPtr is a small helper for building records in code and tests.
func IDPtr(id int64) *int64 { return &id }
