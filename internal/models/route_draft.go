package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a form field to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// ValidationError is a single message about user input.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// ErrReferenceNotFound is returned when a draft points at an id the
// workspace does not have cached.
var ErrReferenceNotFound = errors.New("referenced entity not found")

// CoordinatesDraft is coordinates as typed into a form. Absent axes stay nil
// so a missing value is not mistaken for zero.
type CoordinatesDraft struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (d CoordinatesDraft) Validate() error { return checkFields(d) }

// Coordinates converts a validated draft.
func (d CoordinatesDraft) Coordinates() Coordinates {
	return Coordinates{X: derefFloat(d.X), Y: derefFloat(d.Y)}
}

// LocationDraft is a location as typed into a form; x may stay empty.
type LocationDraft struct {
	X *int64   `json:"x"`
	Y *int64   `json:"y" validate:"required"`
	Z *float64 `json:"z" validate:"required"`
}

func (d LocationDraft) Validate() error { return checkFields(d) }

// Location converts a validated draft.
func (d LocationDraft) Location() Location {
	l := Location{X: d.X, Z: derefFloat(d.Z)}
	if d.Y != nil {
		l.Y = *d.Y
	}
	return l
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// CoordinatesRef either picks existing coordinates by id or describes new
// ones, never both.
type CoordinatesRef struct {
	ExistingID *int64            `json:"existingId,omitempty" validate:"required_without=New,excluded_with=New"`
	New        *CoordinatesDraft `json:"new,omitempty"`
}

// LocationRef either picks an existing location by id or describes a new one.
type LocationRef struct {
	ExistingID *int64         `json:"existingId,omitempty" validate:"required_without=New,excluded_with=New"`
	New        *LocationDraft `json:"new,omitempty"`
}

// RouteDraft is what a user authors before the backend assigns ids.
type RouteDraft struct {
	Name        string         `json:"name" validate:"notblank"`
	Rating      int64          `json:"rating" validate:"required,gt=0"`
	Distance    *float64       `json:"distance,omitempty" validate:"omitempty,gt=1"`
	Coordinates CoordinatesRef `json:"coordinates"`
	From        LocationRef    `json:"from"`
	To          LocationRef    `json:"to"`
}

// Validate applies the same rules the dashboard forms enforce.
func (d RouteDraft) Validate() error { return checkFields(d) }

// Resolve turns the draft into a Route body. Existing references are copied
// from the caller's cache so the backend receives full nested objects.
func (d RouteDraft) Resolve(
	coordinates func(id int64) (Coordinates, bool),
	locations func(id int64) (Location, bool),
) (Route, error) {
	if err := d.Validate(); err != nil {
		return Route{}, err
	}

	route := Route{
		Name:     strings.TrimSpace(d.Name),
		Rating:   d.Rating,
		Distance: d.Distance,
	}

	if d.Coordinates.ExistingID != nil {
		c, ok := coordinates(*d.Coordinates.ExistingID)
		if !ok {
			return Route{}, fmt.Errorf("coordinates %d: %w", *d.Coordinates.ExistingID, ErrReferenceNotFound)
		}
		route.Coordinates = c
	} else {
		route.Coordinates = d.Coordinates.New.Coordinates()
	}

	var err error
	if route.From, err = resolveLocation("from", d.From, locations); err != nil {
		return Route{}, err
	}
	if route.To, err = resolveLocation("to", d.To, locations); err != nil {
		return Route{}, err
	}
	return route, nil
}

func resolveLocation(field string, ref LocationRef, locations func(int64) (Location, bool)) (Location, error) {
	if ref.ExistingID == nil {
		return ref.New.Location(), nil
	}
	l, ok := locations(*ref.ExistingID)
	if !ok {
		return Location{}, fmt.Errorf("%s location %d: %w", field, *ref.ExistingID, ErrReferenceNotFound)
	}
	return l, nil
}

// MinBetweenCoordinateY is the exclusive lower bound the backend enforces
// on coordinates.y of routes added between two locations.
const MinBetweenCoordinateY = -976

// BetweenCoordinates are the coordinates of a route added between two
// locations; y is bounded by MinBetweenCoordinateY.
type BetweenCoordinates struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required,gt=-976"`
}

func (c BetweenCoordinates) Coordinates() Coordinates {
	return Coordinates{X: derefFloat(c.X), Y: derefFloat(c.Y)}
}

// BetweenDraft creates a route pinned to two existing locations.
type BetweenDraft struct {
	FromID      int64              `json:"fromId" validate:"gt=0"`
	ToID        int64              `json:"toId" validate:"gt=0"`
	Name        string             `json:"name" validate:"notblank"`
	Rating      int64              `json:"rating" validate:"required,gt=0"`
	Distance    *float64           `json:"distance,omitempty" validate:"omitempty,gt=1"`
	Coordinates BetweenCoordinates `json:"coordinates"`
}

// RouteSortField is the sortBy parameter of the between listing.
type RouteSortField string

const (
	SortByID       RouteSortField = "id"
	SortByDistance RouteSortField = "distance"
	SortByRating   RouteSortField = "rating"
	SortByName     RouteSortField = "name"
)

func ParseRouteSortField(s string) (RouteSortField, error) {
	switch RouteSortField(s) {
	case SortByID, SortByDistance, SortByRating, SortByName:
		return RouteSortField(s), nil
	case "":
		return SortByID, nil
	default:
		return "", fmt.Errorf("unknown sortBy %q", s)
	}
}

func (d BetweenDraft) Validate() error { return checkFields(d) }

// Route builds the request body; the backend pins from/to by id.
func (d BetweenDraft) Route(from, to Location) Route {
	return Route{
		Name:        strings.TrimSpace(d.Name),
		Rating:      d.Rating,
		Distance:    d.Distance,
		Coordinates: d.Coordinates.Coordinates(),
		From:        from,
		To:          to,
	}
}
