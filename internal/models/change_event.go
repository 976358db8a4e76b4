package models

import (
	"fmt"
	"strings"
)

// EntityKind is the closed set of collections that receive change events.
type EntityKind string

const (
	EntityRoute       EntityKind = "route"
	EntityLocation    EntityKind = "location"
	EntityCoordinates EntityKind = "coordinates"
)

// ParseEntityKind accepts the tag carried in the "entity" field of a push message.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(strings.ToLower(strings.TrimSpace(s))) {
	case EntityRoute, "routes":
		return EntityRoute, nil
	case EntityLocation, "locations":
		return EntityLocation, nil
	case EntityCoordinates:
		return EntityCoordinates, nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
}

// Action is what happened to the entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionCreate:
		return ActionCreate, nil
	case ActionUpdate:
		return ActionUpdate, nil
	case ActionDelete:
		return ActionDelete, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// EventOrigin records which path produced an event. It never changes how the
// event is merged; it only labels logs and metrics.
type EventOrigin string

const (
	OriginLocal EventOrigin = "local"
	OriginPush  EventOrigin = "push"
)

// ChangeEvent is a typed create/update/delete notification for one entity.
type ChangeEvent[T any] struct {
	Entity EntityKind  `json:"entity"`
	Action Action      `json:"action"`
	Data   T           `json:"data"`
	Origin EventOrigin `json:"-"`
}
