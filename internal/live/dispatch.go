package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
)

var (
	ErrMalformedEvent = errors.New("malformed change event")
	ErrUnknownEntity  = errors.New("unknown entity kind")
	ErrUnknownAction  = errors.New("unknown action")
)

// Handler receives decoded change events, one method per entity kind.
type Handler interface {
	HandleRoute(event models.ChangeEvent[models.Route])
	HandleLocation(event models.ChangeEvent[models.Location])
	HandleCoordinates(event models.ChangeEvent[models.Coordinates])
}

type envelope struct {
	Entity string          `json:"entity"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Dispatch decodes msg and hands it to the matching Handler method. When the
// payload carries no entity tag, the topic decides.
func Dispatch(h Handler, msg Message) error {
	var env envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	tag := env.Entity
	if strings.TrimSpace(tag) == "" {
		tag = entityForTopic(msg.Topic)
	}
	kind, err := models.ParseEntityKind(tag)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownEntity, err)
	}
	action, err := models.ParseAction(env.Action)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownAction, err)
	}

	switch kind {
	case models.EntityRoute:
		data, err := decodeData[models.Route](env.Data)
		if err != nil {
			return err
		}
		h.HandleRoute(models.ChangeEvent[models.Route]{Entity: kind, Action: action, Data: data, Origin: models.OriginPush})
	case models.EntityLocation:
		data, err := decodeData[models.Location](env.Data)
		if err != nil {
			return err
		}
		h.HandleLocation(models.ChangeEvent[models.Location]{Entity: kind, Action: action, Data: data, Origin: models.OriginPush})
	case models.EntityCoordinates:
		data, err := decodeData[models.Coordinates](env.Data)
		if err != nil {
			return err
		}
		h.HandleCoordinates(models.ChangeEvent[models.Coordinates]{Entity: kind, Action: action, Data: data, Origin: models.OriginPush})
	}
	return nil
}

// decodeData requires a JSON object carrying an id.
func decodeData[T models.Identifiable](raw json.RawMessage) (T, error) {
	var data T
	if len(raw) == 0 || string(raw) == "null" {
		return data, fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if _, ok := data.EntityID(); !ok {
		return data, fmt.Errorf("%w: data has no id", ErrMalformedEvent)
	}
	return data, nil
}

func entityForTopic(topic string) string {
	switch topic {
	case constants.TopicRoutes:
		return string(models.EntityRoute)
	case constants.TopicLocations:
		return string(models.EntityLocation)
	case constants.TopicCoordinates:
		return string(models.EntityCoordinates)
	}
	return ""
}

// dropReason is the metric label for a dispatch failure.
func dropReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownEntity):
		return "unknown_entity"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	default:
		return "malformed"
	}
}
