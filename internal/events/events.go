package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	DefaultQueue = "properties_queue"
)

var ErrMalformedEvent = errors.New("malformed property event")

// PropertyEvent announces a property write to the search side.
type PropertyEvent struct {
	Action     Action    `json:"action"`
	PropertyID uuid.UUID `json:"property_id"`
}

type Publisher interface {
	Publish(ctx context.Context, ev PropertyEvent) error
	Close() error
}

type Handler interface {
	Handle(ctx context.Context, ev PropertyEvent) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev PropertyEvent) error

func (f HandlerFunc) Handle(ctx context.Context, ev PropertyEvent) error { return f(ctx, ev) }

func decodeEvent(body []byte) (PropertyEvent, error) {
	var ev PropertyEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.PropertyID == uuid.Nil {
		return ev, fmt.Errorf("%w: empty property_id", ErrMalformedEvent)
	}
	switch ev.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
		return ev, nil
	default:
		return ev, fmt.Errorf("%w: unknown action %q", ErrMalformedEvent, ev.Action)
	}
}
