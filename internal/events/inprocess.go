package events

import (
	"context"

	"github.com/mhsenam/rentmio/internal/utils"
)

// InProcessPublisher delivers events synchronously to a handler. It is
// used when no broker is configured.
type InProcessPublisher struct {
	handler Handler
}

func NewInProcessPublisher(h Handler) *InProcessPublisher {
	return &InProcessPublisher{handler: h}
}

// Publish never fails the write that triggered it; handler errors are logged.
func (p *InProcessPublisher) Publish(ctx context.Context, ev PropertyEvent) error {
	if err := p.handler.Handle(ctx, ev); err != nil {
		utils.Logger.WithError(err).WithField("property_id", ev.PropertyID).
			Warnf("in-process %s event handler failed", ev.Action)
	}
	return nil
}

func (p *InProcessPublisher) Close() error { return nil }
