package services

import (
	"context"

	"github.com/google/uuid"

	"mediabot/internal/events"
	"mediabot/internal/providers"
)

type correlationKey struct{}

// WithCorrelationID tags ctx with an id shared by every log line and event of
// one interaction. An empty id generates a fresh one.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// publish is fire and forget: a broker failure never fails the user action.
func publish(ctx context.Context, p events.Publisher, logger providers.Logger, key string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, key, events.NewEnvelope(key, CorrelationID(ctx), data)); err != nil {
		logger.Warnf(providers.TypeApp, "Publish %s failed: %s", key, err)
	}
}
