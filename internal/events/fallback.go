package events

import (
	"context"

	"mediabot/internal/providers"
)

type FallbackPublisher struct {
	logger providers.Logger
}

func (p *FallbackPublisher) Publish(_ context.Context, key string, _ Envelope) error {
	p.logger.Debugf(providers.TypeApp, "Events disabled, skipped %s", key)
	return nil
}

func (p *FallbackPublisher) Close() error {
	return nil
}

func NewFallback(logger providers.Logger) Publisher {
	return &FallbackPublisher{logger: logger}
}
