// Package events publishes domain events (requests, issues, identity and
// mode changes) to a RabbitMQ topic exchange.
package events

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"

	"mediabot/internal/providers"
	"mediabot/internal/structures"
)

type Publisher interface {
	Publish(ctx context.Context, key string, msg Envelope) error
	Close() error
}

type rmqPublisher struct {
	conn     *amqp091.Connection
	exchange string
	logger   providers.Logger
}

// NewPublisher connects to RabbitMQ when events are enabled and falls back to
// a logging no-op publisher otherwise or when the broker is unreachable.
func NewPublisher(conf *structures.Config, logger providers.Logger) Publisher {
	if !conf.Events.Enabled {
		return NewFallback(logger)
	}
	p, err := dial(conf.Events.URL, conf.Events.Exchange, logger)
	if err != nil {
		logger.Errorf(providers.TypeApp, "Event broker unavailable, events disabled: %s", err)
		return NewFallback(logger)
	}
	logger.Infof(providers.TypeApp, "Publishing events to exchange %s", conf.Events.Exchange)
	return p
}

func dial(url, exchange string, logger providers.Logger) (*rmqPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &rmqPublisher{conn: conn, exchange: exchange, logger: logger}, nil
}

func (r *rmqPublisher) Publish(ctx context.Context, key string, msg Envelope) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx, r.exchange, key, false, false,
		amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Persistent,
			MessageId:     msg.Meta.ID,
			CorrelationId: msg.Meta.CorrelationID,
			Timestamp:     time.Now(),
			Body:          body,
		},
	)
	if err == nil {
		r.logger.Debugf(providers.TypeApp, "Published %s to %s", key, r.exchange)
	}
	return err
}

func (r *rmqPublisher) Close() error {
	return r.conn.Close()
}
