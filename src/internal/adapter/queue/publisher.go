package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/events"
	"github.com/streadway/amqp"
)

type publishChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EventPublisher forwards committed events to a durable queue.
type EventPublisher struct {
	channel publishChannel
	queue   string
}

func NewEventPublisher(channel publishChannel, queue string) *EventPublisher {
	return &EventPublisher{channel: channel, queue: queue}
}

func (p *EventPublisher) Publish(_ context.Context, event events.Event) error {
	body, err := json.Marshal(newEventMessage(event))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.channel.Publish(
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.Transaction.ID + ":" + string(event.Type),
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	return nil
}
