package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
	"github.com/api-sage/cashflow-ledger/src/internal/usecase/engine"
	"github.com/streadway/amqp"
)

type consumeChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type MovementApplier interface {
	Apply(ctx context.Context, accountID string, req domain.MovementRequest) (engine.Result, error)
}

// MovementConsumer applies movement requests read from a queue. Requests that
// can never succeed are acked and dropped; transient failures are requeued.
type MovementConsumer struct {
	channel consumeChannel
	queue   string
	applier MovementApplier
}

func NewMovementConsumer(channel consumeChannel, queue string, applier MovementApplier) *MovementConsumer {
	return &MovementConsumer{channel: channel, queue: queue, applier: applier}
}

// Run consumes until ctx is cancelled or the delivery channel closes.
func (c *MovementConsumer) Run(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("register movement consumer: %w", err)
	}

	logger.Info("movement consumer started", logger.Fields{"queue": c.queue})
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("movement delivery channel closed")
			}
			c.Handle(ctx, d)
		}
	}
}

func (c *MovementConsumer) Handle(ctx context.Context, d amqp.Delivery) {
	var msg MovementMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		logger.Error("movement message malformed, dropping", err, logger.Fields{"deliveryTag": d.DeliveryTag})
		_ = d.Ack(false)
		return
	}

	req := msg.ToDomain()
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = strings.TrimSpace(d.MessageId)
	}

	result, err := c.applier.Apply(ctx, msg.AccountID, req)
	switch {
	case err == nil:
		logger.Info("queued movement applied", logger.Fields{
			"accountId":     msg.AccountID,
			"type":          result.Transaction.Type,
			"transactionId": result.Transaction.ID,
			"replayed":      result.Replayed,
		})
		_ = d.Ack(false)
	case domain.IsPermanent(err):
		logger.Error("queued movement rejected", err, logger.Fields{"accountId": msg.AccountID, "type": msg.Type})
		_ = d.Ack(false)
	default:
		logger.Error("queued movement failed, requeueing", err, logger.Fields{"accountId": msg.AccountID, "type": msg.Type})
		_ = d.Nack(false, true)
	}
}
