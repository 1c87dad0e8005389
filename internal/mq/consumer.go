package mq

import (
	"context"
	"errors"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/common"
)

// MessageHandler processes one delivery body.
type MessageHandler func(ctx context.Context, body []byte) error

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	topo    Topology
	handler MessageHandler
	log     *zap.Logger
}

// NewConsumer dials url, declares the topology and limits the channel to one
// unacknowledged delivery at a time.
func NewConsumer(url string, topo Topology, handler MessageHandler, logger *zap.Logger) (*Consumer, error) {
	logger = common.OrNop(logger)
	if handler == nil {
		return nil, eris.New("mq: consumer handler not set")
	}

	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, eris.Wrap(err, "mq: open channel")
	}
	if err := Declare(ch, topo); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, eris.Wrap(err, "mq: set qos")
	}

	logger.Info("mq.consumer.ready",
		zap.String("exchange", topo.Exchange),
		zap.String("queue", topo.Queue),
		zap.String("routing_key", topo.RoutingKey))

	return &Consumer{conn: conn, channel: ch, topo: topo, handler: handler, log: logger}, nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Run consumes until ctx is canceled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx,
		c.topo.Queue,
		"receipts-worker",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return eris.Wrap(err, "mq: register consumer")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return eris.New("mq: delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// handle guarantees every delivery is acked or nacked. Invalid payloads are
// dead-lettered straight away; other failures are requeued once.
func (c *Consumer) handle(ctx context.Context, d amqp091.Delivery) {
	log := c.log.With(
		zap.String("queue", c.topo.Queue),
		zap.String("amqp_message_id", d.MessageId),
		zap.Uint64("delivery_tag", d.DeliveryTag))

	defer func() {
		if r := recover(); r != nil {
			log.Error("mq.handler.panic", zap.Any("panic", r))
			c.nack(log, d, !d.Redelivered)
		}
	}()

	err := c.handler(ctx, d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("mq.ack.failed", zap.Error(ackErr))
		}
	case errors.Is(err, common.ErrInvalidInput):
		log.Warn("mq.message.rejected", zap.Error(err))
		c.nack(log, d, false)
	default:
		log.Error("mq.handler.failed", zap.Bool("redelivered", d.Redelivered), zap.Error(err))
		c.nack(log, d, !d.Redelivered)
	}
}

func (c *Consumer) nack(log *zap.Logger, d amqp091.Delivery, requeue bool) {
	if err := d.Nack(false, requeue); err != nil {
		log.Error("mq.nack.failed", zap.Error(err))
	}
}
