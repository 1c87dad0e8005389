// Package mq consumes inbound emails from RabbitMQ.
package mq

import (
	"github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"
)

// Topology names the exchange, queue and binding the consumer uses. Failed
// deliveries are dead-lettered to Exchange+".dlx" and land in Queue+".dlq".
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
}

func (t Topology) dlxName() string { return t.Exchange + ".dlx" }

func (t Topology) dlqName() string { return t.Queue + ".dlq" }

// NewConnection creates a new RabbitMQ connection.
func NewConnection(url string) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, eris.Wrap(err, "mq: connect")
	}
	return conn, nil
}

// Declare sets up the topic exchange, the work queue and its dead-letter pair.
func Declare(ch *amqp091.Channel, t Topology) error {
	for _, name := range []string{t.Exchange, t.dlxName()} {
		if err := ch.ExchangeDeclare(
			name,
			"topic",
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		); err != nil {
			return eris.Wrapf(err, "mq: declare exchange %s", name)
		}
	}

	if _, err := ch.QueueDeclare(t.dlqName(), true, false, false, false, nil); err != nil {
		return eris.Wrap(err, "mq: declare dlq")
	}
	if err := ch.QueueBind(t.dlqName(), t.RoutingKey, t.dlxName(), false, nil); err != nil {
		return eris.Wrap(err, "mq: bind dlq")
	}

	args := amqp091.Table{"x-dead-letter-exchange": t.dlxName()}
	if _, err := ch.QueueDeclare(t.Queue, true, false, false, false, args); err != nil {
		return eris.Wrap(err, "mq: declare queue")
	}
	if err := ch.QueueBind(t.Queue, t.RoutingKey, t.Exchange, false, nil); err != nil {
		return eris.Wrap(err, "mq: bind queue")
	}
	return nil
}
