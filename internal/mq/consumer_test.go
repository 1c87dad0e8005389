package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/common"
)

type ackRecorder struct {
	acks    int
	nacks   int
	requeue []bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acks++; return nil }

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacks++
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(uint64, bool) error { return nil }

func newTestConsumer(h MessageHandler) *Consumer {
	return &Consumer{
		topo:    Topology{Exchange: "events", Queue: "q", RoutingKey: "email.received"},
		handler: h,
		log:     zap.NewNop(),
	}
}

func delivery(ack amqp091.Acknowledger, redelivered bool) amqp091.Delivery {
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: []byte(`{}`), Redelivered: redelivered}
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		panics      bool
		redelivered bool
		wantAcks    int
		wantRequeue []bool
	}{
		{name: "success acks", wantAcks: 1},
		{name: "invalid payload dead-letters", err: eris.Wrap(common.ErrInvalidInput, "decode"), wantRequeue: []bool{false}},
		{name: "first failure requeues", err: errors.New("db down"), wantRequeue: []bool{true}},
		{name: "second failure dead-letters", err: errors.New("db down"), redelivered: true, wantRequeue: []bool{false}},
		{name: "panic requeues", panics: true, wantRequeue: []bool{true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestConsumer(func(context.Context, []byte) error {
				if tc.panics {
					panic("boom")
				}
				return tc.err
			})
			ack := &ackRecorder{}

			c.handle(context.Background(), delivery(ack, tc.redelivered))

			assert.Equal(t, tc.wantAcks, ack.acks)
			assert.Equal(t, len(tc.wantRequeue), ack.nacks)
			if len(tc.wantRequeue) > 0 {
				assert.Equal(t, tc.wantRequeue, ack.requeue)
			}
		})
	}
}

func TestTopologyNames(t *testing.T) {
	topo := Topology{Exchange: "events", Queue: "email.received.receipts.q"}
	assert.Equal(t, "events.dlx", topo.dlxName())
	assert.Equal(t, "email.received.receipts.q.dlq", topo.dlqName())
}
