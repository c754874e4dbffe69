// Package notify publishes order status changes to Kafka.
package notify

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/cafefusion/backend/internal/domain/order"
)

// Writer is the subset of *kafka.Writer used by Publisher.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ order.Notifier = (*Publisher)(nil)

// Publisher sends one message per committed status change, keyed by order
// id so changes of one order stay in one partition.
type Publisher struct {
	w          Writer
	propagator propagation.TextMapPropagator
}

// NewWriter creates a synchronous writer for a comma-separated broker list.
func NewWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// NewPublisher wraps w. Trace context is injected into message headers.
func NewPublisher(w Writer) *Publisher {
	return &Publisher{w: w, propagator: otel.GetTextMapPropagator()}
}

// OrderStatusChanged implements order.Notifier.
func (p *Publisher) OrderStatusChanged(ctx context.Context, c order.StatusChange) error {
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(c.OrderID, 10)),
		Value: encodeStatusChange(c),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	p.propagator.Inject(ctx, (*headerCarrier)(&msg.Headers))

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "publish status change of order %d", c.OrderID)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

func encodeStatusChange(c order.StatusChange) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("orderId")
	e.Int64(c.OrderID)
	e.FieldStart("ownerId")
	e.Int64(c.OwnerID)
	e.FieldStart("oldStatus")
	e.Str(string(c.From))
	e.FieldStart("newStatus")
	e.Str(string(c.To))
	e.FieldStart("changedAt")
	e.Str(c.ChangedAt.UTC().Format(time.RFC3339Nano))
	e.FieldStart("override")
	e.Bool(c.Override)
	e.ObjEnd()
	return e.Bytes()
}

// headerCarrier adapts kafka headers to propagation.TextMapCarrier.
type headerCarrier []kafka.Header

func (h *headerCarrier) Get(key string) string {
	for _, hdr := range *h {
		if hdr.Key == key {
			return string(hdr.Value)
		}
	}
	return ""
}

func (h *headerCarrier) Set(key, value string) {
	for i, hdr := range *h {
		if hdr.Key == key {
			(*h)[i].Value = []byte(value)
			return
		}
	}
	*h = append(*h, kafka.Header{Key: key, Value: []byte(value)})
}

func (h *headerCarrier) Keys() []string {
	keys := make([]string, len(*h))
	for i, hdr := range *h {
		keys[i] = hdr.Key
	}
	return keys
}
