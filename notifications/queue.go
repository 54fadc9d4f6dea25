package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/linesmerrill/dinebuddies-api/models"
)

type publisher interface {
	PublishJSON(ctx context.Context, key string, v interface{}) error
}

// Publisher publishes JSON messages to a topic exchange
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewPublisher dials url and declares the exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// PublishJSON publishes v under the routing key
func (p *Publisher) PublishJSON(ctx context.Context, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

// Close closes the channel and the connection
func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// QueueSink publishes every notification as a domain event, routed by
// notification type
type QueueSink struct {
	pub publisher
}

// NewQueueSink creates a QueueSink over a publisher
func NewQueueSink(pub *Publisher) *QueueSink {
	return &QueueSink{pub: pub}
}

// Name of the sink
func (s *QueueSink) Name() string { return "queue" }

// Deliver publishes the notification under "notification.<type>"
func (s *QueueSink) Deliver(ctx context.Context, n models.Notification) error {
	return s.pub.PublishJSON(ctx, RoutingKey(n.Type), n)
}

// RoutingKey is the routing key a notification type is published under
func RoutingKey(t models.NotificationType) string {
	return "notification." + string(t)
}
