package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// AMQPSink publishes activities to a durable topic exchange with routing key
// "order.<activity_type>", so consumers can bind to e.g. "order.invoice_paid" or "order.#".
type AMQPSink struct {
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	exchange string
}

// DialAMQP connects to url and declares exchange.
func DialAMQP(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &AMQPSink{conn: conn, ch: ch, exchange: exchange}, nil
}

func (s *AMQPSink) Name() string { return "amqp" }

// RoutingKey returns the topic routing key for activityType.
func RoutingKey(activityType string) string {
	return "order." + activityType
}

func (s *AMQPSink) Write(ctx context.Context, a Activity) error {
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.ch.PublishWithContext(ctx,
		s.exchange,         // exchange
		RoutingKey(a.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			DeliveryMode: amqp091.Persistent,
			ContentType:  "application/json",
			MessageId:    a.EventID.String(),
			Body:         body,
			Timestamp:    time.Now(),
		})
}

func (s *AMQPSink) Close() error {
	if err := s.ch.Close(); err != nil {
		s.conn.Close()
		return err
	}
	return s.conn.Close()
}
