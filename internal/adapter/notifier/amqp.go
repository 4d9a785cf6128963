package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baedalgo/delivery/internal/core/domain"
)

// AMQPPublisher mirrors every order status change onto a RabbitMQ
// topic exchange for downstream consumers, under the same best-effort
// contract as the Slack sink.
type AMQPPublisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewAMQPPublisher(conn *amqp.Connection, exchange string) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{channel: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Name() string {
	return "amqp"
}

func (p *AMQPPublisher) Notify(ctx context.Context, msg domain.Notification) error {
	payload, err := json.Marshal(map[string]any{
		"event_type": "OrderStatusChanged",
		"order_id":   msg.OrderID,
		"user_id":    msg.UserID,
		"status":     msg.Status,
		"message":    msg.Text,
		"timestamp":  time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	routingKey := "order.status." + strings.ToLower(string(msg.Status))
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:    uuid.New().String(),
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("%w: amqp publish: %w", ErrDelivery, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.channel.Close()
}
