package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// AMQPChannel hands a notice off to the external delivery workers through
// RabbitMQ. The email and WhatsApp providers consume their own queues; this
// process only publishes and records the outcome of the publish.
type AMQPChannel struct {
	name       string
	exchange   string
	routingKey string
	ch         *amqp.Channel
}

// NewEmailChannel publishes to the email delivery queue.
func NewEmailChannel(ch *amqp.Channel, exchange string) *AMQPChannel {
	return &AMQPChannel{name: "email", exchange: exchange, routingKey: "notify.email", ch: ch}
}

// NewWhatsAppChannel publishes to the WhatsApp delivery queue.
func NewWhatsAppChannel(ch *amqp.Channel, exchange string) *AMQPChannel {
	return &AMQPChannel{name: "whatsapp", exchange: exchange, routingKey: "notify.whatsapp", ch: ch}
}

func (c *AMQPChannel) Name() string { return c.name }

func (c *AMQPChannel) Send(n Notice) error {
	if c.ch == nil {
		return errors.New("amqp channel not connected")
	}
	if c.name == "email" && n.Recipient.Email == "" {
		return errors.New("recipient has no email address")
	}
	if c.name == "whatsapp" && n.Recipient.Phone == "" {
		return errors.New("recipient has no phone number")
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notice serialization error: %w", err)
	}

	return c.ch.Publish(
		c.exchange,
		c.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Headers: amqp.Table{
				"order_id":   int64(n.OrderID),
				"order_code": n.OrderCode,
				"trigger":    n.Trigger,
			},
		},
	)
}

// Exchange is the topic exchange notification messages are published to.
const Exchange = "stepkart.notifications"

// SetupExchange declares the exchange on the given connection and returns a
// publishing channel.
func SetupExchange(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}
	return ch, nil
}
