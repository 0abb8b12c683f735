package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// Routing keys published on the course exchange.
const OrderCompleted = "order.completed"

// Publisher emits domain events for downstream consumers (the
// notification service, mostly). Publishing is best-effort: a dropped
// event never fails the purchase that produced it.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data interface{}) error
}

type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// AMQPPublisher publishes JSON envelopes to a RabbitMQ topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAMQPPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %v", err)
	}

	err = channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %v", err)
	}

	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, data interface{}) error {
	body, err := json.Marshal(envelope{Event: routingKey, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %v", err)
	}

	log.Printf("Publishing %s to exchange %s", routingKey, p.exchange)
	err = p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %v", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
