// Package publish sends extracted tweets to a RabbitMQ queue as JSON.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"tweet-corpus/src/tweets"
)

// AppID identifies messages produced by this tool.
const AppID = "tweetcorpus"

// Config holds RabbitMQ connection configuration.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Queue    string `yaml:"queue"`
	// Exchange is optional; when empty messages go through the default
	// exchange straight to Queue.
	Exchange string `yaml:"exchange"`
}

// Validate reports the first missing or invalid field.
func (c Config) Validate() error {
	switch {
	case c.Host == "":
		return errors.New("empty host")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.Queue == "":
		return errors.New("empty queue name")
	}
	return nil
}

// URL is the AMQP connection string for c.
func (c Config) URL() string {
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		Vhost:    "/",
	}
	return uri.String()
}

// Publisher owns one connection and channel bound to a durable queue.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	config  Config
	logger  *zap.Logger
}

// NewPublisher connects, declares the queue and, if configured, a direct
// exchange bound to it.
func NewPublisher(config Config, logger *zap.Logger) (*Publisher, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid RabbitMQ config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(config.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		config.Queue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if config.Exchange != "" {
		if err := ch.ExchangeDeclare(config.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare exchange: %w", err)
		}
		if err := ch.QueueBind(q.Name, q.Name, config.Exchange, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	return &Publisher{
		conn:    conn,
		channel: ch,
		queue:   q,
		config:  config,
		logger:  logger,
	}, nil
}

// Message builds the persistent JSON publishing for one tweet.
func Message(t *tweets.Tweet, runID string) (amqp.Publishing, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode tweet %d: %w", t.ID, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		AppId:        AppID,
		Type:         "tweet",
		Headers:      amqp.Table{"run_id": runID},
		Body:         body,
	}, nil
}

// Publish sends every record in order and returns how many were sent
// before the first failure.
func (p *Publisher) Publish(ctx context.Context, records []*tweets.Tweet, runID string) (int, error) {
	sent := 0
	for _, t := range records {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		msg, err := Message(t, runID)
		if err != nil {
			return sent, err
		}
		if err := p.channel.PublishWithContext(ctx, p.config.Exchange, p.queue.Name, false, false, msg); err != nil {
			return sent, fmt.Errorf("failed to publish tweet %d: %w", t.ID, err)
		}
		sent++
	}
	p.logger.Info("published tweets",
		zap.String("queue", p.queue.Name),
		zap.String("exchange", p.config.Exchange),
		zap.Int("count", sent))
	return sent, nil
}

// QueueInfo returns information about the queue.
func (p *Publisher) QueueInfo() (map[string]any, error) {
	q, err := p.channel.QueueDeclarePassive(p.queue.Name, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue: %w", err)
	}
	return map[string]any{
		"name":      q.Name,
		"messages":  q.Messages,
		"consumers": q.Consumers,
	}, nil
}

// Close closes the RabbitMQ connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
