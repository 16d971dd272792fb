package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	brokerDialTimeout  = 10 * time.Second
	brokerHeartbeat    = 10 * time.Second
	maxReconnectDelay  = 30 * time.Second
	firstReconnectWait = time.Second
)

// dialBroker connects to url, giving up at whichever comes first of ctx's
// deadline and brokerDialTimeout.
func dialBroker(ctx context.Context, url string) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := brokerDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return nil, context.DeadlineExceeded
		}
		timeout = min(timeout, left)
	}

	return amqp.DialConfig(url, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: brokerHeartbeat,
		Locale:    "en_US",
	})
}

// AMQPPublisher sends each notification as a persistent text message to a durable
// queue named after the topic, through the default exchange. The connection is
// opened lazily and re-dialled after a failure.
type AMQPPublisher struct {
	url string

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{
		url: url,
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, topic, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}

	if !p.declared[topic] {
		_, err = ch.QueueDeclare(topic, true, false, false, false, nil)
		if err != nil {
			p.reset()
			return fmt.Errorf("queue declare %s: %w", topic, err)
		}

		p.declared[topic] = true
	}

	pub := amqp.Publishing{
		ContentType:  "text/plain",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         []byte(message),
	}

	err = ch.PublishWithContext(ctx, "", topic, false, false, pub)
	if err != nil {
		p.reset()
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.reset()
}

func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := dialBroker(ctx, p.url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}

		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		p.reset()
		return nil, fmt.Errorf("channel open: %w", err)
	}

	p.ch = ch
	p.declared = make(map[string]bool)

	return ch, nil
}

func (p *AMQPPublisher) reset() error {
	var errs []error

	if p.ch != nil && !p.ch.IsClosed() {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}

	p.ch = nil
	p.conn = nil

	return errors.Join(errs...)
}

type Message struct {
	Topic     string
	Body      string
	Timestamp time.Time
}

type HandlerFunc func(ctx context.Context, msg Message) error

// Consumer drains a notification queue and hands each message to a handler.
// Messages the handler rejects are dropped without requeueing.
type Consumer struct {
	url     string
	queue   string
	handler HandlerFunc
	logger  *slog.Logger
}

func NewConsumer(url, queue string, handler HandlerFunc, logger *slog.Logger) *Consumer {
	return &Consumer{
		url:     url,
		queue:   queue,
		handler: handler,
		logger:  logger,
	}
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff
// whenever the broker connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = firstReconnectWait
	b.MaxInterval = maxReconnectDelay

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return struct{}{}, nil
		}

		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn("consumer disconnected, reconnecting", "queue", c.queue, "retry_in", wait, "error", err)
		}),
	)
	if ctx.Err() != nil {
		return nil
	}

	return err
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := dialBroker(ctx, c.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	err = ch.Qos(50, 0, false)
	if err != nil {
		c.logger.Warn("failed to set consumer prefetch", "error", err)
	}

	_, err = ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	c.logger.Info("consuming notifications", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}

			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	msg := Message{
		Topic:     c.queue,
		Body:      string(d.Body),
		Timestamp: d.Timestamp,
	}

	err := c.handler(ctx, msg)
	if err != nil {
		c.logger.Error("failed to handle notification", "queue", c.queue, "error", err)
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}
