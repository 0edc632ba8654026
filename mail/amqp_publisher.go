package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the part of *amqp.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type dialFunc func() (amqpChannel, io.Closer, error)

// AmqpPublisher publishes on a single channel and re-dials the broker once
// that channel has been closed.
type AmqpPublisher struct {
	mu    sync.Mutex
	dial  dialFunc
	conn  io.Closer
	ch    amqpChannel
	queue string
}

func NewAmqpPublisher(url, queue string) (*AmqpPublisher, error) {
	if url == "" {
		return nil, errors.New("amqp url is required")
	}
	return newAmqpPublisher(queue, func() (amqpChannel, io.Closer, error) {
		return dialQueue(url, queue)
	})
}

func newAmqpPublisher(queue string, dial dialFunc) (*AmqpPublisher, error) {
	p := &AmqpPublisher{dial: dial, queue: queue}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func dialQueue(url, queue string) (amqpChannel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := declareQueue(ch, queue); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn, nil
}

func declareQueue(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return nil
}

// connect drops whatever is left of the previous connection and dials a new
// one. Callers hold mu.
func (p *AmqpPublisher) connect() error {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil

	ch, conn, err := p.dial()
	if err != nil {
		return err
	}
	p.ch, p.conn = ch, conn
	return nil
}

func (p *AmqpPublisher) PublishOtp(ctx context.Context, mail OtpMail) error {
	body, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("marshal otp mail: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Expiration:   expiration(mail.ExpiresAt),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(); err != nil {
			return fmt.Errorf("reconnect amqp: %w", err)
		}
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	if err == nil || !p.ch.IsClosed() {
		return err
	}
	// the channel died under the publish
	if err := p.connect(); err != nil {
		return fmt.Errorf("reconnect amqp: %w", err)
	}
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
}

func (p *AmqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// expiration drops undelivered jobs once the code itself is useless.
func expiration(expiresAt time.Time) string {
	ms := time.Until(expiresAt).Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return fmt.Sprintf("%d", ms)
}
