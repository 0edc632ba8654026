package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"messenger-api/config/logger"
)

// Worker consumes OTP mail jobs and hands them to a Sender.
type Worker struct {
	Sender Sender
	From   string
	Log    *logger.AppLogger
	now    func() time.Time
}

func NewWorker(sender Sender, from string, log *logger.AppLogger) *Worker {
	return &Worker{Sender: sender, From: from, Log: log, now: time.Now}
}

func (w *Worker) Run(ctx context.Context, url, queue string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open amqp channel: %w", err)
	}
	defer ch.Close()

	if err := declareQueue(ch, queue); err != nil {
		return err
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	w.Log.Http.Info.Info().Str("queue", queue).Msg("Mail worker started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.Handle(ctx, delivery)
		}
	}
}

// Handle acks delivered mail, drops malformed or expired jobs and requeues
// a failed send once.
func (w *Worker) Handle(ctx context.Context, delivery amqp.Delivery) {
	var job OtpMail
	if err := json.Unmarshal(delivery.Body, &job); err != nil || job.Email == "" {
		w.Log.Http.Warning.Warn().Err(err).Msg("Dropping malformed mail job")
		_ = delivery.Nack(false, false)
		return
	}

	now := w.now()
	if now.After(job.ExpiresAt) {
		w.Log.Http.Trace.Trace().Str("email", job.Email).Msg("Dropping expired mail job")
		_ = delivery.Ack(false)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := w.Sender.Send(sendCtx, job.Email, BuildOtpMessage(w.From, job, now)); err != nil {
		w.Log.Http.Error.Error().Err(err).Str("email", job.Email).Bool("redelivered", delivery.Redelivered).
			Msg("Failed to send OTP mail")
		_ = delivery.Nack(false, !delivery.Redelivered)
		return
	}

	w.Log.Http.Info.Info().Str("email", job.Email).Msg("OTP mail sent")
	_ = delivery.Ack(false)
}
