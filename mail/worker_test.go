package mail

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"messenger-api/config/logger"
)

type fakeAcknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

type fakeSender struct {
	to      []string
	message []byte
	err     error
}

func (f *fakeSender) Send(ctx context.Context, to string, message []byte) error {
	f.to = append(f.to, to)
	f.message = message
	return f.err
}

var fixedNow = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

func newTestWorker(sender Sender) *Worker {
	w := NewWorker(sender, "noreply@messenger.test", logger.NewNopLogger())
	w.now = func() time.Time { return fixedNow }
	return w
}

func delivery(t *testing.T, ack amqp.Acknowledger, job any, redelivered bool) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: redelivered}
}

func TestWorkerSendsAndAcks(t *testing.T) {
	sender := &fakeSender{}
	ack := &fakeAcknowledger{}
	job := OtpMail{Email: "a@x.com", Code: "123456", ExpiresAt: fixedNow.Add(5 * time.Minute)}

	newTestWorker(sender).Handle(context.Background(), delivery(t, ack, job, false))

	assert.Equal(t, []string{"a@x.com"}, sender.to)
	assert.Contains(t, string(sender.message), "123456")
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestWorkerRequeuesFailedSendOnce(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	job := OtpMail{Email: "a@x.com", Code: "123456", ExpiresAt: fixedNow.Add(5 * time.Minute)}

	first := &fakeAcknowledger{}
	newTestWorker(sender).Handle(context.Background(), delivery(t, first, job, false))
	assert.Equal(t, 1, first.nacked)
	assert.True(t, first.requeue)

	second := &fakeAcknowledger{}
	newTestWorker(sender).Handle(context.Background(), delivery(t, second, job, true))
	assert.Equal(t, 1, second.nacked)
	assert.False(t, second.requeue)
}

func TestWorkerDropsExpiredAndMalformedJobs(t *testing.T) {
	sender := &fakeSender{}

	expired := &fakeAcknowledger{}
	job := OtpMail{Email: "a@x.com", Code: "123456", ExpiresAt: fixedNow.Add(-time.Second)}
	newTestWorker(sender).Handle(context.Background(), delivery(t, expired, job, false))
	assert.Equal(t, 1, expired.acked)

	malformed := &fakeAcknowledger{}
	newTestWorker(sender).Handle(context.Background(), amqp.Delivery{Acknowledger: malformed, Body: []byte("{")})
	assert.Equal(t, 1, malformed.nacked)
	assert.False(t, malformed.requeue)

	assert.Empty(t, sender.to)
}

func TestBuildOtpMessage(t *testing.T) {
	job := OtpMail{Email: "a@x.com", Code: "654321", ExpiresAt: fixedNow.Add(5 * time.Minute)}
	message := string(BuildOtpMessage("noreply@messenger.test", job, fixedNow))

	assert.True(t, strings.HasPrefix(message, "From: noreply@messenger.test\r\n"))
	assert.Contains(t, message, "To: a@x.com\r\n")
	assert.Contains(t, message, "654321")
	assert.Contains(t, message, "expires in 5 minute(s)")
}
