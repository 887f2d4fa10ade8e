package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

type fakeChannel struct {
	published  []amqp.Publishing
	keys       []string
	err        error
	deliveries chan amqp.Delivery
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.deliveries, nil
}

type ackRecorder struct {
	mu       sync.Mutex
	acks     []uint64
	nacks    []uint64
	requeued bool
	done     chan struct{}
}

func newAckRecorder() *ackRecorder {
	return &ackRecorder{done: make(chan struct{}, 16)}
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	a.acks = append(a.acks, tag)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	a.nacks = append(a.nacks, tag)
	a.requeued = a.requeued || requeue
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeSender) SendFollowUp(to, name, subject, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

func TestRabbitMQProducer_PublishFollowUp(t *testing.T) {
	ch := &fakeChannel{}
	payload := usecase.FollowUpPayload{ID: "f-1", LeadID: "9", Email: "sara@example.com", Content: "Hi"}

	require.NoError(t, NewProducer(ch).PublishFollowUp(context.Background(), payload))

	require.Len(t, ch.published, 1)
	assert.Equal(t, []string{"ex.leads/k.followup"}, ch.keys)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.Equal(t, "f-1", ch.published[0].MessageId)

	var decoded usecase.FollowUpPayload
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	assert.Equal(t, payload, decoded)

	ch.err = errors.New("channel closed")
	assert.Error(t, NewProducer(ch).PublishFollowUp(context.Background(), payload))
}

func TestWorker_AcksAndDeadLetters(t *testing.T) {
	defer goleak.VerifyNone(t)

	good, _ := json.Marshal(usecase.FollowUpPayload{ID: "a", Email: "ok@example.com", Content: "Hello"})
	missingEmail, _ := json.Marshal(usecase.FollowUpPayload{ID: "b", Content: "Hello"})

	acker := newAckRecorder()
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery, 3)}
	ch.deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: good}
	ch.deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: []byte("{not json")}
	ch.deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 3, Body: missingEmail}

	sender := &fakeSender{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWorker(ch, sender, nil).Start(ctx, QueueName) }()

	for i := 0; i < 3; i++ {
		select {
		case <-acker.done:
		case <-time.After(time.Second):
			t.Fatal("worker did not settle every delivery")
		}
	}
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []uint64{1}, acker.acks)
	assert.Equal(t, []uint64{2, 3}, acker.nacks)
	assert.False(t, acker.requeued)
	assert.Equal(t, []string{"ok@example.com"}, sender.sent)
}

func TestWorker_SenderFailureIsDeadLettered(t *testing.T) {
	defer goleak.VerifyNone(t)

	body, _ := json.Marshal(usecase.FollowUpPayload{ID: "a", Email: "ok@example.com", Content: "Hello"})
	acker := newAckRecorder()
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery, 1)}
	ch.deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 7, Body: body}
	close(ch.deliveries)

	err := NewWorker(ch, &fakeSender{err: errors.New("smtp down")}, nil).Start(context.Background(), QueueName)

	require.NoError(t, err)
	assert.Equal(t, []uint64{7}, acker.nacks)
}

func TestWorker_ConsumeError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("no channel")}
	err := NewWorker(ch, &fakeSender{}, nil).Start(context.Background(), QueueName)
	assert.Error(t, err)
}
