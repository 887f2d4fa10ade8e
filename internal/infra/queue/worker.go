package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/assistant-dashboard/internal/infra/http/middleware"
	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

var errInvalidPayload = errors.New("invalid follow-up payload")

// FollowUpSender delivers a follow-up to the lead (SMTP in production).
type FollowUpSender interface {
	SendFollowUp(to, name, subject, content string) error
}

// Consumer is the part of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	Sender  FollowUpSender
	Logger  *zap.Logger
}

func NewWorker(ch Consumer, sender FollowUpSender, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{Channel: ch, Sender: sender, Logger: logger}
}

// Start consumes queueName with manual acks until ctx is done or the
// delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer on %s: %w", queueName, err)
	}

	w.Logger.Info("follow-up worker waiting", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("follow-up worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.Logger.Warn("delivery channel closed")
				return nil
			}
			w.handle(d)
		}
	}
}

func (w *Worker) handle(d amqp.Delivery) {
	var payload usecase.FollowUpPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		w.Logger.Error("malformed follow-up, dead-lettering", zap.Error(err))
		middleware.RecordFollowUp("malformed")
		d.Nack(false, false)
		return
	}

	log := w.Logger.With(zap.String("follow_up_id", payload.ID), zap.String("lead_id", payload.LeadID))

	if err := w.process(payload); err != nil {
		log.Error("follow-up delivery failed, dead-lettering", zap.Error(err))
		middleware.RecordFollowUp("failed")
		d.Nack(false, false)
		return
	}

	log.Info("follow-up delivered", zap.String("origin", payload.Origin))
	middleware.RecordFollowUp("sent")
	d.Ack(false)
}

func (w *Worker) process(payload usecase.FollowUpPayload) error {
	if strings.TrimSpace(payload.Email) == "" || strings.TrimSpace(payload.Content) == "" {
		return errInvalidPayload
	}
	return w.Sender.SendFollowUp(payload.Email, payload.Name, payload.Subject, payload.Content)
}
