package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

// ConversationReloader rebuilds the board after a change.
type ConversationReloader interface {
	Execute(ctx context.Context) (AggregateResult, error)
}

type SendMessageUseCase struct {
	Backend MessageSender
	Reload  ConversationReloader
	Logger  *zap.Logger
}

func NewSendMessageUseCase(backend MessageSender, reload ConversationReloader, logger *zap.Logger) *SendMessageUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendMessageUseCase{Backend: backend, Reload: reload, Logger: logger}
}

// Execute sends once; a failure is returned to the user and never retried.
func (uc *SendMessageUseCase) Execute(ctx context.Context, input SendMessageInput) (entity.Message, error) {
	input.LeadID = strings.TrimSpace(input.LeadID)
	if errs := ValidateSendMessageInput(input); len(errs) > 0 {
		return entity.Message{}, validationFailure(errs)
	}

	sent, err := uc.Backend.SendMessage(ctx, input)
	if err != nil {
		return entity.Message{}, &TechnicalError{
			Code:    "SEND_FAILED",
			Message: "failed to send message",
			Err:     err,
		}
	}

	if uc.Reload != nil {
		if _, err := uc.Reload.Execute(ctx); err != nil {
			uc.Logger.Warn("message sent but conversations reload failed", zap.Error(err))
		}
	}

	return sent, nil
}
