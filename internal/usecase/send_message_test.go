package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

type countingReloader struct {
	calls int
	err   error
}

func (r *countingReloader) Execute(ctx context.Context) (AggregateResult, error) {
	r.calls++
	return AggregateResult{}, r.err
}

func TestSendMessageUseCase_Execute(t *testing.T) {
	input := SendMessageInput{LeadID: " 5 ", Channel: entity.ChannelSMS, Content: "See you Tuesday"}

	t.Run("success reloads conversations", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("SendMessage", mock.Anything, mock.MatchedBy(func(in SendMessageInput) bool {
			return in.LeadID == "5"
		})).Return(entity.Message{ID: "m1", LeadID: "5", Channel: entity.ChannelSMS, Direction: entity.DirectionOutbound}, nil).Once()
		reload := &countingReloader{}

		sent, err := NewSendMessageUseCase(backend, reload, nil).Execute(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, "m1", sent.ID)
		assert.Equal(t, 1, reload.calls)
		backend.AssertExpectations(t)
	})

	t.Run("failure is surfaced and not retried", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("SendMessage", mock.Anything, mock.Anything).Return(entity.Message{}, errors.New("gateway timeout")).Once()
		reload := &countingReloader{}

		_, err := NewSendMessageUseCase(backend, reload, nil).Execute(context.Background(), input)

		require.Error(t, err)
		assert.True(t, IsTechnicalError(err))
		assert.Zero(t, reload.calls)
		backend.AssertNumberOfCalls(t, "SendMessage", 1)
	})

	t.Run("reload failure keeps the send", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("SendMessage", mock.Anything, mock.Anything).Return(entity.Message{ID: "m2"}, nil)

		sent, err := NewSendMessageUseCase(backend, &countingReloader{err: ErrFetchTimeout}, nil).Execute(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, "m2", sent.ID)
	})

	t.Run("invalid input", func(t *testing.T) {
		backend := new(MockBackend)
		_, err := NewSendMessageUseCase(backend, nil, nil).Execute(context.Background(), SendMessageInput{Channel: "pigeon"})

		require.Error(t, err)
		assert.True(t, IsDomainError(err))
		backend.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
	})
}
