package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

// LoadConversationsUseCase fetches messages and leads side by side and
// rebuilds the board from scratch.
type LoadConversationsUseCase struct {
	Messages MessageFetcher
	Leads    LeadFetcher
	Board    *ConversationBoard
	Timeout  time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewLoadConversationsUseCase(messages MessageFetcher, leads LeadFetcher, board *ConversationBoard, timeout time.Duration, logger *zap.Logger) *LoadConversationsUseCase {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoadConversationsUseCase{
		Messages: messages,
		Leads:    leads,
		Board:    board,
		Timeout:  timeout,
		Logger:   logger,
		Now:      time.Now,
	}
}

// Execute degrades a single failed list to empty; only running out of time
// for the whole pass counts as a failure, which empties the board and raises
// its banner.
func (uc *LoadConversationsUseCase) Execute(ctx context.Context) (AggregateResult, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, uc.Timeout)
	defer cancel()

	var (
		messages []entity.Message
		leads    []entity.Lead
		g        errgroup.Group
	)

	g.Go(func() error {
		m, err := uc.Messages.ListMessages(fetchCtx, "")
		if err != nil {
			uc.Logger.Warn("failed to fetch messages", zap.Error(err))
			return nil
		}
		messages = m
		return nil
	})
	g.Go(func() error {
		l, err := uc.Leads.ListLeads(fetchCtx)
		if err != nil {
			uc.Logger.Warn("failed to fetch leads for conversations", zap.Error(err))
			return nil
		}
		leads = l
		return nil
	})
	_ = g.Wait()

	now := uc.Now()

	if err := ctx.Err(); err != nil {
		return AggregateResult{}, err
	}
	if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		err := fmt.Errorf("%w (%s): conversations could not be loaded", ErrFetchTimeout, uc.Timeout)
		uc.Board.Fail(err, now)
		return AggregateResult{}, err
	}

	result := AggregateConversations(messages, leads, now)
	uc.Board.Rebuild(result, now)

	if len(result.Conversations) == 0 && len(messages) > 0 {
		uc.Logger.Error("messages exist but no conversation could be built",
			zap.Int("messages", len(messages)),
			zap.Int("skipped", result.Skipped()),
		)
	}
	uc.Logger.Info("conversations rebuilt",
		zap.Int("messages", len(messages)),
		zap.Int("leads", len(leads)),
		zap.Int("conversations", len(result.Conversations)),
		zap.Int("processed", result.Processed),
		zap.Int("skipped_no_lead", result.SkippedNoLead),
		zap.Int("skipped_unresolved", result.SkippedUnresolved),
	)

	return result, nil
}
