package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/assistant-dashboard/internal/infra/http/middleware"
	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

const DefaultRefreshInterval = 30 * time.Second

// LeadRefresher is satisfied by *usecase.LeadReconciler.
type LeadRefresher interface {
	Refresh(ctx context.Context) usecase.RefreshResult
}

// ConversationLoader is satisfied by *usecase.LoadConversationsUseCase.
type ConversationLoader interface {
	Execute(ctx context.Context) (usecase.AggregateResult, error)
}

// RefreshWorker keeps the lead list and the conversation board current.
type RefreshWorker struct {
	leads         LeadRefresher
	conversations ConversationLoader
	tickInterval  time.Duration
	logger        *zap.Logger
}

func NewRefreshWorker(leads LeadRefresher, conversations ConversationLoader, interval time.Duration, logger *zap.Logger) *RefreshWorker {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshWorker{
		leads:         leads,
		conversations: conversations,
		tickInterval:  interval,
		logger:        logger,
	}
}

// Start refreshes once right away, then on every tick until ctx is done.
func (w *RefreshWorker) Start(ctx context.Context) {
	w.logger.Info("refresh worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("refresh worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce refreshes leads, then conversations. It is also the on-demand
// trigger used when a client regains focus.
func (w *RefreshWorker) RunOnce(ctx context.Context) {
	if w.leads != nil {
		result := w.leads.Refresh(ctx)
		middleware.RecordLeadRefresh(string(result.Source), result.Discarded, len(result.Leads))
		if result.Err != nil && !result.Discarded {
			w.logger.Warn("lead refresh served a fallback list",
				zap.String("source", string(result.Source)),
				zap.Int("leads", len(result.Leads)),
				zap.Error(result.Err),
			)
		}
	}

	if w.conversations != nil && ctx.Err() == nil {
		agg, err := w.conversations.Execute(ctx)
		if err != nil {
			w.logger.Warn("conversation refresh failed", zap.Error(err))
			return
		}
		middleware.RecordConversations(len(agg.Conversations), agg.SkippedNoLead, agg.SkippedUnresolved)
	}
}
