package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

// Refresher runs one refresh of leads and conversations.
type Refresher interface {
	RunOnce(ctx context.Context)
}

type RefreshHandler struct {
	Refresher  Refresher
	Reconciler *usecase.LeadReconciler
	Board      *usecase.ConversationBoard
}

func NewRefreshHandler(refresher Refresher, reconciler *usecase.LeadReconciler, board *usecase.ConversationBoard) *RefreshHandler {
	return &RefreshHandler{Refresher: refresher, Reconciler: reconciler, Board: board}
}

type RefreshResponse struct {
	Leads         int       `json:"leads"`
	LeadSource    string    `json:"lead_source"`
	Stale         bool      `json:"stale"`
	Conversations int       `json:"conversations"`
	Skipped       int       `json:"skipped"`
	Error         string    `json:"error,omitempty"`
	RefreshedAt   time.Time `json:"refreshed_at"`
}

// Handle is what a client calls when it regains focus or visibility.
func (h *RefreshHandler) Handle(w http.ResponseWriter, r *http.Request) {
	h.Refresher.RunOnce(r.Context())

	last := h.Reconciler.LastRefresh()
	snap := h.Board.Snapshot()

	resp := RefreshResponse{
		Leads:         len(h.Reconciler.Current()),
		LeadSource:    string(last.Source),
		Stale:         last.Stale(),
		Conversations: len(snap.Conversations),
		Skipped:       snap.Skipped,
		Error:         snap.Error,
		RefreshedAt:   time.Now().UTC(),
	}
	if resp.Error == "" && last.Err != nil {
		resp.Error = last.Err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}
