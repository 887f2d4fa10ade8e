package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

type LeadHandler struct {
	Reconciler     *usecase.LeadReconciler
	CreateUC       *usecase.CreateLeadUseCase
	ActivityWindow time.Duration
	Logger         *zap.Logger
	Now            func() time.Time
}

func NewLeadHandler(reconciler *usecase.LeadReconciler, createUC *usecase.CreateLeadUseCase, activityWindow time.Duration, logger *zap.Logger) *LeadHandler {
	if activityWindow <= 0 {
		activityWindow = usecase.DefaultActivityWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{
		Reconciler:     reconciler,
		CreateUC:       createUC,
		ActivityWindow: activityWindow,
		Logger:         logger,
		Now:            time.Now,
	}
}

type LeadListResponse struct {
	Leads  []entity.Lead     `json:"leads"`
	Total  int               `json:"total"`
	Stats  usecase.LeadStats `json:"stats"`
	Source string            `json:"source"`
	Stale  bool              `json:"stale"`
	Error  string            `json:"error,omitempty"`
}

// List serves the in-memory list right away, warmed snapshot included. Only a
// process with nothing cached and no completed refresh waits for the backend.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	last := h.Reconciler.LastRefresh()
	all := h.Reconciler.Current()

	if last.Generation == 0 && len(all) == 0 {
		result := h.Reconciler.Refresh(r.Context())
		last = usecase.RefreshResult{Source: result.Source, Generation: result.Generation, Err: result.Err}
		all = h.Reconciler.Current()
	}
	if last.Source == "" {
		last.Source = usecase.LeadSourceMemory
	}

	q := r.URL.Query()
	visible := usecase.FilterLeads(all, usecase.LeadFilter{
		Search:      q.Get("search"),
		Status:      q.Get("status"),
		ServiceType: q.Get("service_type"),
	})

	resp := LeadListResponse{
		Leads:  visible,
		Total:  len(all),
		Stats:  usecase.CountLeads(all, h.Now(), h.ActivityWindow),
		Source: string(last.Source),
		Stale:  last.Stale(),
	}
	if last.Err != nil {
		resp.Error = last.Err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	output, err := h.CreateUC.Execute(r.Context(), input)
	if err != nil {
		h.Logger.Warn("create lead failed", zap.String("email", input.Email), zap.Error(err))
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, output)
}
