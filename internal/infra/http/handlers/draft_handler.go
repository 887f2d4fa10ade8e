package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

type DraftHandler struct {
	DraftUC *usecase.DraftReplyUseCase
	Logger  *zap.Logger
}

func NewDraftHandler(uc *usecase.DraftReplyUseCase, logger *zap.Logger) *DraftHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftHandler{DraftUC: uc, Logger: logger}
}

func (h *DraftHandler) Reply(w http.ResponseWriter, r *http.Request) {
	key, ok := conversationKey(w, r)
	if !ok {
		return
	}

	output, err := h.DraftUC.Execute(r.Context(), key)
	if err != nil {
		h.Logger.Warn("reply draft failed", zap.Stringer("conversation", key), zap.Error(err))
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func (h *DraftHandler) FollowUp(w http.ResponseWriter, r *http.Request) {
	var lead usecase.DraftLead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	output, err := h.DraftUC.DraftFollowUp(r.Context(), lead)
	if err != nil {
		h.Logger.Warn("follow-up draft failed", zap.String("email", lead.Email), zap.Error(err))
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}
