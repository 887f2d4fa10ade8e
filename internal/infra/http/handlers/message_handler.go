package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

type MessageHandler struct {
	SendUC *usecase.SendMessageUseCase
	Logger *zap.Logger
}

func NewMessageHandler(uc *usecase.SendMessageUseCase, logger *zap.Logger) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{SendUC: uc, Logger: logger}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	sent, err := h.SendUC.Execute(r.Context(), input)
	if err != nil {
		h.Logger.Warn("send message failed",
			zap.String("lead_id", input.LeadID),
			zap.String("channel", string(input.Channel)),
			zap.Error(err),
		)
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sent)
}
