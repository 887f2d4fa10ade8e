package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

type ConversationHandler struct {
	Board         *usecase.ConversationBoard
	OngoingWindow time.Duration
	Now           func() time.Time
}

func NewConversationHandler(board *usecase.ConversationBoard, ongoingWindow time.Duration) *ConversationHandler {
	if ongoingWindow <= 0 {
		ongoingWindow = usecase.DefaultOngoingWindow
	}
	return &ConversationHandler{Board: board, OngoingWindow: ongoingWindow, Now: time.Now}
}

type ConversationSummary struct {
	Key          entity.ConversationKey    `json:"key"`
	Lead         entity.Lead               `json:"lead"`
	LastMessage  entity.Message            `json:"last_message"`
	UnreadCount  int                       `json:"unread_count"`
	MessageCount int                       `json:"message_count"`
	Status       entity.ConversationStatus `json:"status"`
}

type ConversationListResponse struct {
	Conversations []ConversationSummary   `json:"conversations"`
	Total         int                     `json:"total"`
	Selected      *entity.ConversationKey `json:"selected"`
	Skipped       int                     `json:"skipped"`
	Error         string                  `json:"error,omitempty"`
	BuiltAt       time.Time               `json:"built_at"`
}

type ConversationThreadResponse struct {
	Key         entity.ConversationKey    `json:"key"`
	Lead        entity.Lead               `json:"lead"`
	Messages    []entity.Message          `json:"messages"`
	UnreadCount int                       `json:"unread_count"`
	Status      entity.ConversationStatus `json:"status"`
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.Board.Snapshot()
	now := h.Now()

	q := r.URL.Query()
	visible := usecase.FilterConversations(snap.Conversations, usecase.ConversationFilter{
		Status:  q.Get("status"),
		Channel: q.Get("channel"),
		Search:  q.Get("search"),
	}, now, h.OngoingWindow)

	resp := ConversationListResponse{
		Conversations: make([]ConversationSummary, 0, len(visible)),
		Total:         len(snap.Conversations),
		Skipped:       snap.Skipped,
		Error:         snap.Error,
		BuiltAt:       snap.BuiltAt,
	}
	for _, c := range visible {
		resp.Conversations = append(resp.Conversations, ConversationSummary{
			Key:          c.Key,
			Lead:         c.Lead,
			LastMessage:  c.LastMessage,
			UnreadCount:  c.UnreadCount,
			MessageCount: len(c.Messages),
			Status:       usecase.ClassifyConversation(c, now, h.OngoingWindow),
		})
	}
	resp.Selected = snap.Selected

	writeJSON(w, http.StatusOK, resp)
}

func (h *ConversationHandler) Select(w http.ResponseWriter, r *http.Request) {
	var key entity.ConversationKey
	if err := json.NewDecoder(r.Body).Decode(&key); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	if err := h.Board.Select(key); err != nil {
		writeErrorResponse(w, http.StatusNotFound, "CONVERSATION_NOT_FOUND", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"selected": key})
}

func (h *ConversationHandler) Thread(w http.ResponseWriter, r *http.Request) {
	key, ok := conversationKey(w, r)
	if !ok {
		return
	}

	conv, err := h.Board.Find(key)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "CONVERSATION_NOT_FOUND", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ConversationThreadResponse{
		Key:         conv.Key,
		Lead:        conv.Lead,
		Messages:    conv.Thread(),
		UnreadCount: conv.UnreadCount,
		Status:      usecase.ClassifyConversation(conv, h.Now(), h.OngoingWindow),
	})
}

func conversationKey(w http.ResponseWriter, r *http.Request) (entity.ConversationKey, bool) {
	key := entity.ConversationKey{
		LeadID:  chi.URLParam(r, "leadID"),
		Channel: entity.Channel(chi.URLParam(r, "channel")),
	}
	if key.LeadID == "" || !key.Channel.Valid() {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_CONVERSATION", "lead id and a known channel are required")
		return key, false
	}
	return key, true
}
