package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

type DraftReplyUseCase struct {
	Board   *ConversationBoard
	Drafter Drafter
}

func NewDraftReplyUseCase(board *ConversationBoard, drafter Drafter) *DraftReplyUseCase {
	return &DraftReplyUseCase{Board: board, Drafter: drafter}
}

type DraftOutput struct {
	Prompt     string `json:"prompt"`
	Suggestion string `json:"suggestion"`
}

// Execute suggests a reply for the conversation identified by key.
func (uc *DraftReplyUseCase) Execute(ctx context.Context, key entity.ConversationKey) (*DraftOutput, error) {
	conv, err := uc.Board.Find(key)
	if err != nil {
		return nil, &DomainError{Code: "CONVERSATION_NOT_FOUND", Message: err.Error()}
	}

	req := BuildReplyRequest(conv)
	return uc.draft(ctx, req)
}

// DraftFollowUp suggests a first email for a lead that is being created.
func (uc *DraftReplyUseCase) DraftFollowUp(ctx context.Context, lead DraftLead) (*DraftOutput, error) {
	if strings.TrimSpace(lead.Name) == "" || strings.TrimSpace(lead.Email) == "" {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "name and email are required to draft a follow-up"}
	}

	extra := "Welcome them and express interest in helping."
	if strings.TrimSpace(lead.Notes) != "" {
		extra = "Context: " + lead.Notes
	}

	return uc.draft(ctx, DraftRequest{
		Prompt: fmt.Sprintf("Write a professional follow-up email to %s (%s). %s", lead.Name, lead.Email, extra),
		Lead:   lead,
	})
}

func (uc *DraftReplyUseCase) draft(ctx context.Context, req DraftRequest) (*DraftOutput, error) {
	if uc.Drafter == nil {
		return nil, &TechnicalError{Code: "DRAFTER_UNAVAILABLE", Message: "AI drafting is not configured"}
	}

	suggestion, err := uc.Drafter.Draft(ctx, req)
	if err != nil {
		return nil, &TechnicalError{Code: "DRAFT_FAILED", Message: "failed to generate suggestion", Err: err}
	}
	if strings.TrimSpace(suggestion) == "" {
		suggestion = "Could not generate suggestion"
	}

	return &DraftOutput{Prompt: req.Prompt, Suggestion: suggestion}, nil
}

// BuildReplyRequest answers the latest inbound message, or writes a
// follow-up when the lead never wrote in. History is oldest first.
func BuildReplyRequest(conv *entity.Conversation) DraftRequest {
	thread := conv.Thread()
	history := make([]DraftTurn, 0, len(thread))
	for _, m := range thread {
		role := "assistant"
		if m.Direction == entity.DirectionInbound {
			role = "user"
		}
		history = append(history, DraftTurn{Role: role, Content: m.Content})
	}

	prompt := fmt.Sprintf("Write a professional follow-up message to %s", conv.Lead.Name)
	if last, ok := conv.LastInbound(); ok {
		prompt = fmt.Sprintf("Write a professional and helpful reply to this message from %s: %q", conv.Lead.Name, last.Content)
	}

	return DraftRequest{
		Prompt: prompt,
		Lead: DraftLead{
			ID:    conv.Lead.ID,
			Name:  conv.Lead.Name,
			Email: conv.Lead.Email,
		},
		History: history,
	}
}
