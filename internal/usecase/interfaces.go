package usecase

import (
	"context"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

// LeadFetcher is the read side of the remote backend for the lead list.
type LeadFetcher interface {
	ListLeads(ctx context.Context) ([]entity.Lead, error)
}

type MessageFetcher interface {
	ListMessages(ctx context.Context, leadID string) ([]entity.Message, error)
}

type LeadCreator interface {
	CreateLead(ctx context.Context, input CreateLeadInput) (entity.Lead, error)
}

type MessageSender interface {
	SendMessage(ctx context.Context, input SendMessageInput) (entity.Message, error)
}

// Backend is everything the dashboard needs from the remote REST API.
type Backend interface {
	LeadFetcher
	MessageFetcher
	LeadCreator
	MessageSender
}

// Drafter turns a prompt plus context into suggested message text.
type Drafter interface {
	Draft(ctx context.Context, req DraftRequest) (string, error)
}

type FollowUpPublisher interface {
	PublishFollowUp(ctx context.Context, payload FollowUpPayload) error
}

type CreateLeadInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Status string `json:"status,omitempty"`
	Source string `json:"source,omitempty"`
	Notes  string `json:"notes,omitempty"`

	// FollowUp, when non-empty, is emailed to the lead once it exists.
	FollowUp string `json:"follow_up,omitempty"`
}

type CreateLeadOutput struct {
	Lead           entity.Lead   `json:"lead"`
	Leads          []entity.Lead `json:"leads"`
	FollowUpQueued bool          `json:"follow_up_queued"`
	Msg            string        `json:"msg"`
}

type SendMessageInput struct {
	LeadID  string         `json:"leadId"`
	Channel entity.Channel `json:"channel"`
	Content string         `json:"content"`
}

type FollowUpPayload struct {
	ID      string `json:"id"`
	LeadID  string `json:"lead_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Content string `json:"content"`
	Origin  string `json:"origin"`
}

type DraftTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type DraftLead struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Source string `json:"source,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

type DraftRequest struct {
	Prompt  string      `json:"prompt"`
	Lead    DraftLead   `json:"lead"`
	History []DraftTurn `json:"conversation_history"`
}
