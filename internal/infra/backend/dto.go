package backend

import "github.com/xavierca1/assistant-dashboard/internal/usecase"

type createLeadRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Status string `json:"status,omitempty"`
	Source string `json:"source,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

type sendMessageRequest struct {
	LeadID  string `json:"leadId"`
	Channel string `json:"channel"`
	Content string `json:"content"`
}

type generateRequest struct {
	Prompt  string `json:"prompt"`
	Context struct {
		Lead                usecase.DraftLead   `json:"lead"`
		ConversationHistory []usecase.DraftTurn `json:"conversationHistory"`
	} `json:"context"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}
