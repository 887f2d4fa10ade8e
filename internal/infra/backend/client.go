// Package backend talks to the remote REST API that owns leads and messages.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
	"github.com/xavierca1/assistant-dashboard/internal/infra/http/middleware"
	"github.com/xavierca1/assistant-dashboard/internal/ingest"
	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

const maxBodyBytes = 8 << 20

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client for baseURL (e.g. http://localhost:8000/api).
// The per-call deadline comes from the caller's context; timeout only caps
// requests made without one.
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) ListLeads(ctx context.Context) ([]entity.Lead, error) {
	body, err := c.do(ctx, http.MethodGet, "/leads", nil)
	if err != nil {
		return nil, err
	}
	leads, skipped, err := ingest.DecodeLeadList(body)
	if err != nil {
		return nil, c.fail("list_leads", err)
	}
	c.reportSkipped("leads", skipped)
	return leads, nil
}

// ListMessages returns every message, or only one lead's when leadID is set.
func (c *Client) ListMessages(ctx context.Context, leadID string) ([]entity.Message, error) {
	path := "/messages"
	if leadID != "" {
		path += "?leadId=" + url.QueryEscape(leadID)
	}

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	messages, skipped, err := ingest.DecodeMessageList(body)
	if err != nil {
		return nil, c.fail("list_messages", err)
	}
	c.reportSkipped("messages", skipped)
	return messages, nil
}

func (c *Client) CreateLead(ctx context.Context, input usecase.CreateLeadInput) (entity.Lead, error) {
	payload := createLeadRequest{
		Name:   input.Name,
		Email:  input.Email,
		Phone:  input.Phone,
		Status: input.Status,
		Source: input.Source,
		Notes:  input.Notes,
	}

	body, err := c.do(ctx, http.MethodPost, "/leads", payload)
	if err != nil {
		return entity.Lead{}, err
	}
	lead, err := ingest.DecodeLead(body)
	if err != nil {
		return entity.Lead{}, c.fail("create_lead", err)
	}
	return lead, nil
}

func (c *Client) SendMessage(ctx context.Context, input usecase.SendMessageInput) (entity.Message, error) {
	payload := sendMessageRequest{
		LeadID:  input.LeadID,
		Channel: string(input.Channel),
		Content: input.Content,
	}

	body, err := c.do(ctx, http.MethodPost, "/messages", payload)
	if err != nil {
		return entity.Message{}, err
	}
	sent, err := ingest.DecodeMessage(body)
	if err != nil {
		return entity.Message{}, c.fail("send_message", err)
	}
	return sent, nil
}

// Draft asks the backend's own AI endpoint for a suggestion.
func (c *Client) Draft(ctx context.Context, req usecase.DraftRequest) (string, error) {
	payload := generateRequest{Prompt: req.Prompt}
	payload.Context.Lead = req.Lead
	payload.Context.ConversationHistory = req.History
	if payload.Context.ConversationHistory == nil {
		payload.Context.ConversationHistory = []usecase.DraftTurn{}
	}

	body, err := c.do(ctx, http.MethodPost, "/ai/generate", payload)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", c.fail("ai_generate", fmt.Errorf("%w: %v", ingest.ErrMalformedPayload, err))
	}
	if resp.Error != "" {
		return "", c.fail("ai_generate", &ingest.BackendError{Message: resp.Error})
	}
	return resp.Response, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, payload != nil)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		middleware.RecordBackendError(operation(method, path))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		middleware.RecordBackendError(operation(method, path))
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		middleware.RecordBackendError(operation(method, path))
		c.logger.Warn("backend returned an error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 512)),
		)
		return nil, ingest.DecodeErrorResponse(resp.StatusCode, body)
	}

	return body, nil
}

func (c *Client) fail(op string, err error) error {
	middleware.RecordBackendError(op)
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Client) reportSkipped(list string, skipped []ingest.RecordError) {
	if len(skipped) == 0 {
		return
	}
	middleware.RecordSkippedRecords(list, len(skipped))
	for _, rec := range skipped {
		c.logger.Warn("dropping undecodable record",
			zap.String("list", list),
			zap.Int("index", rec.Index),
			zap.Error(rec.Err),
		)
	}
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func operation(method, path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.ToLower(method) + " " + path
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
