package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

type rawMessage struct {
	ID FlexibleID `json:"id"`

	// "lead" is what the backend serializer emits; "leadId" is the
	// frontend shape some endpoints echo back.
	Lead   FlexibleID `json:"lead"`
	LeadID FlexibleID `json:"leadId"`

	Channel   string `json:"channel"`
	Direction string `json:"direction"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`

	AIGeneratedCamel bool `json:"aiGenerated"`
	AIGeneratedSnake bool `json:"ai_generated"`

	LeadName  string `json:"lead_name"`
	LeadEmail string `json:"lead_email"`
}

func (r rawMessage) canonical() entity.Message {
	return entity.Message{
		ID:          string(r.ID),
		LeadID:      firstID(r.Lead, r.LeadID),
		Channel:     entity.Channel(strings.ToLower(strings.TrimSpace(r.Channel))),
		Direction:   entity.Direction(strings.ToLower(strings.TrimSpace(r.Direction))),
		Content:     r.Content,
		Timestamp:   ParseTimestamp(r.Timestamp),
		Status:      entity.DeliveryStatus(strings.ToLower(strings.TrimSpace(r.Status))),
		AIGenerated: r.AIGeneratedCamel || r.AIGeneratedSnake,
		LeadName:    strings.TrimSpace(r.LeadName),
		LeadEmail:   strings.TrimSpace(r.LeadEmail),
	}
}

// DecodeMessageList normalizes a `GET /messages` body. Records without a lead
// reference are kept with an empty LeadID; dropping them is the aggregator's call.
// Elements that do not decode at all are reported in skipped.
func DecodeMessageList(body []byte) (messages []entity.Message, skipped []RecordError, err error) {
	raws, skipped, err := decodeRecords[rawMessage](body)
	if err != nil {
		return nil, nil, err
	}

	messages = make([]entity.Message, 0, len(raws))
	for _, r := range raws {
		messages = append(messages, r.canonical())
	}
	return messages, skipped, nil
}

// DecodeMessage normalizes the body returned by a send.
func DecodeMessage(body []byte) (entity.Message, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return entity.Message{}, ErrMalformedPayload
	}
	if err := decodeErrorEnvelope(trimmed); err != nil {
		return entity.Message{}, err
	}

	var r rawMessage
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return entity.Message{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return r.canonical(), nil
}
