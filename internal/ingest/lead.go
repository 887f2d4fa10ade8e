package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

type rawLead struct {
	ID    FlexibleID `json:"id"`
	PK    FlexibleID `json:"pk"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Phone string     `json:"phone"`

	Status string `json:"status"`
	Source string `json:"source"`
	Notes  string `json:"notes"`

	CreatedAtSnake     string `json:"created_at"`
	CreatedAtCamel     string `json:"createdAt"`
	LastContactedSnake string `json:"last_contacted"`
	LastContactedCamel string `json:"lastContacted"`

	ServiceTypeSnake string `json:"service_type"`
	ServiceTypeCamel string `json:"serviceType"`

	Price               FlexibleFloat `json:"price"`
	PotentialValueSnake FlexibleFloat `json:"potential_value"`
	PotentialValueCamel FlexibleFloat `json:"potentialValue"`

	DescriptionSnake string `json:"description_of_enquiry"`
	DescriptionCamel string `json:"descriptionOfEnquiry"`
}

func (r rawLead) canonical(now time.Time) entity.Lead {
	lead := entity.Lead{
		ID:                   firstID(r.ID, r.PK),
		Name:                 strings.TrimSpace(r.Name),
		Email:                strings.TrimSpace(r.Email),
		Phone:                strings.TrimSpace(r.Phone),
		Status:               entity.LeadStatus(strings.ToLower(strings.TrimSpace(r.Status))),
		Source:               r.Source,
		Notes:                r.Notes,
		ServiceType:          entity.ServiceType(firstString(r.ServiceTypeSnake, r.ServiceTypeCamel)),
		Price:                r.Price.Value,
		PotentialValue:       firstFloat(r.PotentialValueSnake, r.PotentialValueCamel),
		DescriptionOfEnquiry: firstString(r.DescriptionSnake, r.DescriptionCamel),
	}

	if lead.Status == "" {
		lead.Status = entity.LeadStatusNew
	}

	lead.CreatedAt = ParseTimestamp(firstString(r.CreatedAtSnake, r.CreatedAtCamel))
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}

	if t := ParseTimestamp(firstString(r.LastContactedSnake, r.LastContactedCamel)); !t.IsZero() {
		lead.LastContacted = &t
	}

	return lead
}

// DecodeLeadList normalizes a `GET /leads` body. Elements that do not decode
// are left out and reported in skipped.
func DecodeLeadList(body []byte) (leads []entity.Lead, skipped []RecordError, err error) {
	return decodeLeadListAt(body, time.Now().UTC())
}

func decodeLeadListAt(body []byte, now time.Time) ([]entity.Lead, []RecordError, error) {
	raws, skipped, err := decodeRecords[rawLead](body)
	if err != nil {
		return nil, nil, err
	}

	leads := make([]entity.Lead, 0, len(raws))
	for _, r := range raws {
		leads = append(leads, r.canonical(now))
	}
	return leads, skipped, nil
}

// DecodeLead normalizes a single lead object, e.g. the body of a create.
func DecodeLead(body []byte) (entity.Lead, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return entity.Lead{}, ErrMalformedPayload
	}

	var r rawLead
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return entity.Lead{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if firstID(r.ID, r.PK) == "" {
		if err := decodeErrorEnvelope(trimmed); err != nil {
			return entity.Lead{}, err
		}
		return entity.Lead{}, ErrMalformedPayload
	}
	return r.canonical(time.Now().UTC()), nil
}
