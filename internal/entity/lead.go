package entity

import (
	"context"
	"strings"
	"time"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// LeadStatuses lists the funnel stages in display order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusConverted,
	LeadStatusLost,
}

func (s LeadStatus) Valid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type ServiceType string

const (
	ServiceConsultation ServiceType = "consultation"
	ServiceCoaching     ServiceType = "coaching"
	ServiceTherapy      ServiceType = "therapy"
	ServiceSession      ServiceType = "session"
	ServiceWorkshop     ServiceType = "workshop"
	ServiceOther        ServiceType = "other"
)

type Lead struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Email                string      `json:"email"`
	Phone                string      `json:"phone,omitempty"`
	Status               LeadStatus  `json:"status"`
	Source               string      `json:"source"`
	CreatedAt            time.Time   `json:"createdAt"`
	LastContacted        *time.Time  `json:"lastContacted,omitempty"`
	Notes                string      `json:"notes,omitempty"`
	ServiceType          ServiceType `json:"serviceType,omitempty"`
	Price                *float64    `json:"price,omitempty"`
	DescriptionOfEnquiry string      `json:"descriptionOfEnquiry,omitempty"`
	PotentialValue       *float64    `json:"potentialValue,omitempty"`
}

// NewPlaceholderLead builds the minimal lead used when a message references a
// lead that is missing from the fetched list.
func NewPlaceholderLead(id, name, email string, now time.Time) Lead {
	if strings.TrimSpace(name) == "" {
		name = "Unknown Lead"
	}
	return Lead{
		ID:        id,
		Name:      name,
		Email:     email,
		Status:    LeadStatusNew,
		CreatedAt: now,
	}
}

// SameRecord reports whether two leads describe the same person: same id, or
// same email and name when ids differ (e.g. a create echoed back before sync).
func (l Lead) SameRecord(other Lead) bool {
	if l.ID != "" && l.ID == other.ID {
		return true
	}
	return l.Email != "" && l.Email == other.Email && l.Name == other.Name
}

// LeadSnapshotStore persists the last known good lead list in a single slot.
type LeadSnapshotStore interface {
	Load(ctx context.Context) ([]Lead, bool, error)
	Save(ctx context.Context, leads []Lead) error
}
