package usecase

import (
	"strings"
	"time"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

// DefaultActivityWindow is the "recent" window used by lead stats.
const DefaultActivityWindow = 7 * 24 * time.Hour

type LeadFilter struct {
	Search      string
	Status      string
	ServiceType string
}

func FilterLeads(leads []entity.Lead, f LeadFilter) []entity.Lead {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	visible := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if active(f.Status) && string(l.Status) != f.Status {
			continue
		}
		if active(f.ServiceType) && string(l.ServiceType) != f.ServiceType {
			continue
		}
		if search != "" && !containsFold(search, l.Name, l.Email, l.DescriptionOfEnquiry) {
			continue
		}
		visible = append(visible, l)
	}
	return visible
}

type LeadStats struct {
	Total    int                       `json:"total"`
	ByStatus map[entity.LeadStatus]int `json:"by_status"`
	Recent   int                       `json:"recent"`
}

// CountLeads tallies leads per funnel stage and those created inside window.
func CountLeads(leads []entity.Lead, now time.Time, window time.Duration) LeadStats {
	stats := LeadStats{
		Total:    len(leads),
		ByStatus: make(map[entity.LeadStatus]int, len(entity.LeadStatuses)),
	}
	for _, s := range entity.LeadStatuses {
		stats.ByStatus[s] = 0
	}

	cutoff := now.Add(-window)
	for _, l := range leads {
		stats.ByStatus[l.Status]++
		if !l.CreatedAt.Before(cutoff) {
			stats.Recent++
		}
	}
	return stats
}
