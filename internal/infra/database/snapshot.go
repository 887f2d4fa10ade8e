package database

import (
	"encoding/json"
	"fmt"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

// LeadsSlot is the single named slot that holds the lead list.
const LeadsSlot = "leads_cache"

func encodeLeads(leads []entity.Lead) ([]byte, error) {
	if leads == nil {
		leads = []entity.Lead{}
	}
	payload, err := json.Marshal(leads)
	if err != nil {
		return nil, fmt.Errorf("encode lead snapshot: %w", err)
	}
	return payload, nil
}

func decodeLeads(payload []byte) ([]entity.Lead, error) {
	var leads []entity.Lead
	if err := json.Unmarshal(payload, &leads); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrSnapshotCorrupted, err)
	}
	if leads == nil {
		return nil, fmt.Errorf("%w: not a lead array", entity.ErrSnapshotCorrupted)
	}
	return leads, nil
}
