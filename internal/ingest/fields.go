// Package ingest turns backend JSON into canonical entity records. It is the
// only place that knows about snake_case/camelCase variants and about ids that
// arrive as numbers from one endpoint and strings from another.
package ingest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlexibleID accepts a JSON string, number or an object carrying an "id".
// Anything else decodes to the empty id.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = ""
	if len(b) == 0 {
		return nil
	}

	switch {
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexibleID(strings.TrimSpace(s))
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = FlexibleID(n.String())
	case b[0] == '{':
		var nested struct {
			ID FlexibleID `json:"id"`
		}
		if err := json.Unmarshal(b, &nested); err != nil {
			return err
		}
		*f = nested.ID
	}
	return nil
}

// FlexibleFloat accepts a JSON number or a numeric string ("149.00").
type FlexibleFloat struct {
	Value *float64
}

func (f *FlexibleFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	f.Value = nil
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// unparseable amounts are dropped, not fatal
		return nil
	}
	f.Value = &v
	return nil
}

func firstFloat(values ...FlexibleFloat) *float64 {
	for _, v := range values {
		if v.Value != nil {
			return v.Value
		}
	}
	return nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstID(values ...FlexibleID) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses the ISO-8601 variants the backend emits. The zero time
// is returned for empty or unparseable input.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
