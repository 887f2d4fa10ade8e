package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

func TestDecodeLeadListNormalizesFieldVariants(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`[
		{"id": 5, "name": "Ana", "email": "ana@example.com", "status": "qualified",
		 "created_at": "2026-02-01T10:00:00Z", "service_type": "coaching",
		 "price": "149.50", "potential_value": 900, "description_of_enquiry": "Weekly sessions"},
		{"pk": "b-7", "name": "Bruno", "email": "bruno@example.com",
		 "createdAt": "2026-02-02T09:30:00.123456", "serviceType": "therapy",
		 "potentialValue": "300", "descriptionOfEnquiry": "Intro call", "lastContacted": "2026-02-10"},
		{"id": "9", "name": "Carla", "email": "carla@example.com", "status": null}
	]`)

	leads, skipped, err := decodeLeadListAt(body, now)
	require.Empty(t, skipped)
	require.NoError(t, err)
	require.Len(t, leads, 3)

	assert.Equal(t, "5", leads[0].ID)
	assert.Equal(t, entity.LeadStatusQualified, leads[0].Status)
	assert.Equal(t, entity.ServiceCoaching, leads[0].ServiceType)
	require.NotNil(t, leads[0].Price)
	assert.InDelta(t, 149.5, *leads[0].Price, 0.001)
	require.NotNil(t, leads[0].PotentialValue)
	assert.InDelta(t, 900, *leads[0].PotentialValue, 0.001)
	assert.Equal(t, "Weekly sessions", leads[0].DescriptionOfEnquiry)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), leads[0].CreatedAt)

	assert.Equal(t, "b-7", leads[1].ID)
	assert.Equal(t, entity.LeadStatusNew, leads[1].Status)
	assert.Equal(t, entity.ServiceTherapy, leads[1].ServiceType)
	assert.Nil(t, leads[1].Price)
	require.NotNil(t, leads[1].LastContacted)
	assert.Equal(t, 10, leads[1].LastContacted.Day())
	assert.Equal(t, "Intro call", leads[1].DescriptionOfEnquiry)

	assert.Equal(t, "9", leads[2].ID)
	assert.Equal(t, entity.LeadStatusNew, leads[2].Status)
	assert.Equal(t, now, leads[2].CreatedAt)
}

func TestDecodeLeadListRejectsNonArrays(t *testing.T) {
	t.Run("error envelope", func(t *testing.T) {
		_, _, err := DecodeLeadList([]byte(`{"error": "database unavailable"}`))
		require.Error(t, err)
		assert.True(t, IsBackendError(err))
		assert.Contains(t, err.Error(), "database unavailable")
	})

	t.Run("object without error", func(t *testing.T) {
		_, _, err := DecodeLeadList([]byte(`{"results": []}`))
		assert.True(t, errors.Is(err, ErrMalformedPayload))
	})

	t.Run("empty body", func(t *testing.T) {
		_, _, err := DecodeLeadList(nil)
		assert.True(t, errors.Is(err, ErrMalformedPayload))
	})

	t.Run("html error page", func(t *testing.T) {
		_, _, err := DecodeLeadList([]byte(`<html>502 Bad Gateway</html>`))
		assert.True(t, errors.Is(err, ErrMalformedPayload))
	})

	t.Run("empty array is fine", func(t *testing.T) {
		leads, _, err := DecodeLeadList([]byte(`[]`))
		require.NoError(t, err)
		assert.Empty(t, leads)
	})
}

func TestDecodeMessageListResolvesLeadReference(t *testing.T) {
	body := []byte(`[
		{"id": 1, "lead": 5, "channel": "email", "direction": "inbound", "content": "hi",
		 "timestamp": "2026-03-01T10:00:00Z", "status": "delivered", "lead_name": "Ana"},
		{"id": 2, "leadId": "5", "channel": "EMAIL", "direction": "outbound", "content": "hello",
		 "timestamp": "2026-03-01T11:00:00.5+00:00", "status": "sent", "ai_generated": true},
		{"id": 3, "channel": "sms", "content": "orphan"},
		{"id": 4, "lead": {"id": 8, "name": "Nested"}, "channel": "sms"}
	]`)

	messages, skipped, err := DecodeMessageList(body)
	require.Empty(t, skipped)
	require.NoError(t, err)
	require.Len(t, messages, 4)

	assert.Equal(t, "5", messages[0].LeadID)
	assert.Equal(t, "Ana", messages[0].LeadName)
	assert.Equal(t, "5", messages[1].LeadID)
	assert.Equal(t, entity.ChannelEmail, messages[1].Channel)
	assert.True(t, messages[1].AIGenerated)
	assert.True(t, messages[1].Timestamp.After(messages[0].Timestamp))
	assert.Empty(t, messages[2].LeadID)
	assert.True(t, messages[2].Timestamp.IsZero())
	assert.Equal(t, "8", messages[3].LeadID)
}

func TestDecodeLead(t *testing.T) {
	lead, err := DecodeLead([]byte(`{"pk": 12, "name": "Dora", "email": "dora@example.com"}`))
	require.NoError(t, err)
	assert.Equal(t, "12", lead.ID)
	assert.False(t, lead.CreatedAt.IsZero())

	_, err = DecodeLead([]byte(`{"error": "email already exists"}`))
	assert.True(t, IsBackendError(err))

	_, err = DecodeLead([]byte(`[]`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]bool{
		"2026-03-01T10:00:00Z":             true,
		"2026-03-01T10:00:00.123456+02:00": true,
		"2026-03-01T10:00:00":              true,
		"2026-03-01 10:00:00":              true,
		"2026-03-01":                       true,
		"":                                 false,
		"yesterday":                        false,
	}
	for input, ok := range cases {
		assert.Equal(t, ok, !ParseTimestamp(input).IsZero(), input)
	}
}

func TestDecodeErrorResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error": "lead not found"}`, "lead not found"},
		{"detail field", `{"detail": "Authentication credentials were not provided."}`, "Authentication credentials were not provided."},
		{"message field", `{"message": " rate limited "}`, "rate limited"},
		{"html page", `<html>Bad Gateway</html>`, "server error: 502"},
		{"empty", ``, "server error: 502"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := DecodeErrorResponse(502, []byte(tc.body))
			var be *BackendError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tc.want, be.Message)
			assert.Equal(t, 502, be.Status)
		})
	}
}

func TestDecodeListsSkipUndecodableRecords(t *testing.T) {
	t.Run("leads", func(t *testing.T) {
		body := []byte(`[
			{"id": 1, "name": "Ana", "email": "ana@example.com"},
			{"id": 2, "name": "Bruno", "phone": 5551234},
			{"id": 3, "name": "Carla", "email": "carla@example.com"}
		]`)

		leads, skipped, err := DecodeLeadList(body)
		require.NoError(t, err)
		require.Len(t, leads, 2)
		assert.Equal(t, "1", leads[0].ID)
		assert.Equal(t, "3", leads[1].ID)
		require.Len(t, skipped, 1)
		assert.Equal(t, 1, skipped[0].Index)
		assert.Contains(t, skipped[0].Error(), "record 1")
	})

	t.Run("messages", func(t *testing.T) {
		body := []byte(`[
			{"id": 1, "lead": 5, "channel": "email", "aiGenerated": "true"},
			{"id": 2, "lead": 5, "channel": 7},
			"not an object",
			{"id": 4, "lead": 5, "channel": "sms", "content": "ok"}
		]`)

		messages, skipped, err := DecodeMessageList(body)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "4", messages[0].ID)
		require.Len(t, skipped, 3)
		assert.Equal(t, []int{0, 1, 2}, []int{skipped[0].Index, skipped[1].Index, skipped[2].Index})
	})

	t.Run("broken array is still malformed", func(t *testing.T) {
		_, _, err := DecodeMessageList([]byte(`[{"id": 1}, `))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}
