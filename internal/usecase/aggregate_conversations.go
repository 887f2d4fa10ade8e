package usecase

import (
	"sort"
	"time"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

// AggregateResult is one full rebuild of the conversation list.
type AggregateResult struct {
	Conversations []*entity.Conversation

	// Processed counts messages assigned to a conversation.
	Processed int
	// SkippedNoLead counts messages carrying neither lead reference.
	SkippedNoLead int
	// SkippedUnresolved counts messages whose lead is unknown and that carry
	// no denormalized name or email to build a placeholder from.
	SkippedUnresolved int
}

func (r AggregateResult) Skipped() int {
	return r.SkippedNoLead + r.SkippedUnresolved
}

// AggregateConversations groups messages into one conversation per
// (lead, channel) pair, newest conversation first. Malformed messages are
// skipped and counted; they never abort the pass.
func AggregateConversations(messages []entity.Message, leads []entity.Lead, now time.Time) AggregateResult {
	var result AggregateResult

	byID := make(map[string]entity.Lead, len(leads))
	for _, l := range leads {
		if _, seen := byID[l.ID]; !seen {
			byID[l.ID] = l
		}
	}

	index := make(map[entity.ConversationKey]*entity.Conversation)
	var order []*entity.Conversation

	for _, m := range messages {
		if m.LeadID == "" {
			result.SkippedNoLead++
			continue
		}

		// Every message needs a resolvable lead, even when its conversation
		// already exists.
		lead, ok := byID[m.LeadID]
		if !ok {
			if m.LeadName == "" && m.LeadEmail == "" {
				result.SkippedUnresolved++
				continue
			}
			lead = entity.NewPlaceholderLead(m.LeadID, m.LeadName, m.LeadEmail, now)
		}

		key := entity.ConversationKey{LeadID: m.LeadID, Channel: m.Channel}
		conv, exists := index[key]
		if !exists {
			conv = &entity.Conversation{
				Key:         key,
				Lead:        lead,
				LastMessage: m,
			}
			index[key] = conv
			order = append(order, conv)
		}

		conv.Messages = append(conv.Messages, m)
		if m.Timestamp.After(conv.LastMessage.Timestamp) {
			conv.LastMessage = m
		}
		if m.Unread() {
			conv.UnreadCount++
		}
		result.Processed++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].LastMessage.Timestamp.After(order[j].LastMessage.Timestamp)
	})
	result.Conversations = order
	return result
}
