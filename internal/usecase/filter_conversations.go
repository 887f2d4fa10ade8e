package usecase

import (
	"strings"
	"time"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

// DefaultOngoingWindow is how recent the last message must be for a
// conversation to count as ongoing.
const DefaultOngoingWindow = 7 * 24 * time.Hour

const filterAll = "all"

type ConversationFilter struct {
	Status  string
	Channel string
	Search  string
}

func ClassifyConversation(conv *entity.Conversation, now time.Time, window time.Duration) entity.ConversationStatus {
	if now.Sub(conv.LastMessage.Timestamp) <= window {
		return entity.ConversationOngoing
	}
	return entity.ConversationFinished
}

// FilterConversations keeps the conversations matching every active predicate.
// Order is preserved.
func FilterConversations(convs []*entity.Conversation, f ConversationFilter, now time.Time, window time.Duration) []*entity.Conversation {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	visible := make([]*entity.Conversation, 0, len(convs))
	for _, conv := range convs {
		if active(f.Status) && string(ClassifyConversation(conv, now, window)) != f.Status {
			continue
		}
		if active(f.Channel) && string(conv.Key.Channel) != f.Channel {
			continue
		}
		if search != "" && !containsFold(search, conv.Lead.Name, conv.Lead.Email, conv.LastMessage.Content) {
			continue
		}
		visible = append(visible, conv)
	}
	return visible
}

func active(value string) bool {
	return value != "" && value != filterAll
}

// containsFold expects needle already lowercased.
func containsFold(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
