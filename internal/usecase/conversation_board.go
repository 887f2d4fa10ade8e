package usecase

import (
	"sync"
	"time"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

// ConversationBoard holds the most recent rebuild plus the inbox view state
// (selection and the non-blocking error banner).
type ConversationBoard struct {
	mu            sync.RWMutex
	conversations []*entity.Conversation
	selected      *entity.ConversationKey
	skipped       int
	lastError     string
	builtAt       time.Time
}

func NewConversationBoard() *ConversationBoard {
	return &ConversationBoard{}
}

// BoardSnapshot is a consistent read of the board.
type BoardSnapshot struct {
	Conversations []*entity.Conversation
	Selected      *entity.ConversationKey
	Skipped       int
	Error         string
	BuiltAt       time.Time
}

// Rebuild swaps in a freshly aggregated set. The first (most recent)
// conversation is selected when nothing is selected yet.
func (b *ConversationBoard) Rebuild(result AggregateResult, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.conversations = result.Conversations
	b.skipped = result.Skipped()
	b.lastError = ""
	b.builtAt = at

	if b.selected == nil && len(result.Conversations) > 0 {
		key := result.Conversations[0].Key
		b.selected = &key
	}
}

// Fail replaces the set with an empty placeholder and raises the banner.
func (b *ConversationBoard) Fail(err error, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.conversations = nil
	b.skipped = 0
	b.lastError = err.Error()
	b.builtAt = at
}

func (b *ConversationBoard) Select(key entity.ConversationKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if findConversation(b.conversations, key) == nil {
		return entity.ErrConversationNotFound
	}
	b.selected = &key
	return nil
}

// Selected resolves the selected key against the current set. A selection
// that vanished in the last rebuild yields nil.
func (b *ConversationBoard) Selected() *entity.Conversation {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.selected == nil {
		return nil
	}
	return findConversation(b.conversations, *b.selected)
}

func (b *ConversationBoard) Find(key entity.ConversationKey) (*entity.Conversation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if conv := findConversation(b.conversations, key); conv != nil {
		return conv, nil
	}
	return nil, entity.ErrConversationNotFound
}

func (b *ConversationBoard) Snapshot() BoardSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := BoardSnapshot{
		Conversations: b.conversations,
		Skipped:       b.skipped,
		Error:         b.lastError,
		BuiltAt:       b.builtAt,
	}
	if b.selected != nil && findConversation(b.conversations, *b.selected) != nil {
		key := *b.selected
		snap.Selected = &key
	}
	return snap
}

func findConversation(convs []*entity.Conversation, key entity.ConversationKey) *entity.Conversation {
	for _, c := range convs {
		if c.Key == key {
			return c
		}
	}
	return nil
}
