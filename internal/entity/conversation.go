package entity

import (
	"fmt"
	"sort"
)

// ConversationKey identifies a thread: one lead on one channel.
type ConversationKey struct {
	LeadID  string  `json:"lead_id"`
	Channel Channel `json:"channel"`
}

func (k ConversationKey) String() string {
	return fmt.Sprintf("%s-%s", k.LeadID, k.Channel)
}

// Conversation is derived from the message list on every rebuild and never
// mutated after the rebuild that produced it.
type Conversation struct {
	Key         ConversationKey `json:"key"`
	Lead        Lead            `json:"lead"`
	Messages    []Message       `json:"messages"`
	LastMessage Message         `json:"last_message"`
	UnreadCount int             `json:"unread_count"`
}

// Thread returns the messages ordered oldest first.
func (c *Conversation) Thread() []Message {
	thread := make([]Message, len(c.Messages))
	copy(thread, c.Messages)
	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].Timestamp.Before(thread[j].Timestamp)
	})
	return thread
}

// LastInbound returns the most recent inbound message, if any.
func (c *Conversation) LastInbound() (Message, bool) {
	var (
		last  Message
		found bool
	)
	for _, m := range c.Messages {
		if m.Direction != DirectionInbound {
			continue
		}
		if !found || m.Timestamp.After(last.Timestamp) {
			last = m
			found = true
		}
	}
	return last, found
}

type ConversationStatus string

const (
	ConversationOngoing  ConversationStatus = "ongoing"
	ConversationFinished ConversationStatus = "finished"
)
