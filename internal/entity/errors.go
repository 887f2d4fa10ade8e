package entity

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrSnapshotCorrupted    = errors.New("lead snapshot is corrupted")
)
