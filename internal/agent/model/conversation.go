package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type ConversationRepository interface {
	// AddMessage adds a message to the conversation history for the given conversation
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error

	// LoadHistory retrieves the conversation history for a conversation
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// ClearHistory removes all conversation history for a conversation
	ClearHistory(ctx context.Context, conversationID string) error
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}

type SessionRepository interface {
	// Load returns the stored session, or a fresh empty one when none exists.
	Load(ctx context.Context, sessionID string) (*Session, error)

	// Save persists the whole session, replacing what was stored.
	Save(ctx context.Context, session *Session) error

	// Delete drops the session; deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error
}
