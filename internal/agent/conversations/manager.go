package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

type MessagesManager struct {
	conversationRepo model.ConversationRepository
	maxMessages      int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.SessionConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		maxMessages:      config.MaxMessages(),
	}
}

// RecordTurn appends the user utterance and the reply that answered it.
func (cm *MessagesManager) RecordTurn(ctx context.Context, conversationID, query, reply string) error {
	if err := cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(query)); err != nil {
		return err
	}
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.AssistantMessage(reply, nil))
}

// BuildFallbackContext returns system prompt, the recent transcript and the
// current query, in that order.
func (cm *MessagesManager) BuildFallbackContext(ctx context.Context, conversationID, systemPrompt, query string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	recent := trimTail(history.Messages, cm.maxMessages)
	messages := make([]*schema.Message, 0, len(recent)+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	for _, msg := range recent {
		if msg == nil || msg.Content == "" {
			continue
		}
		if msg.Role != schema.User && msg.Role != schema.Assistant {
			continue
		}
		messages = append(messages, msg)
	}
	messages = append(messages, schema.UserMessage(query))
	return messages, nil
}

func (cm *MessagesManager) Clear(ctx context.Context, conversationID string) error {
	return cm.conversationRepo.ClearHistory(ctx, conversationID)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxMessages int) []*schema.Message {
	if maxMessages <= 0 {
		return nil
	}
	if len(messages) <= maxMessages {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxMessages:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
