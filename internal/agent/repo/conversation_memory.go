package repo

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

type memoryTranscript struct {
	messages  []*schema.Message
	updatedAt time.Time
}

// MemoryConversationRepository keeps transcripts in process memory. A
// transcript untouched for longer than the ttl reads as empty and is swept on
// the next write.
type MemoryConversationRepository struct {
	mu          sync.RWMutex
	transcripts map[string]*memoryTranscript
	ttl         time.Duration
	maxMessages int
	now         func() time.Time
	lastSweep   time.Time
}

func NewMemoryConversationRepository(ttl time.Duration, maxMessages int) *MemoryConversationRepository {
	return &MemoryConversationRepository{
		transcripts: make(map[string]*memoryTranscript),
		ttl:         ttl,
		maxMessages: maxMessages,
		now:         time.Now,
	}
}

func (r *MemoryConversationRepository) expired(t *memoryTranscript, now time.Time) bool {
	return r.ttl > 0 && now.Sub(t.updatedAt) > r.ttl
}

func (r *MemoryConversationRepository) AddMessage(_ context.Context, conversationID string, message *schema.Message) error {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transcripts[conversationID]
	if !ok || r.expired(t, now) {
		t = &memoryTranscript{}
		r.transcripts[conversationID] = t
	}
	msgs := append(t.messages, message)
	if r.maxMessages > 0 && len(msgs) > r.maxMessages {
		msgs = append([]*schema.Message(nil), msgs[len(msgs)-r.maxMessages:]...)
	}
	t.messages = msgs
	t.updatedAt = now

	if r.ttl > 0 && now.Sub(r.lastSweep) >= r.ttl {
		r.lastSweep = now
		for id, tr := range r.transcripts {
			if r.expired(tr, now) {
				delete(r.transcripts, id)
			}
		}
	}
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(_ context.Context, conversationID string) (*model.ConversationHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := &model.ConversationHistory{ConversationID: conversationID, Messages: []*schema.Message{}}
	t, ok := r.transcripts[conversationID]
	if !ok || r.expired(t, r.now()) {
		return h, nil
	}
	h.Messages = make([]*schema.Message, len(t.messages))
	copy(h.Messages, t.messages)
	return h, nil
}

func (r *MemoryConversationRepository) ClearHistory(_ context.Context, conversationID string) error {
	r.mu.Lock()
	delete(r.transcripts, conversationID)
	r.mu.Unlock()
	return nil
}

// Len reports how many transcripts are held, expired or not.
func (r *MemoryConversationRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.transcripts)
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
