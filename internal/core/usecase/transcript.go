package usecase

import (
	"sync"

	"github.com/dmarkov/docuchat/internal/core/domain"
)

// Transcript is the visible, append-only message list of one chat surface.
// It always reflects the local turn immediately; persistence happens behind
// it and never mutates it.
type Transcript struct {
	mu   sync.RWMutex
	msgs []domain.ConversationMessage
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(msg domain.ConversationMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append(t.msgs, msg)
}

// Replace swaps the whole transcript, used when hydrating a persisted
// conversation.
func (t *Transcript) Replace(msgs []domain.ConversationMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append([]domain.ConversationMessage(nil), msgs...)
}

func (t *Transcript) Messages() []domain.ConversationMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]domain.ConversationMessage(nil), t.msgs...)
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.msgs)
}
