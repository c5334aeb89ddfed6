package ports

import (
	"context"

	"github.com/dmarkov/docuchat/internal/core/domain"
)

// ChatSurface is the turn-submission contract shared by the scoped retrieval
// chat and the guest inline-content chat. The two variants have different
// payloads and cost models and are not unified beyond this interface.
type ChatSurface interface {
	Submit(ctx context.Context, question string) error
	Messages() []domain.ConversationMessage
}

// MessagePersister accepts a message for background persistence. Enqueueing
// never blocks; a full queue or failed write is logged, not surfaced.
type MessagePersister interface {
	Append(conversationID string, msg domain.ConversationMessage)
}
