package ports

import (
	"context"
	"io"

	"github.com/dmarkov/docuchat/internal/core/domain"
)

// DocumentAPI covers the backend's document endpoints. Upload streams the
// file as multipart form data; Process blocks until the backend has chunked
// and indexed the document.
type DocumentAPI interface {
	List(ctx context.Context) ([]domain.Document, error)
	Upload(ctx context.Context, filename string, body io.Reader) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
	Process(ctx context.Context, documentID string) (*domain.ProcessOutcome, error)
}

// ConversationAPI persists conversations and their messages.
type ConversationAPI interface {
	Create(ctx context.Context, botType domain.BotType, documentID *string) (string, error)
	Messages(ctx context.Context, conversationID string) ([]domain.ConversationMessage, error)
	AppendMessage(ctx context.Context, conversationID string, msg domain.ConversationMessage) error
}

// RetrievalChatAPI answers a question against the user's indexed documents.
// A nil documentID searches across all ready documents.
type RetrievalChatAPI interface {
	Ask(ctx context.Context, message string, documentID *string) (*domain.ChatReply, error)
}

// InlineChatAPI answers a question against document text carried in the
// request itself. Nothing is stored server-side.
type InlineChatAPI interface {
	AskInline(ctx context.Context, message string, docs []domain.InlineDocument) (*domain.ChatReply, error)
}
