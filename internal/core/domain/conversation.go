package domain

type BotType string

const (
	BotTypeDocuments BotType = "documents"
	BotTypeCustomBot BotType = "custom_bot"
	BotTypeDemo      BotType = "demo"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// MessageSource attributes an assistant answer to a document. It is
// presentation-only and carries no chunk identifier.
type MessageSource struct {
	DocumentName string `json:"document_name"`
	Preview      string `json:"preview"`
}

// ConversationMessage is one transcript entry. ID is empty while the message
// exists only locally and has not been persisted.
type ConversationMessage struct {
	ID      string          `json:"id,omitempty"`
	Role    MessageRole     `json:"role"`
	Content string          `json:"content"`
	Sources []MessageSource `json:"sources,omitempty"`
}

// Conversation scope is fixed at creation. A nil DocumentID means the
// conversation runs across all of the user's documents.
type Conversation struct {
	ID         string                `json:"id"`
	BotType    BotType               `json:"bot_type"`
	DocumentID *string               `json:"document_id,omitempty"`
	Messages   []ConversationMessage `json:"messages,omitempty"`
}

// ChatReply is the backend's answer to a single chat turn.
type ChatReply struct {
	Response string          `json:"response"`
	Sources  []MessageSource `json:"sources,omitempty"`
}
