package backend

import (
	"context"
	"net/url"

	"github.com/dmarkov/docuchat/internal/core/domain"
)

type createConversationRequest struct {
	BotType    domain.BotType `json:"bot_type"`
	DocumentID *string        `json:"document_id,omitempty"`
}

type createConversationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Conversation struct {
			ID string `json:"id"`
		} `json:"conversation"`
	} `json:"data"`
}

type conversationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Conversation struct {
			Messages []domain.ConversationMessage `json:"messages"`
		} `json:"conversation"`
	} `json:"data"`
}

type appendMessageRequest struct {
	Role    domain.MessageRole     `json:"role"`
	Content string                 `json:"content"`
	Sources []domain.MessageSource `json:"sources,omitempty"`
}

func (c *Client) Create(ctx context.Context, botType domain.BotType, documentID *string) (string, error) {
	var resp createConversationResponse
	err := c.postJSON(ctx, "create conversation", "/api/conversations", createConversationRequest{
		BotType:    botType,
		DocumentID: documentID,
	}, &resp)
	if err != nil {
		return "", err
	}
	if !resp.Success || resp.Data.Conversation.ID == "" {
		return "", &APIError{Operation: "create conversation", Message: resp.Error}
	}
	return resp.Data.Conversation.ID, nil
}

func (c *Client) Messages(ctx context.Context, conversationID string) ([]domain.ConversationMessage, error) {
	var resp conversationResponse
	path := "/api/conversations/" + url.PathEscape(conversationID)
	if err := c.getJSON(ctx, "load conversation", path, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Operation: "load conversation", Message: resp.Error}
	}
	return resp.Data.Conversation.Messages, nil
}

// AppendMessage persists one message. Callers treat it as fire-and-forget;
// the response body is ignored beyond the HTTP status.
func (c *Client) AppendMessage(ctx context.Context, conversationID string, msg domain.ConversationMessage) error {
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages"
	return c.postJSON(ctx, "append message", path, appendMessageRequest{
		Role:    msg.Role,
		Content: msg.Content,
		Sources: msg.Sources,
	}, nil)
}
