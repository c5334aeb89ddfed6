package backend

import (
	"context"

	"github.com/dmarkov/docuchat/internal/core/domain"
)

type askRequest struct {
	Message    string  `json:"message"`
	DocumentID *string `json:"documentId,omitempty"`
}

type askResponse struct {
	Success  bool                   `json:"success"`
	Error    string                 `json:"error,omitempty"`
	Response string                 `json:"response"`
	Sources  []domain.MessageSource `json:"sources,omitempty"`
}

type askInlineRequest struct {
	Message   string                  `json:"message"`
	Documents []domain.InlineDocument `json:"documents"`
}

type askInlineResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Response string                 `json:"response"`
		Sources  []domain.MessageSource `json:"sources,omitempty"`
	} `json:"data"`
}

func (c *Client) Ask(ctx context.Context, message string, documentID *string) (*domain.ChatReply, error) {
	var resp askResponse
	err := c.postJSON(ctx, "chat", "/api/chat", askRequest{
		Message:    message,
		DocumentID: documentID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Operation: "chat", Message: resp.Error}
	}
	return &domain.ChatReply{
		Response: resp.Response,
		Sources:  resp.Sources,
	}, nil
}

// AskInline carries the full text of every guest document with the question.
func (c *Client) AskInline(ctx context.Context, message string, docs []domain.InlineDocument) (*domain.ChatReply, error) {
	var resp askInlineResponse
	err := c.postJSON(ctx, "demo chat", "/api/demo/document-chat", askInlineRequest{
		Message:   message,
		Documents: docs,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Operation: "demo chat", Message: resp.Error}
	}
	return &domain.ChatReply{
		Response: resp.Data.Response,
		Sources:  resp.Data.Sources,
	}, nil
}
