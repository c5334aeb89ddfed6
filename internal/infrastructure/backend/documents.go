package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"

	"github.com/dmarkov/docuchat/internal/core/domain"
)

type listDocumentsResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Documents []domain.Document `json:"documents"`
}

type uploadDocumentResponse struct {
	Success  bool             `json:"success"`
	Error    string           `json:"error,omitempty"`
	Document *domain.Document `json:"document,omitempty"`
}

type deleteDocumentResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type processDocumentRequest struct {
	DocumentID string `json:"documentId"`
}

type processDocumentResponse struct {
	Success       bool            `json:"success"`
	Error         string          `json:"error,omitempty"`
	Document      domain.Document `json:"document"`
	ChunksCreated int             `json:"chunks_created"`
}

func (c *Client) List(ctx context.Context) ([]domain.Document, error) {
	var resp listDocumentsResponse
	if err := c.getJSON(ctx, "list documents", "/api/documents", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Operation: "list documents", Message: resp.Error}
	}
	if resp.Documents == nil {
		return []domain.Document{}, nil
	}
	return resp.Documents, nil
}

func (c *Client) Upload(ctx context.Context, filename string, body io.Reader) (*domain.Document, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	var resp uploadDocumentResponse
	if err := c.do(ctx, "upload document", "POST", "/api/documents", writer.FormDataContentType(), buf.Bytes(), &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Document == nil {
		return nil, &APIError{Operation: "upload document", Message: resp.Error}
	}
	return resp.Document, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	var resp deleteDocumentResponse
	path := "/api/documents?id=" + url.QueryEscape(id)
	if err := c.deleteJSON(ctx, "delete document", path, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{Operation: "delete document", Message: resp.Error}
	}
	return nil
}

func (c *Client) Process(ctx context.Context, documentID string) (*domain.ProcessOutcome, error) {
	var resp processDocumentResponse
	err := c.postJSON(ctx, "process document", "/api/documents/process", processDocumentRequest{DocumentID: documentID}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Operation: "process document", Message: resp.Error}
	}
	return &domain.ProcessOutcome{
		Document:      resp.Document,
		ChunksCreated: resp.ChunksCreated,
	}, nil
}
