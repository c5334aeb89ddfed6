package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPStatusError is a non-2xx response from the backend.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "backend status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("backend %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("backend %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// APIError is a well-formed {"success": false, "error": ...} envelope. It is
// an application-level outcome, never retried.
type APIError struct {
	Operation string
	Message   string
}

func (e *APIError) Error() string {
	if e == nil {
		return "backend api error"
	}
	return fmt.Sprintf("backend %s: %s", e.Operation, e.Message)
}

// UserMessage exposes the envelope's error text for user-facing rendering.
func (e *APIError) UserMessage() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (c *Client) postJSON(ctx context.Context, operation, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	return c.do(ctx, operation, http.MethodPost, path, "application/json", body, out)
}

func (c *Client) getJSON(ctx context.Context, operation, path string, out any) error {
	return c.do(ctx, operation, http.MethodGet, path, "", nil, out)
}

func (c *Client) deleteJSON(ctx context.Context, operation, path string, out any) error {
	return c.do(ctx, operation, http.MethodDelete, path, "", nil, out)
}

// do sends one request through the rate limiter and the resilience executor.
// The body is kept as bytes so retries can replay it.
func (c *Client) do(ctx context.Context, operation, method, path, contentType string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", operation, err)
	}

	err := c.exec.Execute(ctx, operation, func(attemptCtx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("backend %s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return statusError(operation, resp)
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
		return nil
	})
	return wrapTemporaryIfNeeded(operation, err)
}

func statusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(raw),
	}
}
