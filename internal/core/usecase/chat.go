package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmarkov/docuchat/internal/core/domain"
	"github.com/dmarkov/docuchat/internal/core/ports"
	"github.com/dmarkov/docuchat/internal/observability/metrics"
)

const chatFallbackError = "Failed to get response. Please try again."

// RetrievalChat submits turns against the user's indexed documents. At most
// one turn is in flight at a time; a second submission is rejected, not
// queued. Every accepted turn appends exactly one user and one assistant
// message to the transcript, the latter being a synthetic error message when
// the round trip fails.
type RetrievalChat struct {
	api        ports.RetrievalChatAPI
	session    *ConversationSession
	registry   *DocumentRegistry
	transcript *Transcript
	log        *slog.Logger
	metrics    *metrics.ClientMetrics
	surface    string

	mu      sync.Mutex
	sending bool
	scope   *string
}

// NewRetrievalChat builds the scoped chat client. The surface names the
// product surface this instance serves (workspace, personalization) and
// labels its chat turn metrics.
func NewRetrievalChat(
	api ports.RetrievalChatAPI,
	session *ConversationSession,
	registry *DocumentRegistry,
	log *slog.Logger,
	m *metrics.ClientMetrics,
	surface string,
) *RetrievalChat {
	if surface == "" {
		surface = "workspace"
	}
	return &RetrievalChat{
		api:        api,
		session:    session,
		registry:   registry,
		transcript: NewTranscript(),
		log:        log,
		metrics:    m,
		surface:    surface,
	}
}

// Select scopes all subsequent turns to one ready document. The session's
// conversation is reset: scope is fixed at conversation creation.
func (c *RetrievalChat) Select(documentID string) error {
	doc, ok := c.registry.Get(documentID)
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "select scope", errors.New(documentID))
	}
	if !doc.Chattable() {
		return domain.WrapError(domain.ErrInvalidInput, "select scope",
			fmt.Errorf("document %s is %s, only ready documents can be selected", documentID, doc.Status))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scope != nil && *c.scope == documentID {
		return nil
	}
	c.scope = &documentID
	c.session.Reset()
	return nil
}

// Deselect scopes subsequent turns across all ready documents.
func (c *RetrievalChat) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scope == nil {
		return
	}
	c.scope = nil
	c.session.Reset()
}

// Scope returns the currently selected document id, or nil for all.
func (c *RetrievalChat) Scope() *string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope
}

// Submit runs one chat turn: append the user message, ensure the
// conversation, round-trip the question, append the answer. The returned
// error covers only rejected turns (empty input, turn in flight); a failed
// round trip resolves into a synthetic assistant message instead.
func (c *RetrievalChat) Submit(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.WrapError(domain.ErrInvalidInput, "chat", errors.New("empty message"))
	}
	if !c.begin() {
		return domain.WrapError(domain.ErrTurnInFlight, "chat", errors.New("previous turn still pending"))
	}
	defer c.end()

	scope := c.effectiveScope()
	start := time.Now()

	c.transcript.Append(domain.ConversationMessage{
		ID:      uuid.NewString(),
		Role:    domain.RoleUser,
		Content: question,
	})
	c.persist(ctx, scope, domain.ConversationMessage{Role: domain.RoleUser, Content: question})

	reply, err := c.api.Ask(ctx, question, scope)
	if err != nil {
		c.transcript.Append(domain.ConversationMessage{
			ID:      uuid.NewString(),
			Role:    domain.RoleAssistant,
			Content: syntheticErrorContent(err),
		})
		c.metrics.ObserveChatTurn(c.surface, "failure", time.Since(start))
		c.log.Warn("chat_turn_failed", "surface", c.surface, "scoped", scope != nil, "error", err)
		return nil
	}

	assistant := domain.ConversationMessage{
		ID:      uuid.NewString(),
		Role:    domain.RoleAssistant,
		Content: reply.Response,
		Sources: reply.Sources,
	}
	c.transcript.Append(assistant)
	c.persist(ctx, scope, domain.ConversationMessage{
		Role:    domain.RoleAssistant,
		Content: reply.Response,
		Sources: reply.Sources,
	})

	c.metrics.ObserveChatTurn(c.surface, "success", time.Since(start))
	return nil
}

func (c *RetrievalChat) Messages() []domain.ConversationMessage {
	return c.transcript.Messages()
}

// Hydrate replaces the transcript with the persisted history of the current
// conversation, when one exists. Failures degrade to an empty transcript.
func (c *RetrievalChat) Hydrate(ctx context.Context) {
	msgs := c.session.History(ctx)
	if len(msgs) > 0 {
		c.transcript.Replace(msgs)
	}
}

func (c *RetrievalChat) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sending {
		return false
	}
	c.sending = true
	return true
}

func (c *RetrievalChat) end() {
	c.mu.Lock()
	c.sending = false
	c.mu.Unlock()
}

// effectiveScope validates the selected document against the registry. A
// deleted or no-longer-ready scope silently degrades to all documents; the
// chat session must survive losing its scope.
func (c *RetrievalChat) effectiveScope() *string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scope == nil {
		return nil
	}
	doc, ok := c.registry.Get(*c.scope)
	if !ok || !doc.Chattable() {
		c.log.Info("chat_scope_dropped", "document_id", *c.scope)
		c.scope = nil
		c.session.Reset()
		return nil
	}
	id := *c.scope
	return &id
}

// persist ensures the conversation exists and enqueues the message. A
// missing conversation degrades to answer-shown-not-persisted, never to
// answer-blocked.
func (c *RetrievalChat) persist(ctx context.Context, scope *string, msg domain.ConversationMessage) {
	convID, err := c.session.Ensure(ctx, scope)
	if err != nil {
		c.log.Warn("conversation_unavailable", "role", msg.Role, "error", err)
		return
	}
	c.session.Append(convID, msg)
}

func syntheticErrorContent(err error) string {
	if msg := domain.UserMessage(err, ""); msg != "" {
		return "Error: " + msg
	}
	return chatFallbackError
}
