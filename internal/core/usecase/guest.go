package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmarkov/docuchat/internal/core/domain"
	"github.com/dmarkov/docuchat/internal/core/ports"
	"github.com/dmarkov/docuchat/internal/observability/metrics"
)

const DefaultGuestMaxFileBytes = 5 * 1024 * 1024

// GuestFile is a candidate upload in guest mode: raw bytes plus the
// filename they arrived under.
type GuestFile struct {
	Name    string
	Content []byte
}

// GuestChat is the zero-persistence chat variant. Documents live only in
// memory and their full text travels inline with every question; no
// conversation entity exists. It shares only the turn-submission contract
// with the scoped retrieval chat.
type GuestChat struct {
	api        ports.InlineChatAPI
	transcript *Transcript
	log        *slog.Logger
	metrics    *metrics.ClientMetrics

	maxFileBytes int64

	mu      sync.Mutex
	sending bool
	docs    []domain.GuestDocument
}

func NewGuestChat(api ports.InlineChatAPI, log *slog.Logger, m *metrics.ClientMetrics, maxFileBytes int64) *GuestChat {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultGuestMaxFileBytes
	}
	return &GuestChat{
		api:          api,
		transcript:   NewTranscript(),
		log:          log,
		metrics:      m,
		maxFileBytes: maxFileBytes,
	}
}

// AddFiles validates and stores a batch. Invalid files are skipped with a
// per-file error while valid files in the same batch still succeed.
func (g *GuestChat) AddFiles(files []GuestFile) ([]domain.GuestDocument, []error) {
	var added []domain.GuestDocument
	var errs []error

	for _, file := range files {
		doc, err := g.validate(file)
		if err != nil {
			g.metrics.ObserveDocumentOp("guest_add", "rejected")
			errs = append(errs, err)
			continue
		}
		g.metrics.ObserveDocumentOp("guest_add", "success")
		added = append(added, doc)
	}

	if len(added) > 0 {
		g.mu.Lock()
		g.docs = append(g.docs, added...)
		g.mu.Unlock()
	}
	return added, errs
}

func (g *GuestChat) RemoveDocument(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.docs[:0]
	for _, doc := range g.docs {
		if doc.ID != id {
			kept = append(kept, doc)
		}
	}
	g.docs = kept
}

func (g *GuestChat) Documents() []domain.GuestDocument {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.GuestDocument(nil), g.docs...)
}

// Submit runs one guest turn, sending the full text of every stored document
// with the question.
func (g *GuestChat) Submit(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.WrapError(domain.ErrInvalidInput, "guest chat", errors.New("empty message"))
	}

	g.mu.Lock()
	if g.sending {
		g.mu.Unlock()
		return domain.WrapError(domain.ErrTurnInFlight, "guest chat", errors.New("previous turn still pending"))
	}
	if len(g.docs) == 0 {
		g.mu.Unlock()
		return domain.WrapError(domain.ErrInvalidInput, "guest chat", errors.New("no documents uploaded"))
	}
	g.sending = true
	inline := make([]domain.InlineDocument, 0, len(g.docs))
	for _, doc := range g.docs {
		inline = append(inline, domain.InlineDocument{Name: doc.Name, Content: doc.Content})
	}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.sending = false
		g.mu.Unlock()
	}()

	start := time.Now()
	g.transcript.Append(domain.ConversationMessage{
		ID:      uuid.NewString(),
		Role:    domain.RoleUser,
		Content: question,
	})

	reply, err := g.api.AskInline(ctx, question, inline)
	if err != nil {
		g.transcript.Append(domain.ConversationMessage{
			ID:      uuid.NewString(),
			Role:    domain.RoleAssistant,
			Content: syntheticErrorContent(err),
		})
		g.metrics.ObserveChatTurn("guest", "failure", time.Since(start))
		g.log.Warn("guest_turn_failed", "documents", len(inline), "error", err)
		return nil
	}

	g.transcript.Append(domain.ConversationMessage{
		ID:      uuid.NewString(),
		Role:    domain.RoleAssistant,
		Content: reply.Response,
		Sources: reply.Sources,
	})
	g.metrics.ObserveChatTurn("guest", "success", time.Since(start))
	return nil
}

func (g *GuestChat) Messages() []domain.ConversationMessage {
	return g.transcript.Messages()
}

func (g *GuestChat) validate(file GuestFile) (domain.GuestDocument, error) {
	name := strings.TrimSpace(file.Name)
	ext := strings.ToLower(filepath.Ext(name))

	if ext == ".pdf" {
		return domain.GuestDocument{}, domain.WrapError(domain.ErrInvalidInput, "guest upload",
			fmt.Errorf("%s: PDF support coming soon, please upload TXT or MD files for now", name))
	}
	if ext != ".txt" && ext != ".md" {
		return domain.GuestDocument{}, domain.WrapError(domain.ErrInvalidInput, "guest upload",
			fmt.Errorf("%s: invalid file type, please upload TXT or MD files", name))
	}
	if int64(len(file.Content)) > g.maxFileBytes {
		return domain.GuestDocument{}, domain.WrapError(domain.ErrInvalidInput, "guest upload",
			fmt.Errorf("%s: file too large, maximum size is %dMB", name, g.maxFileBytes/(1024*1024)))
	}
	content := string(file.Content)
	if strings.TrimSpace(content) == "" {
		return domain.GuestDocument{}, domain.WrapError(domain.ErrInvalidInput, "guest upload",
			fmt.Errorf("%s: file is empty", name))
	}

	return domain.GuestDocument{
		ID:        uuid.NewString(),
		Name:      name,
		Content:   content,
		SizeBytes: int64(len(file.Content)),
	}, nil
}
