package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmarkov/docuchat/internal/core/domain"
	"github.com/dmarkov/docuchat/internal/core/ports"
	"github.com/dmarkov/docuchat/internal/observability/metrics"
)

// DocumentPatch is an optimistic local update applied after a mutating call
// reported success. Nil fields are left untouched.
type DocumentPatch struct {
	Status       *domain.DocumentStatus
	ChunkCount   *int
	ErrorMessage *string
}

// DocumentRegistry mirrors the backend's document list. The backend stays
// authoritative: happy paths patch the cache in place, ambiguous failures
// discard it with a full refetch.
type DocumentRegistry struct {
	api     ports.DocumentAPI
	log     *slog.Logger
	metrics *metrics.ClientMetrics

	mu   sync.RWMutex
	docs []domain.Document
}

func NewDocumentRegistry(api ports.DocumentAPI, log *slog.Logger, m *metrics.ClientMetrics) *DocumentRegistry {
	return &DocumentRegistry{
		api:     api,
		log:     log,
		metrics: m,
	}
}

// List refetches from the backend and replaces the cache entirely. There is
// no merge with local state.
func (r *DocumentRegistry) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := r.api.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh document list: %w", err)
	}

	r.mu.Lock()
	r.docs = docs
	r.mu.Unlock()

	return r.Documents(), nil
}

// Resync is List invoked after a mutating call failed with the optimistic
// patch already applied. Errors are logged, not surfaced: the stale cache is
// still usable and the next user action refreshes again.
func (r *DocumentRegistry) Resync(ctx context.Context) {
	r.metrics.RegistryResync()
	if _, err := r.List(ctx); err != nil {
		r.log.Warn("registry_resync_failed", "error", err)
	}
}

// Add prepends a freshly uploaded document, matching the backend's
// newest-first ordering.
func (r *DocumentRegistry) Add(doc domain.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append([]domain.Document{doc}, r.docs...)
}

func (r *DocumentRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.docs[:0]
	for _, doc := range r.docs {
		if doc.ID != id {
			kept = append(kept, doc)
		}
	}
	r.docs = kept
}

// UpdateStatus applies an optimistic patch to one document.
func (r *DocumentRegistry) UpdateStatus(id string, patch DocumentPatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].ID != id {
			continue
		}
		if patch.Status != nil {
			r.docs[i].Status = *patch.Status
		}
		if patch.ChunkCount != nil {
			r.docs[i].ChunkCount = patch.ChunkCount
		}
		if patch.ErrorMessage != nil {
			r.docs[i].ErrorMessage = *patch.ErrorMessage
		}
		return
	}
}

// Replace swaps one cached document for the server's authoritative copy.
func (r *DocumentRegistry) Replace(doc domain.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].ID == doc.ID {
			r.docs[i] = doc
			return
		}
	}
}

func (r *DocumentRegistry) Get(id string) (domain.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return domain.Document{}, false
}

func (r *DocumentRegistry) Documents() []domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Document(nil), r.docs...)
}

// Ready returns the documents eligible for chat scoping.
func (r *DocumentRegistry) Ready() []domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ready []domain.Document
	for _, doc := range r.docs {
		if doc.Chattable() {
			ready = append(ready, doc)
		}
	}
	return ready
}
