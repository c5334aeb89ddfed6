package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dmarkov/docuchat/internal/core/domain"
	"github.com/dmarkov/docuchat/internal/core/ports"
	"github.com/dmarkov/docuchat/internal/observability/metrics"
)

var workspaceExtensions = map[string]struct{}{
	".txt": {},
	".md":  {},
	".pdf": {},
}

// DocumentLifecycle owns upload and delete for the persisted surfaces.
// Processing has its own coordinator.
type DocumentLifecycle struct {
	api      ports.DocumentAPI
	registry *DocumentRegistry
	log      *slog.Logger
	metrics  *metrics.ClientMetrics
}

func NewDocumentLifecycle(api ports.DocumentAPI, registry *DocumentRegistry, log *slog.Logger, m *metrics.ClientMetrics) *DocumentLifecycle {
	return &DocumentLifecycle{
		api:      api,
		registry: registry,
		log:      log,
		metrics:  m,
	}
}

// Upload sends the file to the backend and prepends the created document to
// the registry. The new document always starts out pending.
func (l *DocumentLifecycle) Upload(ctx context.Context, filename string, body io.Reader) (*domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := workspaceExtensions[ext]; !ok {
		l.metrics.ObserveDocumentOp("upload", "rejected")
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload",
			fmt.Errorf("unsupported file type %q, expected .txt, .md or .pdf", ext))
	}

	doc, err := l.api.Upload(ctx, filename, body)
	if err != nil {
		l.metrics.ObserveDocumentOp("upload", "failure")
		return nil, fmt.Errorf("upload document: %w", err)
	}

	l.registry.Add(*doc)
	l.metrics.ObserveDocumentOp("upload", "success")
	l.log.Info("document_uploaded", "document_id", doc.ID, "name", doc.Name, "size_bytes", doc.SizeBytes)
	return doc, nil
}

// Delete removes the document server-side. Deletion is legal in any status.
// On confirmed success the cache entry is dropped; on failure the cache is
// resynced because the server state is unknown.
func (l *DocumentLifecycle) Delete(ctx context.Context, id string) error {
	if _, ok := l.registry.Get(id); !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete", errors.New(id))
	}

	if err := l.api.Delete(ctx, id); err != nil {
		l.metrics.ObserveDocumentOp("delete", "failure")
		l.registry.Resync(ctx)
		return fmt.Errorf("delete document: %w", err)
	}

	l.registry.Remove(id)
	l.metrics.ObserveDocumentOp("delete", "success")
	l.log.Info("document_deleted", "document_id", id)
	return nil
}
