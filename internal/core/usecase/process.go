package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmarkov/docuchat/internal/core/domain"
	"github.com/dmarkov/docuchat/internal/core/ports"
	"github.com/dmarkov/docuchat/internal/observability/metrics"
)

// ProcessingCoordinator drives one document through the process transition.
// In-flight documents are tracked as a set keyed by id: independent documents
// may process concurrently, each updating only its own registry entry.
type ProcessingCoordinator struct {
	api      ports.DocumentAPI
	registry *DocumentRegistry
	log      *slog.Logger
	metrics  *metrics.ClientMetrics

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewProcessingCoordinator(api ports.DocumentAPI, registry *DocumentRegistry, log *slog.Logger, m *metrics.ClientMetrics) *ProcessingCoordinator {
	return &ProcessingCoordinator{
		api:      api,
		registry: registry,
		log:      log,
		metrics:  m,
		inFlight: make(map[string]struct{}),
	}
}

// InFlight reports whether a process call for the document is outstanding.
func (c *ProcessingCoordinator) InFlight(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[id]
	return ok
}

// Process runs the pending -> processing -> {ready, error} transition. On
// success the registry is patched with the authoritative document and chunk
// count. On a reported failure the registry records the error message and
// then refetches everything: the optimistic state is not trusted once the
// backend has disagreed.
func (c *ProcessingCoordinator) Process(ctx context.Context, documentID string) (*domain.ProcessOutcome, error) {
	doc, ok := c.registry.Get(documentID)
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "process", errors.New(documentID))
	}
	if doc.Status != domain.StatusPending && doc.Status != domain.StatusError {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process",
			fmt.Errorf("document %s is %s, not pending", documentID, doc.Status))
	}
	if !c.claim(documentID) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process",
			fmt.Errorf("document %s is already being processed", documentID))
	}
	defer c.release(documentID)

	processing := domain.StatusProcessing
	c.registry.UpdateStatus(documentID, DocumentPatch{Status: &processing})
	c.metrics.ProcessStarted()
	defer c.metrics.ProcessFinished()

	outcome, err := c.api.Process(ctx, documentID)
	if err != nil {
		c.markFailed(ctx, documentID, err)
		return nil, fmt.Errorf("process document: %w", err)
	}

	c.registry.Replace(outcome.Document)
	c.metrics.ObserveDocumentOp("process", "success")
	c.log.Info("document_processed",
		"document_id", documentID,
		"chunks_created", outcome.ChunksCreated,
	)
	return outcome, nil
}

func (c *ProcessingCoordinator) claim(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inFlight[id]; ok {
		return false
	}
	c.inFlight[id] = struct{}{}
	return true
}

func (c *ProcessingCoordinator) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, id)
}

func (c *ProcessingCoordinator) markFailed(ctx context.Context, documentID string, processErr error) {
	status := domain.StatusError
	message := failureMessage(processErr)
	c.registry.UpdateStatus(documentID, DocumentPatch{
		Status:       &status,
		ErrorMessage: &message,
	})
	c.metrics.ObserveDocumentOp("process", "failure")
	c.log.Warn("document_process_failed", "document_id", documentID, "error", processErr)

	// The local patch is unreliable after a failure; the server decides.
	c.registry.Resync(ctx)
}

func failureMessage(err error) string {
	return domain.UserMessage(err, err.Error())
}
