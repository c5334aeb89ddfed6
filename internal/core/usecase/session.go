package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmarkov/docuchat/internal/core/domain"
	"github.com/dmarkov/docuchat/internal/core/ports"
	"github.com/dmarkov/docuchat/internal/observability/metrics"
)

const (
	defaultPersistQueueSize = 64
	persistTimeout          = 10 * time.Second
)

type persistJob struct {
	conversationID string
	message        domain.ConversationMessage
}

// ConversationSession lazily creates the persisted conversation for a chat
// surface and persists messages in the background. The conversation id is
// memoized per scope; changing the scoped document starts a new conversation
// rather than mutating the old one.
type ConversationSession struct {
	api     ports.ConversationAPI
	botType domain.BotType
	log     *slog.Logger
	metrics *metrics.ClientMetrics

	mu       sync.Mutex
	scopeKey string
	convID   string

	queue chan persistJob
	done  chan struct{}
	once  sync.Once
}

func NewConversationSession(api ports.ConversationAPI, botType domain.BotType, log *slog.Logger, m *metrics.ClientMetrics, queueSize int) *ConversationSession {
	if queueSize <= 0 {
		queueSize = defaultPersistQueueSize
	}
	s := &ConversationSession{
		api:     api,
		botType: botType,
		log:     log,
		metrics: m,
		queue:   make(chan persistJob, queueSize),
		done:    make(chan struct{}),
	}
	go s.persistLoop()
	return s
}

// Ensure returns the conversation id for the given scope, creating it on
// first use. A scope change discards the cached id.
func (s *ConversationSession) Ensure(ctx context.Context, documentID *string) (string, error) {
	key := scopeKey(documentID)

	s.mu.Lock()
	if s.convID != "" && s.scopeKey == key {
		id := s.convID
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	id, err := s.api.Create(ctx, s.botType, documentID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.convID = id
	s.scopeKey = key
	s.mu.Unlock()

	s.log.Info("conversation_created", "conversation_id", id, "bot_type", s.botType, "scoped", documentID != nil)
	return id, nil
}

// Current returns the cached conversation id, if any.
func (s *ConversationSession) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convID
}

// Reset drops the cached conversation id so the next turn creates a fresh
// conversation. Called when the chat scope changes.
func (s *ConversationSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convID = ""
	s.scopeKey = ""
}

// Append enqueues one message for background persistence. It never blocks:
// when the queue is full the message is dropped with a log entry. Failure to
// persist never touches the visible transcript.
func (s *ConversationSession) Append(conversationID string, msg domain.ConversationMessage) {
	select {
	case s.queue <- persistJob{conversationID: conversationID, message: msg}:
	default:
		s.metrics.PersistFailure()
		s.log.Warn("persist_queue_full", "conversation_id", conversationID, "role", msg.Role)
	}
}

// History hydrates past messages of the cached conversation. Failures are
// logged and an empty history returned; hydration is a background nicety,
// never a blocker.
func (s *ConversationSession) History(ctx context.Context) []domain.ConversationMessage {
	id := s.Current()
	if id == "" {
		return nil
	}
	msgs, err := s.api.Messages(ctx, id)
	if err != nil {
		s.log.Warn("conversation_history_load_failed", "conversation_id", id, "error", err)
		return nil
	}
	return msgs
}

// Close drains the persistence queue and stops the worker.
func (s *ConversationSession) Close() {
	s.once.Do(func() {
		close(s.queue)
	})
	<-s.done
}

func (s *ConversationSession) persistLoop() {
	defer close(s.done)
	for job := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err := s.api.AppendMessage(ctx, job.conversationID, job.message)
		cancel()
		if err != nil {
			s.metrics.PersistFailure()
			s.log.Warn("message_persist_failed",
				"conversation_id", job.conversationID,
				"role", job.message.Role,
				"error", err,
			)
		}
	}
}

func scopeKey(documentID *string) string {
	if documentID == nil {
		return "all"
	}
	return "doc:" + *documentID
}
