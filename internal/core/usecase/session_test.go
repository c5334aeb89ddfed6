package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmarkov/docuchat/internal/core/domain"
)

type conversationAPIFake struct {
	mu        sync.Mutex
	createIDs []string
	createErr error
	creates   int
	appended  []persistJob
	appendErr error
	history   []domain.ConversationMessage
	histErr   error
}

func (f *conversationAPIFake) Create(_ context.Context, _ domain.BotType, _ *string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	id := "conv-1"
	if f.creates < len(f.createIDs) {
		id = f.createIDs[f.creates]
	}
	f.creates++
	return id, nil
}

func (f *conversationAPIFake) Messages(_ context.Context, _ string) ([]domain.ConversationMessage, error) {
	if f.histErr != nil {
		return nil, f.histErr
	}
	return f.history, nil
}

func (f *conversationAPIFake) AppendMessage(_ context.Context, conversationID string, msg domain.ConversationMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, persistJob{conversationID: conversationID, message: msg})
	return f.appendErr
}

func (f *conversationAPIFake) appendedJobs() []persistJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]persistJob(nil), f.appended...)
}

func (f *conversationAPIFake) createCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

func strPtr(s string) *string { return &s }

func TestEnsureMemoizesConversationPerScope(t *testing.T) {
	api := &conversationAPIFake{createIDs: []string{"conv-1", "conv-2"}}
	session := NewConversationSession(api, domain.BotTypeDocuments, testLogger(), nil, 0)
	defer session.Close()

	id1, err := session.Ensure(context.Background(), nil)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	id2, err := session.Ensure(context.Background(), nil)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if id1 != id2 || api.createCalls() != 1 {
		t.Fatalf("same scope must reuse conversation: ids %q %q, creates %d", id1, id2, api.createCalls())
	}

	id3, err := session.Ensure(context.Background(), strPtr("doc-1"))
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if id3 == id1 || api.createCalls() != 2 {
		t.Fatalf("scope change must create a new conversation, got %q after %q", id3, id1)
	}
}

func TestEnsureAfterResetCreatesFresh(t *testing.T) {
	api := &conversationAPIFake{createIDs: []string{"conv-1", "conv-2"}}
	session := NewConversationSession(api, domain.BotTypeDocuments, testLogger(), nil, 0)
	defer session.Close()

	if _, err := session.Ensure(context.Background(), nil); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	session.Reset()
	if session.Current() != "" {
		t.Fatalf("Reset must drop the cached id")
	}

	id, err := session.Ensure(context.Background(), nil)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if id != "conv-2" {
		t.Fatalf("expected fresh conversation after reset, got %q", id)
	}
}

func TestAppendPersistsInBackground(t *testing.T) {
	api := &conversationAPIFake{}
	session := NewConversationSession(api, domain.BotTypeDocuments, testLogger(), nil, 8)

	session.Append("conv-1", domain.ConversationMessage{Role: domain.RoleUser, Content: "hello"})
	session.Append("conv-1", domain.ConversationMessage{Role: domain.RoleAssistant, Content: "hi"})
	session.Close()

	jobs := api.appendedJobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(jobs))
	}
	if jobs[0].message.Role != domain.RoleUser || jobs[1].message.Role != domain.RoleAssistant {
		t.Fatalf("messages persisted out of order: %+v", jobs)
	}
}

func TestAppendFailureIsSwallowed(t *testing.T) {
	api := &conversationAPIFake{appendErr: errors.New("persist down")}
	session := NewConversationSession(api, domain.BotTypeDocuments, testLogger(), nil, 8)

	session.Append("conv-1", domain.ConversationMessage{Role: domain.RoleUser, Content: "hello"})
	session.Close()

	if len(api.appendedJobs()) != 1 {
		t.Fatalf("append must still be attempted once")
	}
}

func TestHistoryFailureReturnsEmpty(t *testing.T) {
	api := &conversationAPIFake{histErr: errors.New("backend down")}
	session := NewConversationSession(api, domain.BotTypeDocuments, testLogger(), nil, 0)
	defer session.Close()

	if _, err := session.Ensure(context.Background(), nil); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if msgs := session.History(context.Background()); msgs != nil {
		t.Fatalf("history failure must degrade to empty, got %+v", msgs)
	}
}

func TestHistoryWithoutConversation(t *testing.T) {
	session := NewConversationSession(&conversationAPIFake{}, domain.BotTypeDocuments, testLogger(), nil, 0)
	defer session.Close()

	if msgs := session.History(context.Background()); msgs != nil {
		t.Fatalf("no conversation yet, history must be empty")
	}
}
