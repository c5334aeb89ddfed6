package usecase

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dmarkov/docuchat/internal/core/domain"
	"github.com/dmarkov/docuchat/internal/observability/metrics"
)

type inlineChatAPIFake struct {
	reply *domain.ChatReply
	err   error

	questions []string
	payloads  [][]domain.InlineDocument
}

func (f *inlineChatAPIFake) AskInline(_ context.Context, message string, docs []domain.InlineDocument) (*domain.ChatReply, error) {
	f.questions = append(f.questions, message)
	f.payloads = append(f.payloads, docs)
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &domain.ChatReply{Response: "answer"}, nil
}

func TestAddFilesPartialBatch(t *testing.T) {
	guest := NewGuestChat(&inlineChatAPIFake{}, testLogger(), nil, 0)

	added, errs := guest.AddFiles([]GuestFile{
		{Name: "empty.txt", Content: []byte("   \n")},
		{Name: "notes.txt", Content: []byte("real content")},
	})

	if len(added) != 1 || added[0].Name != "notes.txt" {
		t.Fatalf("expected the valid file added, got %+v", added)
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "empty") {
		t.Fatalf("expected one empty-file error, got %v", errs)
	}
	if len(guest.Documents()) != 1 {
		t.Fatalf("only the valid file may be stored")
	}
}

func TestAddFilesRejectsPDF(t *testing.T) {
	guest := NewGuestChat(&inlineChatAPIFake{}, testLogger(), nil, 0)

	_, errs := guest.AddFiles([]GuestFile{{Name: "report.pdf", Content: []byte("%PDF-1.4")}})
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "PDF support coming soon") {
		t.Fatalf("PDF must be rejected with the coming-soon message, got %v", errs)
	}
}

func TestAddFilesRejectsUnknownType(t *testing.T) {
	guest := NewGuestChat(&inlineChatAPIFake{}, testLogger(), nil, 0)

	_, errs := guest.AddFiles([]GuestFile{{Name: "data.csv", Content: []byte("a,b")}})
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "invalid file type") {
		t.Fatalf("expected invalid type error, got %v", errs)
	}
}

func TestAddFilesRejectsOversizedFile(t *testing.T) {
	guest := NewGuestChat(&inlineChatAPIFake{}, testLogger(), nil, 1024*1024)

	big := bytes.Repeat([]byte("x"), 1024*1024+1)
	_, errs := guest.AddFiles([]GuestFile{{Name: "big.txt", Content: big}})
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "maximum size is 1MB") {
		t.Fatalf("expected size limit error, got %v", errs)
	}
}

func TestGuestSubmitRequiresDocuments(t *testing.T) {
	guest := NewGuestChat(&inlineChatAPIFake{}, testLogger(), nil, 0)

	err := guest.Submit(context.Background(), "hello")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected rejection without documents, got %v", err)
	}
}

func TestGuestSubmitSendsFullTextOfAllDocuments(t *testing.T) {
	api := &inlineChatAPIFake{reply: &domain.ChatReply{
		Response: "found it",
		Sources:  []domain.MessageSource{{DocumentName: "a.txt", Preview: "alpha"}},
	}}
	guest := NewGuestChat(api, testLogger(), nil, 0)

	guest.AddFiles([]GuestFile{
		{Name: "a.txt", Content: []byte("alpha body")},
		{Name: "b.md", Content: []byte("beta body")},
	})
	if err := guest.Submit(context.Background(), "where is alpha?"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(api.payloads) != 1 {
		t.Fatalf("expected one inline call, got %d", len(api.payloads))
	}
	docs := api.payloads[0]
	if len(docs) != 2 || docs[0].Content != "alpha body" || docs[1].Content != "beta body" {
		t.Fatalf("full document text must travel with the question: %+v", docs)
	}

	msgs := guest.Messages()
	if len(msgs) != 2 || msgs[1].Content != "found it" {
		t.Fatalf("unexpected transcript: %+v", msgs)
	}
	if len(msgs[1].Sources) != 1 {
		t.Fatalf("sources missing from assistant message")
	}
}

func TestGuestSubmitErrorBecomesSyntheticMessage(t *testing.T) {
	api := &inlineChatAPIFake{err: userMessageError{msg: "Demo quota exceeded"}}
	guest := NewGuestChat(api, testLogger(), nil, 0)

	guest.AddFiles([]GuestFile{{Name: "a.txt", Content: []byte("text")}})
	if err := guest.Submit(context.Background(), "hello"); err != nil {
		t.Fatalf("failed round trip must resolve in the transcript, got %v", err)
	}

	msgs := guest.Messages()
	if len(msgs) != 2 || msgs[1].Content != "Error: Demo quota exceeded" {
		t.Fatalf("unexpected transcript: %+v", msgs)
	}
}

func TestAddFilesCountsEachAcceptedFile(t *testing.T) {
	m := metrics.NewClientMetrics("guest")
	guest := NewGuestChat(&inlineChatAPIFake{}, testLogger(), m, 0)

	guest.AddFiles([]GuestFile{
		{Name: "a.txt", Content: []byte("alpha")},
		{Name: "b.md", Content: []byte("beta")},
		{Name: "c.pdf", Content: []byte("%PDF-1.4")},
	})

	body := scrapeMetrics(t, m)
	success := `docuchat_documents_operations_total{operation="guest_add",outcome="success",service="guest"} 2`
	rejected := `docuchat_documents_operations_total{operation="guest_add",outcome="rejected",service="guest"} 1`
	if !strings.Contains(body, success) {
		t.Fatalf("expected per-file success count:\n%s", body)
	}
	if !strings.Contains(body, rejected) {
		t.Fatalf("expected per-file rejected count:\n%s", body)
	}
}

func TestRemoveDocumentDropsItFromPayload(t *testing.T) {
	api := &inlineChatAPIFake{}
	guest := NewGuestChat(api, testLogger(), nil, 0)

	added, _ := guest.AddFiles([]GuestFile{
		{Name: "a.txt", Content: []byte("alpha")},
		{Name: "b.txt", Content: []byte("beta")},
	})
	guest.RemoveDocument(added[0].ID)

	if err := guest.Submit(context.Background(), "question"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	docs := api.payloads[0]
	if len(docs) != 1 || docs[0].Name != "b.txt" {
		t.Fatalf("removed document must not travel, got %+v", docs)
	}
}
