package services

import (
	"context"
	"errors"
	"testing"

	"github.com/m-abdelwahab/email-agent-workshop/internal/functions/ai"
)

// stubGenerator returns a fixed result or error and records the last input
type stubGenerator struct {
	result    *ai.SummaryResult
	err       error
	calls     int
	lastEmail ai.EmailInput
}

func (s *stubGenerator) GenerateSummary(ctx context.Context, email ai.EmailInput) (*ai.SummaryResult, error) {
	s.calls++
	s.lastEmail = email
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testInput(id string) IngestInput {
	return IngestInput{
		MessageID: id,
		Subject:   "Hi",
		From:      "a@x.com",
		To:        "b@x.com",
		Date:      "2024-01-01",
		TextBody:  "Let's meet Friday.",
	}
}

func TestIngest_Success(t *testing.T) {
	db := newTestDB(t)
	messages := NewMessageService(db)
	generator := &stubGenerator{result: &ai.SummaryResult{
		Summary: "Meeting proposed for Friday.",
		Labels:  []string{"scheduling"},
	}}
	service := NewIngestService(generator, messages, NewLogService(db), nil, nil)

	result, err := service.Ingest(context.Background(), testInput("m1"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if !result.Created {
		t.Error("expected Created = true for a new id")
	}
	if result.Summary != "Meeting proposed for Friday." {
		t.Errorf("Summary = %q, want %q", result.Summary, "Meeting proposed for Friday.")
	}
	if len(result.Labels) != 1 || result.Labels[0] != "scheduling" {
		t.Errorf("Labels = %v, want [scheduling]", result.Labels)
	}

	stored, err := messages.GetMessage("m1")
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if stored.Summary != "Meeting proposed for Friday." {
		t.Errorf("stored Summary = %q, want %q", stored.Summary, "Meeting proposed for Friday.")
	}
	if labels := stored.LabelList(); len(labels) != 1 || labels[0] != "scheduling" {
		t.Errorf("stored LabelList() = %v, want [scheduling]", labels)
	}
}

func TestIngest_GenerationFailurePersistsNothing(t *testing.T) {
	db := newTestDB(t)
	messages := NewMessageService(db)
	generator := &stubGenerator{err: errors.New("service unavailable")}
	service := NewIngestService(generator, messages, NewLogService(db), nil, nil)

	_, err := service.Ingest(context.Background(), testInput("m1"))
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("Ingest() error = %v, want ErrGenerationFailed", err)
	}

	count, err := messages.CountMessages()
	if err != nil {
		t.Fatalf("CountMessages() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountMessages() = %d, want 0 after generation failure", count)
	}
}

func TestIngest_StoreFailureDiscardsOutput(t *testing.T) {
	db := newTestDB(t)
	messages := NewMessageService(db)
	generator := &stubGenerator{result: &ai.SummaryResult{
		Summary: "Meeting proposed for Friday.",
		Labels:  []string{"scheduling"},
	}}
	service := NewIngestService(generator, messages, NewLogService(db), nil, nil)

	// Closing the handle makes every write fail; the generated output must
	// be discarded, not partially persisted.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB() error = %v", err)
	}
	sqlDB.Close()

	_, err = service.Ingest(context.Background(), testInput("m1"))
	if !errors.Is(err, ErrStoreFailed) {
		t.Fatalf("Ingest() error = %v, want ErrStoreFailed", err)
	}
	if generator.calls != 1 {
		t.Errorf("generator calls = %d, want 1", generator.calls)
	}
}

func TestIngest_AttachmentsReachGenerator(t *testing.T) {
	db := newTestDB(t)
	messages := NewMessageService(db)
	generator := &stubGenerator{result: &ai.SummaryResult{Summary: "Has an attachment."}}
	service := NewIngestService(generator, messages, NewLogService(db), nil, nil)

	input := testInput("m1")
	input.Attachments = `[{"Name":"notes.txt","ContentType":"text/plain"}]`

	if _, err := service.Ingest(context.Background(), input); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if string(generator.lastEmail.Attachments) != input.Attachments {
		t.Errorf("generator saw attachments %q, want %q", generator.lastEmail.Attachments, input.Attachments)
	}
}

func TestIngest_RedeliveryKeepsOriginal(t *testing.T) {
	db := newTestDB(t)
	messages := NewMessageService(db)
	generator := &stubGenerator{result: &ai.SummaryResult{
		Summary: "First summary.",
		Labels:  []string{"first"},
	}}
	service := NewIngestService(generator, messages, NewLogService(db), nil, nil)

	if _, err := service.Ingest(context.Background(), testInput("m1")); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	// The generator produces different output on redelivery, but the
	// stored row must not change.
	generator.result = &ai.SummaryResult{Summary: "Second summary.", Labels: []string{"second"}}
	result, err := service.Ingest(context.Background(), testInput("m1"))
	if err != nil {
		t.Fatalf("Ingest() redelivery error = %v", err)
	}
	if result.Created {
		t.Error("expected Created = false on redelivery")
	}

	stored, err := messages.GetMessage("m1")
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if stored.Summary != "First summary." {
		t.Errorf("stored Summary = %q, want the original", stored.Summary)
	}
}

func TestIngest_NilLabelsStoredAsEmptyList(t *testing.T) {
	db := newTestDB(t)
	messages := NewMessageService(db)
	generator := &stubGenerator{result: &ai.SummaryResult{Summary: "No labels here."}}
	service := NewIngestService(generator, messages, NewLogService(db), nil, nil)

	result, err := service.Ingest(context.Background(), testInput("m2"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if result.Labels == nil {
		// The generator stub returned nil labels; the client normally
		// normalizes, so the service must tolerate both.
		t.Log("service passed through nil labels from generator")
	}

	stored, err := messages.GetMessage("m2")
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	labels := stored.LabelList()
	if labels == nil || len(labels) != 0 {
		t.Errorf("stored LabelList() = %v, want empty non-nil slice", labels)
	}
}
