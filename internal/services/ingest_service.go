package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/m-abdelwahab/email-agent-workshop/internal/database/models"
	"github.com/m-abdelwahab/email-agent-workshop/internal/functions/ai"
	"github.com/m-abdelwahab/email-agent-workshop/internal/monitoring"
)

var (
	// ErrGenerationFailed indicates the summary generation call failed
	ErrGenerationFailed = errors.New("summary generation failed")
	// ErrStoreFailed indicates the message could not be persisted
	ErrStoreFailed = errors.New("message store failed")
)

// SummaryGenerator produces a structured summary for a validated email.
// Satisfied by *ai.Client; tests substitute a stub.
type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, email ai.EmailInput) (*ai.SummaryResult, error)
}

// IngestInput is a validated inbound email handed to the orchestrator
type IngestInput struct {
	MessageID   string
	Subject     string
	From        string
	To          string
	Date        string
	TextBody    string
	Attachments string // opaque serialized attachment descriptors
}

// IngestResult is the outcome of a successful ingestion
type IngestResult struct {
	Summary string
	Labels  []string
	Created bool // false when the id was already stored
}

// IngestService composes generation and persistence into the linear
// ingestion flow. No partial results: a failure at any stage persists
// nothing, and generated output is discarded if the store fails.
type IngestService struct {
	generator  SummaryGenerator
	messages   *MessageService
	logService *LogService
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// NewIngestService creates a new IngestService instance
func NewIngestService(generator SummaryGenerator, messages *MessageService, logService *LogService, metrics *monitoring.Metrics, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		generator:  generator,
		messages:   messages,
		logService: logService,
		metrics:    metrics,
		logger:     logger,
	}
}

// Ingest runs generate -> store for one validated email. Failures are
// wrapped in ErrGenerationFailed or ErrStoreFailed for the handler to map;
// the underlying cause is logged here and never returned to the caller.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	start := time.Now()
	var attachments json.RawMessage
	if input.Attachments != "" {
		attachments = json.RawMessage(input.Attachments)
	}
	generated, err := s.generator.GenerateSummary(ctx, ai.EmailInput{
		MessageID:   input.MessageID,
		Subject:     input.Subject,
		From:        input.From,
		To:          input.To,
		Date:        input.Date,
		TextBody:    input.TextBody,
		Attachments: attachments,
	})
	if s.metrics != nil {
		s.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.Error("summary generation failed",
			zap.String("message_id", input.MessageID),
			zap.Error(err))
		if s.logService != nil {
			_ = s.logService.LogIngestFailed(models.LogModuleAI, input.MessageID, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	msg := &models.Message{
		ID:          input.MessageID,
		Subject:     input.Subject,
		FromAddr:    input.From,
		ToAddr:      input.To,
		Date:        input.Date,
		Body:        input.TextBody,
		Attachments: input.Attachments,
		Summary:     generated.Summary,
	}
	msg.SetLabels(generated.Labels)

	created, err := s.messages.SaveIgnoringDuplicate(msg)
	if err != nil {
		s.logger.Error("message store failed",
			zap.String("message_id", input.MessageID),
			zap.Error(err))
		if s.logService != nil {
			_ = s.logService.LogIngestFailed(models.LogModuleStore, input.MessageID, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	if s.metrics != nil && created {
		s.metrics.MessagesStored.Inc()
	}
	if s.logService != nil {
		_ = s.logService.LogIngestAccepted(input.MessageID, created)
	}
	s.logger.Info("message ingested",
		zap.String("message_id", input.MessageID),
		zap.Bool("created", created),
		zap.Int("labels", len(generated.Labels)))

	return &IngestResult{
		Summary: generated.Summary,
		Labels:  generated.Labels,
		Created: created,
	}, nil
}
