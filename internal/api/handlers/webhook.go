package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/m-abdelwahab/email-agent-workshop/internal/api/middleware"
	"github.com/m-abdelwahab/email-agent-workshop/internal/database/models"
	"github.com/m-abdelwahab/email-agent-workshop/internal/monitoring"
	"github.com/m-abdelwahab/email-agent-workshop/internal/services"
)

// InboundAttachment is an attachment descriptor from the mail provider.
// All fields are optional; the pipeline stores them opaquely and never
// interprets the content.
type InboundAttachment struct {
	Name          string `json:"Name,omitempty"`
	ContentType   string `json:"ContentType,omitempty"`
	ContentLength int64  `json:"ContentLength,omitempty"`
	ContentID     string `json:"ContentID,omitempty"`
	Content       string `json:"Content,omitempty"`
}

// InboundEmail is the webhook payload, using the provider's field naming.
// Unknown fields are ignored; missing required fields fail closed.
type InboundEmail struct {
	MessageID   string              `json:"MessageID" binding:"required"`
	Subject     string              `json:"Subject" binding:"required"`
	From        string              `json:"From" binding:"required"`
	To          string              `json:"To" binding:"required"`
	Date        string              `json:"Date" binding:"required"`
	TextBody    string              `json:"TextBody" binding:"required"`
	Attachments []InboundAttachment `json:"Attachments"`
}

// WebhookHandler handles inbound email deliveries
type WebhookHandler struct {
	ingest     *services.IngestService
	logService *services.LogService
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance
func NewWebhookHandler(ingest *services.IngestService, logService *services.LogService, metrics *monitoring.Metrics, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		ingest:     ingest,
		logService: logService,
		metrics:    metrics,
		logger:     logger,
	}
}

// Receive handles one webhook delivery
// POST /api/webhooks/email
//
// The flow is strictly linear: the auth middleware has already run;
// validate -> generate -> store, each failure short-circuiting to its
// terminal status. Nothing is persisted on failure.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload InboundEmail
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.countOutcome(monitoring.OutcomeInvalid)
		if h.logService != nil {
			_ = h.logService.LogIngestRejected(models.LogModuleWebhook, "invalid payload: "+describeBindingError(err))
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid payload: " + describeBindingError(err),
		})
		return
	}

	attachments := ""
	if payload.Attachments != nil {
		encoded, err := json.Marshal(payload.Attachments)
		if err == nil {
			attachments = string(encoded)
		}
	}

	result, err := h.ingest.Ingest(c.Request.Context(), services.IngestInput{
		MessageID:   payload.MessageID,
		Subject:     payload.Subject,
		From:        payload.From,
		To:          payload.To,
		Date:        payload.Date,
		TextBody:    payload.TextBody,
		Attachments: attachments,
	})
	if err != nil {
		// The cause stays server-side; callers get the generic body.
		h.countOutcome(monitoring.OutcomeFailed)
		h.logger.Error("webhook processing error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("message_id", payload.MessageID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	if result.Created {
		h.countOutcome(monitoring.OutcomeAccepted)
	} else {
		h.countOutcome(monitoring.OutcomeDuplicate)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"email":   payload,
			"summary": result.Summary,
			"labels":  result.Labels,
		},
	})
}

// countOutcome increments the delivery counter when metrics are wired
func (h *WebhookHandler) countOutcome(outcome string) {
	if h.metrics != nil {
		h.metrics.WebhookDeliveries.WithLabelValues(outcome).Inc()
	}
}

// describeBindingError names the offending field(s) of a validation failure,
// falling back to a generic description for malformed JSON
func describeBindingError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, fe.Field())
		}
		return "missing or invalid field(s) " + strings.Join(fields, ", ")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return "missing or invalid field(s) " + typeErr.Field
	}
	return "malformed JSON body"
}
