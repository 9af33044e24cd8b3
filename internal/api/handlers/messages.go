package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/m-abdelwahab/email-agent-workshop/internal/database/models"
	"github.com/m-abdelwahab/email-agent-workshop/internal/services"
)

// MessageResponse represents a stored message in API responses
type MessageResponse struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Date      string    `json:"date"`
	Body      string    `json:"body"`
	Summary   string    `json:"summary"`
	Labels    []string  `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageHandler serves the read side: list and detail over stored messages
type MessageHandler struct {
	messages *services.MessageService
	logger   *zap.Logger
}

// NewMessageHandler creates a new MessageHandler instance
func NewMessageHandler(messages *services.MessageService, logger *zap.Logger) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{messages: messages, logger: logger}
}

// ListMessages returns all stored messages ordered by creation time ascending
// GET /api/messages
func (h *MessageHandler) ListMessages(c *gin.Context) {
	messages, err := h.messages.ListMessages()
	if err != nil {
		h.logger.Error("failed to list messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	responses := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, toMessageResponse(&messages[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": responses})
}

// GetMessage returns a single stored message by provider id
// GET /api/messages/:id
func (h *MessageHandler) GetMessage(c *gin.Context) {
	msg, err := h.messages.GetMessage(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}
		h.logger.Error("failed to load message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toMessageResponse(msg)})
}

// toMessageResponse converts a stored model into the API representation
func toMessageResponse(m *models.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Subject:   m.Subject,
		From:      m.FromAddr,
		To:        m.ToAddr,
		Date:      m.Date,
		Body:      m.Body,
		Summary:   m.Summary,
		Labels:    m.LabelList(),
		CreatedAt: m.CreatedAt,
	}
}
