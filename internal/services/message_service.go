package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/m-abdelwahab/email-agent-workshop/internal/database/models"
)

var (
	// ErrMessageNotFound indicates the message was not found
	ErrMessageNotFound = errors.New("message not found")
)

// MessageService handles persistence of ingested messages
type MessageService struct {
	db *gorm.DB
}

// NewMessageService creates a new MessageService instance
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// SaveIgnoringDuplicate inserts the message, silently ignoring the insert when
// a row with the same id already exists. This is the idempotency mechanism
// protecting against webhook redelivery: the stored row is never updated.
// Returns whether a new row was created.
func (s *MessageService) SaveIgnoringDuplicate(msg *models.Message) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(msg)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListMessages returns all stored messages ordered by creation time ascending
func (s *MessageService) ListMessages() ([]models.Message, error) {
	var messages []models.Message
	if err := s.db.Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// GetMessage returns the message with the given provider id
func (s *MessageService) GetMessage(id string) (*models.Message, error) {
	var msg models.Message
	if err := s.db.Where("id = ?", id).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// CountMessages returns the number of stored messages
func (s *MessageService) CountMessages() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Message{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
