package services

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"github.com/m-abdelwahab/email-agent-workshop/internal/database/models"
)

// LogService records ingestion outcomes to the database.
// Writes are best-effort: an audit failure never fails a request.
type LogService struct {
	db       *gorm.DB
	logLevel models.LogLevel
}

// NewLogService creates a new LogService instance
func NewLogService(db *gorm.DB) *LogService {
	return &LogService{
		db:       db,
		logLevel: models.LogLevelInfo,
	}
}

// NewLogServiceWithLevel creates a new LogService instance with the given minimum level
func NewLogServiceWithLevel(db *gorm.DB, level string) *LogService {
	return &LogService{
		db:       db,
		logLevel: parseLogLevel(level),
	}
}

// parseLogLevel converts a string to LogLevel
func parseLogLevel(level string) models.LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return models.LogLevelDebug
	case "INFO":
		return models.LogLevelInfo
	case "WARN", "WARNING":
		return models.LogLevelWarn
	case "ERROR":
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}

// shouldLog checks if a log entry should be recorded based on log level
func (s *LogService) shouldLog(level models.LogLevel) bool {
	levelPriority := map[models.LogLevel]int{
		models.LogLevelDebug: 0,
		models.LogLevelInfo:  1,
		models.LogLevelWarn:  2,
		models.LogLevelError: 3,
	}
	return levelPriority[level] >= levelPriority[s.logLevel]
}

// LogEntry represents a log entry to be created
type LogEntry struct {
	Level     models.LogLevel
	Module    models.LogModule
	Action    string
	MessageID string
	Message   string
	Details   interface{} // serialized to JSON
}

// Log creates a new log entry
func (s *LogService) Log(entry LogEntry) error {
	if !s.shouldLog(entry.Level) {
		return nil
	}

	var detailsJSON string
	if entry.Details != nil {
		bytes, err := json.Marshal(entry.Details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(bytes)
		}
	}

	log := &models.IngestLog{
		Level:     string(entry.Level),
		Module:    string(entry.Module),
		Action:    entry.Action,
		MessageID: entry.MessageID,
		Message:   entry.Message,
		Details:   detailsJSON,
	}

	return s.db.Create(log).Error
}

// LogIngestAccepted records a successful ingestion
func (s *LogService) LogIngestAccepted(messageID string, created bool) error {
	return s.Log(LogEntry{
		Level:     models.LogLevelInfo,
		Module:    models.LogModuleWebhook,
		Action:    "ingest",
		MessageID: messageID,
		Message:   "message ingested",
		Details:   map[string]interface{}{"created": created},
	})
}

// LogIngestRejected records a rejected delivery (auth or validation failure)
func (s *LogService) LogIngestRejected(module models.LogModule, reason string) error {
	return s.Log(LogEntry{
		Level:   models.LogLevelWarn,
		Module:  module,
		Action:  "reject",
		Message: reason,
	})
}

// LogIngestFailed records a processing failure (generation or store)
func (s *LogService) LogIngestFailed(module models.LogModule, messageID string, err error) error {
	return s.Log(LogEntry{
		Level:     models.LogLevelError,
		Module:    module,
		Action:    "fail",
		MessageID: messageID,
		Message:   "ingestion failed",
		Details:   map[string]interface{}{"error": err.Error()},
	})
}

// ListRecent returns the most recent log entries up to the given limit
func (s *LogService) ListRecent(limit int) ([]models.IngestLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.IngestLog
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
