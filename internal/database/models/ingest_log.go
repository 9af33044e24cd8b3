package models

import (
	"time"
)

// IngestLog records the outcome of one webhook delivery attempt
type IngestLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:20;index" json:"level"` // DEBUG, INFO, WARN, ERROR
	Module    string    `gorm:"size:50;index" json:"module"`
	Action    string    `gorm:"size:100" json:"action"`
	MessageID string    `gorm:"size:255;index" json:"message_id"`
	Message   string    `gorm:"type:text" json:"message"`
	Details   string    `gorm:"type:text" json:"details"` // JSON string for additional details
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// LogLevel represents the log level
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// LogModule represents the stage that generated the log entry
type LogModule string

const (
	LogModuleAuth    LogModule = "auth"
	LogModuleWebhook LogModule = "webhook"
	LogModuleAI      LogModule = "ai"
	LogModuleStore   LogModule = "store"
	LogModuleAPI     LogModule = "api"
	LogModuleCLI     LogModule = "cli"
)
