package models

import (
	"encoding/json"
	"time"
)

// Message represents an ingested email together with its generated summary and labels
type Message struct {
	ID          string    `gorm:"primaryKey;size:255" json:"id"` // provider-assigned message id
	Subject     string    `gorm:"size:500;not null" json:"subject"`
	FromAddr    string    `gorm:"size:255;not null" json:"from"`
	ToAddr      string    `gorm:"size:255;not null" json:"to"`
	Date        string    `gorm:"size:100;not null" json:"date"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	Attachments string    `gorm:"type:text" json:"attachments,omitempty"` // opaque JSON array stored as string
	Summary     string    `gorm:"type:text;not null" json:"summary"`
	Labels      string    `gorm:"type:text;not null;default:'[]'" json:"-"` // JSON array stored as string
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LabelList decodes the stored labels into a string slice.
// A missing or malformed column yields an empty slice, never nil.
func (m *Message) LabelList() []string {
	labels := []string{}
	if m.Labels == "" {
		return labels
	}
	if err := json.Unmarshal([]byte(m.Labels), &labels); err != nil {
		return []string{}
	}
	if labels == nil {
		return []string{}
	}
	return labels
}

// SetLabels encodes the given labels into the stored JSON representation
func (m *Message) SetLabels(labels []string) {
	if labels == nil {
		labels = []string{}
	}
	encoded, err := json.Marshal(labels)
	if err != nil {
		m.Labels = "[]"
		return
	}
	m.Labels = string(encoded)
}
