package notifications

import (
	"time"
)

// Type represents the notification type/severity.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Category groups notifications by product area for preference filtering.
type Category string

const (
	CategoryQuiz        Category = "quiz"
	CategoryProof       Category = "proof"
	CategoryAchievement Category = "achievement"
	CategorySystem      Category = "system"
	CategoryMarketing   Category = "marketing"
)

// Notification is the core domain model for a single notification record.
type Notification struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	Category   Category       `json:"category,omitempty"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Read       bool           `json:"read"`
	CreatedAt  time.Time      `json:"createdAt"`
	ExpiresAt  *time.Time     `json:"expiresAt,omitempty"`
	ActionURL  string         `json:"actionUrl,omitempty"`
	ActionText string         `json:"actionText,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*n.ExpiresAt)
}
