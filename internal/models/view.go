package models

import "time"

// HighlightView records that a highlight was watched. Authenticated viewers
// own at most one row per highlight; anonymous viewers are keyed by IP.
type HighlightView struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	HighlightID  uint      `gorm:"not null;index" json:"highlight_id"`
	UserID       *uint     `gorm:"index" json:"user_id,omitempty"`
	IPAddress    string    `gorm:"size:45" json:"ip_address,omitempty"`
	ViewDuration float64   `gorm:"not null;default:0" json:"view_duration"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HighlightShare records a share of a highlight, optionally to another user.
type HighlightShare struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HighlightID uint      `gorm:"not null;index" json:"highlight_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	SharedToID  *uint     `gorm:"index" json:"shared_to_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
