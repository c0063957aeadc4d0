package models

import "time"

// MaxCommentLength caps comment content in characters.
const MaxCommentLength = 500

// HighlightComment is a text comment on a highlight.
type HighlightComment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HighlightID uint      `gorm:"not null;index" json:"highlight_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	Content     string    `gorm:"size:500;not null" json:"content"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
