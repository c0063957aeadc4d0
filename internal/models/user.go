// Package models contains data structures for the highlights domain.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that can author and react to highlights.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email,omitempty"`
	Password  string         `gorm:"not null" json:"-"`
	Bio       string         `json:"bio"`
	Avatar    string         `json:"avatar"`
	Profile   *Profile       `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Profile holds the reputation score of a user. Score is only ever changed by
// applying appreciation point deltas.
type Profile struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Score             int       `gorm:"not null;default:0" json:"score"`
	AppreciationCount int       `gorm:"not null;default:0" json:"appreciation_count"`
	ProfileImg        string    `json:"profile_img"`
	Location          string    `json:"location"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AuthorSummary is the compact author block embedded in feed items.
type AuthorSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Score    int    `json:"score"`
}

// Summary builds the author block for u.
func (u *User) Summary() AuthorSummary {
	s := AuthorSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
	if u.Profile != nil {
		s.Score = u.Profile.Score
		if s.Avatar == "" {
			s.Avatar = u.Profile.ProfileImg
		}
	}
	return s
}
