package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultHighlightTTL is how long a highlight stays visible after creation.
const DefaultHighlightTTL = 48 * time.Hour

// Hashtags is the ordered tag list of a highlight, stored as a JSON array in a
// text column. Duplicates are kept.
type Hashtags []string

// Value implements driver.Valuer.
func (h Hashtags) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(h))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (h *Hashtags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*h = Hashtags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("hashtags: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*h = Hashtags{}
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return errors.New("hashtags: malformed JSON array")
	}
	*h = tags
	return nil
}

// Highlight is a short-lived video post. It is visible while active and not
// yet expired.
type Highlight struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	VideoURL  string    `gorm:"not null" json:"video_url"`
	VideoKey  string    `json:"-"`
	Caption   string    `gorm:"type:text" json:"caption"`
	Hashtags  Hashtags  `gorm:"type:text;not null;default:'[]'" json:"hashtags"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	// Counts are not persisted; computed at query time
	AppreciationsCount int `gorm:"->" json:"appreciations_count"`
	CommentsCount      int `gorm:"->" json:"comments_count"`
	ViewsCount         int `gorm:"->" json:"views_count"`
	SharesCount        int `gorm:"->" json:"shares_count"`
}

// IsExpired reports whether the highlight's expiry instant has passed.
func (h *Highlight) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// TimeRemaining is the duration until expiry, zero once expired.
func (h *Highlight) TimeRemaining(now time.Time) time.Duration {
	if h.IsExpired(now) {
		return 0
	}
	return h.ExpiresAt.Sub(now)
}

// Visible reports whether the highlight may appear in feeds at now.
func (h *Highlight) Visible(now time.Time) bool {
	return h.IsActive && !h.IsExpired(now)
}

// FormatRemaining renders a remaining duration as "5h 12m", "12m" or "expired".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
