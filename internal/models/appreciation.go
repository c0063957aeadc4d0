package models

import (
	"fmt"
	"time"
)

// AppreciationLevel is the 1..6 reaction scale a viewer can give a highlight.
type AppreciationLevel int

const (
	LevelDislike AppreciationLevel = iota + 1
	LevelMeh
	LevelOK
	LevelGood
	LevelGreat
	LevelLegendary
)

// MinLevel and MaxLevel bound the valid range.
const (
	MinLevel = LevelDislike
	MaxLevel = LevelLegendary
)

var levelPoints = map[AppreciationLevel]int{
	LevelDislike:   -10,
	LevelMeh:       -4,
	LevelOK:        2,
	LevelGood:      4,
	LevelGreat:     6,
	LevelLegendary: 10,
}

var levelLabels = map[AppreciationLevel]string{
	LevelDislike:   "dislike",
	LevelMeh:       "meh",
	LevelOK:        "ok",
	LevelGood:      "good",
	LevelGreat:     "great",
	LevelLegendary: "legendary",
}

// PointValue is the reputation delta awarded to an author for one reaction
// at the given level. Unknown levels are worth nothing.
func PointValue(level AppreciationLevel) int {
	return levelPoints[level]
}

// Valid reports whether l is within 1..6.
func (l AppreciationLevel) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// Points is shorthand for PointValue(l).
func (l AppreciationLevel) Points() int {
	return PointValue(l)
}

func (l AppreciationLevel) String() string {
	if label, ok := levelLabels[l]; ok {
		return label
	}
	return fmt.Sprintf("level_%d", int(l))
}

// Appreciation is one viewer's reaction to one highlight.
type Appreciation struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	HighlightID uint              `gorm:"not null;uniqueIndex:idx_appreciation_highlight_user" json:"highlight_id"`
	UserID      uint              `gorm:"not null;uniqueIndex:idx_appreciation_highlight_user;index" json:"user_id"`
	Level       AppreciationLevel `gorm:"not null" json:"level"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// LevelCounts maps "level_1".."level_6" to the number of reactions at that level.
type LevelCounts map[string]int64

// NewLevelCounts returns a LevelCounts with every level present and zero.
func NewLevelCounts() LevelCounts {
	counts := make(LevelCounts, int(MaxLevel))
	for l := MinLevel; l <= MaxLevel; l++ {
		counts[LevelKey(l)] = 0
	}
	return counts
}

// LevelKey is the response key for a level, e.g. "level_3".
func LevelKey(l AppreciationLevel) string {
	return fmt.Sprintf("level_%d", int(l))
}
