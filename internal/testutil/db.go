// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"blizz/internal/database"
	"blizz/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns an in-memory SQLite database with the full schema applied.
// A single connection keeps every statement on the same in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.ApplySchema(context.Background(), db))
	return db
}

// CreateUser inserts a user with a zero-score profile.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hashed",
		Profile:  &models.Profile{},
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateHighlight inserts a visible highlight created at createdAt.
func CreateHighlight(t testing.TB, db *gorm.DB, authorID uint, createdAt time.Time, tags ...string) *models.Highlight {
	t.Helper()
	h := &models.Highlight{
		AuthorID:  authorID,
		VideoURL:  "/media/highlights/test.mp4",
		Caption:   "clip",
		Hashtags:  models.Hashtags(tags),
		IsActive:  true,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(models.DefaultHighlightTTL),
	}
	require.NoError(t, db.Create(h).Error)
	return h
}

// Deactivate flips is_active off. GORM skips false on create because the
// column has a default, so this is done with an explicit update.
func Deactivate(t testing.TB, db *gorm.DB, h *models.Highlight) {
	t.Helper()
	require.NoError(t, db.Model(&models.Highlight{}).Where("id = ?", h.ID).Update("is_active", false).Error)
	h.IsActive = false
}

// Score reads the profile score of userID.
func Score(t testing.TB, db *gorm.DB, userID uint) int {
	t.Helper()
	var p models.Profile
	require.NoError(t, db.Where("user_id = ?", userID).First(&p).Error)
	return p.Score
}
