package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"blizz/internal/models"
	"blizz/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	comment := &models.HighlightComment{HighlightID: 1, UserID: 1, Content: "Test comment"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "highlight_comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, comment)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByHighlightNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	u := testutil.CreateUser(t, db, "u")
	h := testutil.CreateHighlight(t, db, u.ID, now)
	require.NoError(t, repo.Create(ctx, &models.HighlightComment{HighlightID: h.ID, UserID: u.ID, Content: "first", CreatedAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.HighlightComment{HighlightID: h.ID, UserID: u.ID, Content: "second", CreatedAt: now}))

	comments, err := repo.ListByHighlight(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Content)
	assert.Equal(t, "u", comments[0].User.Username)
}
