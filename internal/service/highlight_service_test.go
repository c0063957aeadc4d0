package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"blizz/internal/events"
	"blizz/internal/models"
	"blizz/internal/repository"
	"blizz/internal/storage"
	"blizz/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mediaStub is a stub for storage.MediaStore.
type mediaStub struct {
	putFn    func(context.Context, string, io.Reader, int64, string) (string, error)
	removed  []string
	removeFn func(context.Context, string) error
}

func (m *mediaStub) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	return m.putFn(ctx, key, r, size, contentType)
}

func (m *mediaStub) Remove(ctx context.Context, key string) error {
	m.removed = append(m.removed, key)
	if m.removeFn != nil {
		return m.removeFn(ctx, key)
	}
	return nil
}

func newMediaStub() *mediaStub {
	return &mediaStub{
		putFn: func(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
			_, _ = io.Copy(io.Discard, r)
			return "/media/" + key, nil
		},
	}
}

type highlightFixture struct {
	db     *gorm.DB
	svc    *HighlightService
	media  *mediaStub
	events *recordingPublisher
	notify *recordingNotifier
}

func newHighlightFixture(t *testing.T) *highlightFixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &highlightFixture{
		db:     db,
		media:  newMediaStub(),
		events: &recordingPublisher{},
		notify: &recordingNotifier{},
	}
	f.svc = NewHighlightService(HighlightDeps{
		Highlights:     repository.NewHighlightRepository(db),
		Appreciations:  repository.NewAppreciationRepository(db),
		Comments:       repository.NewCommentRepository(db),
		Views:          repository.NewViewRepository(db),
		Shares:         repository.NewShareRepository(db),
		Users:          repository.NewUserRepository(db),
		Media:          f.media,
		Events:         f.events,
		Notifier:       f.notify,
		MaxUploadBytes: 1 << 20,
	})
	return f
}

func TestHighlightService_Create(t *testing.T) {
	f := newHighlightFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author")

	item, err := f.svc.Create(ctx, CreateHighlightInput{
		AuthorID:    author.ID,
		Caption:     "  Landed it #Kickflip #skate #kickflip ",
		Video:       strings.NewReader("video-bytes"),
		Size:        11,
		ContentType: "video/mp4",
		Filename:    "clip.MP4",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"kickflip", "skate", "kickflip"}, item.Hashtags)
	assert.Equal(t, "Landed it #Kickflip #skate #kickflip", item.Caption)
	assert.True(t, strings.HasPrefix(item.VideoURL, "/media/"+storage.HighlightPrefix))
	assert.True(t, strings.HasSuffix(item.VideoURL, ".mp4"))
	assert.Equal(t, models.DefaultHighlightTTL, item.ExpiresAt.Sub(item.CreatedAt))
	assert.Equal(t, "author", item.Author.Username)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, events.TypeHighlightCreated, f.events.events[0].Type)
}

func TestHighlightService_CreateValidation(t *testing.T) {
	f := newHighlightFixture(t)
	ctx := context.Background()

	cases := []CreateHighlightInput{
		{AuthorID: 1, Caption: "no video"},
		{AuthorID: 1, Video: strings.NewReader("x"), Size: 2 << 20, ContentType: "video/mp4"},
		{AuthorID: 1, Video: strings.NewReader("x"), Size: 1, ContentType: "image/png"},
		{AuthorID: 1, Video: strings.NewReader("x"), Size: 1, ContentType: "video/mp4", Caption: strings.Repeat("a", 2201)},
	}
	for _, in := range cases {
		_, err := f.svc.Create(ctx, in)
		assertValidationError(t, err)
	}
}

func TestHighlightService_CreateRemovesMediaOnStoreFailure(t *testing.T) {
	f := newHighlightFixture(t)
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = f.svc.Create(context.Background(), CreateHighlightInput{
		AuthorID: 1, Video: strings.NewReader("x"), Size: 1, ContentType: "video/mp4", Filename: "a.mp4",
	})
	assertCode(t, models.CodeInternal, err)
	assert.Len(t, f.media.removed, 1)
}

func TestHighlightService_GetRecordsViewAndNeighbors(t *testing.T) {
	f := newHighlightFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	author := testutil.CreateUser(t, f.db, "author")
	viewer := testutil.CreateUser(t, f.db, "viewer")
	older := testutil.CreateHighlight(t, f.db, author.ID, now.Add(-3*time.Hour))
	h := testutil.CreateHighlight(t, f.db, author.ID, now.Add(-2*time.Hour))
	newer := testutil.CreateHighlight(t, f.db, author.ID, now.Add(-1*time.Hour))

	detail, err := f.svc.Get(ctx, h.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Highlight.ViewsCount)
	require.NotNil(t, detail.PreviousID)
	require.NotNil(t, detail.NextID)
	assert.Equal(t, newer.ID, *detail.PreviousID)
	assert.Equal(t, older.ID, *detail.NextID)
	assert.NotNil(t, detail.Comments)

	detail, err = f.svc.Get(ctx, h.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Highlight.ViewsCount)

	detail, err = f.svc.Get(ctx, h.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Highlight.ViewsCount)
}

func TestHighlightService_InvisibleIsNotFound(t *testing.T) {
	f := newHighlightFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	author := testutil.CreateUser(t, f.db, "author")
	expired := testutil.CreateHighlight(t, f.db, author.ID, now.Add(-48*time.Hour))
	inactive := testutil.CreateHighlight(t, f.db, author.ID, now)
	testutil.Deactivate(t, f.db, inactive)

	for _, id := range []uint{expired.ID, inactive.ID, 12345} {
		_, err := f.svc.Get(ctx, id, author.ID)
		assertCode(t, models.CodeNotFound, err)
		_, err = f.svc.AddComment(ctx, id, author.ID, "hi")
		assertCode(t, models.CodeNotFound, err)
		_, err = f.svc.RecordView(ctx, RecordViewInput{HighlightID: id, IP: "1.2.3.4"})
		assertCode(t, models.CodeNotFound, err)
	}
}

func TestHighlightService_Delete(t *testing.T) {
	f := newHighlightFixture(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, f.db, "author")
	other := testutil.CreateUser(t, f.db, "other")
	h := testutil.CreateHighlight(t, f.db, author.ID, time.Now().UTC())
	require.NoError(t, f.db.Model(h).Update("video_key", "highlights/x.mp4").Error)

	err := f.svc.Delete(ctx, h.ID, other.ID)
	assertCode(t, models.CodeUnauthorized, err)

	f.media.removeFn = func(context.Context, string) error { return errors.New("bucket gone") }
	require.NoError(t, f.svc.Delete(ctx, h.ID, author.ID))
	assert.Equal(t, []string{"highlights/x.mp4"}, f.media.removed)

	err = f.svc.Delete(ctx, h.ID, author.ID)
	assertCode(t, models.CodeNotFound, err)
}

func TestHighlightService_Comments(t *testing.T) {
	f := newHighlightFixture(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, f.db, "author")
	viewer := testutil.CreateUser(t, f.db, "viewer")
	h := testutil.CreateHighlight(t, f.db, author.ID, time.Now().UTC())

	_, err := f.svc.AddComment(ctx, h.ID, viewer.ID, "   ")
	assertValidationError(t, err)
	_, err = f.svc.AddComment(ctx, h.ID, viewer.ID, strings.Repeat("x", 501))
	assertValidationError(t, err)

	c, err := f.svc.AddComment(ctx, h.ID, viewer.ID, "  great clip ")
	require.NoError(t, err)
	assert.Equal(t, "great clip", c.Content)
	assert.Equal(t, "viewer", c.User.Username)
	assert.Equal(t, []uint{author.ID}, f.notify.recipients)

	_, err = f.svc.AddComment(ctx, h.ID, author.ID, "thanks")
	require.NoError(t, err)
	assert.Equal(t, []uint{author.ID}, f.notify.recipients, "authors are not notified of their own comments")

	comments, err := f.svc.ListComments(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
}

func TestHighlightService_Share(t *testing.T) {
	f := newHighlightFixture(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, f.db, "author")
	friend := testutil.CreateUser(t, f.db, "friend")
	h := testutil.CreateHighlight(t, f.db, author.ID, time.Now().UTC())

	missing := uint(999)
	err := f.svc.Share(ctx, h.ID, author.ID, &missing)
	assertCode(t, models.CodeNotFound, err)

	require.NoError(t, f.svc.Share(ctx, h.ID, author.ID, &friend.ID))
	require.NoError(t, f.svc.Share(ctx, h.ID, author.ID, nil))
	assert.Equal(t, []uint{friend.ID}, f.notify.recipients)

	got, err := repository.NewHighlightRepository(f.db).GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SharesCount)
}

func TestHighlightService_RecordView(t *testing.T) {
	f := newHighlightFixture(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, f.db, "author")
	viewer := testutil.CreateUser(t, f.db, "viewer")
	h := testutil.CreateHighlight(t, f.db, author.ID, time.Now().UTC())

	res, err := f.svc.RecordView(ctx, RecordViewInput{HighlightID: h.ID, UserID: &viewer.ID, Duration: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ViewsCount)

	res, err = f.svc.RecordView(ctx, RecordViewInput{HighlightID: h.ID, UserID: &viewer.ID, Duration: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ViewsCount)

	res, err = f.svc.RecordView(ctx, RecordViewInput{HighlightID: h.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ViewsCount)

	res, err = f.svc.RecordView(ctx, RecordViewInput{HighlightID: h.ID, IP: "10.1.1.1", Duration: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ViewsCount)

	var v models.HighlightView
	require.NoError(t, f.db.Where("user_id = ?", viewer.ID).First(&v).Error)
	assert.Equal(t, 7.0, v.ViewDuration)

	_, err = repository.NewAppreciationRepository(f.db).Apply(ctx, h.ID, viewer.ID, models.LevelOK)
	require.NoError(t, err)
	res, err = f.svc.RecordView(ctx, RecordViewInput{HighlightID: h.ID, IP: "10.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.EngagementRate)
}

func TestHighlightService_SearchAndLists(t *testing.T) {
	f := newHighlightFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	author := testutil.CreateUser(t, f.db, "skater")
	h1 := testutil.CreateHighlight(t, f.db, author.ID, now.Add(-time.Hour), "kickflip")
	h2 := testutil.CreateHighlight(t, f.db, author.ID, now.Add(-2*time.Hour), "ollie")

	_, err := f.svc.Search(ctx, "  ", 0, 1, 20)
	assertValidationError(t, err)
	_, err = f.svc.Search(ctx, "#", 0, 1, 20)
	assertValidationError(t, err)

	page, err := f.svc.Search(ctx, "#kick", 0, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []uint{h1.ID}, itemIDs(page.Items))

	page, err = f.svc.Search(ctx, "skat", 0, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []uint{h1.ID, h2.ID}, itemIDs(page.Items))

	page, err = f.svc.ByHashtag(ctx, "#OLLIE", 0, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []uint{h2.ID}, itemIDs(page.Items))

	page, err = f.svc.ByAuthor(ctx, author.ID, 0, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{h1.ID}, itemIDs(page.Items))
	assert.True(t, page.HasNext)

	_, err = f.svc.ByAuthor(ctx, 777, 0, 1, 20)
	assertCode(t, models.CodeNotFound, err)
}
