package service

import (
	"context"
	"testing"
	"time"

	"blizz/internal/events"
	"blizz/internal/models"
	"blizz/internal/repository"
	"blizz/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSubscriptionService(db *gorm.DB, pub *recordingPublisher, notify *recordingNotifier) *SubscriptionService {
	return NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUserRepository(db),
		repository.NewHighlightRepository(db),
		pub,
		notify,
	)
}

func TestSubscriptionService_ToggleRejectsSelfAndMissing(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newSubscriptionService(db, &recordingPublisher{}, &recordingNotifier{})
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "alice")

	_, err := svc.Toggle(ctx, u.ID, u.ID)
	assertValidationError(t, err)

	_, err = svc.Toggle(ctx, u.ID, 4242)
	assertCode(t, models.CodeNotFound, err)
}

func TestSubscriptionService_Toggle(t *testing.T) {
	db := testutil.NewDB(t)
	pub := &recordingPublisher{}
	notify := &recordingNotifier{}
	svc := newSubscriptionService(db, pub, notify)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	res, err := svc.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Subscribed)
	assert.Equal(t, int64(1), res.SubscribersCount)
	assert.Equal(t, []uint{bob.ID}, notify.recipients)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeUserSubscribed, pub.events[0].Type)

	ids, err := svc.SubscribedIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)

	subs, err := svc.Subscribers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "alice", subs[0].Username)

	res, err = svc.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Subscribed)
	assert.Equal(t, int64(0), res.SubscribersCount)
	assert.Len(t, notify.recipients, 1, "unsubscribing notifies nobody")

	following, err := svc.Subscriptions(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestSubscriptionService_Stats(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newSubscriptionService(db, &recordingPublisher{}, nil)
	ctx := context.Background()
	now := time.Now().UTC()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	h := testutil.CreateHighlight(t, db, alice.ID, now)
	testutil.CreateHighlight(t, db, alice.ID, now.Add(-72*time.Hour))
	_, err := repository.NewAppreciationRepository(db).Apply(ctx, h.ID, bob.ID, models.LevelLegendary)
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.HighlightsCount, "expired highlights still count")
	assert.Equal(t, int64(2), stats.SubscribersCount)
	assert.Equal(t, int64(1), stats.SubscriptionsCount)
	assert.Equal(t, models.LevelLegendary.Points(), stats.Score)

	_, err = svc.Stats(ctx, 999)
	assertCode(t, models.CodeNotFound, err)
}
