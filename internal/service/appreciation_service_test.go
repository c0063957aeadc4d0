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
)

// appreciationRepoStub is a stub for repository.AppreciationRepository.
type appreciationRepoStub struct {
	applyFn        func(context.Context, uint, uint, models.AppreciationLevel) (repository.ApplyOutcome, error)
	levelCountsFn  func(context.Context, []uint) (map[uint]models.LevelCounts, error)
	viewerLevelsFn func(context.Context, uint, []uint) (map[uint]models.AppreciationLevel, error)
}

func (s *appreciationRepoStub) Apply(ctx context.Context, highlightID, userID uint, level models.AppreciationLevel) (repository.ApplyOutcome, error) {
	return s.applyFn(ctx, highlightID, userID, level)
}
func (s *appreciationRepoStub) LevelCounts(ctx context.Context, ids []uint) (map[uint]models.LevelCounts, error) {
	return s.levelCountsFn(ctx, ids)
}
func (s *appreciationRepoStub) ViewerLevels(ctx context.Context, userID uint, ids []uint) (map[uint]models.AppreciationLevel, error) {
	return s.viewerLevelsFn(ctx, userID, ids)
}

func noopAppreciationRepo() *appreciationRepoStub {
	return &appreciationRepoStub{
		applyFn: func(_ context.Context, _, _ uint, level models.AppreciationLevel) (repository.ApplyOutcome, error) {
			return repository.ApplyOutcome{Level: level}, nil
		},
		levelCountsFn: func(_ context.Context, ids []uint) (map[uint]models.LevelCounts, error) {
			out := make(map[uint]models.LevelCounts)
			for _, id := range ids {
				out[id] = models.NewLevelCounts()
			}
			return out, nil
		},
		viewerLevelsFn: func(_ context.Context, _ uint, _ []uint) (map[uint]models.AppreciationLevel, error) {
			return map[uint]models.AppreciationLevel{}, nil
		},
	}
}

func TestAppreciationService_InvalidLevelSkipsStore(t *testing.T) {
	t.Parallel()
	repo := noopAppreciationRepo()
	repo.applyFn = func(_ context.Context, _, _ uint, _ models.AppreciationLevel) (repository.ApplyOutcome, error) {
		t.Fatal("apply must not be called")
		return repository.ApplyOutcome{}, nil
	}
	svc := NewAppreciationService(repo, nil, nil)

	for _, level := range []int{0, 7, -1} {
		_, err := svc.Appreciate(context.Background(), 1, 2, level)
		assertValidationError(t, err)
	}
}

func TestAppreciationService_PropagatesNotFound(t *testing.T) {
	t.Parallel()
	repo := noopAppreciationRepo()
	repo.applyFn = func(_ context.Context, id, _ uint, _ models.AppreciationLevel) (repository.ApplyOutcome, error) {
		return repository.ApplyOutcome{}, models.NewNotFoundError("Highlight", id)
	}
	pub := &recordingPublisher{}
	svc := NewAppreciationService(repo, pub, nil)

	_, err := svc.Appreciate(context.Background(), 5, 2, 3)
	assertCode(t, models.CodeNotFound, err)
	assert.Empty(t, pub.events)
}

func TestAppreciationService_EmitsOnlyOnChange(t *testing.T) {
	t.Parallel()
	changed := true
	repo := noopAppreciationRepo()
	repo.applyFn = func(_ context.Context, _, _ uint, level models.AppreciationLevel) (repository.ApplyOutcome, error) {
		return repository.ApplyOutcome{AuthorID: 8, Level: level, Created: changed, Changed: changed, Delta: level.Points()}, nil
	}
	repo.levelCountsFn = func(_ context.Context, _ []uint) (map[uint]models.LevelCounts, error) {
		counts := models.NewLevelCounts()
		counts["level_6"] = 2
		counts["level_1"] = 1
		return map[uint]models.LevelCounts{4: counts}, nil
	}
	pub := &recordingPublisher{}
	notifier := &recordingNotifier{}
	svc := NewAppreciationService(repo, pub, notifier)

	res, err := svc.Appreciate(context.Background(), 4, 2, 6)
	require.NoError(t, err)
	assert.Equal(t, models.LevelLegendary, res.Level)
	assert.Equal(t, int64(3), res.TotalCount)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeHighlightAppreciated, pub.events[0].Type)
	assert.Equal(t, 10, pub.events[0].Delta)
	assert.Equal(t, []uint{8}, notifier.recipients)

	changed = false
	_, err = svc.Appreciate(context.Background(), 4, 2, 6)
	require.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestAppreciationService_PublishFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()
	repo := noopAppreciationRepo()
	repo.applyFn = func(_ context.Context, _, _ uint, level models.AppreciationLevel) (repository.ApplyOutcome, error) {
		return repository.ApplyOutcome{AuthorID: 8, Level: level, Changed: true, Delta: 2}, nil
	}
	svc := NewAppreciationService(repo, &recordingPublisher{err: errStore}, &recordingNotifier{err: errStore})

	_, err := svc.Appreciate(context.Background(), 4, 2, 3)
	assert.NoError(t, err)
}

func TestAppreciationService_ScoreScenario(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAppreciationService(repository.NewAppreciationRepository(db), nil, nil)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	v1 := testutil.CreateUser(t, db, "viewer1")
	v2 := testutil.CreateUser(t, db, "viewer2")
	h := testutil.CreateHighlight(t, db, author.ID, time.Now().UTC().Add(-time.Hour))

	_, err := svc.Appreciate(ctx, h.ID, v1.ID, 6)
	require.NoError(t, err)
	_, err = svc.Appreciate(ctx, h.ID, v2.ID, 2)
	require.NoError(t, err)
	res, err := svc.Appreciate(ctx, h.ID, v1.ID, 3)
	require.NoError(t, err)

	// 10 - 4, then v1 moves 10 -> 2
	assert.Equal(t, -2, testutil.Score(t, db, author.ID))
	assert.Equal(t, int64(2), res.TotalCount)
	assert.Equal(t, int64(1), res.Counts["level_3"])
	assert.Equal(t, int64(1), res.Counts["level_2"])
	assert.Equal(t, int64(0), res.Counts["level_6"])
}
