package seed

import (
	"context"
	"testing"

	"blizz/internal/models"
	"blizz/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreset_OverridesDefaults(t *testing.T) {
	p, err := ParsePreset([]byte("name: tiny\nusers: 2\nhashtags: [skate]\n"))
	require.NoError(t, err)

	assert.Equal(t, "tiny", p.Name)
	assert.Equal(t, 2, p.Users)
	assert.Equal(t, []string{"skate"}, p.Hashtags)
	assert.Equal(t, Presets["default"].HighlightsPerUser, p.HighlightsPerUser)
}

func TestParsePreset_RejectsRateOutOfRange(t *testing.T) {
	_, err := ParsePreset([]byte("view_rate: 1.5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "view_rate")
}

func TestLookupPreset(t *testing.T) {
	p, err := LookupPreset(" Small ")
	require.NoError(t, err)
	assert.Equal(t, "small", p.Name)

	_, err = LookupPreset("enormous")
	assert.Error(t, err)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	s := NewSeeder(nil, Options{DryRun: true, SkipBcrypt: true, RandSeed: 7})

	sum, err := s.Run(context.Background(), Preset{Name: "dry", Users: 3, HighlightsPerUser: 2, Hashtags: []string{"skate"}})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Users)
	assert.Equal(t, 6, sum.Highlights)
	assert.Zero(t, sum.Appreciations)
}

func TestRun_ScoresMatchAppreciations(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	s := NewSeeder(db, Options{SkipBcrypt: true, RandSeed: 42})

	p := Presets["small"]
	p.AppreciationRate = 0.8
	sum, err := s.Run(ctx, p)
	require.NoError(t, err)

	var users, highlights int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Highlight{}).Count(&highlights).Error)
	assert.EqualValues(t, sum.Users, users)
	assert.EqualValues(t, sum.Highlights, highlights)

	var rows []models.Appreciation
	require.NoError(t, db.Find(&rows).Error)
	assert.Len(t, rows, sum.Appreciations)

	expected := 0
	for _, r := range rows {
		expected += r.Level.Points()
	}
	var total int
	require.NoError(t, db.Model(&models.Profile{}).Select("COALESCE(SUM(score), 0)").Scan(&total).Error)
	assert.Equal(t, expected, total)
}

func TestClearAll(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	s := NewSeeder(db, Options{SkipBcrypt: true, RandSeed: 3})

	_, err := s.Run(ctx, Preset{Name: "x", Users: 2, HighlightsPerUser: 1, SubscriptionRate: 1})
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(ctx))

	for _, m := range []any{&models.User{}, &models.Highlight{}, &models.Subscription{}, &models.Profile{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n)
	}
}
