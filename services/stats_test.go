package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainforge-app/forge_api/dto"
	"github.com/brainforge-app/forge_api/model"
)

func TestCalculateSparks(t *testing.T) {
	tests := []struct {
		name       string
		score      int
		difficulty string
		accuracy   float64
		want       int
	}{
		{"hard with high accuracy", 100, "hard", 90, 29},
		{"easy perfect accuracy", 100, "easy", 100, 15},
		{"zero score floors base", 0, "easy", 0, 10},
		{"low score floors base", 50, "easy", 0, 10},
		{"expert multiplier", 200, "expert", 50, 75},
		{"unknown difficulty defaults to 1x", 100, "nightmare", 0, 10},
		{"medium", 300, "medium", 80, 63},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateSparks(tt.score, tt.difficulty, tt.accuracy))
		})
	}
}

func TestCalculateSparksMinimum(t *testing.T) {
	// Every submission is worth at least 10 sparks
	for _, score := range []int{0, 1, 5, 99} {
		assert.GreaterOrEqual(t, CalculateSparks(score, "easy", 0), 10)
	}
}

func TestCalculateBrainLevel(t *testing.T) {
	tests := []struct {
		sparks int
		want   int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{599, 3},
		{600, 4},
		{999, 4},
		{1000, 5},
		{1499, 5},
		{1500, 6},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateBrainLevel(tt.sparks), "sparks=%d", tt.sparks)
	}
}

func TestBrainLevelThreshold(t *testing.T) {
	assert.Equal(t, 0, BrainLevelThreshold(1))
	assert.Equal(t, 100, BrainLevelThreshold(2))
	assert.Equal(t, 300, BrainLevelThreshold(3))
	assert.Equal(t, 600, BrainLevelThreshold(4))
	assert.Equal(t, 1000, BrainLevelThreshold(5))

	// The closed form and the loop must agree
	for level := 2; level <= 20; level++ {
		threshold := BrainLevelThreshold(level)
		assert.Equal(t, level, CalculateBrainLevel(threshold))
		assert.Equal(t, level-1, CalculateBrainLevel(threshold-1))
	}
}

func TestUpdateSynapseStreak(t *testing.T) {
	now := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)

	t.Run("first activity starts at 1", func(t *testing.T) {
		stats := &model.UserStats{}
		updateSynapseStreak(stats, now)

		assert.Equal(t, 1, stats.SynapseStreak)
		assert.Equal(t, 1, stats.BestSynapseStreak)
		require.NotNil(t, stats.LastActivityDate)
	})

	t.Run("next day extends streak", func(t *testing.T) {
		yesterday := now.AddDate(0, 0, -1)
		stats := &model.UserStats{SynapseStreak: 3, BestSynapseStreak: 3, LastActivityDate: &yesterday}
		updateSynapseStreak(stats, now)

		assert.Equal(t, 4, stats.SynapseStreak)
		assert.Equal(t, 4, stats.BestSynapseStreak)
	})

	t.Run("same day does not change streak", func(t *testing.T) {
		earlier := now.Add(-6 * time.Hour)
		stats := &model.UserStats{SynapseStreak: 3, BestSynapseStreak: 5, LastActivityDate: &earlier}
		updateSynapseStreak(stats, now)

		assert.Equal(t, 3, stats.SynapseStreak)
		assert.Equal(t, 5, stats.BestSynapseStreak)
	})

	t.Run("gap resets to 1", func(t *testing.T) {
		threeDaysAgo := now.AddDate(0, 0, -3)
		stats := &model.UserStats{SynapseStreak: 10, BestSynapseStreak: 10, LastActivityDate: &threeDaysAgo}
		updateSynapseStreak(stats, now)

		assert.Equal(t, 1, stats.SynapseStreak)
		assert.Equal(t, 10, stats.BestSynapseStreak)
	})

	t.Run("calendar day boundary not 24h window", func(t *testing.T) {
		// 23:30 yesterday to 00:30 today is one hour apart but a new day
		late := time.Date(2026, 8, 28, 23, 30, 0, 0, time.UTC)
		early := time.Date(2026, 8, 29, 0, 30, 0, 0, time.UTC)
		stats := &model.UserStats{SynapseStreak: 1, BestSynapseStreak: 1, LastActivityDate: &late}
		updateSynapseStreak(stats, early)

		assert.Equal(t, 2, stats.SynapseStreak)
	})

	t.Run("best streak follows current", func(t *testing.T) {
		yesterday := now.AddDate(0, 0, -1)
		stats := &model.UserStats{SynapseStreak: 7, BestSynapseStreak: 7, LastActivityDate: &yesterday}
		updateSynapseStreak(stats, now)

		assert.Equal(t, 8, stats.SynapseStreak)
		assert.Equal(t, 8, stats.BestSynapseStreak)
	})
}

func TestApplyMindRating(t *testing.T) {
	stats := &model.UserStats{MindRating: 0}

	applyMindRating(stats, 100)
	assert.Equal(t, 30, stats.MindRating)

	applyMindRating(stats, 100)
	assert.Equal(t, 51, stats.MindRating)

	// Converges toward the score under repetition
	for i := 0; i < 50; i++ {
		applyMindRating(stats, 100)
	}
	assert.InDelta(t, 100, stats.MindRating, 3)
}

func registerTestUser(t *testing.T, sqlSvc *SqlService, username string) *model.User {
	t.Helper()
	user, err := sqlSvc.CreateUser(dto.RegisterRequest{
		Email:    username + "@example.com",
		Username: username,
		Password: "SecurePass123!",
	})
	require.NoError(t, err)
	return user
}

func TestSubmitScore(t *testing.T) {
	statsSvc, sqlSvc := newTestStatsService(t)
	user := registerTestUser(t, sqlSvc, "player1")

	resp, err := statsSvc.SubmitScore(user.ID, dto.SubmitScoreRequest{
		GameType:   "math_sprint",
		Difficulty: "hard",
		Score:      100,
		TimeTaken:  30,
		Accuracy:   90,
	})
	require.NoError(t, err)

	assert.Equal(t, 29, resp.SparksEarned)
	assert.Equal(t, "math_sprint", resp.GameType)

	stats, err := sqlSvc.GetUserStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 29, stats.Sparks)
	assert.Equal(t, 1, stats.BrainLevel)
	assert.Equal(t, 1, stats.SynapseStreak)
	assert.Equal(t, 30, stats.MindRating)
	assert.Equal(t, 1, stats.TotalGamesPlayed)
	assert.Equal(t, 30, stats.TotalTimeTrained)
	require.NotNil(t, stats.LastActivityDate)
}

func TestSubmitScoreAccumulates(t *testing.T) {
	statsSvc, sqlSvc := newTestStatsService(t)
	user := registerTestUser(t, sqlSvc, "player2")

	for i := 0; i < 3; i++ {
		_, err := statsSvc.SubmitScore(user.ID, dto.SubmitScoreRequest{
			GameType:   "memory_grid",
			Difficulty: "expert",
			Score:      400,
			TimeTaken:  60,
			Accuracy:   100,
		})
		require.NoError(t, err)
	}

	// 400/10 * 3.0 * 1.5 = 180 sparks per game
	stats, err := sqlSvc.GetUserStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 540, stats.Sparks)
	assert.Equal(t, 3, stats.BrainLevel)
	assert.Equal(t, 3, stats.TotalGamesPlayed)
	assert.Equal(t, 180, stats.TotalTimeTrained)

	// Same-day submissions never inflate the streak
	assert.Equal(t, 1, stats.SynapseStreak)

	history, err := statsSvc.GetGameHistory(user.ID, "", 20)
	require.NoError(t, err)
	assert.Equal(t, 3, history.TotalCount)
	assert.Len(t, history.Games, 3)
}

func TestSubmitScoreClientBestStreak(t *testing.T) {
	statsSvc, sqlSvc := newTestStatsService(t)
	user := registerTestUser(t, sqlSvc, "player3")

	_, err := statsSvc.SubmitScore(user.ID, dto.SubmitScoreRequest{
		GameType:   "math_sprint",
		Difficulty: "easy",
		Score:      50,
		Accuracy:   50,
		BestStreak: 14,
	})
	require.NoError(t, err)

	stats, err := sqlSvc.GetUserStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 14, stats.BestSynapseStreak)

	// A lower client value never regresses the record
	_, err = statsSvc.SubmitScore(user.ID, dto.SubmitScoreRequest{
		GameType:   "math_sprint",
		Difficulty: "easy",
		Score:      50,
		Accuracy:   50,
		BestStreak: 3,
	})
	require.NoError(t, err)

	stats, err = sqlSvc.GetUserStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 14, stats.BestSynapseStreak)
}

func TestSubmitScoreRollsBackOnFailure(t *testing.T) {
	statsSvc, sqlSvc := newTestStatsService(t)
	user := registerTestUser(t, sqlSvc, "player4")

	require.NoError(t, sqlSvc.Db().Migrator().DropTable(&model.UserStats{}))

	_, err := statsSvc.SubmitScore(user.ID, dto.SubmitScoreRequest{
		GameType:   "math_sprint",
		Difficulty: "hard",
		Score:      100,
		Accuracy:   90,
	})
	require.Error(t, err)

	// The score row must not survive the failed stats update
	var count int64
	require.NoError(t, sqlSvc.Db().Model(&model.GameScore{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGetUserStatsCreatesDefaults(t *testing.T) {
	statsSvc, sqlSvc := newTestStatsService(t)
	user := registerTestUser(t, sqlSvc, "player5")

	resp, err := statsSvc.GetUserStats(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Sparks)
	assert.Equal(t, 1, resp.BrainLevel)
	assert.Equal(t, 0, resp.SynapseStreak)
	assert.Nil(t, resp.LastActivityDate)
}

func TestGetBestScore(t *testing.T) {
	statsSvc, sqlSvc := newTestStatsService(t)
	user := registerTestUser(t, sqlSvc, "player6")

	t.Run("no games returns zero sentinel", func(t *testing.T) {
		resp, err := statsSvc.GetBestScore(user.ID, "math_sprint")
		require.NoError(t, err)
		assert.Equal(t, 0, resp.BestScore)
		assert.Nil(t, resp.PlayedAt)
	})

	for _, score := range []int{80, 150, 120} {
		_, err := statsSvc.SubmitScore(user.ID, dto.SubmitScoreRequest{
			GameType:   "math_sprint",
			Difficulty: "medium",
			Score:      score,
			Accuracy:   90,
		})
		require.NoError(t, err)
	}

	t.Run("returns highest score", func(t *testing.T) {
		resp, err := statsSvc.GetBestScore(user.ID, "math_sprint")
		require.NoError(t, err)
		assert.Equal(t, 150, resp.BestScore)
		require.NotNil(t, resp.PlayedAt)
	})

	t.Run("other game type is independent", func(t *testing.T) {
		resp, err := statsSvc.GetBestScore(user.ID, "memory_grid")
		require.NoError(t, err)
		assert.Equal(t, 0, resp.BestScore)
	})
}

func TestGetGameHistoryFilter(t *testing.T) {
	statsSvc, sqlSvc := newTestStatsService(t)
	user := registerTestUser(t, sqlSvc, "player7")

	for _, gameType := range []string{"math_sprint", "math_sprint", "memory_grid"} {
		_, err := statsSvc.SubmitScore(user.ID, dto.SubmitScoreRequest{
			GameType:   gameType,
			Difficulty: "easy",
			Score:      100,
			Accuracy:   50,
		})
		require.NoError(t, err)
	}

	filtered, err := statsSvc.GetGameHistory(user.ID, "math_sprint", 20)
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.TotalCount)
	assert.Len(t, filtered.Games, 2)

	all, err := statsSvc.GetGameHistory(user.ID, "", 20)
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalCount)
}

func TestGetLeaderboardOrdering(t *testing.T) {
	statsSvc, sqlSvc := newTestStatsService(t)

	seed := []struct {
		username string
		rating   int
	}{
		{"alice", 120},
		{"bob", 200},
		{"carol", 120},
		{"dave", 50},
	}

	for _, s := range seed {
		user := registerTestUser(t, sqlSvc, s.username)
		_, err := sqlSvc.CreateUserStats(&model.UserStats{
			UserID:     user.ID,
			MindRating: s.rating,
			BrainLevel: 2,
			Sparks:     100,
		})
		require.NoError(t, err)
	}

	resp, err := statsSvc.GetLeaderboard(3)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 3)

	assert.Equal(t, "bob", resp.Entries[0].Username)
	assert.Equal(t, 1, resp.Entries[0].Rank)
	assert.Equal(t, 2, resp.Entries[1].Rank)
	assert.Equal(t, 3, resp.Entries[2].Rank)

	// Ties resolve by user id so repeated reads agree
	again, err := statsSvc.GetLeaderboard(3)
	require.NoError(t, err)
	assert.Equal(t, resp.Entries, again.Entries)
}

func TestGetLeaderboardFewerUsersThanLimit(t *testing.T) {
	statsSvc, sqlSvc := newTestStatsService(t)

	user := registerTestUser(t, sqlSvc, "solo")
	_, err := sqlSvc.CreateUserStats(&model.UserStats{UserID: user.ID, MindRating: 10})
	require.NoError(t, err)

	resp, err := statsSvc.GetLeaderboard(10)
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 1)
	assert.Equal(t, 1, resp.Total)
}

func TestGetPlatformStats(t *testing.T) {
	statsSvc, sqlSvc := newTestStatsService(t)

	user := registerTestUser(t, sqlSvc, "counter")
	_, err := statsSvc.SubmitScore(user.ID, dto.SubmitScoreRequest{
		GameType:   "math_sprint",
		Difficulty: "hard",
		Score:      100,
		Accuracy:   90,
	})
	require.NoError(t, err)

	resp, err := statsSvc.GetPlatformStats()
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.RawCounts.Users)
	assert.Equal(t, int64(1), resp.RawCounts.Games)
	assert.Equal(t, int64(29), resp.RawCounts.Sparks)
	assert.Equal(t, "1", resp.ActivePlayers)
}

func TestFormatStat(t *testing.T) {
	tests := []struct {
		num  int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K+"},
		{45800, "45.8K+"},
		{1100000, "1.1M+"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatStat(tt.num))
	}
}
