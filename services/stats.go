package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/brainforge-app/forge_api/dto"
	"github.com/brainforge-app/forge_api/model"
	"github.com/brainforge-app/forge_api/shared"
)

// StatsService is the scoring engine: spark calculation, brain-level
// progression, synapse streak tracking, mind rating, and the leaderboard.
type StatsService struct {
	appContext.DefaultService

	sqlSvc   *SqlService
	redisSvc *RedisService
}

const STATS_SVC = "stats_svc"

const (
	leaderboardCacheTTL   = time.Minute
	platformStatsCacheTTL = 10 * time.Minute
	platformStatsCacheKey = "platform:stats"

	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

func (svc StatsService) Id() string {
	return STATS_SVC
}

func (svc *StatsService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *StatsService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// ==================== SPARK CALCULATION ====================

var difficultyMultipliers = map[string]float64{
	shared.DifficultyEasy:   1.0,
	shared.DifficultyMedium: 1.5,
	shared.DifficultyHard:   2.0,
	shared.DifficultyExpert: 3.0,
}

// CalculateSparks derives the sparks awarded for a single game session.
// Minimum 10 sparks for playing; accuracy grants up to 50% extra.
func CalculateSparks(score int, difficulty string, accuracy float64) int {
	base := score / 10
	if base < 10 {
		base = 10
	}

	multiplier, ok := difficultyMultipliers[difficulty]
	if !ok {
		multiplier = 1.0
	}

	accuracyBonus := 1 + accuracy/200

	sparks := int(float64(base) * multiplier * accuracyBonus)
	if sparks < 10 {
		sparks = 10
	}
	return sparks
}

// ==================== BRAIN LEVEL CALCULATION ====================

// CalculateBrainLevel returns the highest level whose cumulative threshold
// does not exceed the spark total. Thresholds are triangular:
// level 2 at 100, level 3 at 300, level 4 at 600, level 5 at 1000, with the
// step between levels growing by 100 each time.
func CalculateBrainLevel(sparks int) int {
	level := 1
	required := 100
	increment := 100

	for sparks >= required {
		level++
		increment += 100
		required += increment
	}

	return level
}

// BrainLevelThreshold returns the cumulative sparks required to reach level n.
func BrainLevelThreshold(level int) int {
	if level <= 1 {
		return 0
	}
	return 50 * level * (level - 1)
}

// ==================== STREAK STATE MACHINE ====================

// updateSynapseStreak advances the consecutive-day counter. Day boundaries are
// UTC calendar dates; repeated submissions within the same day are no-ops for
// the streak itself.
func updateSynapseStreak(stats *model.UserStats, now time.Time) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if stats.LastActivityDate == nil {
		stats.SynapseStreak = 1
	} else {
		last := stats.LastActivityDate.UTC()
		lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)

		daysDiff := int(today.Sub(lastDay).Hours() / 24)

		switch daysDiff {
		case 0:
			// Same day, no change to streak
		case 1:
			stats.SynapseStreak++
		default:
			stats.SynapseStreak = 1
		}
	}

	if stats.SynapseStreak > stats.BestSynapseStreak {
		stats.BestSynapseStreak = stats.SynapseStreak
	}

	stats.LastActivityDate = &now
}

// ==================== MIND RATING ====================

// applyMindRating folds a new score into the exponential moving average.
func applyMindRating(stats *model.UserStats, score int) {
	stats.MindRating = int(float64(stats.MindRating)*0.7 + float64(score)*0.3)
}

// ==================== SUBMISSION ORCHESTRATOR ====================

// SubmitScore records one game session and updates the user's cumulative stats
// in a single transaction. Nothing becomes visible unless every step succeeds.
func (svc *StatsService) SubmitScore(userID string, req dto.SubmitScoreRequest) (*dto.GameScoreResponse, error) {
	sparksEarned := CalculateSparks(req.Score, req.Difficulty, req.Accuracy)
	now := time.Now()

	scoreID, _ := uuid.NewV7()
	gameScore := &model.GameScore{
		ID:           scoreID.String(),
		UserID:       userID,
		GameType:     req.GameType,
		Difficulty:   req.Difficulty,
		Score:        req.Score,
		SparksEarned: sparksEarned,
		TimeTaken:    req.TimeTaken,
		Accuracy:     req.Accuracy,
		PlayedAt:     now,
	}

	err := svc.sqlSvc.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(gameScore).Error; err != nil {
			return err
		}

		stats, err := svc.getOrCreateStatsTx(tx, userID)
		if err != nil {
			return err
		}

		stats.Sparks += sparksEarned
		stats.TotalGamesPlayed++
		stats.TotalTimeTrained += req.TimeTaken

		applyMindRating(stats, req.Score)

		// Clients report a locally observed streak; adopt it when it beats the
		// stored record. The value is not verified server-side.
		if req.BestStreak > stats.BestSynapseStreak {
			stats.BestSynapseStreak = req.BestStreak
			log.WithFields(log.Fields{
				"user_id":     userID,
				"best_streak": req.BestStreak,
			}).Info("New best streak record from client")
		}

		stats.BrainLevel = CalculateBrainLevel(stats.Sparks)

		updateSynapseStreak(stats, now)

		stats.UpdatedAt = now
		return tx.Save(stats).Error
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":   userID,
			"game_type": req.GameType,
		}).Error("Score submission failed, rolling back")
		return nil, shared.NewInternalError(err, "Failed to submit score")
	}

	log.WithFields(log.Fields{
		"user_id":       userID,
		"game_type":     req.GameType,
		"sparks_earned": sparksEarned,
	}).Info("Score submitted")

	return mapGameScoreResponse(gameScore), nil
}

// getOrCreateStatsTx fetches the stats row for update inside the submission
// transaction, creating it with defaults on first activity.
func (svc *StatsService) getOrCreateStatsTx(tx *gorm.DB, userID string) (*model.UserStats, error) {
	var stats model.UserStats
	err := svc.sqlSvc.WithRowLock(tx).Where("user_id = ?", userID).First(&stats).Error
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, _ := uuid.NewV7()
	stats = model.UserStats{
		ID:         id.String(),
		UserID:     userID,
		BrainLevel: 1,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := tx.Create(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func mapGameScoreResponse(score *model.GameScore) *dto.GameScoreResponse {
	return &dto.GameScoreResponse{
		ID:           score.ID,
		GameType:     score.GameType,
		Difficulty:   score.Difficulty,
		Score:        score.Score,
		SparksEarned: score.SparksEarned,
		TimeTaken:    score.TimeTaken,
		Accuracy:     score.Accuracy,
		PlayedAt:     score.PlayedAt,
	}
}

// ==================== STATS READS ====================

func (svc *StatsService) GetUserStats(userID string) (*dto.UserStatsResponse, error) {
	stats, err := svc.sqlSvc.GetUserStats(userID)
	if err != nil {
		if appErr, ok := shared.GetAppError(err); ok && appErr.StatusCode == 404 {
			stats, err = svc.sqlSvc.CreateUserStats(&model.UserStats{UserID: userID})
		}
		if err != nil {
			return nil, err
		}
	}

	return &dto.UserStatsResponse{
		Sparks:            stats.Sparks,
		BrainLevel:        stats.BrainLevel,
		SynapseStreak:     stats.SynapseStreak,
		BestSynapseStreak: stats.BestSynapseStreak,
		MindRating:        stats.MindRating,
		TotalGamesPlayed:  stats.TotalGamesPlayed,
		TotalTimeTrained:  stats.TotalTimeTrained,
		LastActivityDate:  stats.LastActivityDate,
	}, nil
}

func (svc *StatsService) GetGameHistory(userID, gameType string, limit int) (*dto.GameHistoryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	scores, total, err := svc.sqlSvc.GetGameHistory(userID, gameType, limit)
	if err != nil {
		return nil, err
	}

	games := make([]dto.GameScoreResponse, len(scores))
	for i := range scores {
		games[i] = *mapGameScoreResponse(&scores[i])
	}

	return &dto.GameHistoryResponse{
		Games:      games,
		TotalCount: int(total),
	}, nil
}

func (svc *StatsService) GetBestScore(userID, gameType string) (*dto.BestScoreResponse, error) {
	best, err := svc.sqlSvc.GetBestScore(userID, gameType)
	if err != nil {
		if appErr, ok := shared.GetAppError(err); ok && appErr.StatusCode == 404 {
			return &dto.BestScoreResponse{BestScore: 0, GameType: gameType}, nil
		}
		return nil, err
	}

	return &dto.BestScoreResponse{
		BestScore:  best.Score,
		GameType:   gameType,
		Difficulty: best.Difficulty,
		Accuracy:   best.Accuracy,
		PlayedAt:   &best.PlayedAt,
	}, nil
}

// ==================== LEADERBOARD ====================

func (svc *StatsService) GetLeaderboard(limit int) (*dto.LeaderboardResponse, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	if svc.redisSvc != nil {
		var cached dto.LeaderboardResponse
		hit, err := svc.redisSvc.GetJSON(context.Background(), leaderboardCacheKey(limit), &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	resp, err := svc.buildLeaderboard(limit)
	if err != nil {
		return nil, err
	}

	if svc.redisSvc != nil {
		if err := svc.redisSvc.Set(context.Background(), leaderboardCacheKey(limit), resp, leaderboardCacheTTL); err != nil {
			log.WithError(err).Warn("Failed to cache leaderboard")
		}
	}

	return resp, nil
}

func (svc *StatsService) buildLeaderboard(limit int) (*dto.LeaderboardResponse, error) {
	top, err := svc.sqlSvc.GetTopStatsByMindRating(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(top))
	for _, stats := range top {
		user, err := svc.sqlSvc.GetUser(stats.UserID)
		if err != nil {
			log.WithError(err).WithField("user_id", stats.UserID).Warn("Leaderboard entry without user")
			continue
		}

		entries = append(entries, dto.LeaderboardEntry{
			Rank:       len(entries) + 1,
			Username:   user.Username,
			MindRating: stats.MindRating,
			BrainLevel: stats.BrainLevel,
			Sparks:     stats.Sparks,
		})
	}

	return &dto.LeaderboardResponse{
		Entries: entries,
		Total:   len(entries),
	}, nil
}

func leaderboardCacheKey(limit int) string {
	return "leaderboard:top:" + strconv.Itoa(limit)
}

// WarmLeaderboardCache recomputes and re-caches the default leaderboard view.
// Called by the scheduler so the common read stays hot.
func (svc *StatsService) WarmLeaderboardCache() error {
	resp, err := svc.buildLeaderboard(DefaultLeaderboardLimit)
	if err != nil {
		return err
	}
	return svc.redisSvc.Set(context.Background(), leaderboardCacheKey(DefaultLeaderboardLimit), resp, leaderboardCacheTTL)
}

// ==================== PLATFORM STATS ====================

func (svc *StatsService) GetPlatformStats() (*dto.PlatformStatsResponse, error) {
	if svc.redisSvc != nil {
		var cached dto.PlatformStatsResponse
		hit, err := svc.redisSvc.GetJSON(context.Background(), platformStatsCacheKey, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	resp, err := svc.buildPlatformStats()
	if err != nil {
		return nil, err
	}

	if svc.redisSvc != nil {
		if err := svc.redisSvc.Set(context.Background(), platformStatsCacheKey, resp, platformStatsCacheTTL); err != nil {
			log.WithError(err).Warn("Failed to cache platform stats")
		}
	}

	return resp, nil
}

func (svc *StatsService) buildPlatformStats() (*dto.PlatformStatsResponse, error) {
	users, err := svc.sqlSvc.CountUsers()
	if err != nil {
		return nil, err
	}
	games, err := svc.sqlSvc.CountGameScores()
	if err != nil {
		return nil, err
	}
	sparks, err := svc.sqlSvc.SumSparks()
	if err != nil {
		return nil, err
	}

	return &dto.PlatformStatsResponse{
		ActivePlayers: formatStat(users),
		GamesPlayed:   formatStat(games),
		SparksEarned:  formatStat(sparks),
		RawCounts: dto.PlatformStatsCount{
			Users:  users,
			Games:  games,
			Sparks: sparks,
		},
	}, nil
}

// RefreshPlatformStatsCache recomputes the public counters ahead of expiry.
func (svc *StatsService) RefreshPlatformStatsCache() error {
	resp, err := svc.buildPlatformStats()
	if err != nil {
		return err
	}
	return svc.redisSvc.Set(context.Background(), platformStatsCacheKey, resp, platformStatsCacheTTL)
}

func formatStat(num int64) string {
	switch {
	case num >= 1_000_000:
		return fmt.Sprintf("%.1fM+", float64(num)/1_000_000)
	case num >= 1_000:
		return fmt.Sprintf("%.1fK+", float64(num)/1_000)
	default:
		return strconv.FormatInt(num, 10)
	}
}
