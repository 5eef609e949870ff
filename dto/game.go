package dto

import "time"

// ==================== SCORE SUBMISSION DTOs ====================

type SubmitScoreRequest struct {
	GameType   string  `json:"game_type" validate:"required,min=2,max=50" example:"math_sprint"`
	Difficulty string  `json:"difficulty" validate:"required" example:"hard"`
	Score      int     `json:"score" validate:"gte=0" example:"100"`
	TimeTaken  int     `json:"time_taken" validate:"gte=0" example:"30"` // seconds
	Accuracy   float64 `json:"accuracy" validate:"gte=0,lte=100" example:"90"`

	// Optional client-reported fields carried through from the game client.
	QuestionsAnswered int `json:"questions_answered,omitempty" validate:"omitempty,gte=0"`
	CorrectAnswers    int `json:"correct_answers,omitempty" validate:"omitempty,gte=0"`
	BestStreak        int `json:"best_streak,omitempty" validate:"omitempty,gte=0"`
}

func (s SubmitScoreRequest) Validate() error {
	return GetValidator().Struct(s)
}

type GameScoreResponse struct {
	ID           string    `json:"id"`
	GameType     string    `json:"game_type" example:"math_sprint"`
	Difficulty   string    `json:"difficulty" example:"hard"`
	Score        int       `json:"score" example:"100"`
	SparksEarned int       `json:"sparks_earned" example:"29"`
	TimeTaken    int       `json:"time_taken" example:"30"`
	Accuracy     float64   `json:"accuracy" example:"90"`
	PlayedAt     time.Time `json:"played_at"`
}

// ==================== STATS DTOs ====================

type UserStatsResponse struct {
	Sparks            int        `json:"sparks" example:"420"`
	BrainLevel        int        `json:"brain_level" example:"3"`
	SynapseStreak     int        `json:"synapse_streak" example:"4"`
	BestSynapseStreak int        `json:"best_synapse_streak" example:"12"`
	MindRating        int        `json:"mind_rating" example:"87"`
	TotalGamesPlayed  int        `json:"total_games_played" example:"31"`
	TotalTimeTrained  int        `json:"total_time_trained" example:"5400"`
	LastActivityDate  *time.Time `json:"last_activity_date"`
}

// ==================== HISTORY / BEST SCORE DTOs ====================

type GameHistoryResponse struct {
	Games      []GameScoreResponse `json:"games"`
	TotalCount int                 `json:"total_count" example:"31"`
}

type BestScoreResponse struct {
	BestScore  int        `json:"best_score" example:"180"`
	GameType   string     `json:"game_type" example:"math_sprint"`
	Difficulty string     `json:"difficulty,omitempty" example:"hard"`
	Accuracy   float64    `json:"accuracy,omitempty" example:"95"`
	PlayedAt   *time.Time `json:"played_at,omitempty"`
}

// ==================== LEADERBOARD DTOs ====================

type LeaderboardEntry struct {
	Rank       int    `json:"rank" example:"1"`
	Username   string `json:"username" example:"johndoe"`
	MindRating int    `json:"mind_rating" example:"142"`
	BrainLevel int    `json:"brain_level" example:"5"`
	Sparks     int    `json:"sparks" example:"1337"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
	Total   int                `json:"total" example:"10"`
}

// ==================== PLATFORM STATS DTOs ====================

type PlatformStatsResponse struct {
	ActivePlayers string             `json:"active_players" example:"1.2K+"`
	GamesPlayed   string             `json:"games_played" example:"45.8K+"`
	SparksEarned  string             `json:"sparks_earned" example:"1.1M+"`
	RawCounts     PlatformStatsCount `json:"raw_counts"`
}

type PlatformStatsCount struct {
	Users  int64 `json:"users" example:"1234"`
	Games  int64 `json:"games" example:"45800"`
	Sparks int64 `json:"sparks" example:"1100000"`
}
