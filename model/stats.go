package model

import "time"

// UserStats is the single cumulative row per user. Created lazily on first
// stats read or first score submission; mutated only inside the submission
// transaction.
type UserStats struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"uniqueIndex;not null"`

	Sparks            int `json:"sparks" gorm:"default:0;not null"`
	BrainLevel        int `json:"brain_level" gorm:"default:1;not null"`
	SynapseStreak     int `json:"synapse_streak" gorm:"default:0;not null"`
	BestSynapseStreak int `json:"best_synapse_streak" gorm:"default:0;not null"`
	MindRating        int `json:"mind_rating" gorm:"default:0;not null;index"`

	TotalGamesPlayed int        `json:"total_games_played" gorm:"default:0;not null"`
	TotalTimeTrained int        `json:"total_time_trained" gorm:"default:0;not null"` // seconds
	LastActivityDate *time.Time `json:"last_activity_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameScore is append-only; rows are never updated or deleted outside full
// account deletion.
type GameScore struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;index"`

	GameType   string `json:"game_type" gorm:"not null;index"`
	Difficulty string `json:"difficulty" gorm:"default:medium;not null"`

	Score        int     `json:"score" gorm:"not null"`
	SparksEarned int     `json:"sparks_earned" gorm:"default:0;not null"`
	TimeTaken    int     `json:"time_taken" gorm:"default:0;not null"` // seconds
	Accuracy     float64 `json:"accuracy" gorm:"default:0;not null"`   // percentage

	PlayedAt time.Time `json:"played_at" gorm:"not null;index"`
}
