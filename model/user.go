package model

import "time"

type User struct {
	ID             string `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;not null"`
	Username       string `gorm:"uniqueIndex;not null"`
	Password       string `gorm:"not null"`
	FullName       string
	AvatarObject   string
	IsActive       bool `gorm:"default:true;not null"`
	FailedAttempts int  `gorm:"default:0;not null"`
	LastLoginAt    *time.Time
	LastLoginIP    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
