package main

import (
	"github.com/brainforge-app/forge_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title BrainForge API
// @version 1.0
// @description Brain training backend: accounts, game scores and leaderboards
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.JWTService{},
		&services.SqlService{},
		&services.RedisService{},
		&services.StorageService{},
		&services.AuthService{},
		&services.UserService{},
		&services.StatsService{},
		&services.RateLimitService{},
		&services.SchedulerService{},
		&services.MonitoringService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
