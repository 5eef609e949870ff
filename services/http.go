package services

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog/log"

	_ "github.com/brainforge-app/forge_api/docs"
	"github.com/brainforge-app/forge_api/services/handlers"
	"github.com/brainforge-app/forge_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc       *AuthService
	userSvc       *UserService
	statsSvc      *StatsService
	rateLimitSvc  *RateLimitService
	monitoringSvc *MonitoringService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	svc.statsSvc = svc.Service(STATS_SVC).(*StatsService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.app = fiber.New(fiber.Config{
		AppName:      "BrainForge API",
		ErrorHandler: svc.errorHandler,
	})

	svc.app.Use(recover.New())
	svc.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	svc.app.Use(MonitoringMiddleware(svc.monitoringSvc))

	svc.registerRoutes()

	log.Info().Int("port", svc.port).Msg("HTTP server started")
	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

func (svc *HttpService) registerRoutes() {
	authHandler := handlers.NewAuthHandler(svc.authSvc, svc.monitoringSvc)
	userHandler := handlers.NewUserHandler(svc.userSvc)
	gameHandler := handlers.NewGameHandler(svc.statsSvc, svc.monitoringSvc)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.statsSvc)

	svc.app.Get("/", svc.root)
	svc.app.Get("/ping", svc.ping)
	svc.app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := svc.app.Group("/api/v1")
	v1.Use(svc.rateLimitSvc.IPRateLimit())

	// Public
	v1.Post("/register", svc.rateLimitSvc.RateLimit("register"), authHandler.Register)
	v1.Post("/login", svc.rateLimitSvc.RateLimit("login"), authHandler.Login)
	v1.Get("/username/check/:username", svc.rateLimitSvc.RateLimit("username_check"), userHandler.CheckUsername)
	v1.Get("/leaderboard", leaderboardHandler.GetLeaderboard)
	v1.Get("/platform/stats", leaderboardHandler.GetPlatformStats)

	// Authenticated
	authed := v1.Group("", svc.authSvc.RequiredAuth())
	authed.Get("/profile", userHandler.GetProfile)
	authed.Put("/profile", svc.rateLimitSvc.UserBasedRateLimit("profile_update"), userHandler.UpdateProfile)
	authed.Post("/profile/avatar", svc.rateLimitSvc.UserBasedRateLimit("avatar_upload"), userHandler.UploadAvatar)
	authed.Post("/password/change", svc.rateLimitSvc.UserBasedRateLimit("change_password"), authHandler.ChangePassword)
	authed.Delete("/account", authHandler.DeleteAccount)

	authed.Get("/stats", gameHandler.GetStats)
	authed.Post("/games/score", svc.rateLimitSvc.UserBasedRateLimit("score_submit"), gameHandler.SubmitScore)
	authed.Get("/games/history", gameHandler.GetHistory)
	authed.Get("/games/best/:gameType", gameHandler.GetBestScore)
}

// @Summary Service info
// @Description Service name and version for uptime checks
// @Tags health
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router / [get]
func (svc *HttpService) root(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, http.StatusOK, "Success", "BrainForge API")
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")
	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	return shared.ResponseInternalError(c)
}
