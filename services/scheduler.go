package services

import (
	appContext "github.com/alphabatem/common/context"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// SchedulerService keeps the hot caches warm so public endpoints never pay
// the aggregate query cost on a cold read.
type SchedulerService struct {
	appContext.DefaultService

	cron     *cron.Cron
	statsSvc *StatsService
}

const SCHEDULER_SVC = "scheduler_svc"

func (svc SchedulerService) Id() string {
	return SCHEDULER_SVC
}

func (svc *SchedulerService) Configure(ctx *appContext.Context) error {
	svc.cron = cron.New()
	return svc.DefaultService.Configure(ctx)
}

func (svc *SchedulerService) Start() error {
	svc.statsSvc = svc.Service(STATS_SVC).(*StatsService)

	if _, err := svc.cron.AddFunc("@every 1m", svc.warmLeaderboard); err != nil {
		return err
	}
	if _, err := svc.cron.AddFunc("@every 10m", svc.refreshPlatformStats); err != nil {
		return err
	}

	svc.cron.Start()
	log.Info("Scheduler started")
	return nil
}

func (svc *SchedulerService) Shutdown() {
	if svc.cron != nil {
		svc.cron.Stop()
	}
}

func (svc *SchedulerService) warmLeaderboard() {
	if err := svc.statsSvc.WarmLeaderboardCache(); err != nil {
		log.WithError(err).Warn("Leaderboard cache warm failed")
	}
}

func (svc *SchedulerService) refreshPlatformStats() {
	if err := svc.statsSvc.RefreshPlatformStatsCache(); err != nil {
		log.WithError(err).Warn("Platform stats refresh failed")
	}
}
