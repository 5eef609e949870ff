package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

// newTestSqlService opens an isolated in-memory database per test. The DSN is
// unique per call and shared-cache so every pooled connection sees one store.
func newTestSqlService(t *testing.T) *SqlService {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	svc := &SqlService{db: db, driver: DriverSqlite}
	if err := svc.migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return svc
}

func newTestStatsService(t *testing.T) (*StatsService, *SqlService) {
	t.Helper()
	sqlSvc := newTestSqlService(t)
	return &StatsService{sqlSvc: sqlSvc}, sqlSvc
}
