package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/brainforge-app/forge_api/dto"
	"github.com/brainforge-app/forge_api/model"
	"github.com/brainforge-app/forge_api/shared"
)

type SqlService struct {
	context.DefaultService
	db *gorm.DB

	driver string
	dsn    string
}

const SQL_SVC = "sql_svc"

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

func (ds SqlService) Id() string {
	return SQL_SVC
}

// Db Access to the raw gorm handle
func (ds SqlService) Db() *gorm.DB {
	return ds.db
}

func (ds *SqlService) Configure(ctx *context.Context) error {
	ds.driver = os.Getenv("DB_DRIVER")
	if ds.driver == "" {
		ds.driver = DriverPostgres
	}

	switch ds.driver {
	case DriverSqlite:
		ds.dsn = os.Getenv("DB_DATABASE")
		if ds.dsn == "" {
			ds.dsn = "forge.db"
		}
	default:
		ds.dsn = os.Getenv("DATABASE_URL")
		if ds.dsn == "" {
			// Fallback to individual environment variables
			host := os.Getenv("DB_HOST")
			if host == "" {
				host = "localhost"
			}
			port := os.Getenv("DB_PORT")
			if port == "" {
				port = "5432"
			}
			user := os.Getenv("DB_USER")
			if user == "" {
				user = "postgres"
			}
			password := os.Getenv("DB_PASSWORD")
			if password == "" {
				password = "postgres"
			}
			dbname := os.Getenv("DB_NAME")
			if dbname == "" {
				dbname = "forge_api"
			}
			sslmode := os.Getenv("DB_SSLMODE")
			if sslmode == "" {
				sslmode = "disable"
			}

			ds.dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
				host, user, password, dbname, port, sslmode)
		}
	}

	return ds.DefaultService.Configure(ctx)
}

// Start opens the connection and migrates any tables that have changed since
// last runtime. Postgres startup races the database container, so the connect
// is retried with exponential backoff.
func (ds *SqlService) Start() (err error) {
	if ds.driver == DriverSqlite {
		ds.db, err = gorm.Open(sqlite.Open(ds.dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err != nil {
			return err
		}
		return ds.migrate()
	}

	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ds.db, err = gorm.Open(postgres.Open(ds.dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					log.Println("Successfully connected to database")
					return ds.migrate()
				} else {
					err = pingErr
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	return err
}

func (ds *SqlService) migrate() error {
	models := []interface{}{
		&model.User{},
		&model.UserStats{},
		&model.GameScore{},
	}

	if err := ds.db.AutoMigrate(models...); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *SqlService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// Transaction runs fn in a single unit of work; any error rolls everything back.
func (ds *SqlService) Transaction(fn func(tx *gorm.DB) error) error {
	return ds.db.Transaction(fn)
}

// WithRowLock applies SELECT ... FOR UPDATE where the driver supports it.
// Sqlite serializes writers at the database level, so the clause is skipped.
func (ds *SqlService) WithRowLock(tx *gorm.DB) *gorm.DB {
	if ds.driver == DriverSqlite {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (ds *SqlService) HandleError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := shared.GetAppError(err); ok {
		return err
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	message := "Database operation failed"
	if statusCode == http.StatusNotFound {
		message = "Not found"
	}
	return shared.NewAppError(statusCode, err, message)
}

// ==================== USER METHODS ====================

func (ds *SqlService) CreateUser(req dto.RegisterRequest) (*model.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to hash password")
	}

	id, _ := uuid.NewV7()
	user := &model.User{
		ID:        id.String(),
		Username:  req.Username,
		Email:     strings.ToLower(req.Email),
		Password:  string(hashed),
		FullName:  req.FullName,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := ds.db.Create(user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return user, nil
}

func (ds *SqlService) GetUser(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *SqlService) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *SqlService) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *SqlService) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("LOWER(email) = LOWER(?) OR username = ?", emailOrUsername, emailOrUsername).
		First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *SqlService) UpdateUserProfile(userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	if err := ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *SqlService) UpdateUserPassword(userID, hashedPassword string) error {
	return ds.HandleError(ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password":   hashedPassword,
		"updated_at": time.Now(),
	}).Error)
}

func (ds *SqlService) UpdateUserAvatar(userID, objectName string) error {
	return ds.HandleError(ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"avatar_object": objectName,
		"updated_at":    time.Now(),
	}).Error)
}

func (ds *SqlService) UpdateLastLogin(userID, ip string) error {
	now := time.Now()
	return ds.HandleError(ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"last_login_at": &now,
		"last_login_ip": ip,
		"updated_at":    now,
	}).Error)
}

func (ds *SqlService) IncrementFailedAttempts(userID string) error {
	return ds.HandleError(ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"failed_attempts": gorm.Expr("failed_attempts + 1"),
		"updated_at":      time.Now(),
	}).Error)
}

func (ds *SqlService) ResetFailedAttempts(userID string) error {
	return ds.HandleError(ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"failed_attempts": 0,
		"updated_at":      time.Now(),
	}).Error)
}

func (ds *SqlService) IsUsernameAvailable(username string) (bool, error) {
	var count int64
	if err := ds.db.Model(&model.User{}).Where("LOWER(username) = LOWER(?)", username).
		Count(&count).Error; err != nil {
		return false, ds.HandleError(err)
	}
	return count == 0, nil
}

func (ds *SqlService) IsEmailAvailable(email string) (bool, error) {
	var count int64
	if err := ds.db.Model(&model.User{}).Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error; err != nil {
		return false, ds.HandleError(err)
	}
	return count == 0, nil
}

// DeleteUser removes the account and everything hanging off it in one unit.
func (ds *SqlService) DeleteUser(userID string) error {
	err := ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.GameScore{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.UserStats{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&model.User{}).Error
	})
	return ds.HandleError(err)
}

// ==================== USER STATS METHODS ====================

func (ds *SqlService) GetUserStats(userID string) (*model.UserStats, error) {
	var stats model.UserStats
	if err := ds.db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &stats, nil
}

func (ds *SqlService) CreateUserStats(stats *model.UserStats) (*model.UserStats, error) {
	if stats.ID == "" {
		id, _ := uuid.NewV7()
		stats.ID = id.String()
	}
	if stats.BrainLevel == 0 {
		stats.BrainLevel = 1
	}
	stats.CreatedAt = time.Now()
	stats.UpdatedAt = time.Now()

	if err := ds.db.Create(stats).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return stats, nil
}

func (ds *SqlService) UpdateUserStats(stats *model.UserStats) error {
	stats.UpdatedAt = time.Now()
	if err := ds.db.Save(stats).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// GetTopStatsByMindRating orders by mind_rating with user_id as the
// deterministic tie-break.
func (ds *SqlService) GetTopStatsByMindRating(limit int) ([]model.UserStats, error) {
	var stats []model.UserStats
	if err := ds.db.Order("mind_rating DESC, user_id ASC").Limit(limit).
		Find(&stats).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return stats, nil
}

// ==================== GAME SCORE METHODS ====================

func (ds *SqlService) GetGameHistory(userID, gameType string, limit int) ([]model.GameScore, int64, error) {
	query := ds.db.Model(&model.GameScore{}).Where("user_id = ?", userID)
	if gameType != "" {
		query = query.Where("game_type = ?", gameType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}

	var scores []model.GameScore
	if err := query.Order("played_at DESC").Limit(limit).Find(&scores).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}
	return scores, total, nil
}

func (ds *SqlService) GetBestScore(userID, gameType string) (*model.GameScore, error) {
	var score model.GameScore
	if err := ds.db.Where("user_id = ? AND game_type = ?", userID, gameType).
		Order("score DESC").First(&score).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &score, nil
}

// ==================== PLATFORM AGGREGATES ====================

func (ds *SqlService) CountUsers() (int64, error) {
	var count int64
	if err := ds.db.Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, ds.HandleError(err)
	}
	return count, nil
}

func (ds *SqlService) CountGameScores() (int64, error) {
	var count int64
	if err := ds.db.Model(&model.GameScore{}).Count(&count).Error; err != nil {
		return 0, ds.HandleError(err)
	}
	return count, nil
}

func (ds *SqlService) SumSparks() (int64, error) {
	var total *int64
	if err := ds.db.Model(&model.UserStats{}).Select("SUM(sparks)").Scan(&total).Error; err != nil {
		return 0, ds.HandleError(err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
