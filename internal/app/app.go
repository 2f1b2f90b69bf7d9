package app

import (
	"database/sql"
	"net/http"

	"go-payroll/internal/attendance"
	"go-payroll/internal/auth"
	"go-payroll/internal/config"
	"go-payroll/internal/employee"
	"go-payroll/internal/leave"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/middleware"
	"go-payroll/internal/payroll"
	"go-payroll/internal/shared/connection"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App owns the connections opened by BuildApp.
type App struct {
	GormDB *gorm.DB
	DB     *sql.DB
	Redis  *redis.Client
}

// Close releases the database and cache connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func BuildApp(router *gin.Engine, cfg *config.Config) (*App, error) {
	log := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN(), cfg.DBMaxRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	a := &App{GormDB: gormDB, DB: sqlDB}

	if cfg.RedisAddr != "" {
		rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DBMaxRetries)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = rdb
		log.Info("redis connection established")
	} else {
		log.Warn("REDIS_ADDR not set, caching and idempotency disabled")
	}

	if err := migrate(gormDB); err != nil {
		a.Close()
		return nil, err
	}

	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.ContextLogger(zap.L()),
	)
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	if err := registerModules(router, cfg, sqlDB, gormDB, a.Redis); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&employee.Employee{},
		&attendance.Attendance{},
		&leave.Leave{},
		&payroll.Salary{},
		&auth.User{},
		&counter.Counter{},
		&kafka.OutboxRecord{},
	)
}
