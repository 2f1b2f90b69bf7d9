package app

import (
	"context"
	"database/sql"

	"go-payroll/internal/attendance"
	"go-payroll/internal/auth"
	"go-payroll/internal/config"
	"go-payroll/internal/employee"
	"go-payroll/internal/leave"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/middleware"
	"go-payroll/internal/payroll"
	"go-payroll/internal/rbac"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollRepo := payroll.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	policy, err := rbac.DefaultPolicy()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer, policy)
	if err != nil {
		return err
	}
	authMW := middleware.AuthMiddleware(cfg.JWTSecret)

	// --- Services ---
	authService := auth.NewService(authRepo, employeeRepo, cfg.JWTSecret, cfg.JWTTTL)
	attendanceService := attendance.NewService(db, attendanceRepo)
	employeeService := employee.NewServiceWithOutbox(db, employeeRepo, counterRepo, outboxRepo, rdb)
	leaveService := leave.NewService(db, leaveRepo, attendanceRepo)
	payrollService := payroll.NewService(db, payrollRepo, employeeRepo, attendanceRepo, outboxRepo)

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandler(leaveService)
	payrollHandler := payroll.NewHandler(payrollService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, rbacService, authMW)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, authMW)
		employee.RegisterRoutes(api, employeeHandler, rbacService, authMW)
		leave.RegisterRoutes(api, leaveHandler, rbacService, authMW)
		if rdb != nil {
			payroll.RegisterRoutes(api, payrollHandler, rbacService, authMW, rdb)
		} else {
			payroll.RegisterRoutes(api, payrollHandler, rbacService, authMW)
		}
		rbac.RegisterRoutes(api, rbacHandler, rbacService, authMW)
	}

	return nil
}
