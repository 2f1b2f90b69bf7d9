package payroll

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
	rdb ...redis.Cmdable,
) {
	generate := []gin.HandlerFunc{
		middleware.RateLimitByUser(0.1, 1),
		middleware.RBACAuthorize(rbacService, "salary", "generate"),
	}
	if len(rdb) > 0 && rdb[0] != nil {
		generate = append(generate, middleware.Idempotency(rdb[0]))
	}
	generate = append(generate, h.GeneratePayroll)

	salary := r.Group("/salary")
	salary.Use(auth)
	{
		salary.GET("", middleware.RBACAuthorize(rbacService, "salary", "read"), h.GetAll)
		salary.GET("/employee/:id", middleware.RBACAuthorize(rbacService, "salary", "read"), h.GetByEmployee)
		salary.GET("/export", middleware.RBACAuthorize(rbacService, "salary", "export"), h.Export)
		salary.POST("/calculate/:employeeId", middleware.RBACAuthorize(rbacService, "salary", "calculate"), h.Calculate)
		salary.POST("/generate-payroll", generate...)

		salary.GET("/:id", middleware.RBACAuthorize(rbacService, "salary", "read"), h.GetByID)
		salary.PUT("/:id", middleware.RBACAuthorize(rbacService, "salary", "update"), h.Update)
		salary.DELETE("/:id", middleware.RBACAuthorize(rbacService, "salary", "delete"), h.Delete)
		salary.POST("/:id/pay", middleware.RBACAuthorize(rbacService, "salary", "pay"), h.MarkPaid)
		salary.POST("/:id/mark-paid", middleware.RBACAuthorize(rbacService, "salary", "pay"), h.MarkPaid)
		salary.GET("/:id/payslip", middleware.RBACAuthorize(rbacService, "salary", "read"), h.Payslip)
	}
}
