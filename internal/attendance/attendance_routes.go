package attendance

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService, auth gin.HandlerFunc) {
	attendance := r.Group("/attendance")
	attendance.Use(auth)
	{
		attendance.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetAll)
		attendance.GET("/employee/:id", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetByEmployee)
		attendance.POST("", middleware.RBACAuthorize(rbacService, "attendance", "create"), h.Mark)
		attendance.PUT("/:id", middleware.RBACAuthorize(rbacService, "attendance", "update"), h.Update)
		attendance.DELETE("/:id", middleware.RBACAuthorize(rbacService, "attendance", "delete"), h.Delete)

		attendance.POST("/check-in",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, "attendance", "check"),
			h.CheckIn,
		)
		attendance.POST("/check-out",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, "attendance", "check"),
			h.CheckOut,
		)
	}
}
