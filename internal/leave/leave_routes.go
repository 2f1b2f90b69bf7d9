package leave

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService, auth gin.HandlerFunc) {
	leaves := r.Group("/leaves")
	leaves.Use(auth)
	{
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), h.GetAll)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), h.GetByID)
		leaves.POST("",
			middleware.RateLimitByUser(0.5, 3),
			middleware.RBACAuthorize(rbacService, "leave", "create"),
			h.Create,
		)
		leaves.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "leave", "approve"), h.Approve)
		leaves.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "leave", "approve"), h.Reject)
		leaves.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "leave", "cancel"), h.Cancel)
		leaves.DELETE("/:id", middleware.RBACAuthorize(rbacService, "leave", "delete"), h.Delete)
	}
}
