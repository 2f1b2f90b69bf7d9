package auth

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
) {
	group := r.Group("/auth")
	{
		group.POST("/login", middleware.RateLimitByIP(0.2, 5), handler.Login)
		group.GET("/me", auth, middleware.RateLimitByUser(2, 5), handler.Me)
		group.POST("/register",
			auth,
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "user", "create"),
			handler.Register,
		)
	}
}
