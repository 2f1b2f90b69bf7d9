package rbac

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService, auth gin.HandlerFunc) {
	group := r.Group("/rbac")
	group.Use(auth)
	{
		group.POST("/enforce", middleware.RBACAuthorize(rbacService, "rbac", "read"), handler.Enforce)
		group.GET("/roles", middleware.RBACAuthorize(rbacService, "rbac", "read"), handler.ListRoles)
		group.GET("/roles/:name", middleware.RBACAuthorize(rbacService, "rbac", "read"), handler.GetRole)
	}
}
