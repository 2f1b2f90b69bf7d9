package middleware

import (
	"errors"
	"fmt"
	"strings"

	autherrors "go-payroll/internal/auth/errors"
	"go-payroll/internal/domain"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	ContextUserID     = "user_id"
	ContextEmployeeID = "employee_id"
	ContextRole       = "role"
)

// AuthMiddleware validates an HS256 bearer token signed with secret and
// stores user_id, role and (when present) employee_id on the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			abortWith(c, autherrors.ErrUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, autherrors.ErrTokenExpired)
				return
			}
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		userID, _ := claims["user_id"].(string)
		role, _ := claims["role"].(string)
		if userID == "" || role == "" {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, role)
		if employeeID, _ := claims["employee_id"].(string); employeeID != "" {
			c.Set(ContextEmployeeID, employeeID)
		}

		ctx := contextutil.WithUserID(c.Request.Context(), userID)
		reqLogger := contextutil.GetLogger(ctx, nil).With(zap.String("user_id", userID))
		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))

		c.Next()
	}
}

// RequireRole only lets the listed roles through. It must run after
// AuthMiddleware.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abortWith(c, autherrors.ErrForbidden)
	}
}

// ActorFromContext returns the authenticated caller set by AuthMiddleware.
func ActorFromContext(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID:     c.GetString(ContextUserID),
		EmployeeID: c.GetString(ContextEmployeeID),
		Role:       c.GetString(ContextRole),
	}
}

func abortWith(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
	c.Abort()
}
