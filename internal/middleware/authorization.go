package middleware

import (
	"net/http"

	"eduquest_backend/internal/model"
	"eduquest_backend/pkg/auth"
	"eduquest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type Authorization struct{}

func NewAuthorization() *Authorization {
	return &Authorization{}
}

// StaffOnly gates course management and bulk enrollment endpoints behind the
// staff role carried in the token.
func (a *Authorization) StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		user, ok := auth.UserFromContext(c)
		if !ok {
			log.Error("authenticated user not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if user.Role != model.RoleStaff {
			log.Info("unauthorized access attempt to staff endpoint",
				zap.String("user_id", user.ID.String()),
				zap.String("role", user.Role))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}

		c.Next()
	}
}
