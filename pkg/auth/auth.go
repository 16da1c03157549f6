package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"eduquest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ContextUserKey is where the middleware stores the authenticated user.
	ContextUserKey = "auth_user"

	tokenTTL = 24 * time.Hour
)

// AuthenticatedUser is what route handlers see after the middleware ran.
type AuthenticatedUser struct {
	ID   uuid.UUID
	Role string
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type ServiceAuth struct {
	secret    []byte
	debugMode bool
}

func NewServiceAuth(secret string, debugMode bool) *ServiceAuth {
	return &ServiceAuth{
		secret:    []byte(secret),
		debugMode: debugMode,
	}
}

// Middleware validates the Bearer token and stashes the caller's identity in
// the gin context. In debug mode an unsigned X-Debug-User header is accepted
// instead, for local poking.
func (a *ServiceAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		if a.debugMode {
			if raw := c.GetHeader("X-Debug-User"); raw != "" {
				id, err := uuid.Parse(raw)
				if err == nil {
					c.Set(ContextUserKey, &AuthenticatedUser{ID: id, Role: c.GetHeader("X-Debug-Role")})
					c.Next()
					return
				}
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		user, err := a.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Info("invalid token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func (a *ServiceAuth) ParseToken(tokenString string) (*AuthenticatedUser, error) {
	var cl claims
	token, err := jwt.ParseWithClaims(tokenString, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	id, err := uuid.Parse(cl.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	return &AuthenticatedUser{ID: id, Role: cl.Role}, nil
}

// GenerateToken issues a signed token for a user; used by the admin tooling
// and tests.
func (a *ServiceAuth) GenerateToken(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString(a.secret)
}

// UserFromContext pulls the authenticated user the middleware stored.
func UserFromContext(c *gin.Context) (*AuthenticatedUser, bool) {
	data, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := data.(*AuthenticatedUser)
	return user, ok
}
