package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jchoi/storefront-backend/config"
	apperrors "github.com/jchoi/storefront-backend/internal/errors"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"github.com/jchoi/storefront-backend/pkg/redis"
	"github.com/jchoi/storefront-backend/pkg/util"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
	ContextToken     = "token"
)

// AuthMiddleware validates the Bearer token and stores the caller's
// identity on the request context. When Redis is configured, revoked
// tokens are rejected even before their expiry.
func AuthMiddleware(jwtCfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apperrors.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apperrors.RespondWithError(c, http.StatusUnauthorized,
				apperrors.AuthTokenInvalid, "Authorization header format must be 'Bearer <token>'")
			c.Abort()
			return
		}
		token := parts[1]

		claims, err := util.ValidateToken(token, jwtCfg.Secret)
		if err != nil {
			code := apperrors.AuthTokenInvalid
			message := "Invalid token"
			if err == util.ErrExpiredToken {
				code = apperrors.AuthTokenExpired
				message = "Token has expired"
			}
			apperrors.RespondWithError(c, http.StatusUnauthorized, code, message)
			c.Abort()
			return
		}

		if redis.Enabled() {
			revoked, err := redis.IsTokenBlacklisted(c.Request.Context(), token)
			if err != nil {
				logger.Error("Failed to check token blacklist", err, map[string]interface{}{
					"user_id": claims.UserID,
				})
			} else if revoked {
				apperrors.RespondWithError(c, http.StatusUnauthorized,
					apperrors.AuthTokenRevoked, "Token has been revoked")
				c.Abort()
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextToken, token)

		c.Next()
	}
}

// RequireRole allows the request through only when the authenticated
// caller holds one of the given roles. Must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			apperrors.RespondWithError(c, http.StatusForbidden,
				apperrors.AuthzRoleNotFound, "Role information missing from request")
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		logger.Warn("Access denied by role check", map[string]interface{}{
			"role":     role,
			"required": roles,
			"path":     c.Request.URL.Path,
		})
		apperrors.RespondWithError(c, http.StatusForbidden,
			apperrors.AuthzAdminOnly, "Insufficient permissions")
		c.Abort()
	}
}

// GetUserID returns the authenticated user's ID from the request context
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// GetUserEmail returns the authenticated user's email from the request context
func GetUserEmail(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserEmail)
	if !exists {
		return "", false
	}
	email, ok := value.(string)
	return email, ok
}

// GetUserRole returns the authenticated user's role from the request context
func GetUserRole(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserRole)
	if !exists {
		return "", false
	}
	role, ok := value.(string)
	return role, ok
}

// GetToken returns the raw bearer token from the request context
func GetToken(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextToken)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}
