package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

type TokenValidator interface {
	ValidateToken(tokenString string) (*service.AccessClaims, error)
}

type UserLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware resolves the bearer token, if any, to the current user.
// Requests without an Authorization header continue anonymously; a header
// that does not carry a valid token is rejected.
func AuthMiddleware(tokens TokenValidator, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		// reload so role changes and deletions apply to tokens already issued
		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// PermissionRequest describes the request to the permission predicates.
func PermissionRequest(c *gin.Context) permission.Request {
	return permission.Request{Method: c.Request.Method, User: CurrentUser(c)}
}

// Require runs the collection-level permission checks before the handler.
func Require(perms ...permission.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permission.Check(PermissionRequest(c), perms...); err != nil {
			AbortWithPermissionError(c, err)
			return
		}
		c.Next()
	}
}

// AbortWithPermissionError maps a permission failure to 401 or 403.
func AbortWithPermissionError(c *gin.Context, err error) {
	status := http.StatusForbidden
	if errors.Is(err, permission.ErrNotAuthenticated) {
		status = http.StatusUnauthorized
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
