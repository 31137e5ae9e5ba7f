package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/app_errors"
	"github.com/HushmKun/SeekerOfLight/internal/service/auth"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

const (
	ClientIDCtx    = "client_id"
	ClientRolesCtx = "client_roles"

	AdminRole = "admin"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Identity, error)
}

type IdentityProvider struct {
	log      logger.Log
	verifier TokenVerifier
}

func NewIdentityProvider(log logger.Log, verifier TokenVerifier) *IdentityProvider {
	return &IdentityProvider{log: log, verifier: verifier}
}

// Identify resolves the caller from a bearer token when one is present.
// Requests without a token continue anonymously; reads degrade instead of
// failing. A token that is present but invalid is still a hard 401.
func (h *IdentityProvider) Identify(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	var token string
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		token = parts[1]
	}
	if token == "" {
		c.Next()
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		h.log.Info("failed to verify token", logger.Err(err))
		if errors.Is(err, app_errors.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrTokenExpired.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "cant parse token"})
		return
	}

	c.Set(ClientIDCtx, identity.UserID)
	c.Set(ClientRolesCtx, identity.Roles)
	c.Next()
}

// RequireAuth gates endpoints that make no sense anonymously.
func RequireAuth(c *gin.Context) {
	if _, exists := c.Get(ClientIDCtx); !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	c.Next()
}

func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		raw, exists := c.Get(ClientRolesCtx)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "roles not found"})
			return
		}

		roles, ok := raw.([]string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "invalid roles format"})
			return
		}

		for _, role := range roles {
			if _, allowed := roleSet[role]; allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// CallerID returns the authenticated caller or uuid.Nil for anonymous
// requests, so services receive identity as an explicit argument.
func CallerID(c *gin.Context) uuid.UUID {
	raw, exists := c.Get(ClientIDCtx)
	if !exists {
		return uuid.Nil
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func LoggingMiddleware(logger logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		path := c.Request.URL.Path
		rawQuery := c.Request.URL.RawQuery
		if rawQuery != "" {
			path = fmt.Sprintf("%s?%s", path, rawQuery)
		}
		status := c.Writer.Status()

		msg := fmt.Sprintf("%s %s", method, path)

		logger.Info(msg,
			"status", status,
			"latency", latency,
			"client_ip", clientIP,
		)

		for _, ginErr := range c.Errors {
			logger.ErrorErr("HTTP request error", ginErr.Err,
				"status", status,
				"method", method,
				"path", path,
			)
		}
	}
}
