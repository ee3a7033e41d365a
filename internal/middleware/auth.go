// Package middleware holds gin middleware specific to the API surface.
package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	appErrors "github.com/bruinwatch/bruinwatch-api/pkg/errors"
	"github.com/bruinwatch/bruinwatch-api/pkg/response"
)

const (
	// HeaderAPIKey authenticates frontend/backend calls.
	HeaderAPIKey = "X-API-Key"
	// HeaderSchedulerToken authenticates scheduler tick triggers.
	HeaderSchedulerToken = "X-Scheduler-Token"
)

func equalSecret(presented, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

// RequireAPIKey rejects requests whose X-API-Key header does not match the
// configured backend key.
func RequireAPIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !equalSecret(c.GetHeader(HeaderAPIKey), apiKey) {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or missing API key"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSchedulerToken rejects tick triggers whose X-Scheduler-Token header
// does not match the configured token.
func RequireSchedulerToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !equalSecret(c.GetHeader(HeaderSchedulerToken), token) {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or missing scheduler token"))
			c.Abort()
			return
		}
		c.Next()
	}
}
