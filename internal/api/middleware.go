package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/shipstores/internal/auth"
)

const scopeKey = "auth_scope"

// scopeFrom returns the authenticated scope set by the auth middleware.
func scopeFrom(c *gin.Context) auth.Scope {
	v, _ := c.Get(scopeKey)
	scope, _ := v.(auth.Scope)
	return scope
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Message: message,
		Code:    "UNAUTHENTICATED",
	})
}

// authenticate validates the bearer token and resolves the caller's scope
// from the user record, so role and vessel changes apply immediately.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c, "missing bearer token")
			return
		}

		userID, err := auth.ParseToken(s.config.Auth.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		scope, err := s.users.ResolveScope(c.Request.Context(), userID)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(scopeKey, scope)
		c.Next()
	}
}

// requestLogger logs every request and feeds the metrics collector.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RecordHTTPRequest(route, status, latency)

		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}
		event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", path).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("request processed")
	}
}
