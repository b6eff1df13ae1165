package httpapi

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pabloleguizamon/dragon-challenge/internal/auth"
	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		log.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		)
	}
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

// identify attaches the caller when a valid bearer token is present. A
// missing or rejected token leaves the request anonymous; routes that need
// a caller refuse it later.
func (s *Server) identify(c *gin.Context) {
	raw, ok := bearer(c.GetHeader("Authorization"))
	if !ok {
		c.Next()
		return
	}
	ctx := c.Request.Context()
	id, err := s.svc.Auth.Identify(ctx, raw)
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		s.log.DebugContext(ctx, "bearer token rejected", "err", err)
	case err != nil:
		s.abort(c, err)
		return
	default:
		c.Request = c.Request.WithContext(auth.WithIdentity(ctx, id))
	}
	c.Next()
}

func (s *Server) requireAuth(c *gin.Context) {
	if _, err := s.svc.Access.Authenticated(c.Request.Context()); err != nil {
		s.abort(c, err)
		return
	}
	c.Next()
}
