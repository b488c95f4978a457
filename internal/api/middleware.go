package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/pkg/logging"
	"github.com/inkwell/inkwell/pkg/telemetry"
)

const (
	requestIDHeader = "X-Request-ID"

	ctxRequestID = "inkwell.request_id"
	ctxPrincipal = "inkwell.principal"
	ctxSession   = "inkwell.session"
)

// requestIDMiddleware tags every request with an id, reusing the caller's
// X-Request-ID when present
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// tracingMiddleware starts a server span for each request
func tracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := telemetry.StartSpan(c.Request.Context(),
			fmt.Sprintf("%s %s", c.Request.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.String("request.id", c.GetString(ctxRequestID)),
			))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// loggingMiddleware writes one log line per request
func loggingMiddleware() gin.HandlerFunc {
	base := logging.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := logging.WithRequest(base, c.GetString(ctxRequestID), principalID(c))
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

// recoveryMiddleware turns a panic into a 500 envelope
func recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestLogger(c).Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"))
		c.AbortWithStatusJSON(errInternal.Status, gin.H{"error": errInternal})
	})
}

// corsMiddleware allows browser clients on the configured origins to call
// the JSON endpoints with their session cookie
func corsMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// sessionMiddleware resolves the session token into a principal. Missing,
// invalid and revoked tokens leave the request anonymous. The user row is
// read on every request so renames and promotions apply immediately.
func (r *Router) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := r.sessions.TokenFromRequest(c.Request)
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		session, err := r.sessions.Verify(ctx, token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				requestLogger(c).Warn("Session check failed", zap.Error(err))
			}
			c.Next()
			return
		}

		p, err := r.service.ResolvePrincipal(ctx, session.UserID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if p != nil {
			c.Set(ctxPrincipal, p)
			c.Set(ctxSession, session)
			trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("user.id", p.ID))
		}
		c.Next()
	}
}

// requireAuth rejects anonymous requests
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal(c) == nil {
			abortWithError(c, blog.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

// requireAdmin rejects requests from anyone but an administrator
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principal(c)
		switch {
		case p == nil:
			abortWithError(c, blog.ErrUnauthenticated)
		case !p.IsAdmin:
			abortWithError(c, fmt.Errorf("%w: admin only", blog.ErrForbidden))
		default:
			c.Next()
		}
	}
}

// principal returns the signed-in user, or nil for anonymous requests
func principal(c *gin.Context) *blog.Principal {
	if v, ok := c.Get(ctxPrincipal); ok {
		if p, ok := v.(*blog.Principal); ok {
			return p
		}
	}
	return nil
}

func principalID(c *gin.Context) int64 {
	if p := principal(c); p != nil {
		return p.ID
	}
	return 0
}

func currentSession(c *gin.Context) *auth.Session {
	if v, ok := c.Get(ctxSession); ok {
		if s, ok := v.(*auth.Session); ok {
			return s
		}
	}
	return nil
}

// requestLogger returns a logger tagged with the request id and user
func requestLogger(c *gin.Context) *zap.Logger {
	return logging.WithRequest(logging.WithComponent("api"), c.GetString(ctxRequestID), principalID(c))
}
