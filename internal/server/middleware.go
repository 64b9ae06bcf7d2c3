package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jkestates/estatedesk/internal/actorcontext"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	requestIDHeader   = "X-Request-ID"
	staffNameHeader   = "X-Staff-Name"
	contextRequestID  = "request_id"
	maxRequestIDChars = 128
)

// RequestID keeps a caller supplied id when it is sane, otherwise mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > maxRequestIDChars {
			id = uuid.NewString()
		}
		c.Set(contextRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(contextRequestID)
}

func Tracing(serviceName string, tp trace.TracerProvider) gin.HandlerFunc {
	if tp == nil {
		return func(c *gin.Context) { c.Next() }
	}
	base := otelgin.Middleware(serviceName, otelgin.WithTracerProvider(tp))
	return func(c *gin.Context) {
		base(c)
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			span.SetAttributes(attribute.String("request_id", requestIDFrom(c)))
		}
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if actor, ok := actorcontext.ActorFromContext(c.Request.Context()); ok {
			fields = append(fields, zap.String("actor_id", actor.ID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400:
			log.Warn("http request", fields...)
		default:
			log.Debug("http request", fields...)
		}
	}
}

func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("request_id", requestIDFrom(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				AbortWithError(c, ErrInternal)
			}
		}()
		c.Next()
	}
}

// staffTokens keeps only digests of the configured bearer tokens.
type staffTokens struct {
	digests [][]byte
}

func newStaffTokens(tokens []string) *staffTokens {
	st := &staffTokens{}
	for _, token := range tokens {
		if token = strings.TrimSpace(token); token != "" {
			sum := sha256.Sum256([]byte(token))
			st.digests = append(st.digests, sum[:])
		}
	}
	return st
}

func (st *staffTokens) empty() bool { return len(st.digests) == 0 }

// match returns the actor id derived from the token digest.
func (st *staffTokens) match(token string) (string, bool) {
	sum := sha256.Sum256([]byte(token))
	for _, digest := range st.digests {
		if subtle.ConstantTimeCompare(digest, sum[:]) == 1 {
			return "staff-" + hex.EncodeToString(sum[:4]), true
		}
	}
	return "", false
}

// StaffAuthRequired resolves the bearer token to an actor recorded on saved
// bills. With no tokens configured every request runs as the local actor.
func (s *Server) StaffAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := "local"
		if !s.auth.empty() {
			parts := strings.Fields(strings.TrimSpace(c.GetHeader("Authorization")))
			if len(parts) != 2 || parts[0] != "Bearer" {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			id, ok := s.auth.match(parts[1])
			if !ok {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			actorID = id
		}

		name := strings.TrimSpace(c.GetHeader(staffNameHeader))
		if name == "" {
			name = actorID
		}
		ctx := actorcontext.WithActor(c.Request.Context(), actorcontext.Actor{ID: actorID, Name: name})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
