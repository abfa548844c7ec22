package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carebook/carebook/internal/domain"
	"github.com/carebook/carebook/internal/service"
	"github.com/carebook/carebook/pkg/auth"
	"github.com/carebook/carebook/pkg/metrics"
)

const claimsKey = "claims"

// RequireRole verifies the bearer token and rejects the request unless it
// asserts the wanted role. Admin and doctor clients send
// "Authorization: Bearer <token>"; patient clients historically send a
// raw "token" header, so that is accepted first with Bearer as fallback.
func RequireRole(jwt *auth.JWTManager, want domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, want)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		claims, err := jwt.Verify(token, want)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func extractToken(c *gin.Context, want domain.Role) string {
	if want == domain.RolePatient {
		if raw := c.GetHeader("token"); raw != "" {
			return raw
		}
	}
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

func claimsFromContext(c *gin.Context) *domain.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*domain.Claims)
	return claims
}

func actorFromContext(c *gin.Context) service.Actor {
	claims := claimsFromContext(c)
	if claims == nil {
		return service.Actor{}
	}
	return service.Actor{Role: claims.Role, ID: claims.Subject}
}

// Metrics records request counts, latency and in-flight gauge per route.
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		collector.InFlightGauge.Inc()

		c.Next()

		collector.InFlightGauge.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		collector.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		collector.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
