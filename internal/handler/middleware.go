package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"tvshow-api/internal/config"
)

// quietPaths are logged at debug level so probes and scrapes do not flood the log
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// NewRouter builds the gin engine with middleware and routes, wrapped in CORS
func NewRouter(h *HTTPHandler, cfg config.ServerConfig) http.Handler {
	r := gin.New()
	r.Use(gin.CustomRecovery(h.recoverPanic))
	r.Use(h.requestLogger)
	r.Use(h.requestMetrics)
	if cfg.RateLimit.Enabled {
		r.Use(h.rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)))
	}

	h.RegisterRoutes(r)

	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	})(r)
}

func (h *HTTPHandler) recoverPanic(c *gin.Context, recovered any) {
	h.logger.Error().
		Interface("panic", recovered).
		Str("path", c.Request.URL.Path).
		Msg("Recovered from panic")
	c.Header("Connection", "close")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func (h *HTTPHandler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	level := zerolog.InfoLevel
	if quietPaths[c.Request.URL.Path] {
		level = zerolog.DebugLevel
	}
	h.logger.WithLevel(level).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("latency", time.Since(start)).
		Str("client_ip", c.ClientIP()).
		Msg("Request handled")
}

func (h *HTTPHandler) requestMetrics(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	h.metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
}

// rateLimit shares one token bucket between all clients
func (h *HTTPHandler) rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
