// Package middleware provides CORS, request logging, rate limiting, and
// panic recovery for the HTTP API.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS wraps rs/cors for gin, allowing the configured origins.
func CORS(origins []string) gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return func(g *gin.Context) {
		c.HandlerFunc(g.Writer, g.Request)
		if g.Request.Method == http.MethodOptions {
			g.AbortWithStatus(http.StatusNoContent)
			return
		}
		g.Next()
	}
}

// Logger emits one structured log line per request.
func Logger() gin.HandlerFunc {
	return func(g *gin.Context) {
		start := time.Now()
		g.Next()
		slog.Info("request",
			"method", g.Request.Method,
			"path", g.Request.URL.Path,
			"status", g.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Recovery converts panics into structured 500 JSON bodies.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(g *gin.Context, recovered any) {
		slog.Error("panic recovered", "value", recovered)
		g.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "An unexpected error occurred",
			},
		})
	})
}
