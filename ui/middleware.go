package ui

import (
	"time"

	"github.com/gin-gonic/gin"

	"moodlens/domain/core"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), requestID(), s.accessLog())
}

// requestID keeps a caller-supplied ID or mints a time-ordered one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseRequestID(c.GetHeader(requestIDHeader))
		if err != nil {
			id = core.RequestID(core.NewID())
		}
		c.Set(requestIDKey, id.String())
		c.Header(requestIDHeader, id.String())
		c.Next()
	}
}

// accessLog logs each request and feeds the HTTP metrics
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.RecordHTTP(c.Request.Method, route, status, elapsed)

		if status >= 500 {
			s.log.Error("[HTTP] %s %s %d %s rid=%s", c.Request.Method, c.Request.URL.Path, status, elapsed, c.GetString(requestIDKey))
			return
		}
		s.log.Debug("[HTTP] %s %s %d %s rid=%s", c.Request.Method, c.Request.URL.Path, status, elapsed, c.GetString(requestIDKey))
	}
}
