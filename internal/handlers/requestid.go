package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id in and out.
const RequestIDHeader = "X-Request-ID"

// requestIDCtxKey is the Gin context key used to store the request id.
const requestIDCtxKey = "request_id"

// RequestIDMiddleware reuses an incoming X-Request-ID or generates a UUID,
// and echoes it on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDCtxKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestID returns the request id from the request context.
func RequestID(c *gin.Context) string {
	v, _ := c.Get(requestIDCtxKey)
	s, _ := v.(string)
	return s
}
