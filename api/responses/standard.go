package responses

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/pkg/errors"
)

// TraceIDKey is the gin context key holding the request's trace id
const TraceIDKey = "trace_id"

// StandardResponse represents a standard API response format
type StandardResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}, msg string) {
	c.JSON(status, StandardResponse{
		Success:   true,
		Data:      data,
		Message:   msg,
		Timestamp: time.Now().UTC(),
		TraceID:   TraceID(c),
	})
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}, message ...string) {
	msg := "Operation successful"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	respond(c, http.StatusOK, data, msg)
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}, message ...string) {
	msg := "Resource created successfully"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	respond(c, http.StatusCreated, data, msg)
}

// Error sends an error response using RFC 7807 format
func Error(c *gin.Context, problemDetails *errors.ProblemDetails) {
	if problemDetails.TraceID == "" {
		if traceID := TraceID(c); traceID != "" {
			problemDetails.WithTraceID(traceID)
		}
	}
	problemDetails.WithExtra("timestamp", time.Now().UTC().Format(time.RFC3339))

	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(problemDetails.Status, problemDetails)
}

// FromError renders err as a problem. Internal failures are logged with the
// trace id the client receives so the two can be correlated.
func FromError(c *gin.Context, logger *zap.Logger, err error) {
	p := errors.FromError(err, c.Request.URL.Path)
	if p.Status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("trace_id", TraceID(c)),
			zap.Error(err))
	}
	Error(c, p)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, detail string, validationErrors ...errors.ValidationError) {
	problemDetails := errors.NewValidationError(detail, c.Request.URL.Path)
	if len(validationErrors) > 0 {
		problemDetails.WithValidationErrors(validationErrors)
	}
	Error(c, problemDetails)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(c *gin.Context, detail string) {
	Error(c, errors.NewUnauthorizedError(detail, c.Request.URL.Path))
}

// NotFound sends a 404 Not Found response
func NotFound(c *gin.Context, detail string) {
	Error(c, errors.NewNotFoundError(detail, c.Request.URL.Path))
}

// TooManyRequests sends a 429 Too Many Requests response
func TooManyRequests(c *gin.Context, detail string) {
	Error(c, errors.NewRateLimitError(detail, c.Request.URL.Path))
}

// ServiceUnavailable sends a 503 Service Unavailable response
func ServiceUnavailable(c *gin.Context, detail string) {
	Error(c, errors.NewServiceUnavailableError(detail, c.Request.URL.Path))
}

// TraceID returns the request's trace id, falling back to the X-Trace-ID
// header.
func TraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return c.GetHeader("X-Trace-ID")
}
