// Package errors provides typed domain errors and their RFC 7807 Problem Details rendering
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Standard error functions
var (
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

// FieldError represents a validation error for a specific field
type FieldError struct {
	Kind    string `json:"kind"`
	Field   string `json:"field"`
	Message string `json:"message,omitempty"`
}

func (f *FieldError) Error() string {
	return fmt.Sprintf("%s (%s): %s", f.Field, f.Kind, f.Message)
}

func NewFieldError(kind, field, reason string) FieldError {
	return FieldError{Kind: kind, Field: field, Message: reason}
}

// StatusCode represents an HTTP status code error
type StatusCode int

// Error implements error
func (status StatusCode) Error() string {
	return http.StatusText(int(status))
}

// Status builds a sentinel carrying the given HTTP status.
func Status(code int) *Error {
	return &Error{Kind: http.StatusText(code), status: code}
}

var (
	Invalid       *Error = Status(http.StatusBadRequest)
	Unauthorized  *Error = Status(http.StatusUnauthorized)
	NotFound      *Error = Status(http.StatusNotFound)
	Conflict      *Error = Status(http.StatusConflict)
	Unprocessable *Error = Status(http.StatusUnprocessableEntity)
	TooMany       *Error = Status(http.StatusTooManyRequests)
	Internal      *Error = Status(http.StatusInternalServerError)
	Unavailable   *Error = Status(http.StatusServiceUnavailable)
)

// Error is a custom error type for passing more information
type Error struct {
	// Kind is the returned error type
	Kind string `json:"kind"`
	// Message is the human readable string that indicate the error
	Message string `json:"message"`
	// Fields used when there's validation error for a field.
	Fields []FieldError `json:"fields,omitempty"`

	status int
	cause  error
}

var _ error = (*Error)(nil)

func New(message string) *Error {
	return &Error{Kind: "Unknown", Message: message, status: http.StatusInternalServerError}
}

// Error implements error
func (e *Error) Error() string {
	str := fmt.Sprintf("[%s] ", e.Kind)
	if e.Message != "" {
		str += e.Message
	}
	if e.cause != nil {
		str += fmt.Sprintf(" (%s)", e.cause)
	}
	return str
}

// Reason returns a copy of the error with kind set to given value
func (e *Error) Reason(kind string) *Error {
	err := *e
	err.Kind = kind
	return &err
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Wrap returns a copy of the error with the cause set
func (e *Error) Wrap(cause error) *Error {
	err := *e
	err.cause = cause
	return &err
}

// Explain makes a copy of the error with given message
func (e *Error) Explain(message string, args ...any) *Error {
	err := *e
	err.Message = fmt.Sprintf(message, args...)
	return &err
}

// WithField returns a copy of error with the field appended.
func (e *Error) WithField(kind, field, message string) *Error {
	newError := *e
	newError.Fields = append(append([]FieldError(nil), e.Fields...), NewFieldError(kind, field, message))
	return &newError
}

// HTTPStatus is the status the error maps to, 500 when unset.
func (e *Error) HTTPStatus() int {
	if e == nil || e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

// Is implements the needed interface for errors.Is
// It checks kind for equality
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if other, ok := target.(*Error); ok {
		return other.Kind == e.Kind
	}
	return false
}

// Problem type URIs
const (
	TypeValidationError  = "https://investboard.dev/problems/validation-error"
	TypeUnauthorized     = "https://investboard.dev/problems/unauthorized"
	TypeNotFound         = "https://investboard.dev/problems/not-found"
	TypeNoApplicableRate = "https://investboard.dev/problems/no-applicable-rate"
	TypeConflict         = "https://investboard.dev/problems/conflict"
	TypeRateLimit        = "https://investboard.dev/problems/rate-limit"
	TypeInternalError    = "https://investboard.dev/problems/internal-error"
	TypeUnavailable      = "https://investboard.dev/problems/service-unavailable"
)

// Problem titles
const (
	TitleValidationError  = "Validation Error"
	TitleUnauthorized     = "Unauthorized"
	TitleNotFound         = "Not Found"
	TitleNoApplicableRate = "No Applicable Rate"
	TitleConflict         = "Conflict"
	TitleRateLimit        = "Rate Limit Exceeded"
	TitleInternalError    = "Internal Server Error"
	TitleUnavailable      = "Service Unavailable"
)

// ValidationError represents a validation error for RFC 7807
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
}

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	TraceID  string                 `json:"trace_id,omitempty"`
	Errors   []ValidationError      `json:"errors,omitempty"`
	Extra    map[string]interface{} `json:"-"`
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return p.Detail
}

// WithTraceID adds a trace ID to the problem details
func (p *ProblemDetails) WithTraceID(traceID string) *ProblemDetails {
	p.TraceID = traceID
	return p
}

// WithValidationErrors adds validation errors to the problem details
func (p *ProblemDetails) WithValidationErrors(errors []ValidationError) *ProblemDetails {
	p.Errors = errors
	return p
}

// WithExtra adds extra fields to the problem details (they will be serialized at the top level)
func (p *ProblemDetails) WithExtra(key string, value interface{}) *ProblemDetails {
	if p.Extra == nil {
		p.Extra = make(map[string]interface{})
	}
	p.Extra[key] = value
	return p
}

// MarshalJSON implements custom JSON marshaling to include extra fields at the top level
func (p *ProblemDetails) MarshalJSON() ([]byte, error) {
	result := make(map[string]interface{})
	result["type"] = p.Type
	result["title"] = p.Title
	result["status"] = p.Status
	if p.Detail != "" {
		result["detail"] = p.Detail
	}
	if p.Instance != "" {
		result["instance"] = p.Instance
	}
	if p.TraceID != "" {
		result["trace_id"] = p.TraceID
	}
	if len(p.Errors) > 0 {
		result["errors"] = p.Errors
	}

	for k, v := range p.Extra {
		result[k] = v
	}

	return json.Marshal(result)
}

// NewProblemDetails creates a generic problem details with all fields
func NewProblemDetails(problemType, title string, status int, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// NewValidationError creates a validation error problem
func NewValidationError(detail, instance string) *ProblemDetails {
	return NewProblemDetails(TypeValidationError, TitleValidationError, http.StatusBadRequest, detail, instance)
}

// NewUnauthorizedError creates an unauthorized error problem
func NewUnauthorizedError(detail, instance string) *ProblemDetails {
	return NewProblemDetails(TypeUnauthorized, TitleUnauthorized, http.StatusUnauthorized, detail, instance)
}

// NewNotFoundError creates a not found error problem
func NewNotFoundError(detail, instance string) *ProblemDetails {
	return NewProblemDetails(TypeNotFound, TitleNotFound, http.StatusNotFound, detail, instance)
}

// NewNoApplicableRateError is returned when no yield band covers the amount
func NewNoApplicableRateError(detail, instance string) *ProblemDetails {
	return NewProblemDetails(TypeNoApplicableRate, TitleNoApplicableRate, http.StatusUnprocessableEntity, detail, instance)
}

// NewConflictError creates a conflict error
func NewConflictError(detail, instance string) *ProblemDetails {
	return NewProblemDetails(TypeConflict, TitleConflict, http.StatusConflict, detail, instance)
}

// NewRateLimitError creates a rate limit error problem
func NewRateLimitError(detail, instance string) *ProblemDetails {
	return NewProblemDetails(TypeRateLimit, TitleRateLimit, http.StatusTooManyRequests, detail, instance)
}

// NewInternalError creates an internal server error problem
func NewInternalError(detail, instance string) *ProblemDetails {
	return NewProblemDetails(TypeInternalError, TitleInternalError, http.StatusInternalServerError, detail, instance)
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(detail, instance string) *ProblemDetails {
	return NewProblemDetails(TypeUnavailable, TitleUnavailable, http.StatusServiceUnavailable, detail, instance)
}

// FromError maps an error chain onto a problem. Errors that are not *Error
// become a generic internal error and never leak their message.
func FromError(err error, instance string) *ProblemDetails {
	var e *Error
	if !As(err, &e) {
		return NewInternalError("an unexpected error occurred", instance)
	}

	detail := e.Message
	if detail == "" {
		detail = e.Kind
	}

	var p *ProblemDetails
	switch e.HTTPStatus() {
	case http.StatusBadRequest:
		p = NewValidationError(detail, instance)
	case http.StatusUnauthorized:
		p = NewUnauthorizedError(detail, instance)
	case http.StatusNotFound:
		p = NewNotFoundError(detail, instance)
	case http.StatusUnprocessableEntity:
		p = NewNoApplicableRateError(detail, instance)
	case http.StatusConflict:
		p = NewConflictError(detail, instance)
	case http.StatusTooManyRequests:
		p = NewRateLimitError(detail, instance)
	case http.StatusServiceUnavailable:
		p = NewServiceUnavailableError(detail, instance)
	default:
		return NewInternalError("an unexpected error occurred", instance)
	}

	for _, f := range e.Fields {
		p.Errors = append(p.Errors, ValidationError{Field: f.Field, Message: f.Message, Code: f.Kind})
	}
	return p.WithExtra("kind", e.Kind)
}
