package handlers

import (
	stderrors "errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Aidin1998/investboard/pkg/errors"
	"github.com/Aidin1998/investboard/pkg/validation"
)

// ErrMalformedRequest is returned for bodies or parameters that cannot be
// decoded.
var ErrMalformedRequest = errors.Invalid.Reason("malformed_request")

// bindJSON decodes the body and applies binding tags, reporting failures
// the same way service-level validation does.
func bindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		out := validation.ErrValidation.Explain("request validation failed")
		for _, fe := range fieldErrs {
			out = out.WithField(fe.Tag(), fe.Field(), validation.Message(fe))
		}
		return out
	}
	return ErrMalformedRequest.Wrap(err).Explain("request body could not be decoded")
}

// uintParam reads a positive integer path parameter
func uintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, ErrMalformedRequest.Explain("%s must be a positive integer, got %q", name, raw)
	}
	return uint(v), nil
}

// uintQuery reads an optional non-negative integer query parameter
func uintQuery(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, ErrMalformedRequest.Explain("%s must be a non-negative integer, got %q", name, raw)
	}
	return uint(v), nil
}
