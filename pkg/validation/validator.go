package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/pkg/errors"
)

// ErrValidation is the kind reported for struct validation failures
var ErrValidation = errors.Invalid.Reason("validation_failed")

// Validator wraps go-playground/validator with decimal rules and a strict
// HTML sanitizer for free text.
type Validator struct {
	validator *validator.Validate
	logger    *zap.Logger
	sanitizer *bluemonday.Policy
}

// NewValidator creates a new validator instance
func NewValidator(logger *zap.Logger) *Validator {
	v := validator.New()
	RegisterDecimalRules(v)

	return &Validator{
		validator: v,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// RegisterDecimalRules teaches a validator instance about decimal.Decimal.
// It is also applied to gin's binding engine.
func RegisterDecimalRules(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("decimal_gt0", func(fl validator.FieldLevel) bool {
		d, ok := fieldDecimal(fl)
		return ok && d.IsPositive()
	})
	_ = v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
		d, ok := fieldDecimal(fl)
		return ok && !d.IsNegative()
	})
	// decimal_between=lo hi, both inclusive
	_ = v.RegisterValidation("decimal_between", func(fl validator.FieldLevel) bool {
		d, ok := fieldDecimal(fl)
		if !ok {
			return false
		}
		bounds := strings.Fields(fl.Param())
		if len(bounds) != 2 {
			return false
		}
		lo, errLo := decimal.NewFromString(bounds[0])
		hi, errHi := decimal.NewFromString(bounds[1])
		if errLo != nil || errHi != nil {
			return false
		}
		return d.GreaterThanOrEqual(lo) && d.LessThanOrEqual(hi)
	})
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	switch f := fl.Field(); f.Kind() {
	case reflect.String:
		d, err := decimal.NewFromString(f.String())
		return d, err == nil
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(f.Float()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(f.Int()), true
	}
	return decimal.Zero, false
}

// ValidateStruct validates a struct using its validate tags. Failures are
// returned as an *errors.Error of kind validation_failed with one field entry
// per violated rule.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ErrValidation.Wrap(err)
	}

	out := ErrValidation.Explain("request validation failed")
	for _, fe := range fieldErrs {
		out = out.WithField(fe.Tag(), fe.Field(), Message(fe))
	}
	return out
}

// SanitizeText strips markup from free text such as profile descriptions.
func (v *Validator) SanitizeText(input string) string {
	if input == "" {
		return input
	}
	sanitized := strings.TrimSpace(v.sanitizer.Sanitize(input))
	if sanitized != strings.TrimSpace(input) {
		v.logger.Debug("Markup removed from input", zap.Int("original_length", len(input)))
	}
	return sanitized
}

// Message returns a human-readable message for a field error
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "decimal_gt0":
		return fmt.Sprintf("%s must be greater than zero", fe.Field())
	case "decimal_gte0":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	case "decimal_between":
		return fmt.Sprintf("%s must be between %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), " and "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
