package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/richxcame/visit-pricing/pkg/models"
)

// DateLayout is the wire format for calendar days
const DateLayout = "2006-01-02"

var (
	// Validate is the global validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators
	_ = Validate.RegisterValidation("service_tier", validateServiceTier)
	_ = Validate.RegisterValidation("calendar_date", validateCalendarDate)
	_ = Validate.RegisterValidation("ascending", validateAscending)
}

// ValidationError collects field-level failures from a struct validation
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError converts validator errors into a ValidationError
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Namespace()] = describe(fe)
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateStruct validates a struct and returns a ValidationError if validation fails
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "service_tier":
		return "must be standard or premium"
	case "calendar_date":
		return "must be a date formatted as " + DateLayout
	case "ascending":
		return "must be strictly ascending"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}

// validateServiceTier checks the value is a known tier
func validateServiceTier(fl validator.FieldLevel) bool {
	return models.Tier(fl.Field().String()).Valid()
}

// validateCalendarDate checks the string parses as a calendar day
func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// validateAscending checks a float slice is strictly increasing
func validateAscending(fl validator.FieldLevel) bool {
	values, ok := fl.Field().Interface().([]float64)
	if !ok {
		return false
	}
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return false
		}
	}
	return true
}
