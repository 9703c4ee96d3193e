// Package validation checks request payloads before they reach the services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"aura/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages match what clients send.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
		switch v := fl.Field().Interface().(type) {
		case models.Mood:
			return v.Valid()
		case string:
			return models.Mood(v).Valid()
		}
		return false
	})
	_ = validate.RegisterValidation("vibetype", func(fl validator.FieldLevel) bool {
		return ValidateVibeType(fl.Field().String()) == nil
	})
}

// Struct validates s against its validate tags. Failures are returned as a
// models.AppError with code VALIDATION_ERROR describing the first bad field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("Invalid request")
	}
	return models.NewValidationError(describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "mood":
		return fmt.Sprintf("%s must be one of: %s", field, moodList())
	case "vibetype":
		return fmt.Sprintf("%s must be 2-32 lowercase letters", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "latitude", "longitude", "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid id", field)
	case "url", "uri":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func moodList() string {
	names := make([]string, len(models.Moods))
	for i, m := range models.Moods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
