package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

// New returns a validator that reports JSON field names and understands notblank.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// Error converts a validator failure into a VALIDATION_ERROR with per-field messages.
func Error(err error) *appErrors.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = message(fe)
	}
	appErr := appErrors.WithDetails(appErrors.ErrValidation, details)
	appErr.Err = err
	return appErr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match the date format %s", fe.Param())
	case "uuid":
		return "must be a valid identifier"
	}
	return fmt.Sprintf("failed on %s", fe.Tag())
}
