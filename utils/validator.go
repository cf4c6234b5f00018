package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/HSouheill/taxdesk_backend/apperrors"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate validates the request body. Field failures come back as a
// Validation error whose details map field name to the failed rule.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("Invalid request body")
	}

	appErr := apperrors.Validation("Validation failed: " + verrs[0].Field() + " is " + describeTag(verrs[0]))
	for _, fe := range verrs {
		appErr = appErr.WithDetail(fe.Field(), fe.Tag())
	}
	return appErr
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "not a valid email"
	case "min":
		return "shorter than " + fe.Param()
	case "len":
		return "not " + fe.Param() + " characters long"
	case "gt":
		return "not greater than " + fe.Param()
	default:
		return "invalid"
	}
}
