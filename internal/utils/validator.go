// internal/utils/validator.go
package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	addressRegex = regexp.MustCompile(`^0[xX][0-9a-fA-F]{40}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("address", validateAddress)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateAddress(fl validator.FieldLevel) bool {
	return addressRegex.MatchString(fl.Field().String())
}

// IsAddress reports whether s is a 0x-prefixed 20-byte hex string.
func IsAddress(s string) bool {
	return addressRegex.MatchString(s)
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "address":
		return e.Field() + " must be a 0x-prefixed 20-byte hex address"
	default:
		return e.Field() + " is invalid"
	}
}
