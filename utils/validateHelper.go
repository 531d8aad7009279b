package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// gin binds with the same tag; keep the two in agreement
	v.SetTagName("binding")
	return v
}

// ValidateStruct runs go-playground/validator tags and wraps failures in the
// shared validation error so boundary handlers can map them to 400.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %s", ErrorValidation, err.Error())
	}
	return nil
}

// RequireNonEmpty checks required free-text fields. Whitespace-only counts as empty.
func RequireNonEmpty(fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrorValidation, name)
		}
	}
	return nil
}
