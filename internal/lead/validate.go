package lead

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the mandatory fields of a normalized lead.
// It returns a *ValidationError when name or phone is empty.
func Validate(l Lead) error {
	err := validate.Struct(l)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate lead: %w", err)
	}
	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, strings.ToLower(fe.Field()))
	}
	return &ValidationError{Fields: missing}
}
