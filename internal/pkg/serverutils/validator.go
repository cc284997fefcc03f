package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks struct tags and returns a single readable error
// covering every failed field.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	parts := make([]string, len(errs))
	for i, fe := range errs {
		parts[i] = fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
	}
	return NewValidationError(strings.Join(parts, "; "))
}

// ValidationError marks a request body that failed struct validation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
