package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every error returned from Struct.
var ErrInvalid = errors.New("invalid request")

var (
	instance *validator.Validate
	once     sync.Once
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// Struct validates s against its `validate` tags. The returned message names
// the failing fields but never their values.
func Struct(s interface{}) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		parts = append(parts, fmt.Sprintf("%s failed '%s'", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(parts, ", "))
}

// Var validates a single value against a tag expression.
func Var(field interface{}, tag string) error {
	if err := get().Var(field, tag); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, tag)
	}
	return nil
}
