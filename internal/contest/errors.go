package contest

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores for unknown contest ids
	ErrNotFound = errors.New("contest not found")
)

// ValidationError blocks a transition. The state is left unchanged.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
