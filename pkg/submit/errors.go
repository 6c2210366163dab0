package submit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSubmitInFlight reports a second Submit while one is still running. The
// pipeline rejects it rather than racing two persistence writes.
var ErrSubmitInFlight = errors.New("submit: submission already in flight")

// ValidationError describes one offending field or role. Path is empty for
// role-level failures; Role is empty for field-level ones.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Role    string `json:"role,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) String() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	case e.Role != "":
		return fmt.Sprintf("role %s: %s", e.Role, e.Message)
	default:
		return e.Message
	}
}

// ValidationErrors aggregates every failure of one validation pass. All of
// them are recoverable by further editing; none is fatal.
type ValidationErrors []ValidationError

// Error implements error.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "submit: validation failed"
	}
	parts := make([]string, 0, len(e))
	for _, item := range e {
		parts = append(parts, item.String())
	}
	return "submit: validation failed: " + strings.Join(parts, "; ")
}

// AsValidationErrors unwraps a pipeline error into its validation list, if
// that is what it is.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var list ValidationErrors
	if errors.As(err, &list) {
		return list, true
	}
	return nil, false
}
