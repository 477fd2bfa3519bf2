// internal/content/errors.go
//
// Error kinds shared by the content services.
//
// Context
// -------
// The admin API surfaces four outcomes: invalid input, a missing entity, a
// concurrent-modification conflict, and everything else.  Services return
// these kinds and HTTP handlers translate them; the services themselves
// never pick status codes.
//
// Notes
// -----
// • Storage failures (image encode, disk write, SQL execution) are plain
//   wrapped errors; there is no dedicated type because no caller branches
//   on them beyond "internal error".
// • Oxford commas, two spaces after periods.
package content

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the entity addressed by the request, or a foreign
// entity it references (category, cover file), does not exist.
var ErrNotFound = errors.New("content: not found")

// ValidationError reports malformed or out-of-policy input.  It is always
// detected before the surrounding transaction commits, so a validation
// failure is never partially applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content: invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
