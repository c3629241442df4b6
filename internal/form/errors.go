package form

import "fmt"

// InvalidInputError reports the first field that failed validation.
type InvalidInputError struct {
	Field  Field
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Warning is the message to surface to the user.
func (e *InvalidInputError) Warning() string {
	return WarningMessage
}
