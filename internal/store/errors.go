package store

import "errors"

// Error is a structured rejection returned by the store, such as a
// constraint violation. Message is shown to the user verbatim.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsRejection reports whether err carries a store rejection as opposed to a
// transport failure.
func IsRejection(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
