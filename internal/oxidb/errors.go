package oxidb

import "fmt"

// Error is returned when the OxiDB server answers with ok=false.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("oxidb: %s", e.Msg)
}
