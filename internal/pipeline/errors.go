package pipeline

import "fmt"

// Error reports a failed run: the state that failed, the upload it was
// working on and the underlying cause.
type Error struct {
	Stage    State
	Filename string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Filename, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
