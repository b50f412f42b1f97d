package llm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Failure classification for a single model call. The invoker retries
// transient kinds and surfaces the final kind once its budget is exhausted.
var (
	// ErrTimeout marks a call that lost the race against its timeout budget.
	ErrTimeout = errors.New("model call timed out")
	// ErrUnavailable marks an explicit unavailability signal from the backend.
	ErrUnavailable = errors.New("model unavailable")
	// ErrLowQuality marks a completion scoring below the quality floor.
	ErrLowQuality = errors.New("completion below quality floor")
)

// ExhaustedError is raised after the invoker's retry budget runs out. Last
// preserves the final classified failure so callers can distinguish timeout
// vs unavailability vs generic with errors.Is.
type ExhaustedError struct {
	Class    CallClass
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() (msg string) {
	msg = fmt.Sprintf("%s call failed after %d attempts: %v", e.Class, e.Attempts, e.Last)
	return msg
}

func (e *ExhaustedError) Unwrap() (err error) {
	err = e.Last
	return err
}
