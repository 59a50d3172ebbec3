package task

import "errors"

var (
	ErrNotFound  = errors.New("task not found")
	ErrForbidden = errors.New("forbidden")
)

// TransitionError wraps a failed guard evaluation so callers can surface the
// structured rejection without losing the error-value contract.
type TransitionError struct {
	Result TransitionResult
}

func (e *TransitionError) Error() string {
	return e.Result.Message
}

func NewTransitionError(result TransitionResult) *TransitionError {
	return &TransitionError{Result: result}
}
