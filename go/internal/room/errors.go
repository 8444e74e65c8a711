package room

import (
	"errors"
	"fmt"
)

var (
	// ErrRoomGone is returned when the server reports the room no longer exists.
	ErrRoomGone = errors.New("room no longer exists")

	// ErrEmptyMessage is returned when message text is empty after trimming.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrRoomDestroyed is returned for operations on a destroyed session.
	ErrRoomDestroyed = errors.New("room session destroyed")

	// ErrInvalidTTL is returned for a negative TTL sample.
	ErrInvalidTTL = errors.New("invalid ttl sample")

	// ErrBridgeClosed is returned when subscribing a bridge that was already unsubscribed.
	ErrBridgeClosed = errors.New("realtime bridge closed")
)

// TransientError wraps a connectivity failure of a gateway or realtime operation.
// It never changes the lifecycle state.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient network error: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as a TransientError for op.
func NewTransientError(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
