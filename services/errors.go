package services

import (
	"errors"
	"fmt"
)

// ErrNoCurrentUser indicates that no user identity is available to scope a
// remote call. Nothing is sent and no cached state changes.
var ErrNoCurrentUser = errors.New("trackfit: no current user")

// RequestError reports a failed remote call: a transport or decode problem,
// or an envelope the server answered with success=false.
type RequestError struct {
	Op      string // operation that failed, e.g. "list foods"
	Message string // server-supplied reason when the envelope carried one
	Err     error  // underlying transport/decode error when any
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *RequestError) Unwrap() error { return e.Err }
