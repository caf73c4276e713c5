package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRemoteOperationFailed reports a non-success response or transport failure from the project service.
var ErrRemoteOperationFailed = errors.New("remote operation failed")

// RemoteError carries the details of one failed remote project operation.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

// Error formats the failure with whatever detail is available.
func (e *RemoteError) Error() string {
	var b strings.Builder
	b.WriteString(ErrRemoteOperationFailed.Error())
	if op := strings.TrimSpace(e.Op); op != "" {
		b.WriteString(": ")
		b.WriteString(op)
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches ErrRemoteOperationFailed.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteOperationFailed
}

// Unwrap returns the underlying transport or decode error, if any.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// asRemoteError normalizes any client error into a RemoteError for op.
func asRemoteError(op string, err error) *RemoteError {
	if err == nil {
		return nil
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr
	}
	return &RemoteError{Op: op, Err: err}
}
