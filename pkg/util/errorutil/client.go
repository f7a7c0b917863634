package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthenticated is returned before any request is sent when no credential is available.
var ErrUnauthenticated = errors.New("authentication required, please sign in again")

// RemoteError is a business-level failure or non-2xx response from the ticket service.
type RemoteError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Unauthorized reports whether the server rejected the credential.
func (e *RemoteError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// NewRemoteError builds a RemoteError, falling back to "HTTP <status>" when message is empty.
func NewRemoteError(status int, message, requestID string) *RemoteError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &RemoteError{StatusCode: status, Message: message, RequestID: requestID}
}

// TransportError is a network-level failure that produced no response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether err carries a RemoteError.
func IsRemote(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote)
}

// IsTransport reports whether err carries a TransportError.
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}

// Message returns the user-facing text of err, or fallback when err has none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
