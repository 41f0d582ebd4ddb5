package runtime

import (
	"errors"
	"fmt"
	"net"
)

// Exit codes reported by the CLI.
const (
	ExitError       = 1
	ExitTimeout     = 2
	ExitRedirect    = 3
	ExitClientError = 4
	ExitServerError = 5
)

// ErrHeaderEncoding is wrapped by HeaderEncodingError.
var ErrHeaderEncoding = errors.New("header cannot be sent")

// HeaderEncodingError reports a header name or value containing bytes that
// cannot be transmitted.
type HeaderEncodingError struct {
	Name   string
	Value  string
	Reason string
}

func (e *HeaderEncodingError) Error() string {
	return fmt.Sprintf("%s: %s %q", ErrHeaderEncoding, e.Reason, e.Name)
}

func (e *HeaderEncodingError) Unwrap() error {
	return ErrHeaderEncoding
}

// ExecutionError carries the exit code for a failed request.
type ExecutionError struct {
	Code int
	Err  error
}

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// statusExitCode maps an HTTP status to an exit code, or 0 for success.
func statusExitCode(status int) int {
	switch {
	case status >= 500:
		return ExitServerError
	case status >= 400:
		return ExitClientError
	case status >= 300:
		return ExitRedirect
	}
	return 0
}

// transportExitCode classifies a client.Do failure.
func transportExitCode(err error) int {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ExitTimeout
	}
	return ExitError
}
