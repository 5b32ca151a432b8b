package device

import (
	"errors"
	"fmt"
)

// ConnectionError reports that the transport is unreachable, that the
// connect probe was rejected, or that an operation was attempted while
// disconnected. The monitor loop treats it as fatal when it escapes a call.
type ConnectionError struct {
	Endpoint string // host:port or serial device path, may be empty
	Reason   string
	Err      error
}

func (e *ConnectionError) Error() string {
	msg := "device: connection failed"
	if e.Reason != "" {
		msg = "device: " + e.Reason
	}
	if e.Endpoint != "" {
		msg += " (" + e.Endpoint + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError reports that the instrument produced no response within the
// configured deadline. It is distinct from a lost connection: the link may
// still be usable on the next exchange.
type TimeoutError struct {
	Command  string
	Endpoint string
	Err      error
}

func (e *TimeoutError) Error() string {
	msg := "device: timeout"
	if e.Command != "" {
		msg += " waiting for response to " + e.Command
	}
	if e.Endpoint != "" {
		msg += " (" + e.Endpoint + ")"
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Timeout implements the net.Error convention.
func (e *TimeoutError) Timeout() bool { return true }

// ProtocolError reports a response that arrived but does not match the
// expected shape for the command: empty, undecodable, or wrong prefix.
type ProtocolError struct {
	Command  string
	Response string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("device: malformed response to %s: %q", e.Command, e.Response)
}

// CommandError is reserved for command-execution failures raised by layers
// above the transport.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("device: command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err is (or wraps) a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

func errNotConnected(endpoint string) error {
	return &ConnectionError{Endpoint: endpoint, Reason: "not connected"}
}
