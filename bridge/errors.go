package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrStopped is returned by Send after the bridge has been explicitly stopped.
var ErrStopped = errors.New("bridge stopped")

// LaunchError means the worker executable could not be located or started.
// It is fatal and raised before any request is registered.
type LaunchError struct {
	// Candidates lists the paths that were probed, in order.
	Candidates []string
	// Err is the spawn error, if a candidate was found but failed to start.
	Err error
}

func (e *LaunchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("starting worker: %s", e.Err)
	}
	return fmt.Sprintf("worker executable not found, tried: %s", strings.Join(e.Candidates, ", "))
}

func (e *LaunchError) Unwrap() error { return e.Err }

// RemoteError is an error object returned by the worker for a single request.
type RemoteError struct {
	Code    int
	Message string
	Data    json.RawMessage
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("worker error %d: %s", e.Code, e.Message)
}

// ProcessExitError rejects every request that was still pending when the
// worker process terminated, whether cleanly or by crash.
type ProcessExitError struct {
	// ExitCode is the worker's exit code, or -1 if it is unknown.
	ExitCode int
}

func (e *ProcessExitError) Error() string {
	return fmt.Sprintf("worker process exited with code %d", e.ExitCode)
}

// TransportError records a line that was classified as protocol traffic but
// failed to parse. It is logged and never affects a pending request.
type TransportError struct {
	Line string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unparseable protocol line: %s", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError records a well-formed response whose id matches no pending
// request. The response is dropped; this error only ever reaches the log.
type ProtocolError struct {
	ID int64
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("response for unknown request id %d", e.ID)
}
