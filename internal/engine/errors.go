package engine

import (
	"errors"
	"fmt"
)

// ErrEngineNotFound indicates the engine CLI binary is not installed.
var ErrEngineNotFound = errors.New("claude CLI not found in PATH")

// ProcessError indicates the engine process exited abnormally mid-phase.
// This is fatal for the run; there is no retry at this layer.
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("engine process failed (exit code %d): %s", e.ExitCode, e.Stderr)
}

// MalformedError indicates the engine emitted output that could not be
// decoded as a protocol message. Fail-closed: the run aborts rather than
// guessing at intent.
type MalformedError struct {
	Line string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("failed to parse engine output: %s", e.Line)
}

// ProtocolError covers any other violation of the engine protocol, such as a
// session closing without a terminal result.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("engine protocol error: %s", e.Reason)
}
