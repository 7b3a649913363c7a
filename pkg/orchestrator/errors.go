package orchestrator

import (
	"fmt"

	"github.com/dynamaic/assistant-core/pkg/record"
)

// Terminal failures carry the partially-built conversation record so callers
// can still persist and display the trace of what was attempted.

// TurnError wraps a transport or decode failure from the completion
// endpoint.
type TurnError struct {
	Record *record.Record
	Err    error
}

func (e *TurnError) Error() string { return e.Err.Error() }

func (e *TurnError) Unwrap() error { return e.Err }

// RemoteError reports an envelope that decoded successfully but carried a
// structured error from the endpoint.
type RemoteError struct {
	Code    string
	Message string
	Record  *record.Record
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("endpoint reported error %s: %s", e.Code, e.Message)
}

// UnknownToolError reports a model request for a tool name absent from the
// registry: a contract mismatch between the advertised tool list and the one
// the model believes exists.
type UnknownToolError struct {
	Name   string
	Record *record.Record
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("model requested unknown tool %q", e.Name)
}

// NoAnswerError reports a response that contained neither a function call
// nor a decodable message.
type NoAnswerError struct {
	Record *record.Record
}

func (e *NoAnswerError) Error() string { return "response contains no answer" }

// NoStrategyError reports a strategist turn that produced no plan text.
type NoStrategyError struct {
	Record *record.Record
}

func (e *NoStrategyError) Error() string { return "strategist produced no plan" }

// TurnLimitError reports a turn loop that exceeded the configured maximum
// depth, guarding against tools that re-trigger themselves indefinitely.
type TurnLimitError struct {
	MaxTurns int
	Record   *record.Record
}

func (e *TurnLimitError) Error() string {
	return fmt.Sprintf("turn loop exceeded %d turns", e.MaxTurns)
}
