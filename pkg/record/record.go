// Package record keeps the append-only trace of one user interaction: the
// original request, every tool invocation with its inputs and outputs, and
// the final answer or error. The orchestrator is the only writer while a
// turn is in flight; ownership passes to the history collaborator once the
// turn terminates.
package record

import (
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dynamaic/assistant-core/pkg/wire"
)

// Record is the conversation record for a single user request.
type Record struct {
	ID        string
	Request   string
	CreatedAt time.Time

	mu         sync.Mutex
	responseID string
	errMessage string
	answer     string
	answered   bool
	events     []Event

	now func() time.Time
}

// Event is one appended function-call trace entry.
type Event struct {
	Timestamp time.Time
	Call      wire.FunctionCall
	Result    wire.FunctionResult
	Callback  *CallbackPayload
}

// CallbackKind discriminates which input-item variant a callback produced.
type CallbackKind string

const (
	CallbackText           CallbackKind = "text"
	CallbackFunctionResult CallbackKind = "function_result"
	CallbackImage          CallbackKind = "image"
)

// CallbackPayload is the serialized form of a callback input item. Exactly
// one of Text, Result, and Image is populated, matching Kind.
type CallbackPayload struct {
	Kind   CallbackKind
	Text   string
	Result *wire.FunctionResult
	Image  []byte
}

// New creates a record for the given user request.
func New(request string) *Record {
	now := time.Now
	return &Record{
		ID:        uuid.NewString(),
		Request:   request,
		CreatedAt: now(),
		now:       now,
	}
}

// RecordCall appends one function-call event with a captured timestamp.
// Safe for concurrent use: tool tasks in one batch complete in any order.
func (r *Record) RecordCall(call wire.FunctionCall, result wire.FunctionResult, callback wire.InputItem) {
	evt := Event{
		Timestamp: r.now(),
		Call:      call,
		Result:    result,
		Callback:  payloadFor(callback),
	}
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// SetOutcome stores the terminal response identifier and final answer.
func (r *Record) SetOutcome(responseID, answer string) {
	r.mu.Lock()
	r.responseID = responseID
	r.answer = answer
	r.answered = true
	r.mu.Unlock()
}

// SetResponseID updates the latest response identifier without marking the
// record answered, so a failed turn still points at the response that
// produced it.
func (r *Record) SetResponseID(responseID string) {
	r.mu.Lock()
	r.responseID = responseID
	r.mu.Unlock()
}

// SetError stores the terminal error message.
func (r *Record) SetError(message string) {
	r.mu.Lock()
	r.errMessage = message
	r.mu.Unlock()
}

// ResponseID returns the identifier of the most recent response, for
// threading follow-up conversations.
func (r *Record) ResponseID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responseID
}

// Answer returns the final answer and whether one was produced.
func (r *Record) Answer() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.answer, r.answered
}

// ErrorMessage returns the stored terminal error message, if any.
func (r *Record) ErrorMessage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errMessage
}

// Events returns a copy of the appended events in append order.
func (r *Record) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func payloadFor(item wire.InputItem) *CallbackPayload {
	switch v := item.(type) {
	case nil:
		return nil
	case wire.TextInput:
		return &CallbackPayload{Kind: CallbackText, Text: v.Content}
	case wire.FunctionResult:
		res := v
		return &CallbackPayload{Kind: CallbackFunctionResult, Result: &res}
	case wire.ImageInput:
		return &CallbackPayload{Kind: CallbackImage, Image: decodeDataURL(v.ImageURL)}
	default:
		return nil
	}
}

// decodeDataURL strips a data: prefix and decodes the base64 payload. The
// raw bytes are stored so history readers do not depend on the wire form.
func decodeDataURL(url string) []byte {
	idx := strings.Index(url, "base64,")
	if idx < 0 {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(url[idx+len("base64,"):])
	if err != nil {
		return nil
	}
	return raw
}
