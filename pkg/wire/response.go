package wire

import (
	"encoding/json"
	"fmt"
)

// Response is the decoded inbound envelope for one turn.
type Response struct {
	ID     string       `json:"id"`
	Error  *ErrorBody   `json:"error"`
	Output []OutputItem `json:"output"`
}

// ErrorBody is the structured error the endpoint reports inside an otherwise
// well-formed envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputItem is one element of a response's output array. The discriminator
// is decoded first; exactly one of Message and FunctionCall is non-nil for
// recognized types. Unknown types decode to an item with both bodies nil,
// which callers must skip rather than reject.
type OutputItem struct {
	Type string
	ID   string

	Message      *Message
	FunctionCall *FunctionCall
}

// UnmarshalJSON reads the type tag, then decodes the remainder according to
// that tag.
func (o *OutputItem) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("decode output item: %w", err)
	}
	o.Type = head.Type
	o.ID = head.ID
	switch head.Type {
	case "message":
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("decode message output: %w", err)
		}
		o.Message = &msg
	case "function_call":
		var call FunctionCall
		if err := json.Unmarshal(data, &call); err != nil {
			return err
		}
		call.ID = head.ID
		o.FunctionCall = &call
	}
	return nil
}

// Message is an assistant message with ordered content blocks.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a single text segment of a message.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// FunctionCall is the model's request to execute one registered tool.
type FunctionCall struct {
	ID        string
	CallID    string
	Name      string
	Arguments map[string]string
}

// UnmarshalJSON decodes the call, including the nested arguments payload:
// the endpoint delivers arguments as a string containing JSON, so it is
// decoded twice. A malformed nested payload is a hard error.
func (c *FunctionCall) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID        string `json:"id"`
		CallID    string `json:"call_id"`
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decode function call: %w", err)
	}
	args := map[string]string{}
	if aux.Arguments != "" {
		if err := json.Unmarshal([]byte(aux.Arguments), &args); err != nil {
			return fmt.Errorf("decode arguments for %s: %w", aux.Name, err)
		}
	}
	c.ID = aux.ID
	c.CallID = aux.CallID
	c.Name = aux.Name
	c.Arguments = args
	return nil
}

// FunctionCalls collects every function call in the response, in output
// order.
func (r *Response) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, item := range r.Output {
		if item.FunctionCall != nil {
			calls = append(calls, *item.FunctionCall)
		}
	}
	return calls
}

// TextMessage returns the first text block of the last message in the
// response, or false when the response carries no decodable message.
func (r *Response) TextMessage() (string, bool) {
	for i := len(r.Output) - 1; i >= 0; i-- {
		msg := r.Output[i].Message
		if msg == nil {
			continue
		}
		if len(msg.Content) == 0 {
			return "", false
		}
		return msg.Content[0].Text, true
	}
	return "", false
}
