// Package wire implements the JSON envelope shapes exchanged with the
// Responses completion endpoint. Input and output items are heterogeneous on
// the wire; this package models them as closed unions with the discriminator
// handled during encode/decode so callers never touch raw JSON.
package wire

import (
	"encoding/json"
)

// Tool choice policies accepted by the endpoint.
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceRequired = "required"
	ToolChoiceNone     = "none"
)

// Request is the outbound envelope for a single turn. It is built once and
// never mutated after Send.
type Request struct {
	Model             string
	Input             []InputItem
	Instructions      string
	Tools             []ToolDescriptor
	ToolChoice        string
	ParallelToolCalls bool

	// PreviousResponseID threads this turn onto an earlier response. Empty
	// means a fresh conversation and the field is omitted from the wire
	// form entirely (the endpoint rejects an explicit null).
	PreviousResponseID string
}

// NewRequest builds a request with the default policies used by every turn:
// auto tool choice and parallel calls enabled.
func NewRequest(model, instructions string, input []InputItem, tools []ToolDescriptor) Request {
	return Request{
		Model:             model,
		Input:             input,
		Instructions:      instructions,
		Tools:             tools,
		ToolChoice:        ToolChoiceAuto,
		ParallelToolCalls: true,
	}
}

// MarshalJSON flattens the heterogeneous input and tool lists into the shape
// the endpoint expects.
func (r Request) MarshalJSON() ([]byte, error) {
	payload := struct {
		Model              string           `json:"model"`
		Instructions       string           `json:"instructions"`
		PreviousResponseID string           `json:"previous_response_id,omitempty"`
		Tools              []ToolDescriptor `json:"tools"`
		ToolChoice         string           `json:"tool_choice"`
		ParallelToolCalls  bool             `json:"parallel_tool_calls"`
		Input              []InputItem      `json:"input"`
	}{
		Model:              r.Model,
		Instructions:       r.Instructions,
		PreviousResponseID: r.PreviousResponseID,
		Tools:              r.Tools,
		ToolChoice:         r.ToolChoice,
		ParallelToolCalls:  r.ParallelToolCalls,
		Input:              r.Input,
	}
	if payload.Tools == nil {
		payload.Tools = []ToolDescriptor{}
	}
	return json.Marshal(payload)
}

// InputItem is one element of a request's input array. Exactly three
// variants exist: TextInput, FunctionResult, and ImageInput. Adding a wire
// shape means adding a variant and its encode arm, not a runtime cast.
type InputItem interface {
	json.Marshaler
	inputItem()
}

// TextInput is a plain role-tagged text item.
type TextInput struct {
	Role    string
	Content string
}

func (TextInput) inputItem() {}

func (t TextInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: t.Role, Content: t.Content})
}

// UserText is shorthand for the most common input item.
func UserText(content string) TextInput {
	return TextInput{Role: "user", Content: content}
}

// FunctionResult acknowledges one FunctionCall from the previous turn,
// matched by call identifier.
type FunctionResult struct {
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

func (FunctionResult) inputItem() {}

func (f FunctionResult) MarshalJSON() ([]byte, error) {
	type shadow FunctionResult
	return json.Marshal(struct {
		shadow
		Type string `json:"type"`
	}{shadow: shadow(f), Type: "function_call_output"})
}

// ImageInput carries an image alongside accompanying text. The image travels
// as a data URL; the producer is responsible for encoding and size limits.
type ImageInput struct {
	Role     string
	Text     string
	ImageURL string
}

func (ImageInput) inputItem() {}

func (i ImageInput) MarshalJSON() ([]byte, error) {
	type contentPart struct {
		Type     string `json:"type"`
		ImageURL string `json:"image_url,omitempty"`
		Text     string `json:"text,omitempty"`
	}
	return json.Marshal(struct {
		Role    string        `json:"role"`
		Content []contentPart `json:"content"`
	}{
		Role: i.Role,
		Content: []contentPart{
			{Type: "input_image", ImageURL: i.ImageURL},
			{Type: "input_text", Text: i.Text},
		},
	})
}
