package wire

import "encoding/json"

// ToolDescriptor is one element of a request's tools array. Two variants
// exist on the wire: a locally-executable function and the hosted web search
// preview.
type ToolDescriptor interface {
	json.Marshaler
	toolDescriptor()
}

// FunctionTool describes a locally-executable function to the model.
type FunctionTool struct {
	Name        string
	Description string
	Parameters  Schema
	Strict      bool
}

func (FunctionTool) toolDescriptor() {}

func (f FunctionTool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string `json:"type"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Parameters  Schema `json:"parameters"`
		Strict      bool   `json:"strict"`
	}{
		Type:        "function",
		Name:        f.Name,
		Description: f.Description,
		Parameters:  f.Parameters,
		Strict:      f.Strict,
	})
}

// WebSearchTool enables the hosted web search preview tool.
type WebSearchTool struct{}

func (WebSearchTool) toolDescriptor() {}

func (WebSearchTool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
	}{Type: "web_search_preview"})
}

// Schema is the parameter schema of a function tool. Only flat object
// schemas with primitive properties are expressible; additionalProperties is
// always false on the wire.
type Schema struct {
	Properties map[string]Property
	Required   []string
}

func (s Schema) MarshalJSON() ([]byte, error) {
	props := s.Properties
	if props == nil {
		props = map[string]Property{}
	}
	required := s.Required
	if required == nil {
		required = []string{}
	}
	return json.Marshal(struct {
		Type                 string              `json:"type"`
		Properties           map[string]Property `json:"properties"`
		Required             []string            `json:"required"`
		AdditionalProperties bool                `json:"additionalProperties"`
	}{
		Type:       "object",
		Properties: props,
		Required:   required,
	})
}

// Property is a single named parameter of a function tool.
type Property struct {
	Type        string   `json:"type"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description"`
}
