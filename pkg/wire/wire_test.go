package wire

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestRequestMarshal(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		verify func(t *testing.T, payload map[string]any)
	}{
		{
			name: "previous response id omitted when absent",
			req:  NewRequest("gpt-4.1", "be helpful", []InputItem{UserText("hi")}, nil),
			verify: func(t *testing.T, payload map[string]any) {
				t.Helper()
				if _, present := payload["previous_response_id"]; present {
					t.Fatal("previous_response_id must be omitted, not null")
				}
				if payload["model"] != "gpt-4.1" || payload["instructions"] != "be helpful" {
					t.Fatalf("unexpected header fields: %v", payload)
				}
				if payload["tool_choice"] != "auto" || payload["parallel_tool_calls"] != true {
					t.Fatalf("unexpected policies: %v", payload)
				}
			},
		},
		{
			name: "previous response id present when set",
			req: func() Request {
				r := NewRequest("gpt-4.1", "", []InputItem{UserText("hi")}, nil)
				r.PreviousResponseID = "resp_123"
				return r
			}(),
			verify: func(t *testing.T, payload map[string]any) {
				t.Helper()
				if payload["previous_response_id"] != "resp_123" {
					t.Fatalf("previous_response_id = %v", payload["previous_response_id"])
				}
			},
		},
		{
			name: "function result input carries fixed type tag",
			req:  NewRequest("m", "", []InputItem{FunctionResult{CallID: "c1", Output: "done"}}, nil),
			verify: func(t *testing.T, payload map[string]any) {
				t.Helper()
				item := payload["input"].([]any)[0].(map[string]any)
				want := map[string]any{"call_id": "c1", "output": "done", "type": "function_call_output"}
				if !reflect.DeepEqual(item, want) {
					t.Fatalf("function result item = %v", item)
				}
			},
		},
		{
			name: "image input flattens to image-then-text content",
			req: NewRequest("m", "", []InputItem{ImageInput{
				Role:     "user",
				Text:     "here you go",
				ImageURL: "data:image/png;base64,aGk=",
			}}, nil),
			verify: func(t *testing.T, payload map[string]any) {
				t.Helper()
				item := payload["input"].([]any)[0].(map[string]any)
				if item["role"] != "user" {
					t.Fatalf("role = %v", item["role"])
				}
				content := item["content"].([]any)
				if len(content) != 2 {
					t.Fatalf("content length = %d", len(content))
				}
				img := content[0].(map[string]any)
				if img["type"] != "input_image" || img["image_url"] != "data:image/png;base64,aGk=" {
					t.Fatalf("image part = %v", img)
				}
				txt := content[1].(map[string]any)
				if txt["type"] != "input_text" || txt["text"] != "here you go" {
					t.Fatalf("text part = %v", txt)
				}
			},
		},
		{
			name: "tool descriptors flatten by variant",
			req: NewRequest("m", "", []InputItem{UserText("hi")}, []ToolDescriptor{
				FunctionTool{
					Name:        "current-date",
					Description: "returns the date",
					Parameters: Schema{
						Properties: map[string]Property{
							"zone": {Type: "string", Description: "IANA zone name"},
						},
						Required: []string{"zone"},
					},
					Strict: true,
				},
				WebSearchTool{},
			}),
			verify: func(t *testing.T, payload map[string]any) {
				t.Helper()
				tools := payload["tools"].([]any)
				if len(tools) != 2 {
					t.Fatalf("tools length = %d", len(tools))
				}
				fn := tools[0].(map[string]any)
				if fn["type"] != "function" || fn["name"] != "current-date" || fn["strict"] != true {
					t.Fatalf("function tool = %v", fn)
				}
				params := fn["parameters"].(map[string]any)
				if params["type"] != "object" || params["additionalProperties"] != false {
					t.Fatalf("parameters = %v", params)
				}
				if _, ok := params["properties"].(map[string]any)["zone"]; !ok {
					t.Fatalf("missing zone property: %v", params)
				}
				web := tools[1].(map[string]any)
				if !reflect.DeepEqual(web, map[string]any{"type": "web_search_preview"}) {
					t.Fatalf("web search tool = %v", web)
				}
			},
		},
		{
			name: "empty schema encodes empty object collections",
			req: NewRequest("m", "", []InputItem{UserText("hi")}, []ToolDescriptor{
				FunctionTool{Name: "take-screenshot"},
			}),
			verify: func(t *testing.T, payload map[string]any) {
				t.Helper()
				params := payload["tools"].([]any)[0].(map[string]any)["parameters"].(map[string]any)
				if props, ok := params["properties"].(map[string]any); !ok || len(props) != 0 {
					t.Fatalf("properties should be an empty object, got %v", params["properties"])
				}
				if required, ok := params["required"].([]any); !ok || len(required) != 0 {
					t.Fatalf("required should be an empty array, got %v", params["required"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.req)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var payload map[string]any
			if err := json.Unmarshal(data, &payload); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			tt.verify(t, payload)
		})
	}
}

func TestResponseUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
		verify  func(t *testing.T, resp Response)
	}{
		{
			name: "message output",
			body: `{"id":"resp_1","output":[{"type":"message","id":"msg_1","role":"assistant","content":[{"type":"output_text","text":"hello"}]}]}`,
			verify: func(t *testing.T, resp Response) {
				t.Helper()
				if resp.ID != "resp_1" || resp.Error != nil {
					t.Fatalf("envelope = %+v", resp)
				}
				msg := resp.Output[0].Message
				if msg == nil || msg.Role != "assistant" || msg.Content[0].Text != "hello" {
					t.Fatalf("message = %+v", msg)
				}
			},
		},
		{
			name: "function call with nested empty arguments",
			body: `{"output":[{"type":"function_call","id":"x","call_id":"c1","name":"current-date","arguments":"{}"}]}`,
			verify: func(t *testing.T, resp Response) {
				t.Helper()
				call := resp.Output[0].FunctionCall
				if call == nil {
					t.Fatal("function call not decoded")
				}
				if call.CallID != "c1" || call.Name != "current-date" || call.ID != "x" {
					t.Fatalf("call = %+v", call)
				}
				if call.Arguments == nil || len(call.Arguments) != 0 {
					t.Fatalf("arguments = %v, want empty map", call.Arguments)
				}
			},
		},
		{
			name: "function call with populated nested arguments",
			body: `{"output":[{"type":"function_call","id":"y","call_id":"c2","name":"get-request-public","arguments":"{\"url\":\"https://example.com\"}"}]}`,
			verify: func(t *testing.T, resp Response) {
				t.Helper()
				call := resp.Output[0].FunctionCall
				if call.Arguments["url"] != "https://example.com" {
					t.Fatalf("arguments = %v", call.Arguments)
				}
			},
		},
		{
			name:    "malformed nested arguments is a hard error",
			body:    `{"output":[{"type":"function_call","id":"z","call_id":"c3","name":"broken","arguments":"{not json"}]}`,
			wantErr: "decode arguments",
		},
		{
			name: "unknown output type decodes to bodiless item",
			body: `{"output":[{"type":"reasoning","id":"r_1","summary":[]},{"type":"message","id":"m_1","role":"assistant","content":[{"type":"output_text","text":"ok"}]}]}`,
			verify: func(t *testing.T, resp Response) {
				t.Helper()
				item := resp.Output[0]
				if item.Type != "reasoning" || item.Message != nil || item.FunctionCall != nil {
					t.Fatalf("unknown item = %+v", item)
				}
				if text, ok := resp.TextMessage(); !ok || text != "ok" {
					t.Fatalf("text = %q ok=%v", text, ok)
				}
			},
		},
		{
			name: "error body decodes",
			body: `{"id":"resp_9","error":{"code":"rate_limit_exceeded","message":"slow down"},"output":[]}`,
			verify: func(t *testing.T, resp Response) {
				t.Helper()
				if resp.Error == nil || resp.Error.Code != "rate_limit_exceeded" || resp.Error.Message != "slow down" {
					t.Fatalf("error = %+v", resp.Error)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp Response
			err := json.Unmarshal([]byte(tt.body), &resp)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			tt.verify(t, resp)
		})
	}
}

func TestResponseDerivedViews(t *testing.T) {
	body := `{"output":[
		{"type":"function_call","id":"a","call_id":"c1","name":"one","arguments":"{}"},
		{"type":"message","id":"m_0","role":"assistant","content":[{"type":"output_text","text":"first"}]},
		{"type":"function_call","id":"b","call_id":"c2","name":"two","arguments":"{}"},
		{"type":"message","id":"m_1","role":"assistant","content":[{"type":"output_text","text":"last"}]}
	]}`
	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	calls := resp.FunctionCalls()
	if len(calls) != 2 || calls[0].Name != "one" || calls[1].Name != "two" {
		t.Fatalf("calls = %+v", calls)
	}

	text, ok := resp.TextMessage()
	if !ok || text != "last" {
		t.Fatalf("text = %q ok=%v, want last message's first block", text, ok)
	}

	empty := Response{}
	if _, ok := empty.TextMessage(); ok {
		t.Fatal("empty response should have no text message")
	}
	if calls := empty.FunctionCalls(); len(calls) != 0 {
		t.Fatalf("empty response should have no calls, got %v", calls)
	}
}
