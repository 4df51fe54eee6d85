package providers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"

	"github.com/tailored-agentic-units/assistant/agent/providers"
	"github.com/tailored-agentic-units/assistant/core/config"
	"github.com/tailored-agentic-units/assistant/core/protocol"
)

// capture records the last decoded request body and replies with a fixed payload.
func capture(t *testing.T, path, reply string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, path) {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		body = nil
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &body
}

func weatherTool() protocol.Tool {
	return protocol.Tool{
		Name:        "get_weather",
		Description: "Get the current weather for a city.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{"type": "string"},
			},
			"required": []string{"city"},
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.ProviderConfig
		want    string
		wantErr error
	}{
		{"openai", &config.ProviderConfig{Name: "openai", APIKey: "k"}, "openai", nil},
		{"anthropic mixed case", &config.ProviderConfig{Name: " Anthropic ", APIKey: "k"}, "anthropic", nil},
		{"unknown", &config.ProviderConfig{Name: "ollama"}, "", providers.ErrUnknownProvider},
		{"nil", nil, "", providers.ErrMissingProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := providers.New(tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("got name %q, want %q", p.Name(), tt.want)
			}
		})
	}
}

const openAIToolReply = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1,
	"model": "gpt-4.1-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "tool_calls",
		"message": {
			"role": "assistant",
			"content": null,
			"tool_calls": [{
				"id": "call_1",
				"type": "function",
				"function": {"name": "get_weather", "arguments": "{\"city\":\"Seoul\"}"}
			}]
		}
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func TestOpenAI_Tools(t *testing.T) {
	srv, body := capture(t, "/chat/completions", openAIToolReply)
	p := providers.NewOpenAI(
		&config.ProviderConfig{Name: "openai", BaseURL: srv.URL, APIKey: "test"},
		openaioption.WithMaxRetries(0),
	)

	resp, err := p.Tools(context.Background(), &providers.ToolsData{
		Model: "gpt-4.1-mini",
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.RoleSystem, "be brief"),
			protocol.NewMessage(protocol.RoleUser, "weather in Seoul?"),
		},
		Tools:   []protocol.Tool{weatherTool()},
		Options: map[string]any{"temperature": 0.2},
	})
	if err != nil {
		t.Fatalf("Tools failed: %v", err)
	}

	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(calls))
	}
	if calls[0].ID != "call_1" || calls[0].Name != "get_weather" || calls[0].Arguments != `{"city":"Seoul"}` {
		t.Errorf("unexpected tool call: %+v", calls[0])
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}

	req := *body
	if req["model"] != "gpt-4.1-mini" {
		t.Errorf("got model %v", req["model"])
	}
	if tools, _ := req["tools"].([]any); len(tools) != 1 {
		t.Errorf("got %d tools in request, want 1", len(tools))
	}
	if msgs, _ := req["messages"].([]any); len(msgs) != 2 {
		t.Errorf("got %d messages in request, want 2", len(msgs))
	}
}

func TestOpenAI_ToolsReplaysToolExchange(t *testing.T) {
	reply := `{"id":"c2","object":"chat.completion","created":1,"model":"gpt-4.1-mini",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"It is sunny."}}]}`
	srv, body := capture(t, "/chat/completions", reply)
	p := providers.NewOpenAI(
		&config.ProviderConfig{BaseURL: srv.URL, APIKey: "test"},
		openaioption.WithMaxRetries(0),
	)

	call := protocol.NewToolCall("call_1", "get_weather", `{"city":"Seoul"}`)
	resp, err := p.Tools(context.Background(), &providers.ToolsData{
		Model: "gpt-4.1-mini",
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.RoleUser, "weather in Seoul?"),
			{Role: protocol.RoleAssistant, ToolCalls: []protocol.ToolCall{call}},
			{Role: protocol.RoleTool, Content: `{"temperature":21}`, ToolCallID: "call_1"},
		},
	})
	if err != nil {
		t.Fatalf("Tools failed: %v", err)
	}
	if got := resp.Choices[0].Message.Content; got != "It is sunny." {
		t.Errorf("got content %q", got)
	}

	msgs, _ := (*body)["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	asst, _ := msgs[1].(map[string]any)
	if tc, _ := asst["tool_calls"].([]any); len(tc) != 1 {
		t.Errorf("assistant message lost its tool calls: %v", asst)
	}
	tool, _ := msgs[2].(map[string]any)
	if tool["tool_call_id"] != "call_1" {
		t.Errorf("got tool_call_id %v, want call_1", tool["tool_call_id"])
	}
	if _, ok := (*body)["tools"]; ok {
		t.Error("request without tools must not carry a tools field")
	}
}

func TestOpenAI_Vision(t *testing.T) {
	reply := `{"id":"c3","object":"chat.completion","created":1,"model":"gpt-4o",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"description\":\"a street\"}"}}]}`
	srv, body := capture(t, "/chat/completions", reply)
	p := providers.NewOpenAI(
		&config.ProviderConfig{BaseURL: srv.URL, APIKey: "test"},
		openaioption.WithMaxRetries(0),
	)

	resp, err := p.Vision(context.Background(), &providers.VisionData{
		Model: "gpt-4o",
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.RoleUser, []protocol.ContentPart{
				protocol.TextPart("describe"),
				protocol.ImagePart("data:image/jpeg;base64,AAAA", protocol.DetailLow),
			}),
		},
		Format: &protocol.ResponseFormat{
			Name: "scene",
			Schema: map[string]any{
				"type":                 "object",
				"properties":           map[string]any{"description": map[string]any{"type": "string"}},
				"required":             []string{"description"},
				"additionalProperties": false,
			},
		},
		Options: map[string]any{"max_tokens": 3000, "temperature": 0.7},
	})
	if err != nil {
		t.Fatalf("Vision failed: %v", err)
	}
	if resp.Content() != `{"description":"a street"}` {
		t.Errorf("got content %q", resp.Content())
	}

	req := *body
	format, _ := req["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Errorf("got response_format %v, want json_schema", format)
	}
	if req["max_tokens"] != float64(3000) {
		t.Errorf("got max_tokens %v, want 3000", req["max_tokens"])
	}
	msgs, _ := req["messages"].([]any)
	user, _ := msgs[0].(map[string]any)
	parts, _ := user["content"].([]any)
	if len(parts) != 2 {
		t.Fatalf("got %d content parts, want 2", len(parts))
	}
	image, _ := parts[1].(map[string]any)
	if image["type"] != "image_url" {
		t.Errorf("got part type %v, want image_url", image["type"])
	}
}

func TestOpenAI_EmptyChoices(t *testing.T) {
	srv, _ := capture(t, "/chat/completions",
		`{"id":"c4","object":"chat.completion","created":1,"model":"gpt-4.1-mini","choices":[]}`)
	p := providers.NewOpenAI(
		&config.ProviderConfig{BaseURL: srv.URL, APIKey: "test"},
		openaioption.WithMaxRetries(0),
	)

	_, err := p.Tools(context.Background(), &providers.ToolsData{
		Model:    "gpt-4.1-mini",
		Messages: protocol.InitMessages(protocol.RoleUser, "hi"),
	})
	if !errors.Is(err, providers.ErrEmptyResponse) {
		t.Errorf("got %v, want ErrEmptyResponse", err)
	}
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := providers.NewOpenAI(
		&config.ProviderConfig{BaseURL: srv.URL, APIKey: "test"},
		openaioption.WithMaxRetries(0),
	)
	if _, err := p.Tools(context.Background(), &providers.ToolsData{
		Model:    "gpt-4.1-mini",
		Messages: protocol.InitMessages(protocol.RoleUser, "hi"),
	}); err == nil {
		t.Fatal("expected error from failing server")
	}
}

const anthropicToolReply = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-5",
	"content": [
		{"type": "text", "text": "Checking."},
		{"type": "tool_use", "id": "toolu_1", "name": "get_weather", "input": {"city":"Seoul"}}
	],
	"stop_reason": "tool_use",
	"stop_sequence": null,
	"usage": {"input_tokens": 12, "output_tokens": 7}
}`

func TestAnthropic_Tools(t *testing.T) {
	srv, body := capture(t, "/v1/messages", anthropicToolReply)
	p := providers.NewAnthropic(
		&config.ProviderConfig{Name: "anthropic", BaseURL: srv.URL, APIKey: "test"},
		anthropicoption.WithMaxRetries(0),
	)

	resp, err := p.Tools(context.Background(), &providers.ToolsData{
		Model: "claude-sonnet-4-5",
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.RoleSystem, "be brief"),
			protocol.NewMessage(protocol.RoleUser, "weather in Seoul?"),
		},
		Tools: []protocol.Tool{weatherTool()},
	})
	if err != nil {
		t.Fatalf("Tools failed: %v", err)
	}

	msg := resp.Choices[0].Message
	if msg.Content != "Checking." {
		t.Errorf("got content %q, want %q", msg.Content, "Checking.")
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].Name != "get_weather" {
		t.Fatalf("unexpected tool calls: %+v", msg.ToolCalls)
	}
	if msg.ToolCalls[0].Arguments != `{"city":"Seoul"}` {
		t.Errorf("got arguments %q", msg.ToolCalls[0].Arguments)
	}
	if resp.Usage.TotalTokens != 19 {
		t.Errorf("got total tokens %d, want 19", resp.Usage.TotalTokens)
	}

	req := *body
	if _, ok := req["system"]; !ok {
		t.Error("system prompt must be sent as the system field")
	}
	if msgs, _ := req["messages"].([]any); len(msgs) != 1 {
		t.Errorf("got %d messages, want 1 (system is not a message)", len(msgs))
	}
	if req["max_tokens"] != float64(1024) {
		t.Errorf("got max_tokens %v, want default 1024", req["max_tokens"])
	}
}

func TestAnthropic_ToolResultsGrouped(t *testing.T) {
	reply := `{"id":"msg_2","type":"message","role":"assistant","model":"claude-sonnet-4-5",
		"content":[{"type":"text","text":"Sunny."}],"stop_reason":"end_turn","stop_sequence":null,
		"usage":{"input_tokens":1,"output_tokens":1}}`
	srv, body := capture(t, "/v1/messages", reply)
	p := providers.NewAnthropic(
		&config.ProviderConfig{BaseURL: srv.URL, APIKey: "test"},
		anthropicoption.WithMaxRetries(0),
	)

	_, err := p.Tools(context.Background(), &providers.ToolsData{
		Model: "claude-sonnet-4-5",
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.RoleUser, "weather?"),
			{Role: protocol.RoleAssistant, ToolCalls: []protocol.ToolCall{
				protocol.NewToolCall("toolu_1", "get_weather", `{"city":"Seoul"}`),
			}},
			{Role: protocol.RoleTool, Content: `{"temperature":21}`, ToolCallID: "toolu_1"},
		},
		Tools: []protocol.Tool{{Name: "get_weather", Parameters: map[string]any{"type": "object"}}},
	})
	if err != nil {
		t.Fatalf("Tools failed: %v", err)
	}

	msgs, _ := (*body)["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	last, _ := msgs[2].(map[string]any)
	if last["role"] != "user" {
		t.Errorf("tool results must be sent as a user message, got role %v", last["role"])
	}
	content, _ := last["content"].([]any)
	block, _ := content[0].(map[string]any)
	if block["type"] != "tool_result" || block["tool_use_id"] != "toolu_1" {
		t.Errorf("unexpected tool result block: %v", block)
	}
}

func TestAnthropic_ToolExchangeWithoutTools(t *testing.T) {
	reply := `{"id":"msg_4","type":"message","role":"assistant","model":"claude-sonnet-4-5",
		"content":[{"type":"text","text":"Sunny."}],"stop_reason":"end_turn","stop_sequence":null,
		"usage":{"input_tokens":1,"output_tokens":1}}`
	srv, body := capture(t, "/v1/messages", reply)
	p := providers.NewAnthropic(
		&config.ProviderConfig{BaseURL: srv.URL, APIKey: "test"},
		anthropicoption.WithMaxRetries(0),
	)

	_, err := p.Tools(context.Background(), &providers.ToolsData{
		Model: "claude-sonnet-4-5",
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.RoleUser, "weather?"),
			{Role: protocol.RoleAssistant, ToolCalls: []protocol.ToolCall{
				protocol.NewToolCall("toolu_1", "get_weather", `{"city":"Seoul"}`),
			}},
			{Role: protocol.RoleTool, Content: `{"temperature":21}`, ToolCallID: "toolu_1"},
		},
	})
	if err != nil {
		t.Fatalf("Tools failed: %v", err)
	}

	if _, ok := (*body)["tools"]; ok {
		t.Error("no tools should be sent")
	}
	msgs, _ := (*body)["messages"].([]any)
	for i, m := range msgs {
		content, _ := m.(map[string]any)["content"].([]any)
		for _, c := range content {
			if typ := c.(map[string]any)["type"]; typ != "text" {
				t.Errorf("message %d carries a %v block, want text only", i, typ)
			}
		}
	}
	last, _ := msgs[2].(map[string]any)
	content, _ := last["content"].([]any)
	block, _ := content[0].(map[string]any)
	if block["text"] != `Tool result: {"temperature":21}` {
		t.Errorf("got %v", block["text"])
	}
}

func TestAnthropic_VisionImageBlock(t *testing.T) {
	reply := `{"id":"msg_3","type":"message","role":"assistant","model":"claude-sonnet-4-5",
		"content":[{"type":"text","text":"A street."}],"stop_reason":"end_turn","stop_sequence":null,
		"usage":{"input_tokens":1,"output_tokens":1}}`
	srv, body := capture(t, "/v1/messages", reply)
	p := providers.NewAnthropic(
		&config.ProviderConfig{BaseURL: srv.URL, APIKey: "test"},
		anthropicoption.WithMaxRetries(0),
	)

	resp, err := p.Vision(context.Background(), &providers.VisionData{
		Model: "claude-sonnet-4-5",
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.RoleUser, []protocol.ContentPart{
				protocol.TextPart("describe"),
				protocol.ImagePart("data:image/jpeg;base64,AAAA", protocol.DetailLow),
			}),
		},
		Options: map[string]any{"max_tokens": 500},
	})
	if err != nil {
		t.Fatalf("Vision failed: %v", err)
	}
	if resp.Content() != "A street." {
		t.Errorf("got content %q", resp.Content())
	}

	msgs, _ := (*body)["messages"].([]any)
	user, _ := msgs[0].(map[string]any)
	content, _ := user["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("got %d blocks, want 2", len(content))
	}
	image, _ := content[1].(map[string]any)
	source, _ := image["source"].(map[string]any)
	if image["type"] != "image" || source["media_type"] != "image/jpeg" || source["data"] != "AAAA" {
		t.Errorf("unexpected image block: %v", image)
	}
	if (*body)["max_tokens"] != float64(500) {
		t.Errorf("got max_tokens %v, want 500", (*body)["max_tokens"])
	}
}

func TestMergeOptions(t *testing.T) {
	defaults := map[string]any{"max_tokens": 3000, "temperature": 0.7}
	got := providers.MergeOptions(defaults, map[string]any{"max_tokens": 500})

	if got["max_tokens"] != 500 || got["temperature"] != 0.7 {
		t.Errorf("unexpected merge result: %v", got)
	}
	if defaults["max_tokens"] != 3000 {
		t.Error("MergeOptions mutated defaults")
	}
}
