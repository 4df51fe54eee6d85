package response_test

import (
	"encoding/json"
	"testing"

	"github.com/tailored-agentic-units/assistant/core/protocol"
	"github.com/tailored-agentic-units/assistant/core/response"
)

func TestChatResponse_Content_StringContent(t *testing.T) {
	jsonData := `{
		"model": "gpt-4.1-mini",
		"choices": [{
			"index": 0,
			"message": {
				"role": "assistant",
				"content": "Hello, world!"
			}
		}]
	}`

	var resp response.ChatResponse
	if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if content := resp.Content(); content != "Hello, world!" {
		t.Errorf("got content %q, want %q", content, "Hello, world!")
	}
}

func TestChatResponse_Content_EmptyChoices(t *testing.T) {
	resp := response.ChatResponse{Model: "gpt-4o"}

	if content := resp.Content(); content != "" {
		t.Errorf("got content %q, want empty string", content)
	}
}

func TestNewChatResponse(t *testing.T) {
	resp := response.NewChatResponse("gpt-4o", "a quiet street")

	if resp.Model != "gpt-4o" {
		t.Errorf("got model %q, want %q", resp.Model, "gpt-4o")
	}
	if resp.Content() != "a quiet street" {
		t.Errorf("got content %q, want %q", resp.Content(), "a quiet street")
	}
}

func TestToolsResponse_Unmarshal(t *testing.T) {
	jsonData := `{
		"id": "chatcmpl-1",
		"model": "gpt-4.1-mini",
		"choices": [{
			"index": 0,
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call_abc",
					"type": "function",
					"function": {
						"name": "get_weather",
						"arguments": "{\"city\":\"Seoul\"}"
					}
				}]
			},
			"finish_reason": "tool_calls"
		}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`

	var resp response.ToolsResponse
	if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(resp.Choices) != 1 {
		t.Fatalf("got %d choices, want 1", len(resp.Choices))
	}

	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(calls))
	}
	if calls[0].Name != "get_weather" {
		t.Errorf("got name %q, want %q", calls[0].Name, "get_weather")
	}
	if calls[0].Arguments != `{"city":"Seoul"}` {
		t.Errorf("got arguments %q", calls[0].Arguments)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("got usage %+v, want total 15", resp.Usage)
	}
}

func TestNewToolsResponse(t *testing.T) {
	resp := response.NewToolsResponse("mock", "", protocol.NewToolCall("call_1", "manage_schedule", `{"action":"get_today"}`))

	if len(resp.Choices) != 1 {
		t.Fatalf("got %d choices, want 1", len(resp.Choices))
	}
	msg := resp.Choices[0].Message
	if msg.Role != "assistant" {
		t.Errorf("got role %q, want assistant", msg.Role)
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].ID != "call_1" {
		t.Errorf("got tool calls %+v", msg.ToolCalls)
	}
}

func TestParseChat(t *testing.T) {
	resp, err := response.ParseChat([]byte(`{"model":"m","choices":[{"message":{"content":"hi"}}]}`))
	if err != nil {
		t.Fatalf("ParseChat failed: %v", err)
	}
	if resp.Content() != "hi" {
		t.Errorf("got %q, want %q", resp.Content(), "hi")
	}
}

func TestParseChat_InvalidJSON(t *testing.T) {
	if _, err := response.ParseChat([]byte(`{invalid`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseTools_InvalidJSON(t *testing.T) {
	if _, err := response.ParseTools([]byte(`[`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
