// Package response holds the normalized language-service replies returned by
// every provider, independent of the vendor SDK that produced them.
package response

import (
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/assistant/core/protocol"
)

// TokenUsage reports token accounting when the provider returns it.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolsMessage is the assistant message inside a tools choice.
type ToolsMessage struct {
	Role      string              `json:"role"`
	Content   string              `json:"content"`
	ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
}

// ToolsChoice is one candidate reply of a tools request.
type ToolsChoice struct {
	Index        int          `json:"index"`
	Message      ToolsMessage `json:"message"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// ToolsResponse represents the response from a tools (function calling) request.
// Contains tool calls requested by the model along with metadata and token usage.
type ToolsResponse struct {
	ID      string        `json:"id,omitempty"`
	Model   string        `json:"model"`
	Choices []ToolsChoice `json:"choices"`
	Usage   *TokenUsage   `json:"usage,omitempty"`
}

// NewToolsResponse builds a single-choice ToolsResponse.
func NewToolsResponse(model, content string, calls ...protocol.ToolCall) *ToolsResponse {
	return &ToolsResponse{
		Model: model,
		Choices: []ToolsChoice{{
			Message: ToolsMessage{
				Role:      string(protocol.RoleAssistant),
				Content:   content,
				ToolCalls: calls,
			},
		}},
	}
}

// ParseTools parses a tools response from JSON bytes.
func ParseTools(body []byte) (*ToolsResponse, error) {
	var response ToolsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse tools response: %w", err)
	}
	return &response, nil
}
