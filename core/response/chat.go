package response

import (
	"encoding/json"
	"fmt"
)

// ChatChoice is one candidate reply of a chat or vision request.
type ChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// ChatResponse represents a plain text reply (chat and vision protocols).
type ChatResponse struct {
	ID      string       `json:"id,omitempty"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *TokenUsage  `json:"usage,omitempty"`
}

// NewChatResponse builds a single-choice ChatResponse.
func NewChatResponse(model, content string) *ChatResponse {
	choice := ChatChoice{}
	choice.Message.Role = "assistant"
	choice.Message.Content = content
	return &ChatResponse{Model: model, Choices: []ChatChoice{choice}}
}

// Content returns the text of the first choice, or "" when there is none.
func (r *ChatResponse) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ParseChat parses a chat response from JSON bytes.
func ParseChat(body []byte) (*ChatResponse, error) {
	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}
	return &response, nil
}
