package protocol

import "encoding/json"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the language service.
// Fields are flat (ID, Name, Arguments); MarshalJSON and UnmarshalJSON speak
// the nested chat-completions format (function.name, function.arguments).
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewToolCall creates a ToolCall with JSON-encoded arguments.
func NewToolCall(id, name, arguments string) ToolCall {
	return ToolCall{ID: id, Name: name, Arguments: arguments}
}

type toolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// MarshalJSON serializes to the nested format ({id, type, function: {name, arguments}}).
func (tc ToolCall) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string           `json:"id"`
		Type     string           `json:"type"`
		Function toolCallFunction `json:"function"`
	}{
		ID:       tc.ID,
		Type:     "function",
		Function: toolCallFunction{Name: tc.Name, Arguments: tc.Arguments},
	})
}

// UnmarshalJSON accepts both the nested format and the flat {id, name, arguments} form.
func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID       string           `json:"id"`
		Function toolCallFunction `json:"function"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}

	if nested.Function.Name != "" {
		tc.ID = nested.ID
		tc.Name = nested.Function.Name
		tc.Arguments = nested.Function.Arguments
		return nil
	}

	type plain ToolCall
	return json.Unmarshal(data, (*plain)(tc))
}

// Message is a single message in a conversation.
// Content is a string for text or a []ContentPart for vision requests.
//
// Assistant messages that request tools carry ToolCalls; tool result messages
// carry the ToolCallID they answer.
type Message struct {
	Role       Role       `json:"role"`
	Content    any        `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// NewMessage creates a Message with the given role and content.
//
//	msg := protocol.NewMessage(protocol.RoleUser, "What's the weather in Seoul?")
func NewMessage(role Role, content any) Message {
	return Message{Role: role, Content: content}
}

// InitMessages creates a single-element message slice from a role and content string.
func InitMessages(role Role, content string) []Message {
	return []Message{NewMessage(role, content)}
}

// Text returns the textual content of the message. For multipart content the
// text parts are concatenated in order; image parts are skipped.
func (m Message) Text() string {
	switch c := m.Content.(type) {
	case string:
		return c
	case []ContentPart:
		var out string
		for _, p := range c {
			if p.Type == PartText {
				out += p.Text
			}
		}
		return out
	default:
		return ""
	}
}
