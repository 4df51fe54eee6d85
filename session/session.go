// Package session holds the conversation of a single assistant turn: the
// system prompt, the user message, and, when a tool is requested, the
// assistant tool call and the tool result.
package session

import (
	"github.com/tailored-agentic-units/assistant/core/protocol"
)

// Session holds an ordered sequence of conversation messages. Implementations
// must be safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AddMessage appends a message to the conversation.
	AddMessage(msg protocol.Message)
	// Messages returns a copy of the conversation.
	Messages() []protocol.Message
	// Len returns the number of messages.
	Len() int
	// Clear resets the conversation.
	Clear()
}
