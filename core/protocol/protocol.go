// Package protocol defines the conversation primitives shared by the agent,
// tools, and kernel packages: messages, tool definitions, tool calls, and the
// protocols a language service can serve.
package protocol

import "strings"

// Protocol identifies a kind of language-service request.
type Protocol string

const (
	Chat   Protocol = "chat"
	Vision Protocol = "vision"
	Tools  Protocol = "tools"
)

// ValidProtocols returns every supported protocol in declaration order.
func ValidProtocols() []Protocol {
	return []Protocol{Chat, Vision, Tools}
}

// IsValid reports whether s names a supported protocol. Matching is case-sensitive.
func IsValid(s string) bool {
	for _, p := range ValidProtocols() {
		if string(p) == s {
			return true
		}
	}
	return false
}

// ProtocolStrings returns the supported protocols as a comma-separated list.
func ProtocolStrings() string {
	valid := ValidProtocols()
	names := make([]string, len(valid))
	for i, p := range valid {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
