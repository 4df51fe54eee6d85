package protocol

// Tool defines a function the language service may request.
// Parameters holds a JSON Schema object describing the arguments.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ResponseFormat asks the language service for a reply matching a JSON Schema.
// Providers without structured output support ignore it.
type ResponseFormat struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}
