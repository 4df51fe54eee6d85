package tools

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// Parameters converts an authored schema to the map form carried by
// protocol.Tool and sent to providers.
func Parameters(schema *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}

	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return params, nil
}

// MustParameters is Parameters for schemas built from literals at startup.
func MustParameters(schema *jsonschema.Schema) map[string]any {
	params, err := Parameters(schema)
	if err != nil {
		panic(err)
	}
	return params
}
