package schedule

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/tailored-agentic-units/assistant/core/protocol"
	"github.com/tailored-agentic-units/assistant/tools"
)

// ToolName is the name the language service uses to request the schedule tool.
const ToolName = "manage_schedule"

// Tool returns the manage_schedule descriptor.
func Tool() protocol.Tool {
	return protocol.Tool{
		Name:        ToolName,
		Description: "Add an event or retrieve today's schedule.",
		Parameters: tools.MustParameters(&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"action": {
					Type: "string",
					Enum: []any{ActionAdd, ActionGetToday},
				},
				"event": {
					Type:        "string",
					Description: "Description of the event.",
				},
				"date": {
					Type:        "string",
					Description: "Natural language date (e.g., 'today', 'tomorrow', 'next Monday').",
				},
				"time": {
					Type:        "string",
					Description: "Natural language time (e.g., '7 PM', 'this evening', 'after lunch').",
				},
			},
			Required: []string{"action"},
		}),
	}
}

// Handler adapts store to the tools.Handler signature.
func Handler(store *Store) tools.Handler {
	return func(ctx context.Context, args json.RawMessage) (tools.Result, error) {
		var req Request
		if err := tools.DecodeArgs(args, &req); err != nil {
			return tools.ErrorResult(err.Error()), nil
		}

		res := store.Execute(ctx, req)
		return tools.JSONResult(res, res.IsError()), nil
	}
}
