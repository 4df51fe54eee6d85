package weather

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/tailored-agentic-units/assistant/core/protocol"
	"github.com/tailored-agentic-units/assistant/observability"
	"github.com/tailored-agentic-units/assistant/tools"
)

// ToolName is the name the language service uses to request a lookup.
const ToolName = "get_weather"

// EventLookup is emitted once per Lookup.
const EventLookup observability.EventType = "weather.lookup"

// Tool returns the get_weather descriptor.
func Tool() protocol.Tool {
	return protocol.Tool{
		Name:        ToolName,
		Description: "Look up the current weather for a specific city.",
		Parameters: tools.MustParameters(&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"city": {Type: "string"},
			},
			Required: []string{"city"},
		}),
	}
}

// Lookuper is satisfied by *Client.
type Lookuper interface {
	Lookup(ctx context.Context, city string) (*Report, error)
}

// Handler adapts l to the tools.Handler signature. Upstream rejections and
// a missing city become error payloads; transport failures are returned as
// Go errors.
func Handler(l Lookuper) tools.Handler {
	return func(ctx context.Context, args json.RawMessage) (tools.Result, error) {
		var params struct {
			City tools.Text `json:"city"`
		}
		if err := tools.DecodeArgs(args, &params); err != nil {
			return tools.ErrorResult(err.Error()), nil
		}

		report, err := l.Lookup(ctx, string(params.City))
		if err != nil {
			var apiErr *APIError
			switch {
			case errors.As(err, &apiErr):
				return tools.ErrorResult(apiErr.Message), nil
			case errors.Is(err, ErrMissingCity):
				return tools.ErrorResult(err.Error()), nil
			default:
				return tools.Result{}, err
			}
		}
		return tools.JSONResult(report, false), nil
	}
}
