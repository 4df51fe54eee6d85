package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/tailored-agentic-units/assistant/core/config"
	"github.com/tailored-agentic-units/assistant/core/protocol"
	"github.com/tailored-agentic-units/assistant/core/response"
)

const anthropicDefaultMaxTokens = 1024

// Anthropic serves the tools and vision protocols through the Messages API.
// Structured response formats are not enforced; callers must accept free text.
type Anthropic struct {
	client anthropic.Client
}

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(cfg *config.ProviderConfig, extra ...option.RequestOption) *Anthropic {
	opts := make([]option.RequestOption, 0, len(extra)+2)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	opts = append(opts, extra...)

	return &Anthropic{client: anthropic.NewClient(opts...)}
}

func (p *Anthropic) Name() string { return "anthropic" }

func (p *Anthropic) Tools(ctx context.Context, data *ToolsData) (*response.ToolsResponse, error) {
	params := anthropicParams(data.Model, data.Messages, data.Options, len(data.Tools) > 0)
	if len(data.Tools) > 0 {
		params.Tools = anthropicTools(data.Tools)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic tools request: %w", err)
	}

	var text strings.Builder
	var calls []protocol.ToolCall
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			calls = append(calls, protocol.NewToolCall(block.ID, block.Name, string(block.Input)))
		}
	}

	out := response.NewToolsResponse(string(msg.Model), text.String(), calls...)
	out.ID = msg.ID
	out.Choices[0].FinishReason = string(msg.StopReason)
	out.Usage = &response.TokenUsage{
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
		TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}
	return out, nil
}

func (p *Anthropic) Vision(ctx context.Context, data *VisionData) (*response.ChatResponse, error) {
	params := anthropicParams(data.Model, data.Messages, data.Options, false)

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic vision request: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return response.NewChatResponse(string(msg.Model), text.String()), nil
}

func anthropicParams(model string, msgs []protocol.Message, opts map[string]any, withTools bool) anthropic.MessageNewParams {
	maxTokens := int64(anthropicDefaultMaxTokens)
	if n, ok := intOption(opts, "max_tokens"); ok {
		maxTokens = n
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  anthropicMessages(msgs, withTools),
	}

	var system []string
	for _, m := range msgs {
		if m.Role == protocol.RoleSystem {
			system = append(system, m.Text())
		}
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}

	if f, ok := floatOption(opts, "temperature"); ok {
		params.Temperature = param.NewOpt(f)
	}
	return params
}

// anthropicMessages converts the conversation, grouping consecutive tool
// results into a single user message as the Messages API requires. The API
// rejects tool blocks in a request that defines no tools, so without tools the
// exchange is replayed as plain text.
func anthropicMessages(msgs []protocol.Message, withTools bool) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for i := 0; i < len(msgs); {
		m := msgs[i]
		switch m.Role {
		case protocol.RoleSystem:
			i++
		case protocol.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if text := m.Text(); text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(text))
			}
			for _, tc := range m.ToolCalls {
				args := tc.Arguments
				if strings.TrimSpace(args) == "" {
					args = "{}"
				}
				if withTools {
					blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, json.RawMessage(args), tc.Name))
				} else {
					blocks = append(blocks, anthropic.NewTextBlock(fmt.Sprintf("Called %s with %s", tc.Name, args)))
				}
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
			i++
		case protocol.RoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for i < len(msgs) && msgs[i].Role == protocol.RoleTool {
				if withTools {
					blocks = append(blocks, anthropic.NewToolResultBlock(msgs[i].ToolCallID, msgs[i].Text(), false))
				} else {
					blocks = append(blocks, anthropic.NewTextBlock("Tool result: "+msgs[i].Text()))
				}
				i++
			}
			out = append(out, anthropic.NewUserMessage(blocks...))
		default:
			out = append(out, anthropic.NewUserMessage(anthropicUserBlocks(m)...))
			i++
		}
	}
	return out
}

func anthropicUserBlocks(m protocol.Message) []anthropic.ContentBlockParamUnion {
	parts, ok := m.Content.([]protocol.ContentPart)
	if !ok {
		return []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Text())}
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(parts))
	for _, p := range parts {
		if p.Type != protocol.PartImage {
			blocks = append(blocks, anthropic.NewTextBlock(p.Text))
			continue
		}
		if p.ImageURL == nil {
			continue
		}
		if mediaType, data, ok := splitDataURL(p.ImageURL.URL); ok {
			blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, data))
		} else {
			blocks = append(blocks, anthropic.NewTextBlock(p.ImageURL.URL))
		}
	}
	return blocks
}

// splitDataURL splits "data:<media>;base64,<payload>".
func splitDataURL(url string) (mediaType, data string, ok bool) {
	rest, found := strings.CutPrefix(url, "data:")
	if !found {
		return "", "", false
	}
	header, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mediaType, found = strings.CutSuffix(header, ";base64")
	if !found {
		return "", "", false
	}
	return mediaType, payload, true
}

func anthropicTools(tools []protocol.Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		tp := anthropic.ToolUnionParamOfTool(
			anthropic.ToolInputSchemaParam{
				Properties: t.Parameters["properties"],
				Required:   requiredFields(t.Parameters["required"]),
			},
			t.Name,
		)
		tp.OfTool.Description = param.NewOpt(t.Description)
		out = append(out, tp)
	}
	return out
}

func requiredFields(v any) []string {
	switch r := v.(type) {
	case []string:
		return r
	case []any:
		out := make([]string, 0, len(r))
		for _, s := range r {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
