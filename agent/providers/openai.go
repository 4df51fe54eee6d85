package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tailored-agentic-units/assistant/core/config"
	"github.com/tailored-agentic-units/assistant/core/protocol"
	"github.com/tailored-agentic-units/assistant/core/response"
)

// OpenAI serves the tools and vision protocols through the chat completions API.
type OpenAI struct {
	client openai.Client
}

// NewOpenAI creates an OpenAI provider. Extra request options are appended
// after the ones derived from cfg.
func NewOpenAI(cfg *config.ProviderConfig, extra ...option.RequestOption) *OpenAI {
	opts := make([]option.RequestOption, 0, len(extra)+2)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	opts = append(opts, extra...)

	return &OpenAI{client: openai.NewClient(opts...)}
}

func (p *OpenAI) Name() string { return "openai" }

func (p *OpenAI) Tools(ctx context.Context, data *ToolsData) (*response.ToolsResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(data.Model),
		Messages: openAIMessages(data.Messages),
	}
	for _, t := range data.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
			},
		})
	}
	applyOpenAIOptions(&params, data.Options)

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai tools request: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	out := &response.ToolsResponse{
		ID:    completion.ID,
		Model: completion.Model,
		Usage: &response.TokenUsage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}
	for _, c := range completion.Choices {
		choice := response.ToolsChoice{
			Index:        int(c.Index),
			FinishReason: string(c.FinishReason),
			Message: response.ToolsMessage{
				Role:    string(c.Message.Role),
				Content: c.Message.Content,
			},
		}
		for _, tc := range c.Message.ToolCalls {
			choice.Message.ToolCalls = append(choice.Message.ToolCalls,
				protocol.NewToolCall(tc.ID, tc.Function.Name, tc.Function.Arguments))
		}
		out.Choices = append(out.Choices, choice)
	}
	return out, nil
}

func (p *OpenAI) Vision(ctx context.Context, data *VisionData) (*response.ChatResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(data.Model),
		Messages: openAIMessages(data.Messages),
	}
	if data.Format != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   data.Format.Name,
					Schema: data.Format.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}
	applyOpenAIOptions(&params, data.Options)

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai vision request: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return response.NewChatResponse(completion.Model, completion.Choices[0].Message.Content), nil
}

func applyOpenAIOptions(params *openai.ChatCompletionNewParams, opts map[string]any) {
	if n, ok := intOption(opts, "max_tokens"); ok {
		params.MaxTokens = openai.Int(n)
	}
	if f, ok := floatOption(opts, "temperature"); ok {
		params.Temperature = openai.Float(f)
	}
}

func openAIMessages(msgs []protocol.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case protocol.RoleSystem:
			out = append(out, openai.SystemMessage(m.Text()))
		case protocol.RoleAssistant:
			out = append(out, openAIAssistantMessage(m))
		case protocol.RoleTool:
			out = append(out, openai.ToolMessage(m.Text(), m.ToolCallID))
		default:
			if parts, ok := m.Content.([]protocol.ContentPart); ok {
				out = append(out, openai.UserMessage(openAIParts(parts)))
			} else {
				out = append(out, openai.UserMessage(m.Text()))
			}
		}
	}
	return out
}

func openAIAssistantMessage(m protocol.Message) openai.ChatCompletionMessageParamUnion {
	if len(m.ToolCalls) == 0 {
		return openai.AssistantMessage(m.Text())
	}

	var asst openai.ChatCompletionAssistantMessageParam
	if text := m.Text(); text != "" {
		asst.Content.OfString = openai.String(text)
	}
	for _, tc := range m.ToolCalls {
		asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: tc.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
}

func openAIParts(parts []protocol.ContentPart) []openai.ChatCompletionContentPartUnionParam {
	out := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))
	for _, p := range parts {
		if p.Type == protocol.PartImage {
			if p.ImageURL == nil {
				continue
			}
			out = append(out, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL:    p.ImageURL.URL,
				Detail: string(p.ImageURL.Detail),
			}))
			continue
		}
		out = append(out, openai.TextContentPart(p.Text))
	}
	return out
}
