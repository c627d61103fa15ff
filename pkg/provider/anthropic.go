package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/charmbracelet/log"
)

/*
AnthropicProvider is a provider for the Anthropic API.
*/
type AnthropicProvider struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

type AnthropicProviderOption func(*AnthropicProvider)

func NewAnthropicProvider(model string, options ...AnthropicProviderOption) *AnthropicProvider {
	prvdr := &AnthropicProvider{
		model:     model,
		maxTokens: 4096,
	}

	for _, option := range options {
		option(prvdr)
	}

	if prvdr.client == nil {
		WithAnthropicClient()(prvdr)
	}

	return prvdr
}

func (prvdr *AnthropicProvider) Name() string {
	return "anthropic"
}

func (prvdr *AnthropicProvider) Complete(
	ctx context.Context, messages []Message, tools []ToolDefinition,
) (*Response, error) {
	system, conversation := splitSystem(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(prvdr.model),
		MaxTokens: prvdr.maxTokens,
		Messages:  prvdr.convertMessages(conversation),
	}

	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	if len(tools) > 0 {
		params.Tools = prvdr.convertTools(tools)
	}

	message, err := prvdr.client.Messages.New(ctx, params)

	if err != nil {
		return nil, fmt.Errorf("anthropic completion failed: %w", err)
	}

	response := &Response{}

	for _, block := range message.Content {
		switch block.Type {
		case "text":
			response.Content += block.Text
		case "tool_use":
			response.ToolCalls = append(response.ToolCalls, ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}

	return response, nil
}

/*
convertMessages folds consecutive tool results into a single user turn,
which is how the Messages API expects parallel tool results.
*/
func (prvdr *AnthropicProvider) convertMessages(
	messages []Message,
) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))

	var pending []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pending) > 0 {
			out = append(out, anthropic.NewUserMessage(pending...))
			pending = nil
		}
	}

	for _, msg := range messages {
		if msg.Role == RoleTool {
			pending = append(pending, anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, msg.IsError))
			continue
		}

		flush()

		switch msg.Role {
		case RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion

			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}

			for _, call := range msg.ToolCalls {
				var input map[string]any

				if err := json.Unmarshal([]byte(call.Arguments), &input); err != nil {
					log.Warn("tool call arguments are not a JSON object", "tool", call.Name, "error", err)
					input = map[string]any{}
				}

				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, call.Name))
			}

			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		}
	}

	flush()

	return out
}

func (prvdr *AnthropicProvider) convertTools(
	tools []ToolDefinition,
) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))

	for _, tool := range tools {
		properties, required := schemaProperties(tool.Parameters)

		if properties == nil {
			properties = map[string]any{}
		}

		toolParam := anthropic.ToolParam{
			Name:        tool.Name,
			Description: anthropic.String(tool.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   required,
			},
		}

		out = append(out, anthropic.ToolUnionParam{OfTool: &toolParam})
	}

	return out
}

func WithAnthropicClient(opts ...option.RequestOption) AnthropicProviderOption {
	return func(prvdr *AnthropicProvider) {
		client := anthropic.NewClient(
			append([]option.RequestOption{option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY"))}, opts...)...,
		)

		prvdr.client = &client
	}
}

func WithAnthropicMaxTokens(maxTokens int64) AnthropicProviderOption {
	return func(prvdr *AnthropicProvider) {
		prvdr.maxTokens = maxTokens
	}
}
