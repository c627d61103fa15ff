package provider

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

/*
OpenAIProvider is a provider for the OpenAI API.
*/
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

type OpenAIProviderOption func(*OpenAIProvider)

func NewOpenAIProvider(model string, options ...OpenAIProviderOption) *OpenAIProvider {
	prvdr := &OpenAIProvider{model: model}

	for _, option := range options {
		option(prvdr)
	}

	if prvdr.client == nil {
		WithOpenAIClient()(prvdr)
	}

	return prvdr
}

func (prvdr *OpenAIProvider) Name() string {
	return "openai"
}

func (prvdr *OpenAIProvider) Complete(
	ctx context.Context, messages []Message, tools []ToolDefinition,
) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(prvdr.model),
		Messages: prvdr.convertMessages(messages),
	}

	if len(tools) > 0 {
		params.Tools = prvdr.convertTools(tools)
	}

	completion, err := prvdr.client.Chat.Completions.New(ctx, params)

	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.New("openai completion returned no choices")
	}

	message := completion.Choices[0].Message
	response := &Response{Content: message.Content}

	for _, toolCall := range message.ToolCalls {
		response.ToolCalls = append(response.ToolCalls, ToolCall{
			ID:        toolCall.ID,
			Name:      toolCall.Function.Name,
			Arguments: toolCall.Function.Arguments,
		})
	}

	return response, nil
}

func (prvdr *OpenAIProvider) convertMessages(
	messages []Message,
) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		case RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}

			assistant := openai.ChatCompletionAssistantMessageParam{}

			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}

			for _, call := range msg.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}

			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}

	return out
}

func (prvdr *OpenAIProvider) convertTools(
	tools []ToolDefinition,
) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))

	for _, tool := range tools {
		parameters := tool.Parameters

		if parameters == nil {
			parameters = map[string]any{"type": "object", "properties": map[string]any{}}
		}

		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  openai.FunctionParameters(parameters),
			},
		})
	}

	return out
}

func WithOpenAIClient(opts ...option.RequestOption) OpenAIProviderOption {
	return func(prvdr *OpenAIProvider) {
		client := openai.NewClient(
			append([]option.RequestOption{option.WithAPIKey(os.Getenv("OPENAI_API_KEY"))}, opts...)...,
		)

		prvdr.client = &client
	}
}
