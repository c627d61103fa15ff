package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"
)

/*
googleSchemaTypes maps JSON schema type names onto their genai equivalents.
*/
var googleSchemaTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

/*
GoogleProvider is a provider for the Google AI API.
*/
type GoogleProvider struct {
	client *genai.Client
	model  string
}

type GoogleProviderOption func(*GoogleProvider)

func NewGoogleProvider(model string, options ...GoogleProviderOption) *GoogleProvider {
	prvdr := &GoogleProvider{model: model}

	for _, option := range options {
		option(prvdr)
	}

	return prvdr
}

func (prvdr *GoogleProvider) Name() string {
	return "google"
}

func (prvdr *GoogleProvider) Complete(
	ctx context.Context, messages []Message, tools []ToolDefinition,
) (*Response, error) {
	if prvdr.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Backend: genai.BackendGeminiAPI,
		})

		if err != nil {
			return nil, fmt.Errorf("failed to create google client: %w", err)
		}

		prvdr.client = client
	}

	system, conversation := splitSystem(messages)
	config := &genai.GenerateContentConfig{}

	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	if len(tools) > 0 {
		config.Tools = prvdr.convertTools(tools)
	}

	result, err := prvdr.client.Models.GenerateContent(
		ctx, prvdr.model, prvdr.convertMessages(conversation), config,
	)

	if err != nil {
		return nil, fmt.Errorf("google completion failed: %w", err)
	}

	response := &Response{}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return response, nil
	}

	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			response.Content += part.Text
		}

		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)

			if err != nil {
				return nil, fmt.Errorf("failed to marshal function call args: %w", err)
			}

			id := part.FunctionCall.ID

			if id == "" {
				id = part.FunctionCall.Name
			}

			response.ToolCalls = append(response.ToolCalls, ToolCall{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		}
	}

	return response, nil
}

func (prvdr *GoogleProvider) convertMessages(messages []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			out = append(out, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		case RoleAssistant:
			content := &genai.Content{Role: genai.RoleModel}

			if msg.Content != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: msg.Content})
			}

			for _, call := range msg.ToolCalls {
				args := map[string]any{}

				if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
					log.Warn("tool call arguments are not a JSON object", "tool", call.Name, "error", err)
				}

				content.Parts = append(content.Parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: call.ID, Name: call.Name, Args: args},
				})
			}

			out = append(out, content)
		case RoleTool:
			response := map[string]any{"content": msg.Content}

			if msg.IsError {
				response["error"] = map[string]any{"message": msg.Content}
			}

			out = append(out, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       msg.ToolCallID,
						Name:     msg.Name,
						Response: response,
					},
				}},
			})
		}
	}

	return out
}

func (prvdr *GoogleProvider) convertTools(tools []ToolDefinition) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))

	for _, tool := range tools {
		properties, required := schemaProperties(tool.Parameters)
		schemaProps := make(map[string]*genai.Schema, len(properties))

		for name, raw := range properties {
			schemaProps[name] = convertSchema(raw)
		}

		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: schemaProps,
				Required:   required,
			},
		})
	}

	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

func convertSchema(raw any) *genai.Schema {
	schema := &genai.Schema{Type: genai.TypeString}
	prop, ok := raw.(map[string]any)

	if !ok {
		return schema
	}

	if typeName, ok := prop["type"].(string); ok {
		if schemaType, ok := googleSchemaTypes[typeName]; ok {
			schema.Type = schemaType
		}
	}

	if description, ok := prop["description"].(string); ok {
		schema.Description = description
	}

	if items, ok := prop["items"]; ok && schema.Type == genai.TypeArray {
		schema.Items = convertSchema(items)
	}

	return schema
}

func WithGoogleClient(client *genai.Client) GoogleProviderOption {
	return func(prvdr *GoogleProvider) {
		prvdr.client = client
	}
}
