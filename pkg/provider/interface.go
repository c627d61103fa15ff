package provider

import (
	"context"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

/*
Message is one turn of a conversation in a provider-neutral shape. Tool
results travel as RoleTool messages that point back at the call they
answer through ToolCallID.
*/
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
	IsError    bool
}

// ToolCall is a model's request to run a tool with JSON-encoded arguments.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDefinition describes a tool the model may call. Parameters is a
// JSON schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Response is what the model produced for one completion request.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

/*
Interface is implemented by every LLM backend. Complete performs a single
round trip; the tool loop lives in the agent.
*/
type Interface interface {
	Name() string
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (*Response, error)
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

func ToolMessage(call ToolCall, content string, isError bool) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: call.ID,
		Name:       call.Name,
		IsError:    isError,
	}
}

// splitSystem separates system instructions from the conversation for
// the backends that take them out of band.
func splitSystem(messages []Message) (string, []Message) {
	var (
		system string
		rest   = make([]Message, 0, len(messages))
	)

	for _, msg := range messages {
		if msg.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}

			system += msg.Content
			continue
		}

		rest = append(rest, msg)
	}

	return system, rest
}

func schemaProperties(params map[string]any) (map[string]any, []string) {
	properties, _ := params["properties"].(map[string]any)

	var required []string

	switch req := params["required"].(type) {
	case []string:
		required = req
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				required = append(required, s)
			}
		}
	}

	return properties, required
}
