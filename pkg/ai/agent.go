package ai

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"github.com/theapemachine/a2a-helpdesk/pkg/a2a"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
	"github.com/theapemachine/a2a-helpdesk/pkg/metrics"
	"github.com/theapemachine/a2a-helpdesk/pkg/provider"
	"github.com/theapemachine/a2a-helpdesk/pkg/tools"
	"github.com/theapemachine/a2a-helpdesk/pkg/utils"
)

const DefaultMaxTurns = 8

// ToolCaller is the agent's view of an MCP server.
type ToolCaller interface {
	Tools(ctx context.Context) ([]provider.ToolDefinition, error)
	Call(ctx context.Context, name, args string) (string, bool, error)
}

/*
Agent pairs an LLM provider with a set of tools and answers a prompt by
letting the model call tools until it produces a plain answer.
*/
type Agent struct {
	card         *a2a.AgentCard
	instructions string
	provider     provider.Interface
	tools        ToolCaller
	maxTurns     int
}

type AgentOption func(*Agent)

func NewAgent(card *a2a.AgentCard, options ...AgentOption) (*Agent, error) {
	agent := &Agent{
		card:     card,
		maxTurns: DefaultMaxTurns,
	}

	for _, option := range options {
		option(agent)
	}

	if agent.provider == nil {
		log.Error("missing provider", "agent", card.Name)
		return nil, fmt.Errorf("agent %s has no provider", card.Name)
	}

	return agent, nil
}

/*
NewAgentFromConfig wires the agent configured under agent.<key>: its card,
instructions, model and the MCP server it takes tools from.
*/
func NewAgentFromConfig(key string) (*Agent, error) {
	v := viper.GetViper()
	prefix := "agent." + key

	prvdr, err := provider.New(v.GetString(prefix + ".model"))

	if err != nil {
		return nil, err
	}

	options := []AgentOption{
		WithProvider(prvdr),
		WithInstructions(v.GetString(prefix + ".instructions")),
	}

	if maxTurns := v.GetInt(prefix + ".maxTurns"); maxTurns > 0 {
		options = append(options, WithMaxTurns(maxTurns))
	}

	if url := v.GetString(prefix + ".mcp"); url != "" {
		options = append(options, WithTools(tools.NewToolset(url)))
	}

	return NewAgent(a2a.NewAgentCardFromConfig(key), options...)
}

func (agent *Agent) Name() string {
	return agent.card.Name
}

func (agent *Agent) Card() *a2a.AgentCard {
	return agent.card
}

/*
Run answers prompt. Tool failures are handed back to the model as tool
results so it can recover; only provider errors, a cancelled context or
an exhausted turn budget end the run with an error.
*/
func (agent *Agent) Run(ctx context.Context, prompt string) (string, error) {
	var definitions []provider.ToolDefinition

	if agent.tools != nil {
		var err error

		if definitions, err = agent.tools.Tools(ctx); err != nil {
			return "", fmt.Errorf("failed to load tools for %s: %w", agent.Name(), err)
		}
	}

	messages := make([]provider.Message, 0, 2)

	if agent.instructions != "" {
		messages = append(messages, provider.SystemMessage(agent.instructions))
	}

	messages = append(messages, provider.UserMessage(prompt))

	for turn := range agent.maxTurns {
		response, err := agent.provider.Complete(ctx, messages, definitions)
		metrics.Metrics.LLMRequests.WithLabelValues(agent.provider.Name(), metrics.Status(err)).Inc()

		if err != nil {
			return "", err
		}

		if len(response.ToolCalls) == 0 {
			log.Info("agent answered", "agent", agent.Name(), "turns", turn+1)
			return response.Content, nil
		}

		messages = append(messages, provider.AssistantMessage(response.Content, response.ToolCalls...))

		for _, call := range response.ToolCalls {
			result, isError := agent.execute(ctx, call)

			if ctx.Err() != nil {
				return "", ctx.Err()
			}

			messages = append(messages, provider.ToolMessage(call, result, isError))
		}
	}

	return "", &errors.TurnLimitError{Agent: agent.Name(), Turns: agent.maxTurns}
}

func (agent *Agent) execute(ctx context.Context, call provider.ToolCall) (string, bool) {
	if agent.tools == nil {
		return "tool error: no tools are available", true
	}

	log.Info("executing tool", "agent", agent.Name(), "tool", call.Name, "args", utils.Truncate(call.Arguments, 120))

	result, isError, err := agent.tools.Call(ctx, call.Name, call.Arguments)

	if err != nil {
		log.Error("tool call failed", "agent", agent.Name(), "tool", call.Name, "error", err)
		return "tool error: " + err.Error(), true
	}

	return result, isError
}

func WithProvider(prvdr provider.Interface) AgentOption {
	return func(agent *Agent) {
		agent.provider = prvdr
	}
}

func WithTools(toolCaller ToolCaller) AgentOption {
	return func(agent *Agent) {
		agent.tools = toolCaller
	}
}

func WithInstructions(instructions string) AgentOption {
	return func(agent *Agent) {
		agent.instructions = instructions
	}
}

func WithMaxTurns(maxTurns int) AgentOption {
	return func(agent *Agent) {
		agent.maxTurns = maxTurns
	}
}
