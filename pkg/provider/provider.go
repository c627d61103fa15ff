package provider

import (
	"fmt"
	"strings"
)

/*
New resolves a "<provider>:<model>" identifier, such as "openai:gpt-4.1" or
"anthropic:claude-sonnet-4-0", to a ready provider. A bare model name is
assumed to be an OpenAI model.
*/
func New(identifier string) (Interface, error) {
	name, model, found := strings.Cut(identifier, ":")

	if !found {
		name, model = "openai", identifier
	}

	if model == "" {
		return nil, fmt.Errorf("model missing from provider identifier %q", identifier)
	}

	switch strings.ToLower(name) {
	case "openai":
		return NewOpenAIProvider(model), nil
	case "anthropic":
		return NewAnthropicProvider(model), nil
	case "google", "gemini":
		return NewGoogleProvider(model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
