package a2a

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"github.com/theapemachine/a2a-helpdesk/pkg/utils"
)

// ProtocolVersion is the A2A protocol revision the cards advertise.
const ProtocolVersion = "0.2.5"

type AgentCapabilities struct {
	Streaming              bool `json:"streaming"`
	PushNotifications      bool `json:"pushNotifications"`
	StateTransitionHistory bool `json:"stateTransitionHistory"`
}

type AgentProvider struct {
	Organization string `json:"organization"`
}

// AgentSkill is one thing the agent advertises it can help with.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

/*
AgentCard is what an agent publishes at its well-known path so peers can
find its endpoint and see what it is for. Both agents here speak text in
and text out over polling, so the modes and capabilities are fixed apart
from what the config toggles.
*/
type AgentCard struct {
	ProtocolVersion    string            `json:"protocolVersion,omitempty"`
	Name               string            `json:"name"`
	Description        *string           `json:"description,omitempty"`
	URL                string            `json:"url"`
	Provider           *AgentProvider    `json:"provider,omitempty"`
	Version            string            `json:"version"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string          `json:"defaultOutputModes,omitempty"`
	Skills             []AgentSkill      `json:"skills"`
}

/*
NewAgentCardFromConfig builds the card of the agent configured under
agent.<key>. Skills are listed by key and resolved from skills.<skill>.
*/
func NewAgentCardFromConfig(key string) *AgentCard {
	log.Debug("new agent card from config", "key", key)

	prefix := "agent." + key + "."
	skillKeys := viper.GetStringSlice(prefix + "skills")
	skills := make([]AgentSkill, 0, len(skillKeys))

	for _, skill := range skillKeys {
		skills = append(skills, NewSkillFromConfig(skill))
	}

	card := &AgentCard{
		ProtocolVersion: ProtocolVersion,
		Name:            viper.GetString(prefix + "name"),
		Description:     utils.StringPtr(viper.GetString(prefix + "description")),
		URL:             viper.GetString(prefix + "url"),
		Version:         viper.GetString(prefix + "version"),
		Capabilities: AgentCapabilities{
			Streaming:              viper.GetBool(prefix + "capabilities.streaming"),
			PushNotifications:      viper.GetBool(prefix + "capabilities.pushNotifications"),
			StateTransitionHistory: viper.GetBool(prefix + "capabilities.stateTransitionHistory"),
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills:             skills,
	}

	if org := viper.GetString(prefix + "provider.organization"); org != "" {
		card.Provider = &AgentProvider{Organization: org}
	}

	return card
}

func NewSkillFromConfig(skill string) AgentSkill {
	prefix := "skills." + skill + "."

	return AgentSkill{
		ID:          viper.GetString(prefix + "id"),
		Name:        viper.GetString(prefix + "name"),
		Description: utils.StringPtr(viper.GetString(prefix + "description")),
		Tags:        viper.GetStringSlice(prefix + "tags"),
		Examples:    viper.GetStringSlice(prefix + "examples"),
	}
}

func (card *AgentCard) String() string {
	var (
		sb      strings.Builder
		header  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
		section = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
		label   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
		value   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	)

	row := func(indent, name, text string) {
		if text != "" {
			sb.WriteString("│ " + indent + label.Render(name+": ") + value.Render(text) + "\n")
		}
	}

	sb.WriteString(header.Render(card.Name) + "\n")

	if card.Description != nil {
		row("", "Description", *card.Description)
	}

	row("", "URL", card.URL)
	row("", "Version", card.Version)
	row("", "Protocol", card.ProtocolVersion)

	if card.Provider != nil {
		row("", "Provider", card.Provider.Organization)
	}

	row("", "Capabilities", fmt.Sprintf(
		"streaming=%t push=%t history=%t",
		card.Capabilities.Streaming,
		card.Capabilities.PushNotifications,
		card.Capabilities.StateTransitionHistory,
	))

	if len(card.Skills) > 0 {
		sb.WriteString("\n" + section.Render("Skills") + "\n")
	}

	for _, skill := range card.Skills {
		row("", skill.ID, skill.Name)

		if skill.Description != nil {
			row("   ", "Description", *skill.Description)
		}

		row("   ", "Tags", strings.Join(skill.Tags, ", "))

		for _, example := range skill.Examples {
			row("   ", "Example", example)
		}
	}

	return sb.String()
}
