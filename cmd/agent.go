package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFlag string

	agentCmd = &cobra.Command{
		Use:   "agent",
		Short: "Run an A2A agent",
		Long:  longAgent,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFlag == "" {
				return errors.New("config is required")
			}

			server, err := newAgentServer(configFlag)

			if err != nil {
				return err
			}

			return run(cmd.Context(), binding{
				name:    "agent." + configFlag,
				addr:    viper.GetString("agent." + configFlag + ".addr"),
				service: server,
			})
		},
	}
)

func init() {
	rootCmd.AddCommand(agentCmd)

	agentCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Agent configuration to use (restaurant or helpdesk)")
}

var longAgent = `
Serve an A2A agent from its configuration.

Examples:
  # Serve the restaurant agent.
  a2a-helpdesk agent --config restaurant

  # Serve the helpdesk agent with a different model.
  HELPDESK_AGENT_HELPDESK_MODEL=anthropic:claude-sonnet-4-0 a2a-helpdesk agent --config helpdesk
`
