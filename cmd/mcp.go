package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server",
		Long:  longMCP,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFlag == "" {
				return errors.New("config flag is required for mcp command")
			}

			broker, err := newMCPBroker(configFlag)

			if err != nil {
				return err
			}

			return run(cmd.Context(), binding{
				name:    "mcp." + configFlag,
				addr:    viper.GetString("mcp." + configFlag + ".addr"),
				service: broker,
			})
		},
	}
)

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVarP(&configFlag, "config", "c", "", "MCP server configuration to use (restaurant or helpdesk)")
}

var longMCP = `
Serve an MCP server over streamable HTTP at /mcp.

Examples:
  # Serve the menu tools.
  a2a-helpdesk mcp --config restaurant

  # Serve query_restaurant_agent.
  a2a-helpdesk mcp --config helpdesk
`
