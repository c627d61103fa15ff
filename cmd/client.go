package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/a2a-helpdesk/pkg/a2a"
	"github.com/theapemachine/a2a-helpdesk/pkg/tools"
)

var (
	agentURLFlag string
	showTaskFlag bool

	clientCmd = &cobra.Command{
		Use:   "client",
		Short: "A2A client operations",
		Long:  `Run client operations against A2A agents`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	askCmd = &cobra.Command{
		Use:   "ask [query]",
		Short: "Send a query to an agent and wait for the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if ctx == nil {
				ctx = context.Background()
			}

			tool, err := tools.NewRemoteQueryFromConfig(agentURL(), viper.GetDuration("remote.restaurant.timeout"))

			if err != nil {
				return err
			}

			final, err := tool.Await(ctx, strings.Join(args, " "))

			if err != nil {
				return err
			}

			if showTaskFlag {
				fmt.Println(final.String())
			}

			answer, err := tool.Answer(final)

			if err != nil {
				return err
			}

			fmt.Println(answer)

			return nil
		},
	}

	cardCmd = &cobra.Command{
		Use:   "card",
		Short: "Fetch and print an agent's card",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if ctx == nil {
				ctx = context.Background()
			}

			card, err := a2a.NewClient(agentURL()).FetchAgentCard(ctx)

			if err != nil {
				return err
			}

			fmt.Println(card.String())

			return nil
		},
	}

	cancelCmd = &cobra.Command{
		Use:   "cancel [task-id]",
		Short: "Cancel a task running on an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if ctx == nil {
				ctx = context.Background()
			}

			task, err := a2a.NewClient(agentURL()).CancelTask(ctx, args[0])

			if err != nil {
				return err
			}

			fmt.Println(task.String())

			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(askCmd, cardCmd, cancelCmd)

	clientCmd.PersistentFlags().StringVarP(&agentURLFlag, "agent", "a", "", "Base URL of the agent (default is the helpdesk agent)")
	askCmd.Flags().BoolVar(&showTaskFlag, "show-task", false, "Print the final task before the answer")
}

func agentURL() string {
	if agentURLFlag != "" {
		return agentURLFlag
	}

	return viper.GetString("agent.helpdesk.url")
}
