package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/a2a-helpdesk/pkg/ai"
	"github.com/theapemachine/a2a-helpdesk/pkg/service"
	"github.com/theapemachine/a2a-helpdesk/pkg/stores"
	"github.com/theapemachine/a2a-helpdesk/pkg/tools"
	"golang.org/x/sync/errgroup"
)

// Service is anything the binary can run until shutdown.
type Service interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

type binding struct {
	name    string
	addr    string
	service Service
}

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run both MCP servers and both agents in one process",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			var bindings []binding

			for _, key := range []string{"restaurant", "helpdesk"} {
				broker, err := newMCPBroker(key)

				if err != nil {
					return err
				}

				bindings = append(bindings, binding{
					name:    "mcp." + key,
					addr:    viper.GetString("mcp." + key + ".addr"),
					service: broker,
				})
			}

			for _, key := range []string{"restaurant", "helpdesk"} {
				server, err := newAgentServer(key)

				if err != nil {
					return err
				}

				bindings = append(bindings, binding{
					name:    "agent." + key,
					addr:    viper.GetString("agent." + key + ".addr"),
					service: server,
				})
			}

			return run(cmd.Context(), bindings...)
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newAgentServer(key string) (*service.AgentServer, error) {
	agent, err := ai.NewAgentFromConfig(key)

	if err != nil {
		return nil, fmt.Errorf("failed to build agent %s: %w", key, err)
	}

	manager, err := ai.NewTaskManager(
		agent.Card(),
		ai.WithTaskStore(stores.NewInMemoryTaskStore()),
		ai.WithRunner(agent),
	)

	if err != nil {
		return nil, err
	}

	return service.NewAgentServer(
		manager,
		service.WithRateLimit(
			viper.GetInt("agent."+key+".rateLimit.max"),
			viper.GetDuration("agent."+key+".rateLimit.window"),
		),
	), nil
}

func newMCPBroker(key string) (*service.MCPBroker, error) {
	srv, err := tools.NewServer(key)

	if err != nil {
		return nil, fmt.Errorf("failed to build MCP server %s: %w", key, err)
	}

	return service.NewMCPBroker(key, srv), nil
}

/*
run starts every binding and blocks until one fails or the process is
interrupted, then shuts them all down within shutdown.timeout.
*/
func run(parent context.Context, bindings ...binding) error {
	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	for _, b := range bindings {
		group.Go(func() error {
			if b.addr == "" {
				return fmt.Errorf("no listen address configured for %s", b.name)
			}

			log.Info("starting service", "service", b.name, "addr", b.addr)

			if err := b.service.Start(b.addr); err != nil {
				return fmt.Errorf("%s stopped: %w", b.name, err)
			}

			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()

		timeout := viper.GetDuration("shutdown.timeout")

		if timeout <= 0 {
			timeout = 10 * time.Second
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		for _, b := range bindings {
			if err := b.service.Shutdown(shutdownCtx); err != nil {
				log.Error("failed to shut down service", "service", b.name, "error", err)
			}
		}

		log.Info("all services stopped")

		return nil
	})

	return group.Wait()
}

var longServe = `
Run the restaurant MCP server, the restaurant agent, the helpdesk MCP server
and the helpdesk agent in a single process.

Examples:
  # Serve everything with the addresses from the config file.
  a2a-helpdesk serve

  # Point the helpdesk tool at a restaurant agent running elsewhere.
  HELPDESK_REMOTE_RESTAURANT_URL=http://restaurant:8000 a2a-helpdesk serve
`
