package tools

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/viper"
	"github.com/theapemachine/a2a-helpdesk/pkg/a2a"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
	"github.com/theapemachine/a2a-helpdesk/pkg/menu"
)

// Registrar is a tool that knows how to mount itself on an MCP server.
type Registrar interface {
	Tool() mcp.Tool
	Register(srv *server.MCPServer)
}

/*
Acquire builds a tool by name from the current configuration. The menu
store is shared between the menu tools of one server.
*/
func Acquire(id string, store *menu.Store) (Registrar, error) {
	switch id {
	case ItemDetailsToolName:
		return NewItemDetailsTool(store), nil
	case CompleteMenuToolName:
		return NewCompleteMenuTool(store), nil
	case RestaurantQueryToolName:
		return NewRestaurantQueryToolFromConfig()
	}

	return nil, fmt.Errorf("tool not found: %s", id)
}

/*
NewServer assembles an MCP server from the mcp.<key> section of the
config: its name, version and the tools it exposes.
*/
func NewServer(key string) (*server.MCPServer, error) {
	v := viper.GetViper()
	prefix := "mcp." + key

	name := v.GetString(prefix + ".name")

	if name == "" {
		return nil, fmt.Errorf("no MCP server configured under %s", prefix)
	}

	srv := server.NewMCPServer(
		name,
		v.GetString(prefix+".version"),
		server.WithToolCapabilities(true),
	)

	var store *menu.Store

	for _, id := range v.GetStringSlice(prefix + ".tools") {
		if store == nil && (id == ItemDetailsToolName || id == CompleteMenuToolName) {
			var err error

			if store, err = menu.NewFromConfig(); err != nil {
				return nil, err
			}
		}

		tool, err := Acquire(id, store)

		if err != nil {
			return nil, err
		}

		tool.Register(srv)
		log.Info("registered tool", "server", name, "tool", id)
	}

	return srv, nil
}

/*
NewRestaurantQueryToolFromConfig reads remote.restaurant.url and the
shared remote query settings.
*/
func NewRestaurantQueryToolFromConfig() (*RestaurantQueryTool, error) {
	baseURL := viper.GetString("remote.restaurant.url")

	if baseURL == "" {
		return nil, fmt.Errorf("remote.restaurant.url is not configured")
	}

	return NewRemoteQueryFromConfig(baseURL, viper.GetDuration("remote.restaurant.timeout"))
}

/*
NewRemoteQueryFromConfig builds a query tool for any A2A agent at
baseURL, validating the poller, retry and extractor sections. A zero
timeout leaves individual requests bounded only by the poller.
*/
func NewRemoteQueryFromConfig(baseURL string, timeout time.Duration) (*RestaurantQueryTool, error) {
	v := viper.GetViper()

	pollerConfig := a2a.DefaultPollerConfig()

	if err := v.UnmarshalKey("poller", &pollerConfig); err != nil {
		return nil, fmt.Errorf("failed to read poller config: %w", err)
	}

	if err := pollerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid poller config: %w", err)
	}

	retryConfig := errors.DefaultRetryConfig()

	if err := v.UnmarshalKey("retry", retryConfig); err != nil {
		return nil, fmt.Errorf("failed to read retry config: %w", err)
	}

	if err := retryConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	var extractorConfig a2a.ExtractorConfig

	if err := v.UnmarshalKey("extractor", &extractorConfig); err != nil {
		return nil, fmt.Errorf("failed to read extractor config: %w", err)
	}

	extractor, err := a2a.NewExtractor(extractorConfig)

	if err != nil {
		return nil, err
	}

	return NewRestaurantQueryTool(
		baseURL,
		WithPoller(pollerConfig),
		WithRetry(retryConfig),
		WithRequestTimeout(timeout),
		WithExtractor(extractor),
	), nil
}
