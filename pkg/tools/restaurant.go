package tools

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/a2a-helpdesk/pkg/a2a"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
	"github.com/theapemachine/a2a-helpdesk/pkg/metrics"
	"github.com/theapemachine/a2a-helpdesk/pkg/utils"
)

const RestaurantQueryToolName = "query_restaurant_agent"

/*
RestaurantQueryTool lets the helpdesk delegate food questions to the
restaurant agent. Each call submits the query as a new remote task, waits
for it to finish, and hands back the answer the agent produced.
*/
type RestaurantQueryTool struct {
	tool      mcp.Tool
	baseURL   string
	poller    a2a.PollerConfig
	retry     *errors.RetryConfig
	timeout   time.Duration
	extractor a2a.Extractor
}

type RestaurantQueryOption func(*RestaurantQueryTool)

func WithPoller(config a2a.PollerConfig) RestaurantQueryOption {
	return func(rt *RestaurantQueryTool) {
		rt.poller = config
	}
}

func WithRetry(config *errors.RetryConfig) RestaurantQueryOption {
	return func(rt *RestaurantQueryTool) {
		rt.retry = config
	}
}

// WithRequestTimeout bounds each individual request to the remote agent.
func WithRequestTimeout(timeout time.Duration) RestaurantQueryOption {
	return func(rt *RestaurantQueryTool) {
		rt.timeout = timeout
	}
}

func WithExtractor(extractor a2a.Extractor) RestaurantQueryOption {
	return func(rt *RestaurantQueryTool) {
		rt.extractor = extractor
	}
}

func NewRestaurantQueryTool(baseURL string, opts ...RestaurantQueryOption) *RestaurantQueryTool {
	rt := &RestaurantQueryTool{
		tool: mcp.NewTool(
			RestaurantQueryToolName,
			mcp.WithDescription("Sends a food or menu-related query to the restaurant agent and returns the result."),
			mcp.WithString(
				"query",
				mcp.Required(),
				mcp.Description("The guest's question about food, dishes, prices or the menu."),
			),
		),
		baseURL:   baseURL,
		poller:    a2a.DefaultPollerConfig(),
		retry:     errors.DefaultRetryConfig(),
		extractor: a2a.LastPartExtractor{},
	}

	for _, opt := range opts {
		opt(rt)
	}

	return rt
}

func (rt *RestaurantQueryTool) Tool() mcp.Tool {
	return rt.tool
}

func (rt *RestaurantQueryTool) Register(srv *server.MCPServer) {
	srv.AddTool(rt.tool, rt.Handle)
}

/*
Query runs one full round trip against the restaurant agent. A task that
ends in any terminal state other than completed is reported as
*errors.TaskNotCompletedError carrying the agent's status message.
*/
func (rt *RestaurantQueryTool) Query(ctx context.Context, query string) (string, error) {
	task, err := rt.Await(ctx, query)

	if err != nil {
		return "", err
	}

	return rt.Answer(task)
}

// Await submits query and waits for the remote task to reach a terminal state.
func (rt *RestaurantQueryTool) Await(ctx context.Context, query string) (*a2a.Task, error) {
	opts := []a2a.ClientOption{a2a.WithRetry(rt.retry)}

	if rt.timeout > 0 {
		opts = append(opts, a2a.WithTimeout(rt.timeout))
	}

	client := a2a.NewClient(rt.baseURL, opts...)

	log.Info("sending query to remote agent", "agent", rt.baseURL, "query", utils.Truncate(query, 80))

	task, err := client.Submit(ctx, query)

	if err != nil {
		return nil, err
	}

	log.Info("remote agent accepted task", "task", task.ID, "state", task.Status.State)

	return a2a.NewPoller(client, rt.poller).Wait(ctx, task)
}

// Answer extracts the reply from a finished task.
func (rt *RestaurantQueryTool) Answer(task *a2a.Task) (string, error) {
	if task.Status.State != a2a.TaskStateCompleted {
		return "", &errors.TaskNotCompletedError{
			TaskID: task.ID,
			State:  string(task.Status.State),
			Reason: task.Status.Reason(),
		}
	}

	return rt.extractor.Extract(task)
}

/*
Handle adapts Query to MCP. Failures become tool error results so the
calling model sees what went wrong instead of a protocol error.
*/
func (rt *RestaurantQueryTool) Handle(
	ctx context.Context, req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	started := time.Now()

	query, err := req.RequireString("query")

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, err := rt.Query(ctx, query)

	metrics.Metrics.ToolDuration.WithLabelValues(RestaurantQueryToolName).Observe(time.Since(started).Seconds())
	metrics.Metrics.ToolCalls.WithLabelValues(RestaurantQueryToolName, metrics.Status(err)).Inc()

	if err != nil {
		log.Error("restaurant query failed", "error", err)
		metrics.Metrics.RemoteFailures.WithLabelValues(errors.Kind(err)).Inc()

		return mcp.NewToolResultError("restaurant agent query failed: " + err.Error()), nil
	}

	return mcp.NewToolResultText(answer), nil
}
