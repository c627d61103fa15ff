package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	fiberadaptor "github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/theapemachine/a2a-helpdesk/pkg/a2a"
	"github.com/theapemachine/a2a-helpdesk/pkg/ai"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
	"github.com/theapemachine/a2a-helpdesk/pkg/jsonrpc"
	"github.com/theapemachine/a2a-helpdesk/pkg/metrics"
)

/*
AgentServer exposes a TaskManager over A2A: the agent card at the
well-known paths and the JSON-RPC task methods at / and /rpc. It is safe
for concurrent use because the RPCServer and TaskManager are.
*/
type AgentServer struct {
	app     *fiber.App
	manager *ai.TaskManager
	rpc     *jsonrpc.RPCServer
	limit   *limiter.Config
}

type AgentServerOption func(*AgentServer)

/*
WithRateLimit caps JSON-RPC requests per client IP to max within window.
Discovery, health and metrics routes are not limited.
*/
func WithRateLimit(max int, window time.Duration) AgentServerOption {
	return func(srv *AgentServer) {
		if max <= 0 {
			return
		}

		srv.limit = &limiter.Config{
			Max:        max,
			Expiration: window,
			LimitReached: func(c fiber.Ctx) error {
				log.Warn("rate limit reached", "agent", srv.manager.Card().Name, "ip", c.IP())
				return c.SendStatus(fiber.StatusTooManyRequests)
			},
		}
	}
}

/*
NewAgentServer constructs a server with the supplied TaskManager. Routes
are mounted immediately so the app can be exercised before Start.
*/
func NewAgentServer(manager *ai.TaskManager, opts ...AgentServerOption) *AgentServer {
	srv := &AgentServer{
		app: fiber.New(fiber.Config{
			AppName:      manager.Card().Name,
			ServerHeader: "A2A-Agent-Server",
		}),
		manager: manager,
		rpc:     jsonrpc.NewRPCServer(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.rpc.Register(a2a.MethodMessageSend, srv.handleMessageSend)
	srv.rpc.Register(a2a.MethodTasksGet, srv.handleTasksGet)
	srv.rpc.Register(a2a.MethodTasksCancel, srv.handleTasksCancel)
	srv.rpc.Register(a2a.MethodMessageStream, unsupported(errors.ErrUnsupportedOperation))
	srv.rpc.Register(a2a.MethodTasksResubscribe, unsupported(errors.ErrUnsupportedOperation))
	srv.rpc.Register(a2a.MethodPushNotificationSet, unsupported(errors.ErrPushNotSupported))
	srv.rpc.Register(a2a.MethodPushNotificationGet, unsupported(errors.ErrPushNotSupported))

	srv.app.Use(logger.New(logger.Config{
		// Probes and scrapes would drown out the task traffic.
		Next: func(c fiber.Ctx) bool {
			return c.Path() == healthcheck.DefaultLivenessEndpoint || c.Path() == "/metrics"
		},
	}))

	srv.app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	srv.app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())
	srv.app.Get(a2a.AgentCardPath, srv.handleAgentCard)
	srv.app.Get(a2a.AgentCardLegacyPath, srv.handleAgentCard)
	srv.app.Get("/metrics", fiberadaptor.HTTPHandler(promhttp.Handler()))

	handlers := []fiber.Handler{srv.handleRPC}

	if srv.limit != nil {
		handlers = append([]fiber.Handler{limiter.New(*srv.limit)}, handlers...)
	}

	srv.app.Post("/", handlers[0], handlers[1:]...)
	srv.app.Post("/rpc", handlers[0], handlers[1:]...)

	return srv
}

func (srv *AgentServer) App() *fiber.App {
	return srv.app
}

func (srv *AgentServer) Start(addr string) error {
	log.Info("agent listening", "agent", srv.manager.Card().Name, "addr", addr)
	return srv.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting requests and waits for running tasks to settle.
func (srv *AgentServer) Shutdown(ctx context.Context) error {
	err := srv.app.ShutdownWithContext(ctx)

	done := make(chan struct{})

	go func() {
		srv.manager.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("shutdown deadline reached with tasks still running", "agent", srv.manager.Card().Name)
	}

	return err
}

func (srv *AgentServer) handleAgentCard(ctx fiber.Ctx) error {
	return ctx.JSON(srv.manager.Card())
}

/*
handleRPC acts as the central routing for all a2a RPC methods.
*/
func (srv *AgentServer) handleRPC(ctx fiber.Ctx) error {
	metrics.Metrics.RPCRequests.WithLabelValues(srv.manager.Card().Name).Inc()

	response := srv.rpc.Handle(ctx.Context(), ctx.Body())

	if response == nil {
		return ctx.SendStatus(fiber.StatusNoContent)
	}

	return ctx.Status(fiber.StatusOK).JSON(response)
}

func (srv *AgentServer) handleMessageSend(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var params a2a.MessageSendParams

	if rpcErr := unmarshalParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}

	return srv.manager.SendMessage(ctx, params)
}

func (srv *AgentServer) handleTasksGet(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var params a2a.TaskQueryParams

	if rpcErr := unmarshalParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}

	return srv.manager.GetTask(ctx, params)
}

func (srv *AgentServer) handleTasksCancel(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var params a2a.TaskIDParams

	if rpcErr := unmarshalParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}

	return srv.manager.CancelTask(ctx, params)
}

// unsupported answers a protocol method the card does not advertise.
func unsupported(rpcErr *errors.RpcError) jsonrpc.Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
		return nil, rpcErr
	}
}

// unmarshalParams decodes params and insists on a task or message being named.
func unmarshalParams(raw json.RawMessage, out any) *errors.RpcError {
	if len(raw) == 0 {
		return errors.ErrInvalidParams.WithMessagef("missing params")
	}

	if err := json.Unmarshal(raw, out); err != nil {
		log.Error("failed to unmarshal params", "error", err, "params", string(raw))
		return errors.ErrInvalidParams.WithMessagef("failed to unmarshal params: %v", err)
	}

	switch params := out.(type) {
	case *a2a.TaskIDParams:
		if params.ID == "" {
			return errors.ErrInvalidParams.WithMessagef("missing task id")
		}
	case *a2a.TaskQueryParams:
		if params.ID == "" {
			return errors.ErrInvalidParams.WithMessagef("missing task id")
		}
	}

	return nil
}
