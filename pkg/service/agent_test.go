package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fiberadaptor "github.com/gofiber/fiber/v3/middleware/adaptor"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/a2a-helpdesk/pkg/a2a"
	"github.com/theapemachine/a2a-helpdesk/pkg/ai"
	"github.com/theapemachine/a2a-helpdesk/pkg/stores"
	"github.com/theapemachine/a2a-helpdesk/pkg/tools"
)

type funcRunner func(ctx context.Context, prompt string) (string, error)

func (fn funcRunner) Run(ctx context.Context, prompt string) (string, error) {
	return fn(ctx, prompt)
}

func newTestServer(t *testing.T, runner ai.Runner, opts ...AgentServerOption) *AgentServer {
	t.Helper()

	manager, err := ai.NewTaskManager(
		&a2a.AgentCard{Name: "Restaurant Agent", Version: "1.0.0", ProtocolVersion: a2a.ProtocolVersion},
		ai.WithTaskStore(stores.NewInMemoryTaskStore()),
		ai.WithRunner(runner),
	)

	if err != nil {
		t.Fatal(err)
	}

	return NewAgentServer(manager, opts...)
}

type rpcReply struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func postRPC(srv *AgentServer, path, body string) (*http.Response, rpcReply) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req)
	So(err, ShouldBeNil)

	raw, _ := io.ReadAll(resp.Body)

	var reply rpcReply
	_ = json.Unmarshal(raw, &reply)

	return resp, reply
}

func TestAgentServerRoutes(t *testing.T) {
	Convey("Given an agent server", t, func() {
		srv := newTestServer(t, funcRunner(func(ctx context.Context, prompt string) (string, error) {
			return "answer to " + prompt, nil
		}))

		Convey("The agent card is published at both well-known paths", func() {
			for _, path := range []string{a2a.AgentCardPath, a2a.AgentCardLegacyPath} {
				resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var card a2a.AgentCard
				So(json.NewDecoder(resp.Body).Decode(&card), ShouldBeNil)
				So(card.Name, ShouldEqual, "Restaurant Agent")
			}
		})

		Convey("The liveness probe answers", func() {
			resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/livez", nil))
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("Metrics are exposed", func() {
			resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("message/send returns a submitted task that later completes", func() {
			resp, reply := postRPC(srv, "/", `{
				"jsonrpc": "2.0",
				"id": 1,
				"method": "message/send",
				"params": {"message": {"kind": "message", "messageId": "m-1", "role": "user",
					"parts": [{"kind": "text", "text": "menu?"}]}}
			}`)

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(reply.Error, ShouldBeNil)
			So(string(reply.ID), ShouldEqual, "1")

			task, err := a2a.ParseTask(reply.Result)
			So(err, ShouldBeNil)
			So(task.Kind, ShouldEqual, a2a.KindTask)
			So(task.Status.State, ShouldEqual, a2a.TaskStateSubmitted)

			srv.manager.Wait()

			_, reply = postRPC(srv, "/rpc", `{"jsonrpc": "2.0", "id": 2, "method": "tasks/get",
				"params": {"id": "`+task.ID+`"}}`)

			So(reply.Error, ShouldBeNil)

			final, err := a2a.ParseTask(reply.Result)
			So(err, ShouldBeNil)
			So(final.Status.State, ShouldEqual, a2a.TaskStateCompleted)

			answer, err := a2a.LastPartExtractor{}.Extract(final)
			So(err, ShouldBeNil)
			So(answer, ShouldEqual, "answer to menu?")
		})

		Convey("tasks/get on an unknown id is -32001", func() {
			_, reply := postRPC(srv, "/rpc", `{"jsonrpc": "2.0", "id": 3, "method": "tasks/get",
				"params": {"id": "missing"}}`)

			So(reply.Error, ShouldNotBeNil)
			So(reply.Error.Code, ShouldEqual, -32001)
		})

		Convey("tasks/get without an id is invalid params", func() {
			_, reply := postRPC(srv, "/rpc", `{"jsonrpc": "2.0", "id": 4, "method": "tasks/get", "params": {}}`)

			So(reply.Error, ShouldNotBeNil)
			So(reply.Error.Code, ShouldEqual, -32602)
		})

		Convey("Unknown methods are reported", func() {
			_, reply := postRPC(srv, "/rpc", `{"jsonrpc": "2.0", "id": 5, "method": "tasks/list", "params": {}}`)

			So(reply.Error, ShouldNotBeNil)
			So(reply.Error.Code, ShouldEqual, -32601)
		})

		Convey("Streaming methods are refused as unsupported", func() {
			for _, method := range []string{a2a.MethodMessageStream, a2a.MethodTasksResubscribe} {
				_, reply := postRPC(srv, "/rpc", `{"jsonrpc": "2.0", "id": 6, "method": "`+method+`", "params": {}}`)

				So(reply.Error, ShouldNotBeNil)
				So(reply.Error.Code, ShouldEqual, -32004)
			}
		})

		Convey("Push notification configuration is refused", func() {
			for _, method := range []string{a2a.MethodPushNotificationSet, a2a.MethodPushNotificationGet} {
				_, reply := postRPC(srv, "/rpc", `{"jsonrpc": "2.0", "id": 7, "method": "`+method+`", "params": {"id": "t"}}`)

				So(reply.Error, ShouldNotBeNil)
				So(reply.Error.Code, ShouldEqual, -32003)
			}
		})

		Convey("Garbage is a parse error", func() {
			_, reply := postRPC(srv, "/rpc", `{not json`)

			So(reply.Error, ShouldNotBeNil)
			So(reply.Error.Code, ShouldEqual, -32700)
		})
	})
}

func TestAgentServerRateLimit(t *testing.T) {
	Convey("Given an agent server limited to two RPC calls a minute", t, func() {
		srv := newTestServer(t, funcRunner(func(ctx context.Context, prompt string) (string, error) {
			return "ok", nil
		}), WithRateLimit(2, time.Minute))

		body := `{"jsonrpc":"2.0","id":1,"method":"tasks/get","params":{"id":"nope"}}`

		first, _ := postRPC(srv, "/", body)
		second, _ := postRPC(srv, "/rpc", body)
		third, _ := postRPC(srv, "/", body)

		Convey("The third call is rejected", func() {
			So(first.StatusCode, ShouldEqual, http.StatusOK)
			So(second.StatusCode, ShouldEqual, http.StatusOK)
			So(third.StatusCode, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("Discovery is never limited", func() {
			resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, a2a.AgentCardPath, nil))
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}

func TestAgentServerCancel(t *testing.T) {
	Convey("Given an agent working on a slow task", t, func() {
		started := make(chan struct{})

		srv := newTestServer(t, funcRunner(func(ctx context.Context, prompt string) (string, error) {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}))

		_, reply := postRPC(srv, "/", `{"jsonrpc": "2.0", "id": 1, "method": "message/send",
			"params": {"message": {"kind": "message", "messageId": "m-1", "role": "user",
				"parts": [{"kind": "text", "text": "slow"}]}}}`)

		task, err := a2a.ParseTask(reply.Result)
		So(err, ShouldBeNil)

		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("runner never started")
		}

		Convey("tasks/cancel cancels it once and then refuses with -32002", func() {
			cancelBody := `{"jsonrpc": "2.0", "id": 2, "method": "tasks/cancel", "params": {"id": "` + task.ID + `"}}`

			_, reply := postRPC(srv, "/rpc", cancelBody)
			So(reply.Error, ShouldBeNil)

			canceled, err := a2a.ParseTask(reply.Result)
			So(err, ShouldBeNil)
			So(canceled.Status.State, ShouldEqual, a2a.TaskStateCanceled)

			srv.manager.Wait()

			_, reply = postRPC(srv, "/rpc", cancelBody)
			So(reply.Error, ShouldNotBeNil)
			So(reply.Error.Code, ShouldEqual, -32002)
		})
	})
}

func TestRestaurantBridgeEndToEnd(t *testing.T) {
	Convey("Given a restaurant agent served over HTTP", t, func() {
		restaurant := newTestServer(t, funcRunner(func(ctx context.Context, prompt string) (string, error) {
			time.Sleep(20 * time.Millisecond)
			return "42", nil
		}))

		httpSrv := httptest.NewServer(fiberadaptor.FiberApp(restaurant.App()))
		defer httpSrv.Close()

		Convey("The helpdesk tool gets the answer through submit, poll and extract", func() {
			tool := tools.NewRestaurantQueryTool(httpSrv.URL, tools.WithPoller(a2a.PollerConfig{
				Interval:    10 * time.Millisecond,
				MaxAttempts: 100,
				Timeout:     5 * time.Second,
			}))

			answer, err := tool.Query(context.Background(), "What is the answer?")
			So(err, ShouldBeNil)
			So(answer, ShouldEqual, "42")
		})
	})
}
