package a2a

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
)

type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

func newMockAgent(handle func(req rpcEnvelope) (any, *errors.RpcError)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == AgentCardPath {
			_ = json.NewEncoder(w).Encode(AgentCard{Name: "Restaurant Agent", Version: "1.0.0"})
			return
		}

		body, _ := io.ReadAll(r.Body)

		var req rpcEnvelope
		_ = json.Unmarshal(body, &req)

		result, rpcErr := handle(req)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}

		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestSubmit(t *testing.T) {
	Convey("Given a remote agent that creates tasks", t, func() {
		var received rpcEnvelope

		srv := newMockAgent(func(req rpcEnvelope) (any, *errors.RpcError) {
			received = req

			return map[string]any{
				"kind":      "task",
				"id":        "task-1",
				"contextId": "ctx-1",
				"status":    map[string]any{"state": "submitted"},
			}, nil
		})
		defer srv.Close()

		client := NewClient(srv.URL)

		Convey("When a query is submitted", func() {
			task, err := client.Submit(context.Background(), "What's on the menu?")

			Convey("Then the returned task carries the remote id and state", func() {
				So(err, ShouldBeNil)
				So(task.ID, ShouldEqual, "task-1")
				So(task.ContextID, ShouldEqual, "ctx-1")
				So(task.Status.State, ShouldEqual, TaskStateSubmitted)
			})

			Convey("Then the request is a message/send with one user text part", func() {
				So(received.Method, ShouldEqual, MethodMessageSend)

				var params MessageSendParams
				So(json.Unmarshal(received.Params, &params), ShouldBeNil)
				So(params.Message.Kind, ShouldEqual, KindMessage)
				So(params.Message.Role, ShouldEqual, RoleUser)
				So(params.Message.MessageID, ShouldNotBeBlank)
				So(params.Message.Parts, ShouldHaveLength, 1)
				So(params.Message.Parts[0].Kind, ShouldEqual, PartKindText)
				So(params.Message.Parts[0].Text, ShouldEqual, "What's on the menu?")
			})
		})
	})

	Convey("Given a remote agent that answers with a message", t, func() {
		srv := newMockAgent(func(req rpcEnvelope) (any, *errors.RpcError) {
			return NewTextMessage(RoleAgent, "We serve pizza."), nil
		})
		defer srv.Close()

		Convey("When a query is submitted", func() {
			task, err := NewClient(srv.URL).Submit(context.Background(), "Pizza?")

			Convey("Then the reply is wrapped into a completed task", func() {
				So(err, ShouldBeNil)
				So(task.ID, ShouldNotBeBlank)
				So(task.Status.State, ShouldEqual, TaskStateCompleted)

				answer, err := LastPartExtractor{}.Extract(task)
				So(err, ShouldBeNil)
				So(answer, ShouldEqual, "We serve pizza.")
			})
		})
	})

	Convey("Given a remote agent that answers with garbage", t, func() {
		srv := newMockAgent(func(req rpcEnvelope) (any, *errors.RpcError) {
			return map[string]any{"kind": "task", "status": map[string]any{}}, nil
		})
		defer srv.Close()

		Convey("When a query is submitted", func() {
			_, err := NewClient(srv.URL).Submit(context.Background(), "hello")

			Convey("Then a malformed response error is returned", func() {
				var malformed *errors.MalformedResponseError
				So(stderrors.As(err, &malformed), ShouldBeTrue)
				So(malformed.Method, ShouldEqual, MethodMessageSend)
			})
		})
	})
}

func TestGetTask(t *testing.T) {
	Convey("Given a remote agent that knows one task", t, func() {
		srv := newMockAgent(func(req rpcEnvelope) (any, *errors.RpcError) {
			var params TaskQueryParams
			_ = json.Unmarshal(req.Params, &params)

			if params.ID != "task-1" {
				return nil, errors.ErrTaskNotFound
			}

			return map[string]any{
				"kind":   "task",
				"id":     "task-1",
				"status": map[string]any{"state": "working"},
			}, nil
		})
		defer srv.Close()

		client := NewClient(srv.URL)

		Convey("When the known task is fetched", func() {
			task, err := client.GetTask(context.Background(), "task-1")

			Convey("Then the snapshot is returned", func() {
				So(err, ShouldBeNil)
				So(task.Status.State, ShouldEqual, TaskStateWorking)
			})
		})

		Convey("When an unknown task is fetched", func() {
			_, err := client.GetTask(context.Background(), "nope")

			Convey("Then the JSON-RPC error code is preserved", func() {
				var rpcErr *errors.RpcError
				So(stderrors.As(err, &rpcErr), ShouldBeTrue)
				So(rpcErr.Code, ShouldEqual, -32001)
				So(stderrors.Is(err, errors.ErrTaskNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestConnectionFailure(t *testing.T) {
	Convey("Given a remote agent that is not listening", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("When a query is submitted", func() {
			_, err := NewClient(url).Submit(context.Background(), "hello")

			Convey("Then a connection error is returned", func() {
				var connErr *errors.ConnectionError
				So(stderrors.As(err, &connErr), ShouldBeTrue)
				So(connErr.URL, ShouldEqual, url)
			})
		})
	})

	Convey("Given a remote agent that fails twice before answering", t, func() {
		var calls atomic.Int32

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}

			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"id":      1,
				"result":  map[string]any{"kind": "task", "id": "t", "status": map[string]any{"state": "working"}},
			})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, WithRetry(&errors.RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  time.Millisecond,
			MaxDelay:      5 * time.Millisecond,
			BackoffFactor: 2,
		}))

		Convey("When the task is fetched with retries enabled", func() {
			task, err := client.GetTask(context.Background(), "t")

			Convey("Then the third attempt succeeds", func() {
				So(err, ShouldBeNil)
				So(task.ID, ShouldEqual, "t")
				So(calls.Load(), ShouldEqual, 3)
			})
		})
	})
}

func TestFetchAgentCard(t *testing.T) {
	Convey("Given a remote agent publishing its card", t, func() {
		srv := newMockAgent(func(req rpcEnvelope) (any, *errors.RpcError) {
			return nil, errors.ErrMethodNotFound
		})
		defer srv.Close()

		Convey("When the card is fetched", func() {
			card, err := NewClient(srv.URL).FetchAgentCard(context.Background())

			Convey("Then it is decoded", func() {
				So(err, ShouldBeNil)
				So(card.Name, ShouldEqual, "Restaurant Agent")
			})
		})
	})
}
