package jsonrpc

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
)

func newEchoServer() *RPCServer {
	srv := NewRPCServer()

	srv.Register("echo", func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		var in map[string]string

		if err := json.Unmarshal(params, &in); err != nil {
			return nil, errors.ErrInvalidParams
		}

		return in, nil
	})

	srv.Register("missing", func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		return nil, errors.ErrTaskNotFound.WithMessagef("task %s not found", "t-1")
	})

	return srv
}

func TestRPCServerHandle(t *testing.T) {
	Convey("Given a server with an echo method", t, func() {
		srv := newEchoServer()
		ctx := context.Background()

		Convey("A single request gets its result under the same id", func() {
			resp, ok := srv.Handle(ctx, []byte(`{"jsonrpc":"2.0","id":"a","method":"echo","params":{"q":"menu"}}`)).(RPCResponse)
			So(ok, ShouldBeTrue)
			So(resp.Error, ShouldBeNil)
			So(string(resp.ID), ShouldEqual, `"a"`)
			So(string(resp.Result), ShouldEqual, `{"q":"menu"}`)
		})

		Convey("Handler errors keep their code", func() {
			resp := srv.Handle(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"missing"}`)).(RPCResponse)
			So(resp.Error.Code, ShouldEqual, -32001)
			So(resp.Error.Message, ShouldContainSubstring, "t-1")
		})

		Convey("Unknown methods are reported", func() {
			resp := srv.Handle(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"message/stream"}`)).(RPCResponse)
			So(resp.Error.Code, ShouldEqual, -32601)
		})

		Convey("Garbage is a parse error with a null id", func() {
			resp := srv.Handle(ctx, []byte(`{not json`)).(RPCResponse)
			So(resp.Error.Code, ShouldEqual, -32700)
			So(string(resp.ID), ShouldEqual, "null")
		})

		Convey("A wrong version is an invalid request", func() {
			resp := srv.Handle(ctx, []byte(`{"jsonrpc":"1.0","id":1,"method":"echo"}`)).(RPCResponse)
			So(resp.Error.Code, ShouldEqual, -32600)
		})

		Convey("Notifications produce no response", func() {
			So(srv.Handle(ctx, []byte(`{"jsonrpc":"2.0","method":"echo","params":{}}`)), ShouldBeNil)
		})

		Convey("Batches answer every request that carries an id", func() {
			out := srv.Handle(ctx, []byte(`[
				{"jsonrpc":"2.0","id":1,"method":"echo","params":{"a":"1"}},
				{"jsonrpc":"2.0","method":"echo","params":{"b":"2"}},
				{"jsonrpc":"2.0","id":2,"method":"missing"}
			]`))

			responses, ok := out.([]RPCResponse)
			So(ok, ShouldBeTrue)
			So(responses, ShouldHaveLength, 2)
			So(responses[0].Error, ShouldBeNil)
			So(responses[1].Error.Code, ShouldEqual, -32001)
		})

		Convey("An empty batch is an invalid request", func() {
			resp := srv.Handle(ctx, []byte(`[]`)).(RPCResponse)
			So(resp.Error.Code, ShouldEqual, -32600)
		})
	})
}

func TestRPCClientCall(t *testing.T) {
	Convey("Given a client pointed at a JSON-RPC endpoint", t, func() {
		srv := newEchoServer()

		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body json.RawMessage
			_ = json.NewDecoder(r.Body).Decode(&body)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(srv.Handle(r.Context(), body))
		}))
		defer endpoint.Close()

		client := NewRPCClient(endpoint.URL)
		ctx := context.Background()

		Convey("Results decode into the target", func() {
			var out map[string]string
			So(client.Call(ctx, "echo", map[string]string{"q": "pizza"}, &out), ShouldBeNil)
			So(out["q"], ShouldEqual, "pizza")
		})

		Convey("Error objects come back as RpcError", func() {
			err := client.Call(ctx, "missing", nil, nil)

			var rpcErr *errors.RpcError
			So(stderrors.As(err, &rpcErr), ShouldBeTrue)
			So(stderrors.Is(err, errors.ErrTaskNotFound), ShouldBeTrue)
		})
	})

	Convey("Given an endpoint that misbehaves", t, func() {
		ctx := context.Background()

		Convey("A 5xx is a connection error", func() {
			endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer endpoint.Close()

			err := NewRPCClient(endpoint.URL).Call(ctx, "echo", nil, nil)

			var connErr *errors.ConnectionError
			So(stderrors.As(err, &connErr), ShouldBeTrue)
		})

		Convey("A non JSON body is malformed", func() {
			endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>hello</html>"))
			}))
			defer endpoint.Close()

			err := NewRPCClient(endpoint.URL).Call(ctx, "echo", nil, nil)

			var malformed *errors.MalformedResponseError
			So(stderrors.As(err, &malformed), ShouldBeTrue)
		})

		Convey("A response without a result is malformed", func() {
			endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1}`))
			}))
			defer endpoint.Close()

			err := NewRPCClient(endpoint.URL).Call(ctx, "echo", nil, nil)

			var malformed *errors.MalformedResponseError
			So(stderrors.As(err, &malformed), ShouldBeTrue)
			So(malformed.Reason, ShouldEqual, "missing result")
		})

		Convey("A closed port is a connection error", func() {
			endpoint := httptest.NewServer(http.NotFoundHandler())
			url := endpoint.URL
			endpoint.Close()

			err := NewRPCClient(url).Call(ctx, "echo", nil, nil)

			var connErr *errors.ConnectionError
			So(stderrors.As(err, &connErr), ShouldBeTrue)
		})
	})
}
