package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	fiberClient "github.com/gofiber/fiber/v3/client"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
)

/*
RPCClient posts JSON-RPC 2.0 requests to a single endpoint.
*/
type RPCClient struct {
	URL  string
	conn *fiberClient.Client
	next atomic.Int64
}

type RPCClientOption func(*RPCClient)

func WithTimeout(timeout time.Duration) RPCClientOption {
	return func(client *RPCClient) {
		client.conn.SetTimeout(timeout)
	}
}

func NewRPCClient(url string, opts ...RPCClientOption) *RPCClient {
	client := &RPCClient{
		URL:  url,
		conn: fiberClient.New(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

/*
Call performs method with params and decodes the result into result.
Failures come back typed: *errors.ConnectionError when the endpoint could
not be reached, *errors.RpcError when the peer answered with an error
object, and *errors.MalformedResponseError for anything unreadable.
*/
func (client *RPCClient) Call(
	ctx context.Context,
	method string,
	params any,
	result any,
) error {
	req, err := NewRPCRequest(client.next.Add(1), method, params)

	if err != nil {
		return fmt.Errorf("failed to encode %s params: %w", method, err)
	}

	res, err := client.conn.Post(client.URL, fiberClient.Config{
		Ctx: ctx,
		Header: map[string]string{
			"Content-Type": "application/json",
		},
		Body: req,
	})

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return &errors.ConnectionError{URL: client.URL, Err: err}
	}

	defer res.Close()

	status := res.StatusCode()

	if status >= http.StatusInternalServerError {
		return &errors.ConnectionError{
			URL: client.URL,
			Err: fmt.Errorf("server returned %s", res.Status()),
		}
	}

	var rpcResp RPCResponse

	if err = json.Unmarshal(res.Body(), &rpcResp); err != nil {
		return &errors.MalformedResponseError{
			Method: method,
			Reason: fmt.Sprintf("HTTP %d body is not a JSON-RPC response", status),
			Err:    err,
		}
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return &errors.MalformedResponseError{Method: method, Reason: "missing result"}
	}

	if result == nil {
		return nil
	}

	if err = json.Unmarshal(rpcResp.Result, result); err != nil {
		return &errors.MalformedResponseError{Method: method, Reason: "cannot decode result", Err: err}
	}

	return nil
}
