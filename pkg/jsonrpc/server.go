package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
)

/*
Handler serves a single JSON-RPC method. It receives the raw params and
returns either a result to encode or a protocol error.
*/
type Handler func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError)

/*
RPCServer dispatches JSON-RPC 2.0 payloads, single or batched, to the
handlers registered for each method. It is transport agnostic: the HTTP
layer hands it the request body and writes back whatever it returns.
*/
type RPCServer struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRPCServer() *RPCServer {
	return &RPCServer{
		handlers: make(map[string]Handler),
	}
}

func (srv *RPCServer) Register(method string, handler Handler) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.handlers[method] = handler
}

/*
Handle processes a raw body. A nil return means nothing should be sent
back, which happens when the payload only contained notifications.
*/
func (srv *RPCServer) Handle(ctx context.Context, body []byte) any {
	// Support batch requests if the first byte is '['
	body = bytes.TrimSpace(body)

	if len(body) == 0 {
		return newErrorResponse(nil, errors.ErrInvalidRequest)
	}

	if body[0] == '[' {
		var batch []RPCRequest

		if err := json.Unmarshal(body, &batch); err != nil {
			return newErrorResponse(nil, errors.ErrParseError)
		}

		if len(batch) == 0 {
			return newErrorResponse(nil, errors.ErrInvalidRequest)
		}

		var responses []RPCResponse

		for _, req := range batch {
			resp := srv.handle(ctx, &req)

			// Notifications have no ID – skip sending a response.
			if !req.IsNotification() {
				responses = append(responses, resp)
			}
		}

		if len(responses) == 0 {
			return nil
		}

		return responses
	}

	var req RPCRequest

	if err := json.Unmarshal(body, &req); err != nil {
		return newErrorResponse(nil, errors.ErrParseError)
	}

	resp := srv.handle(ctx, &req)

	if req.IsNotification() {
		return nil
	}

	return resp
}

func (srv *RPCServer) handle(ctx context.Context, req *RPCRequest) RPCResponse {
	if req.JSONRPC != Version || req.Method == "" {
		return newErrorResponse(req.ID, errors.ErrInvalidRequest)
	}

	srv.mu.RLock()
	handler, ok := srv.handlers[req.Method]
	srv.mu.RUnlock()

	if !ok {
		log.Warn("unknown rpc method", "method", req.Method)
		return newErrorResponse(req.ID, errors.ErrMethodNotFound.WithMessagef("Method not found: %s", req.Method))
	}

	result, rpcErr := handler(ctx, req.Params)

	if rpcErr != nil {
		return newErrorResponse(req.ID, rpcErr)
	}

	return newResultResponse(req.ID, result)
}
