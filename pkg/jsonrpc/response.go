package jsonrpc

import (
	"encoding/json"

	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
)

type RPCResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *errors.RpcError `json:"error,omitempty"`
}

func newResultResponse(id json.RawMessage, result any) RPCResponse {
	raw, err := json.Marshal(result)

	if err != nil {
		return newErrorResponse(id, errors.ErrInternal.WithMessagef("failed to encode result: %v", err))
	}

	return RPCResponse{
		JSONRPC: Version,
		ID:      id,
		Result:  raw,
	}
}

func newErrorResponse(id json.RawMessage, e *errors.RpcError) RPCResponse {
	// Ensure mandatory Code/Message.
	if e == nil {
		e = errors.ErrInternal
	}

	if len(id) == 0 {
		id = json.RawMessage("null")
	}

	return RPCResponse{
		JSONRPC: Version,
		ID:      id,
		Error:   e,
	}
}
