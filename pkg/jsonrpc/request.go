package jsonrpc

import "encoding/json"

const Version = "2.0"

type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"` // accepts string | number | null
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

/*
NewRPCRequest builds a request with the given id and params encoded into
their raw form.
*/
func NewRPCRequest(id any, method string, params any) (RPCRequest, error) {
	req := RPCRequest{
		JSONRPC: Version,
		Method:  method,
	}

	rawID, err := json.Marshal(id)

	if err != nil {
		return req, err
	}

	req.ID = rawID

	if params == nil {
		return req, nil
	}

	if req.Params, err = json.Marshal(params); err != nil {
		return req, err
	}

	return req, nil
}

// IsNotification reports whether the caller expects no response.
func (req RPCRequest) IsNotification() bool {
	return len(req.ID) == 0 || string(req.ID) == "null"
}
