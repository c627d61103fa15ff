package errors

import stderrors "errors"

// Kind names the category of err for log and metric labels.
func Kind(err error) string {
	var (
		connErr     *ConnectionError
		rpcErr      *RpcError
		responseErr *MalformedResponseError
		timeoutErr  *PollTimeoutError
		resultErr   *MalformedResultError
		notDoneErr  *TaskNotCompletedError
	)

	switch {
	case err == nil:
		return "none"
	case stderrors.As(err, &connErr):
		return "connection"
	case stderrors.As(err, &rpcErr):
		return "rpc"
	case stderrors.As(err, &responseErr):
		return "malformed_response"
	case stderrors.As(err, &timeoutErr):
		return "poll_timeout"
	case stderrors.As(err, &resultErr):
		return "malformed_result"
	case stderrors.As(err, &notDoneErr):
		return "not_completed"
	}

	return "other"
}
