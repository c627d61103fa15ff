package errors

import "fmt"

// Error types raised while talking to a remote agent.
type (
	// ConnectionError means the remote endpoint could not be reached.
	ConnectionError struct {
		URL string
		Err error
	}

	// MalformedResponseError means the remote answered, but not with the
	// shape we expect (bad JSON, missing result, missing task fields).
	MalformedResponseError struct {
		Method string
		Reason string
		Err    error
	}
)

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s response: %s: %v", e.Method, e.Reason, e.Err)
	}

	return fmt.Sprintf("malformed %s response: %s", e.Method, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
