package a2a

/*
TaskState enumerates the mutually‑exclusive states a task may be in. Any
value a peer sends that we do not recognise is treated like "unknown":
not terminal, so the caller keeps waiting.
*/
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateFailed        TaskState = "failed"
	TaskStateRejected      TaskState = "rejected"
	TaskStateAuthRequired  TaskState = "auth-required"
	TaskStateUnknown       TaskState = "unknown"
)

// Terminal reports whether no further transitions will happen.
func (state TaskState) Terminal() bool {
	switch state {
	case TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateRejected:
		return true
	}

	return false
}

/*
TaskStatus is the current state of a task. Timestamp is kept as the raw
ISO 8601 string because peers disagree on whether to send a zone offset.
*/
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Reason returns the text of the status message, if there is one.
func (status TaskStatus) Reason() string {
	if status.Message == nil {
		return ""
	}

	return status.Message.String()
}
