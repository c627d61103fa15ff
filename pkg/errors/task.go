package errors

import (
	"fmt"
	"time"
)

// Error types raised while waiting on, or reading the result of, a remote task.
type (
	// PollTimeoutError is returned when a task did not reach a terminal
	// state within the configured attempt cap or overall timeout.
	PollTimeoutError struct {
		TaskID    string
		Attempts  int
		Elapsed   time.Duration
		LastState string
	}

	// MalformedResultError is returned when a finished task does not carry
	// an answer in the place the extraction policy looks for it.
	MalformedResultError struct {
		TaskID string
		Reason string
	}

	// TaskNotCompletedError is returned when a task reached a terminal
	// state other than completed.
	TaskNotCompletedError struct {
		TaskID string
		State  string
		Reason string
	}

	// TurnLimitError is returned when an agent keeps requesting tools past
	// its turn budget.
	TurnLimitError struct {
		Agent string
		Turns int
	}
)

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf(
		"polling exceeded for task %s: %d attempts in %s, last state %q",
		e.TaskID, e.Attempts, e.Elapsed.Round(time.Millisecond), e.LastState,
	)
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("malformed result for task %s: %s", e.TaskID, e.Reason)
}

func (e *TaskNotCompletedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("task %s ended in state %q", e.TaskID, e.State)
	}

	return fmt.Sprintf("task %s ended in state %q: %s", e.TaskID, e.State, e.Reason)
}

func (e *TurnLimitError) Error() string {
	return fmt.Sprintf("agent %s exceeded %d tool turns without answering", e.Agent, e.Turns)
}
