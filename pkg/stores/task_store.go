package stores

import (
	"context"

	"github.com/theapemachine/a2a-helpdesk/pkg/a2a"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
)

/*
TaskStore keeps the server-side view of every task an agent has accepted.
Implementations hand out copies, never their own records, and refuse to
move a task out of a terminal state.
*/
type TaskStore interface {
	Create(context.Context, *a2a.Task) *errors.RpcError
	Get(context.Context, string, int) (*a2a.Task, *errors.RpcError)
	Update(context.Context, *a2a.Task) *errors.RpcError
	List(context.Context) []a2a.Task
}
