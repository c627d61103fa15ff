package stores

import (
	"context"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-helpdesk/pkg/a2a"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
)

// InMemoryTaskStore is a process-local TaskStore. Tasks live until exit.
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*a2a.Task
}

func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{
		tasks: make(map[string]*a2a.Task),
	}
}

func (store *InMemoryTaskStore) Create(ctx context.Context, task *a2a.Task) *errors.RpcError {
	if err := task.Validate(); err != nil {
		return errors.ErrInvalidParams.WithMessagef("invalid task: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.tasks[task.ID]; exists {
		return errors.ErrInvalidParams.WithMessagef("task %s already exists", task.ID)
	}

	store.tasks[task.ID] = task.Clone()

	return nil
}

/*
Get returns a copy of the task. A positive historyLength keeps only that
many of the most recent history entries.
*/
func (store *InMemoryTaskStore) Get(
	ctx context.Context, id string, historyLength int,
) (*a2a.Task, *errors.RpcError) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	task, ok := store.tasks[id]

	if !ok {
		return nil, errors.ErrTaskNotFound
	}

	clone := task.Clone()

	if historyLength > 0 && len(clone.History) > historyLength {
		clone.History = clone.History[len(clone.History)-historyLength:]
	}

	return clone, nil
}

/*
Update replaces the stored task. Terminal tasks are final, so updating
one that already ended is refused with ErrTaskNotCancelable.
*/
func (store *InMemoryTaskStore) Update(ctx context.Context, task *a2a.Task) *errors.RpcError {
	store.mu.Lock()
	defer store.mu.Unlock()

	current, ok := store.tasks[task.ID]

	if !ok {
		return errors.ErrTaskNotFound
	}

	if current.Status.State.Terminal() {
		log.Warn(
			"refusing to update terminal task",
			"task", task.ID,
			"state", current.Status.State,
			"attempted", task.Status.State,
		)

		return errors.ErrTaskNotCancelable.WithMessagef(
			"task %s is already %s", task.ID, current.Status.State,
		)
	}

	store.tasks[task.ID] = task.Clone()

	return nil
}

// List returns copies of all tasks, ordered by id.
func (store *InMemoryTaskStore) List(ctx context.Context) []a2a.Task {
	store.mu.RLock()
	defer store.mu.RUnlock()

	out := make([]a2a.Task, 0, len(store.tasks))

	for _, task := range store.tasks {
		out = append(out, *task.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}
