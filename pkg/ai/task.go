package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-helpdesk/pkg/a2a"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
	"github.com/theapemachine/a2a-helpdesk/pkg/metrics"
	"github.com/theapemachine/a2a-helpdesk/pkg/stores"
)

// Runner produces the answer to a task's prompt.
type Runner interface {
	Run(ctx context.Context, prompt string) (string, error)
}

type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

/*
TaskManager serves the task lifecycle of one agent. message/send returns
as soon as the task is stored; the runner works on it in the background
and records the outcome in the store.
*/
type TaskManager struct {
	agent     *a2a.AgentCard
	taskStore stores.TaskStore
	runner    Runner
	mu        sync.Mutex
	runs      map[string]*run
	wg        sync.WaitGroup
}

type TaskManagerOption func(*TaskManager)

func NewTaskManager(
	card *a2a.AgentCard, options ...TaskManagerOption,
) (*TaskManager, error) {
	taskManager := &TaskManager{
		agent: card,
		runs:  make(map[string]*run),
	}

	for _, option := range options {
		option(taskManager)
	}

	if taskManager.taskStore == nil {
		log.Error("missing task store")
		return nil, fmt.Errorf("task manager for %s has no task store", card.Name)
	}

	if taskManager.runner == nil {
		log.Error("missing runner")
		return nil, fmt.Errorf("task manager for %s has no runner", card.Name)
	}

	return taskManager, nil
}

/*
SendMessage creates a task for the message and starts working on it.
With configuration.blocking set the call waits for the outcome.
*/
func (manager *TaskManager) SendMessage(
	ctx context.Context, params a2a.MessageSendParams,
) (*a2a.Task, *errors.RpcError) {
	prompt := strings.TrimSpace(params.Message.String())

	if prompt == "" {
		return nil, errors.ErrInvalidParams.WithMessagef("message has no text parts")
	}

	if params.Message.Role == "" {
		params.Message.Role = a2a.RoleUser
	}

	task := a2a.NewTask(params.Message)
	task.Metadata = params.Metadata

	if err := manager.taskStore.Create(ctx, task); err != nil {
		log.Error("failed to create task", "task", task.ID, "error", err)
		return nil, err
	}

	log.Info("task submitted", "agent", manager.agent.Name, "task", task.ID)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	current := &run{cancel: cancel, done: make(chan struct{})}

	manager.mu.Lock()
	manager.runs[task.ID] = current
	manager.mu.Unlock()

	manager.wg.Add(1)
	go manager.work(runCtx, task.Clone(), prompt, current)

	if params.Configuration != nil && params.Configuration.Blocking {
		select {
		case <-current.done:
		case <-ctx.Done():
		}

		return manager.taskStore.Get(ctx, task.ID, 0)
	}

	return task, nil
}

func (manager *TaskManager) work(ctx context.Context, task *a2a.Task, prompt string, current *run) {
	metrics.Metrics.ActiveTasks.Inc()

	defer func() {
		metrics.Metrics.ActiveTasks.Dec()

		manager.mu.Lock()
		delete(manager.runs, task.ID)
		manager.mu.Unlock()

		current.cancel()
		close(current.done)
		manager.wg.Done()
	}()

	task.ToStatus(a2a.TaskStateWorking, nil)

	if err := manager.taskStore.Update(ctx, task); err != nil {
		log.Warn("task ended before work started", "task", task.ID, "error", err)
		return
	}

	answer, err := manager.runner.Run(ctx, prompt)

	if ctx.Err() != nil {
		log.Info("task canceled while working", "task", task.ID)
		return
	}

	if err != nil {
		log.Error("task failed", "agent", manager.agent.Name, "task", task.ID, "error", err)
		manager.finish(ctx, task, a2a.TaskStateFailed, err.Error())
		return
	}

	task.AddArtifact(a2a.NewTextArtifact("answer", answer))
	manager.finish(ctx, task, a2a.TaskStateCompleted, answer)
}

func (manager *TaskManager) finish(ctx context.Context, task *a2a.Task, state a2a.TaskState, text string) {
	reply := a2a.NewTextMessage(a2a.RoleAgent, text)
	reply.TaskID = task.ID
	reply.ContextID = task.ContextID

	task.History = append(task.History, reply)

	if state == a2a.TaskStateFailed {
		task.ToStatus(state, &reply)
	} else {
		task.ToStatus(state, nil)
	}

	if err := manager.taskStore.Update(ctx, task); err != nil {
		log.Warn("failed to record task outcome", "task", task.ID, "state", state, "error", err)
		return
	}

	metrics.Metrics.TaskOutcomes.WithLabelValues("local", string(state)).Inc()
	log.Info("task finished", "agent", manager.agent.Name, "task", task.ID, "state", state)
}

/*
GetTask retrieves the current state of a task.

Returns:
- A task if it exists.
- *errors.RpcError if the task was not found.
*/
func (manager *TaskManager) GetTask(
	ctx context.Context, params a2a.TaskQueryParams,
) (*a2a.Task, *errors.RpcError) {
	historyLength := 0

	if params.HistoryLength != nil {
		historyLength = *params.HistoryLength
	}

	return manager.taskStore.Get(ctx, params.ID, historyLength)
}

/*
CancelTask attempts to cancel an ongoing task.

Returns:
- The canceled task.
- *errors.RpcError if the task was not found or already finished.
*/
func (manager *TaskManager) CancelTask(
	ctx context.Context, params a2a.TaskIDParams,
) (*a2a.Task, *errors.RpcError) {
	task, err := manager.taskStore.Get(ctx, params.ID, 0)

	if err != nil {
		return nil, err
	}

	if task.Status.State.Terminal() {
		return nil, errors.ErrTaskNotCancelable.WithMessagef(
			"task %s is already %s", task.ID, task.Status.State,
		)
	}

	task.ToStatus(a2a.TaskStateCanceled, nil)

	if err := manager.taskStore.Update(ctx, task); err != nil {
		return nil, err
	}

	manager.mu.Lock()
	current, ok := manager.runs[task.ID]
	manager.mu.Unlock()

	if ok {
		current.cancel()
	}

	metrics.Metrics.TaskOutcomes.WithLabelValues("local", string(a2a.TaskStateCanceled)).Inc()
	log.Info("task canceled", "agent", manager.agent.Name, "task", task.ID)

	return task, nil
}

// Wait blocks until every background run has returned.
func (manager *TaskManager) Wait() {
	manager.wg.Wait()
}

func (manager *TaskManager) Card() *a2a.AgentCard {
	return manager.agent
}

func WithTaskStore(taskStore stores.TaskStore) TaskManagerOption {
	return func(t *TaskManager) {
		t.taskStore = taskStore
	}
}

func WithRunner(runner Runner) TaskManagerOption {
	return func(t *TaskManager) {
		t.runner = runner
	}
}
