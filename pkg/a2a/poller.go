package a2a

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cohesivestack/valgo"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
	"github.com/theapemachine/a2a-helpdesk/pkg/metrics"
)

// TaskGetter is the part of the client the poller needs.
type TaskGetter interface {
	GetTask(ctx context.Context, id string) (*Task, error)
}

/*
PollerConfig controls how a remote task is waited on. MaxAttempts and
Timeout are both optional; zero disables the bound.
*/
type PollerConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxAttempts int           `mapstructure:"maxAttempts"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:    2 * time.Second,
		MaxAttempts: 150,
		Timeout:     5 * time.Minute,
	}
}

func (config PollerConfig) Validate() error {
	v := valgo.Is(
		valgo.Int64(int64(config.Interval), "interval").GreaterThan(0),
	).Is(
		valgo.Int(config.MaxAttempts, "maxAttempts").GreaterOrEqualTo(0),
	).Is(
		valgo.Int64(int64(config.Timeout), "timeout").GreaterOrEqualTo(0),
	)

	if !v.Valid() {
		return v.Error()
	}

	return nil
}

/*
Poller waits for a remote task to reach a terminal state by asking for a
fresh snapshot once per interval.
*/
type Poller struct {
	getter TaskGetter
	config PollerConfig
}

func NewPoller(getter TaskGetter, config PollerConfig) *Poller {
	return &Poller{
		getter: getter,
		config: config,
	}
}

/*
Wait starts from the snapshot returned at submission and returns the
first snapshot whose state is terminal. A snapshot that is already
terminal is returned without any request. Exceeding MaxAttempts or
Timeout yields *errors.PollTimeoutError; cancelling ctx returns ctx.Err().
Timeout also bounds a tasks/get call that is still in flight.
*/
func (poller *Poller) Wait(ctx context.Context, task *Task) (*Task, error) {
	var (
		current  = task
		attempts int
		started  = time.Now()
		pollCtx  = ctx
	)

	if poller.config.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, poller.config.Timeout)
		defer cancel()
	}

	for !current.Status.State.Terminal() {
		if poller.config.MaxAttempts > 0 && attempts >= poller.config.MaxAttempts {
			return nil, poller.timeoutError(current, attempts, started)
		}

		log.Info(
			"waiting on remote task",
			"task", current.ID,
			"state", current.Status.State,
			"interval", poller.config.Interval,
		)

		timer := time.NewTimer(poller.config.Interval)

		select {
		case <-pollCtx.Done():
			timer.Stop()
			return nil, poller.stopped(ctx, current, attempts, started)
		case <-timer.C:
		}

		next, err := poller.getter.GetTask(pollCtx, current.ID)
		attempts++

		if err != nil {
			if pollCtx.Err() != nil {
				return nil, poller.stopped(ctx, current, attempts, started)
			}

			return nil, fmt.Errorf("polling task %s: %w", current.ID, err)
		}

		metrics.Metrics.PollAttempts.WithLabelValues(string(next.Status.State)).Inc()
		current = next
	}

	metrics.Metrics.TaskOutcomes.WithLabelValues("remote", string(current.Status.State)).Inc()

	return current, nil
}

// stopped tells a caller cancellation apart from our own deadline.
func (poller *Poller) stopped(ctx context.Context, task *Task, attempts int, started time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return poller.timeoutError(task, attempts, started)
}

func (poller *Poller) timeoutError(task *Task, attempts int, started time.Time) error {
	return &errors.PollTimeoutError{
		TaskID:    task.ID,
		Attempts:  attempts,
		Elapsed:   time.Since(started),
		LastState: string(task.Status.State),
	}
}
