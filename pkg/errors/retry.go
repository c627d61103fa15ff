package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/cohesivestack/valgo"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxAttempts   int           `mapstructure:"maxAttempts"`
	InitialDelay  time.Duration `mapstructure:"initialDelay"`
	MaxDelay      time.Duration `mapstructure:"maxDelay"`
	BackoffFactor float64       `mapstructure:"backoffFactor"`
}

// DefaultRetryConfig returns a sensible default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Validate checks the configuration is usable.
func (config *RetryConfig) Validate() error {
	v := valgo.Is(
		valgo.Int(config.MaxAttempts, "maxAttempts").GreaterOrEqualTo(1),
	).Is(
		valgo.Int64(int64(config.InitialDelay), "initialDelay").GreaterOrEqualTo(0),
	).Is(
		valgo.Int64(int64(config.MaxDelay), "maxDelay").GreaterOrEqualTo(int64(config.InitialDelay)),
	).Is(
		valgo.Float64(config.BackoffFactor, "backoffFactor").GreaterOrEqualTo(1),
	)

	if !v.Valid() {
		return v.Error()
	}

	return nil
}

/*
Retryable reports whether an error is worth another attempt. Only
transport failures qualify: a JSON-RPC error or a malformed payload will
not fix itself on a second try.
*/
func Retryable(err error) bool {
	var connErr *ConnectionError
	return stderrors.As(err, &connErr)
}

/*
RetryWithBackoff executes fn with exponential backoff. It stops early on
a non-retryable error and returns ctx.Err() if the context ends while it
is waiting between attempts.
*/
func RetryWithBackoff(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var err error
	delay := config.InitialDelay
	attempts := max(config.MaxAttempts, 1)

	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if !Retryable(err) {
			return err
		}

		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * config.BackoffFactor)

		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	if attempts == 1 {
		return err
	}

	return fmt.Errorf("after %d attempts, last error: %w", attempts, err)
}
