package retry

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	mathrand "math/rand"
	"net/http"
	"time"

	"github.com/stevehiehn/schemapush/internal/logging"
)

// Executor matches the remote executor contract used by the batch runner.
type Executor interface {
	Execute(ctx context.Context, statement string) (int, string, error)
}

// Config holds the retry policy for a single statement.
type Config struct {
	MaxAttempts   int           // total attempts, 1 disables retrying
	InitialDelay  time.Duration // delay before the second attempt
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterFactor  float64 // fraction of the delay added as random jitter
	// ShouldRetry decides whether a result is retried. Nil retries
	// transport errors, 429 and 5xx.
	ShouldRetry func(status int, err error) bool
}

// DefaultConfig performs a single attempt.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   1,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.2,
	}
}

// Validate checks the configuration for reasonable values.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return errors.New("MaxAttempts must be >= 1")
	}
	if c.MaxAttempts == 1 {
		return nil
	}
	if c.InitialDelay <= 0 {
		return errors.New("InitialDelay must be positive")
	}
	if c.MaxDelay < c.InitialDelay {
		return errors.New("MaxDelay must be >= InitialDelay")
	}
	if c.BackoffFactor < 1.0 {
		return errors.New("BackoffFactor must be >= 1.0")
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1.0 {
		return errors.New("JitterFactor must be between 0.0 and 1.0")
	}
	return nil
}

// Retryable is the default retry predicate.
func Retryable(status int, err error) bool {
	if err != nil {
		return true
	}
	return status == http.StatusTooManyRequests || status >= 500
}

// retryingExecutor reports the last attempt's status, body and error as if
// they came from a single call.
type retryingExecutor struct {
	next   Executor
	cfg    Config
	logger logging.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// Wrap returns an executor applying cfg around next. With MaxAttempts of 1
// next is returned unchanged.
func Wrap(next Executor, cfg Config, logger logging.Logger) (Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	if cfg.MaxAttempts == 1 {
		return next, nil
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = Retryable
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &retryingExecutor{next: next, cfg: cfg, logger: logger, sleep: sleepCtx}, nil
}

func (r *retryingExecutor) Execute(ctx context.Context, statement string) (int, string, error) {
	delay := r.cfg.InitialDelay
	var (
		status int
		body   string
		err    error
	)
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		status, body, err = r.next.Execute(ctx, statement)
		if !r.cfg.ShouldRetry(status, err) || attempt == r.cfg.MaxAttempts {
			return status, body, err
		}

		wait := DelayWithJitter(delay, r.cfg.JitterFactor)
		r.logger.Warnf("Attempt %d/%d failed (status %d, err %v). Retrying in %v...",
			attempt, r.cfg.MaxAttempts, status, err, wait)
		if sleepErr := r.sleep(ctx, wait); sleepErr != nil {
			if err == nil {
				return status, body, nil
			}
			return status, body, fmt.Errorf("%w (retry aborted: %v)", err, sleepErr)
		}
		delay = NextDelay(delay, r.cfg.BackoffFactor, r.cfg.MaxDelay)
	}
	return status, body, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// secureFloat64 returns a random float64 in [0.0,1.0).
func secureFloat64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return mathrand.Float64()
	}
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// DelayWithJitter adds up to jitterFactor*base of random delay.
func DelayWithJitter(base time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return base
	}
	return base + time.Duration(jitterFactor*float64(base)*secureFloat64())
}

// NextDelay grows current by factor, capped at maxDelay.
func NextDelay(current time.Duration, factor float64, maxDelay time.Duration) time.Duration {
	next := time.Duration(float64(current) * factor)
	if next > maxDelay {
		next = maxDelay
	}
	return next
}
