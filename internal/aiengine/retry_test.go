package aiengine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// newTestEngine returns an engine with millisecond backoff so retry timing
// is observable without multi-second sleeps.
func newTestEngine(cfg Config) *Engine {
	e := NewEngine(cfg, nil)
	e.backoffUnit = time.Millisecond
	return e
}

func TestExecuteWithRetrySucceedsFirstAttempt(t *testing.T) {
	e := newTestEngine(Config{MaxRetries: 3, Timeout: time.Second, BackoffMultiplier: 2})

	var calls atomic.Int32
	got, meta, err := ExecuteWithRetry(context.Background(), e, "test.op", true, func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, meta.Retries)
}

// Scenario: two 429 failures then success must succeed with retries == 2.
func TestExecuteWithRetryRecoversFromRateLimit(t *testing.T) {
	e := newTestEngine(Config{MaxRetries: 3, Timeout: time.Second, BackoffMultiplier: 2})

	var calls atomic.Int32
	got, meta, err := ExecuteWithRetry(context.Background(), e, "test.op", true, func(ctx context.Context) (string, error) {
		if calls.Add(1) <= 2 {
			return "", &HTTPError{Status: 429}
		}
		return "recovered", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 2, meta.Retries)
}

// A permanently failing retryable operation is invoked exactly N+1 times.
func TestExecuteWithRetryRespectsBudget(t *testing.T) {
	e := newTestEngine(Config{MaxRetries: 2, Timeout: time.Second, BackoffMultiplier: 2})

	var calls atomic.Int32
	_, meta, err := ExecuteWithRetry(context.Background(), e, "test.op", true, func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", &HTTPError{Status: 500}
	})

	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 2, meta.Retries)

	opErr := Classify(err)
	assert.Equal(t, KindAPIError, opErr.Kind)
	assert.True(t, opErr.Retryable)
}

// A non-retryable failure stops after one invocation with no backoff wait.
func TestExecuteWithRetryStopsOnNonRetryable(t *testing.T) {
	e := newTestEngine(Config{MaxRetries: 5, Timeout: time.Second, BackoffMultiplier: 2})

	var calls atomic.Int32
	start := time.Now()
	_, _, err := ExecuteWithRetry(context.Background(), e, "test.op", true, func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", NewOperationError(KindValidation, "bad request", false, nil)
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	opErr := Classify(err)
	assert.Equal(t, KindValidation, opErr.Kind)
}

// Passing retryable=false disables retries even for retryable failures.
func TestExecuteWithRetryCallerDisablesRetry(t *testing.T) {
	e := newTestEngine(Config{MaxRetries: 5, Timeout: time.Second, BackoffMultiplier: 2})

	var calls atomic.Int32
	_, _, err := ExecuteWithRetry(context.Background(), e, "test.op", false, func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", &HTTPError{Status: 500}
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

// MaxRetries=0 means exactly one attempt.
func TestExecuteWithRetryZeroRetries(t *testing.T) {
	e := newTestEngine(Config{MaxRetries: 0, Timeout: time.Second, BackoffMultiplier: 2})
	// NewEngine must not promote an explicit zero to the default.
	require.Equal(t, 0, e.Config().MaxRetries)

	var calls atomic.Int32
	_, _, err := ExecuteWithRetry(context.Background(), e, "test.op", true, func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", &HTTPError{Status: 500}
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

// Scenario: an operation that always outruns its 50ms deadline with
// MaxRetries=1 is invoked exactly twice and fails with kind timeout.
func TestExecuteWithRetryTimesOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newTestEngine(Config{MaxRetries: 1, Timeout: 50 * time.Millisecond, BackoffMultiplier: 2})

	var calls atomic.Int32
	_, meta, err := ExecuteWithRetry(context.Background(), e, "test.op", true, func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-ctx.Done()
		return "", ctx.Err()
	})

	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, meta.Retries)

	opErr := Classify(err)
	assert.Equal(t, KindTimeout, opErr.Kind)
}

// Recorded inter-attempt delays for multiplier 2 follow 1, 2, 4 units.
func TestExecuteWithRetryBackoffGrowth(t *testing.T) {
	unit := 20 * time.Millisecond
	e := NewEngine(Config{MaxRetries: 3, Timeout: time.Second, BackoffMultiplier: 2}, nil)
	e.backoffUnit = unit

	var stamps []time.Time
	_, _, err := ExecuteWithRetry(context.Background(), e, "test.op", true, func(ctx context.Context) (string, error) {
		stamps = append(stamps, time.Now())
		return "", &HTTPError{Status: 500}
	})

	require.Error(t, err)
	require.Len(t, stamps, 4)

	for i, want := range []time.Duration{unit, 2 * unit, 4 * unit} {
		gap := stamps[i+1].Sub(stamps[i])
		assert.GreaterOrEqual(t, gap, want, "gap %d too short", i)
		assert.Less(t, gap, want+15*unit, "gap %d too long", i)
	}
}

func TestExecuteWithRetryHonorsCancellationDuringBackoff(t *testing.T) {
	e := NewEngine(Config{MaxRetries: 5, Timeout: time.Second, BackoffMultiplier: 2}, nil)
	// Real one-second units here so cancellation, not backoff, ends the call.

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, _, err := ExecuteWithRetry(ctx, e, "test.op", true, func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", &HTTPError{Status: 500}
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestExecuteWithRetryMetadataCarriesUsage(t *testing.T) {
	e := newTestEngine(Config{MaxRetries: 1, Timeout: time.Second, BackoffMultiplier: 2})

	res, meta, err := ExecuteWithRetry(context.Background(), e, "test.op", true, func(ctx context.Context) (*structuredResult[string], error) {
		return &structuredResult[string]{
			value: "v",
			raw:   &RawResult{Model: "gemini-2.0-flash", TokensUsed: 321},
		}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "v", res.value)
	assert.Equal(t, "gemini-2.0-flash", meta.Model)
	assert.Equal(t, int32(321), meta.TokensUsed)
}

func TestNewEngineAppliesDefaults(t *testing.T) {
	e := NewEngine(Config{MaxRetries: -1}, nil)

	cfg := e.Config()
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultBackoffMultiplier, cfg.BackoffMultiplier)
}
