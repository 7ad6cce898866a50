package aiengine

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default policy applied by NewEngine when a Config field is left at an
// invalid zero value.
const (
	DefaultMaxRetries        = 3
	DefaultTimeout           = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Config is the per-engine execution policy. It is set at construction and
// immutable for the engine's lifetime. SessionID and OrganizationID are used
// only for log correlation, never for control flow.
type Config struct {
	// MaxRetries is the number of attempts beyond the first. Zero means
	// exactly one attempt.
	MaxRetries int

	// Timeout bounds a single attempt, not the whole call. A call may take
	// up to (MaxRetries+1) × Timeout plus cumulative backoff; callers that
	// set their own upstream timeouts must account for that.
	Timeout time.Duration

	// BackoffMultiplier grows the inter-attempt delay as multiplier^attempt
	// seconds. Must be >= 1.
	BackoffMultiplier float64

	// BackoffJitter scales each delay by a random factor in [0.5, 1.0).
	// Off by default: jitter changes observable timing, so it is opt-in.
	BackoffJitter bool

	EnableLogging  bool
	LogPrefix      string
	SessionID      string
	OrganizationID string
}

// DefaultConfig returns the documented default policy: 3 retries, 30s
// per-attempt timeout, multiplier 2, logging enabled.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        DefaultMaxRetries,
		Timeout:           DefaultTimeout,
		BackoffMultiplier: DefaultBackoffMultiplier,
		EnableLogging:     true,
	}
}

// Engine drives retry/timeout orchestration for one concrete generation
// service. Engines hold no mutable state between calls, so a single engine
// is safe for concurrent use by many request handlers.
type Engine struct {
	cfg      Config
	logger   *slog.Logger
	validate *validator.Validate

	// backoffUnit scales the exponential delay. Production engines always
	// use one second; tests shrink it to observe backoff growth without
	// multi-second sleeps.
	backoffUnit time.Duration
}

// NewEngine builds an engine from cfg, replacing invalid fields with the
// documented defaults. A negative MaxRetries falls back to the default;
// zero is a legal value meaning one attempt.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:         cfg,
		logger:      logger,
		validate:    validator.New(),
		backoffUnit: time.Second,
	}
}

// Config returns the engine's execution policy.
func (e *Engine) Config() Config {
	return e.cfg
}

// ValidateInput checks a request payload against its validate tags before
// any network activity. A failure is a local error: it is reported as a
// non-retryable validation failure and consumes no retry budget.
func (e *Engine) ValidateInput(v any) error {
	if err := e.validate.Struct(v); err != nil {
		return NewOperationError(KindValidation, "input payload failed validation", false, err)
	}
	return nil
}

// Operation is one unit of remote work executed under a per-attempt
// deadline. The context passed to it carries cancellation from both the
// caller and the attempt deadline, so a cooperating transport can abort
// in-flight work instead of running on after the engine gives up.
type Operation[T any] func(ctx context.Context) (T, error)

// Metadata describes how an execution concluded. It is created fresh per
// call and never mutated after return.
type Metadata struct {
	// ExecutionTime covers the whole call including backoff waits.
	ExecutionTime time.Duration

	// Retries counts attempts beyond the first.
	Retries int

	// Model and TokensUsed are provider-reported and only present when the
	// operation result carries usage information.
	Model      string
	TokensUsed int32

	Cached bool
}

// usageReporter lets operation results contribute provider-reported usage
// to the returned metadata.
type usageReporter interface {
	usage() (model string, tokens int32)
}

// ExecuteWithRetry runs op up to MaxRetries+1 times, racing each attempt
// against a fresh deadline and sleeping multiplier^attempt seconds between
// retryable failures. Success is terminal. The error returned on exhaustion
// is always the most recent attempt's classified error, with the final
// retry count in the metadata. Passing retryable=false disables retries for
// this call regardless of how the failure classifies.
func ExecuteWithRetry[T any](ctx context.Context, e *Engine, name string, retryable bool, op Operation[T]) (T, Metadata, error) {
	var zero T
	start := time.Now()
	var lastErr *OperationError
	attempts := 0

	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		attempts = attempt
		e.log(ctx, slog.LevelInfo, "attempt started",
			"operation", name,
			"attempt", attempt+1,
			"max_attempts", e.cfg.MaxRetries+1)

		value, err := runAttempt(ctx, e, op)
		if err == nil {
			meta := Metadata{
				ExecutionTime: time.Since(start),
				Retries:       attempt,
			}
			if u, ok := any(value).(usageReporter); ok {
				meta.Model, meta.TokensUsed = u.usage()
			}
			e.log(ctx, slog.LevelInfo, "attempt succeeded",
				"operation", name,
				"attempt", attempt+1,
				"execution_ms", meta.ExecutionTime.Milliseconds())
			return value, meta, nil
		}

		lastErr = Classify(err)
		e.log(ctx, slog.LevelError, "attempt failed",
			"operation", name,
			"attempt", attempt+1,
			"error_kind", string(lastErr.Kind),
			"retryable", lastErr.Retryable,
			"error", lastErr.Error())

		if !retryable || !lastErr.Retryable || attempt == e.cfg.MaxRetries || ctx.Err() != nil {
			break
		}

		delay := e.backoffDelay(attempt)
		e.log(ctx, slog.LevelInfo, "waiting before retry",
			"operation", name,
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, Metadata{ExecutionTime: time.Since(start), Retries: attempts}, lastErr
		}
	}

	return zero, Metadata{ExecutionTime: time.Since(start), Retries: attempts}, lastErr
}

// attemptResult carries one attempt's outcome across the deadline race.
type attemptResult[T any] struct {
	value T
	err   error
}

// runAttempt races a single execution of op against a fresh deadline. The
// deadline is cancelled on every exit path. The buffered channel lets a
// late-finishing operation complete its send and release its goroutine even
// after the race has been decided; the cancelled context tells a
// cooperating transport to stop early.
func runAttempt[T any](ctx context.Context, e *Engine, op Operation[T]) (T, error) {
	attemptCtx, cancelCtx := context.WithCancel(ctx)
	defer cancelCtx()

	deadline := NewDeadline(e.cfg.Timeout)
	defer deadline.Cancel()

	done := make(chan attemptResult[T], 1)
	go func() {
		v, err := op(attemptCtx)
		done <- attemptResult[T]{value: v, err: err}
	}()

	var zero T
	select {
	case res := <-done:
		return res.value, res.err
	case <-deadline.Expired():
		return zero, NewOperationError(KindTimeout, "attempt deadline exceeded", true, context.DeadlineExceeded)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (e *Engine) backoffDelay(attempt int) time.Duration {
	d := time.Duration(math.Pow(e.cfg.BackoffMultiplier, float64(attempt)) * float64(e.backoffUnit))
	if e.cfg.BackoffJitter {
		d = time.Duration(float64(d) * (0.5 + rand.Float64()*0.5))
	}
	return d
}

func (e *Engine) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !e.cfg.EnableLogging {
		return
	}
	base := make([]any, 0, len(args)+6)
	if e.cfg.LogPrefix != "" {
		base = append(base, "prefix", e.cfg.LogPrefix)
	}
	if e.cfg.SessionID != "" {
		base = append(base, "session_id", e.cfg.SessionID)
	}
	if e.cfg.OrganizationID != "" {
		base = append(base, "organization_id", e.cfg.OrganizationID)
	}
	base = append(base, args...)
	e.logger.Log(ctx, level, msg, base...)
}
