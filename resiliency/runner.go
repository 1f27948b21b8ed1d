package resiliency

import (
	"context"
	"time"

	"github.com/erpc/conformance/common"
	"github.com/failsafe-go/failsafe-go"
	"github.com/rs/zerolog"
)

// AttemptFunc performs one attempt of a case. It must honor ctx, which is
// cancelled when the attempt times out.
type AttemptFunc func(ctx context.Context) error

// AttemptRecorder receives every attempt, including the ones that were retried.
type AttemptRecorder interface {
	RecordAttempt(description string, attempt int, duration time.Duration, err error) error
}

// Outcome is the result of running a case to completion.
type Outcome struct {
	Description string
	Attempts    int
	Elapsed     time.Duration
	// Err is the failure of the last attempt, nil on success.
	Err error
}

func (o *Outcome) Passed() bool {
	return o.Err == nil
}

// Runner executes cases under a retry policy with a fixed delay between
// attempts and a timeout per attempt.
type Runner struct {
	logger   *zerolog.Logger
	recorder AttemptRecorder
}

func NewRunner(logger *zerolog.Logger, recorder AttemptRecorder) *Runner {
	lg := logger.With().Str("component", "runner").Logger()
	return &Runner{
		logger:   &lg,
		recorder: recorder,
	}
}

// Run attempts fn until it succeeds, the policy's attempts are used up, a
// failure is final under a deterministic policy, or ctx is done.
func (r *Runner) Run(ctx context.Context, description string, fn AttemptFunc, policy Policy) *Outcome {
	started := time.Now()
	outcome := &Outcome{Description: description}

	policies, err := createFailsafePolicies(r.logger, ctx, description, policy)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	attempts := 0
	executor := failsafe.NewExecutor[any](policies...).WithContext(ctx)
	_, execErr := executor.GetWithExecution(func(exec failsafe.Execution[any]) (any, error) {
		attempts++
		attemptCtx := exec.Context()
		attemptStarted := time.Now()

		err := fn(attemptCtx)
		if attemptCtx.Err() != nil && ctx.Err() == nil {
			err = common.NewErrFailsafeTimeoutExceeded(err, policy.AttemptTimeout.String())
		}
		r.record(description, attempts, time.Since(attemptStarted), err)
		return nil, err
	})

	outcome.Attempts = attempts
	outcome.Elapsed = time.Since(started)
	outcome.Err = TranslateFailsafeError(execErr, attempts, policy.AttemptTimeout)
	if outcome.Err == nil && attempts == 0 && ctx.Err() != nil {
		outcome.Err = ctx.Err()
	}

	return outcome
}

func (r *Runner) record(description string, attempt int, duration time.Duration, err error) {
	if r.recorder == nil {
		return
	}
	if rerr := r.recorder.RecordAttempt(description, attempt, duration, err); rerr != nil {
		r.logger.Warn().Err(rerr).Str("case", description).Msg("failed to record attempt")
	}
}
