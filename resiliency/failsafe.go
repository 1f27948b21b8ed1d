package resiliency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erpc/conformance/common"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/failsafe-go/failsafe-go/timeout"
	"github.com/rs/zerolog"
)

// Policy bounds how a single case is attempted.
type Policy struct {
	MaxAttempts    int
	Delay          time.Duration
	AttemptTimeout time.Duration
	// Deterministic marks cases whose failures are final on the first attempt.
	Deterministic bool
}

func PolicyFromConfig(cfg *common.RetryPolicyConfig) Policy {
	if cfg == nil {
		return Policy{MaxAttempts: common.DefaultMaxAttempts, Delay: common.DefaultRetryDelay, AttemptTimeout: common.DefaultAttemptTimeout}
	}
	return Policy{
		MaxAttempts:    cfg.MaxAttempts,
		Delay:          cfg.Delay.Duration(),
		AttemptTimeout: cfg.AttemptTimeout.Duration(),
		Deterministic:  cfg.Deterministic,
	}
}

// WithSingleAttempt returns a copy that allows one attempt with the given
// timeout, as used for cases whose result is not expected to be stable.
func (p Policy) WithSingleAttempt(attemptTimeout time.Duration) Policy {
	p.MaxAttempts = 1
	p.Deterministic = true
	p.AttemptTimeout = attemptTimeout
	return p
}

func (p Policy) validate(component string) error {
	if p.MaxAttempts < 1 {
		return common.NewErrFailsafeConfiguration(fmt.Errorf("maxAttempts must be at least 1, got %d", p.MaxAttempts), map[string]interface{}{
			"component": component,
		})
	}
	if p.Delay < 0 || p.AttemptTimeout < 0 {
		return common.NewErrFailsafeConfiguration(errors.New("durations must not be negative"), map[string]interface{}{
			"component": component,
			"delay":     p.Delay.String(),
			"timeout":   p.AttemptTimeout.String(),
		})
	}
	return nil
}

// createFailsafePolicies builds the policy chain. Order matters: the timeout
// sits inside the retry so it bounds each attempt rather than the whole case.
func createFailsafePolicies(logger *zerolog.Logger, parent context.Context, description string, p Policy) ([]failsafe.Policy[any], error) {
	if err := p.validate(description); err != nil {
		return nil, err
	}

	policies := []failsafe.Policy[any]{createRetryPolicy(logger, parent, description, p)}
	if p.AttemptTimeout > 0 {
		policies = append(policies, timeout.Builder[any](p.AttemptTimeout).Build())
	}
	return policies, nil
}

func createRetryPolicy(logger *zerolog.Logger, parent context.Context, description string, p Policy) failsafe.Policy[any] {
	builder := retrypolicy.Builder[any]().WithMaxAttempts(p.MaxAttempts)
	if p.Delay > 0 {
		builder = builder.WithDelay(p.Delay)
	}

	builder.HandleIf(func(_ any, err error) bool {
		if err == nil || p.Deterministic {
			return false
		}
		// A cancelled run gets no further attempts.
		return parent.Err() == nil
	})

	builder.OnRetry(func(event failsafe.ExecutionEvent[any]) {
		logger.Debug().
			Str("case", description).
			Int("attempt", event.Attempts()).
			Err(event.LastError()).
			Msg("retrying case after failed attempt")
	})

	return builder.Build()
}

// TranslateFailsafeError maps failsafe's own errors onto the common taxonomy,
// keeping the last attempt's error as the cause.
func TranslateFailsafeError(execErr error, attempts int, attemptTimeout time.Duration) error {
	if execErr == nil {
		return nil
	}

	var retryExceededErr retrypolicy.ExceededError
	if errors.As(execErr, &retryExceededErr) {
		var cause error
		if ler := retryExceededErr.LastError; ler != nil {
			cause = TranslateFailsafeError(ler, attempts, attemptTimeout)
		}
		return common.NewErrFailsafeRetryExceeded(cause, attempts)
	}

	if errors.Is(execErr, timeout.ErrExceeded) {
		return common.NewErrFailsafeTimeoutExceeded(execErr, attemptTimeout.String())
	}

	return execErr
}
