package resiliency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/util"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	util.ConfigureTestLogger()
}

type attemptLog struct {
	description string
	attempt     int
	err         error
}

type fakeRecorder struct {
	attempts []attemptLog
}

func (f *fakeRecorder) RecordAttempt(description string, attempt int, _ time.Duration, err error) error {
	f.attempts = append(f.attempts, attemptLog{description, attempt, err})
	return nil
}

func newTestRunner() (*Runner, *fakeRecorder) {
	rec := &fakeRecorder{}
	return NewRunner(&log.Logger, rec), rec
}

func fastPolicy(maxAttempts int) Policy {
	return Policy{MaxAttempts: maxAttempts, Delay: time.Millisecond, AttemptTimeout: time.Second}
}

func TestRunnerRetryBound(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		runner, rec := newTestRunner()
		calls := 0
		boom := errors.New("boom")

		outcome := runner.Run(context.Background(), "permanent", func(ctx context.Context) error {
			calls++
			return boom
		}, fastPolicy(n))

		assert.Equal(t, n, calls, "calls with maxAttempts=%d", n)
		assert.Equal(t, n, outcome.Attempts)
		assert.Len(t, rec.attempts, n)
		for i, a := range rec.attempts {
			assert.Equal(t, i+1, a.attempt)
			assert.Equal(t, "permanent", a.description)
		}
		require.Error(t, outcome.Err)
		assert.ErrorIs(t, outcome.Err, boom)
		assert.False(t, outcome.Passed())
	}
}

func TestRunnerSucceedsAfterTransientFailures(t *testing.T) {
	runner, rec := newTestRunner()
	calls := 0

	outcome := runner.Run(context.Background(), "flaky", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return common.NewErrEndpointCapacityExceeded(errors.New("429"))
		}
		return nil
	}, fastPolicy(3))

	assert.True(t, outcome.Passed())
	assert.Equal(t, 3, outcome.Attempts)
	require.Len(t, rec.attempts, 3)
	assert.Error(t, rec.attempts[0].err)
	assert.Error(t, rec.attempts[1].err)
	assert.NoError(t, rec.attempts[2].err)
}

func TestRunnerSurfacesOnlyLastFailure(t *testing.T) {
	runner, _ := newTestRunner()
	calls := 0
	first := errors.New("first")
	last := errors.New("last")

	outcome := runner.Run(context.Background(), "changing", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return first
		}
		return last
	}, fastPolicy(2))

	assert.ErrorIs(t, outcome.Err, last)
	assert.NotErrorIs(t, outcome.Err, first)
}

func TestRunnerDeterministicPolicy(t *testing.T) {
	runner, rec := newTestRunner()
	calls := 0
	mismatch := common.NewErrFieldMismatch("hash", "0x01", "0x02")

	policy := fastPolicy(5)
	policy.Deterministic = true
	outcome := runner.Run(context.Background(), "deterministic", func(ctx context.Context) error {
		calls++
		return mismatch
	}, policy)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Len(t, rec.attempts, 1)
	assert.True(t, common.HasErrorCode(outcome.Err, common.ErrCodeFieldMismatch))
}

func TestRunnerAttemptTimeout(t *testing.T) {
	runner, rec := newTestRunner()

	policy := Policy{MaxAttempts: 2, Delay: time.Millisecond, AttemptTimeout: 20 * time.Millisecond}
	outcome := runner.Run(context.Background(), "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, policy)

	assert.Equal(t, 2, outcome.Attempts)
	require.Len(t, rec.attempts, 2)
	assert.True(t, common.HasErrorCode(rec.attempts[0].err, common.ErrCodeFailsafeTimeoutExceeded))
	assert.True(t, common.HasErrorCode(outcome.Err, common.ErrCodeFailsafeTimeoutExceeded))
}

func TestRunnerStopsOnCancelledContext(t *testing.T) {
	runner, rec := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	outcome := runner.Run(ctx, "cancelled", func(actx context.Context) error {
		calls++
		cancel()
		return errors.New("failed")
	}, fastPolicy(5))

	assert.Equal(t, 1, calls)
	assert.Len(t, rec.attempts, 1)
	assert.Error(t, outcome.Err)
}

func TestRunnerRejectsInvalidPolicy(t *testing.T) {
	runner, rec := newTestRunner()
	outcome := runner.Run(context.Background(), "invalid", func(ctx context.Context) error {
		return nil
	}, Policy{MaxAttempts: 0})

	assert.Equal(t, 0, outcome.Attempts)
	assert.Empty(t, rec.attempts)
	assert.True(t, common.HasErrorCode(outcome.Err, common.ErrCodeFailsafeConfiguration))
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := &common.RetryPolicyConfig{}
	cfg.SetDefaults()
	p := PolicyFromConfig(cfg)
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.Delay)
	assert.Equal(t, 10*time.Second, p.AttemptTimeout)

	single := p.WithSingleAttempt(15 * time.Second)
	assert.Equal(t, 1, single.MaxAttempts)
	assert.True(t, single.Deterministic)
	assert.Equal(t, 15*time.Second, single.AttemptTimeout)
	assert.Equal(t, 3, p.MaxAttempts)
}
