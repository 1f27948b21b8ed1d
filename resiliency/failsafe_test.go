package resiliency

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/erpc/conformance/common"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/failsafe-go/failsafe-go/timeout"
	"github.com/stretchr/testify/assert"
)

func TestTranslateFailsafeError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, TranslateFailsafeError(nil, 0, time.Second))
	})

	t.Run("RetriesExceededKeepsLastError", func(t *testing.T) {
		last := common.NewErrFieldMismatch("code", "0x", "0xdead")
		err := TranslateFailsafeError(retrypolicy.ExceededError{LastError: last}, 3, time.Second)
		assert.True(t, common.HasErrorCode(err, common.ErrCodeFailsafeRetryExceeded))
		assert.ErrorIs(t, err, last)
	})

	t.Run("WrappedRetriesExceeded", func(t *testing.T) {
		last := errors.New("connection reset")
		err := TranslateFailsafeError(fmt.Errorf("run: %w", retrypolicy.ExceededError{LastError: last}), 2, time.Second)
		assert.True(t, common.HasErrorCode(err, common.ErrCodeFailsafeRetryExceeded))
		assert.ErrorIs(t, err, last)
	})

	t.Run("LastAttemptTimedOut", func(t *testing.T) {
		err := TranslateFailsafeError(retrypolicy.ExceededError{LastError: timeout.ErrExceeded}, 2, 250*time.Millisecond)
		assert.True(t, common.HasErrorCode(err, common.ErrCodeFailsafeRetryExceeded))
		assert.True(t, common.HasErrorCode(err, common.ErrCodeFailsafeTimeoutExceeded))
	})

	t.Run("OtherErrorsPassThrough", func(t *testing.T) {
		cause := errors.New("boom")
		assert.Same(t, cause, TranslateFailsafeError(cause, 1, time.Second))
	})
}
