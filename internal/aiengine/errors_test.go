package aiengine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNetError satisfies net.Error for classification tests.
type fakeNetError struct {
	msg     string
	timeout bool
}

func (e *fakeNetError) Error() string   { return e.msg }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantKind      ErrorKind
		wantRetryable bool
	}{
		{
			name:          "http 429 is rate_limit and retryable",
			err:           &HTTPError{Status: 429},
			wantKind:      KindRateLimit,
			wantRetryable: true,
		},
		{
			name:          "http 500 is api_error and retryable",
			err:           &HTTPError{Status: 500},
			wantKind:      KindAPIError,
			wantRetryable: true,
		},
		{
			name:          "http 503 is api_error and retryable",
			err:           &HTTPError{Status: 503, Message: "overloaded"},
			wantKind:      KindAPIError,
			wantRetryable: true,
		},
		{
			name:          "http 400 is api_error and not retryable",
			err:           &HTTPError{Status: 400},
			wantKind:      KindAPIError,
			wantRetryable: false,
		},
		{
			name:          "wrapped http error unwraps to its status",
			err:           fmt.Errorf("call failed: %w", &HTTPError{Status: 429}),
			wantKind:      KindRateLimit,
			wantRetryable: true,
		},
		{
			name:          "context deadline is timeout and retryable",
			err:           context.DeadlineExceeded,
			wantKind:      KindTimeout,
			wantRetryable: true,
		},
		{
			name:          "net timeout is timeout and retryable",
			err:           &fakeNetError{msg: "i/o timeout", timeout: true},
			wantKind:      KindTimeout,
			wantRetryable: true,
		},
		{
			name:          "net failure is network and retryable",
			err:           &fakeNetError{msg: "connection refused"},
			wantKind:      KindNetwork,
			wantRetryable: true,
		},
		{
			name:          "unknown failure is api_error and not retryable",
			err:           errors.New("something odd"),
			wantKind:      KindAPIError,
			wantRetryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantRetryable, got.Retryable)
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	original := NewOperationError(KindValidation, "bad input", false, nil)

	got := Classify(original)
	assert.Same(t, original, got)

	// A second pass over an already-classified error changes nothing either.
	assert.Same(t, original, Classify(got))
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestOperationErrorUnwrap(t *testing.T) {
	cause := &HTTPError{Status: 502}
	err := NewOperationError(KindAPIError, "upstream failed", true, cause)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 502, httpErr.Status)
	assert.Contains(t, err.Error(), "api_error")
}
