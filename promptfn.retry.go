package promptfn

import (
	"context"
	"fmt"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"go.uber.org/zap"
)

// RetryMessageFunc builds the corrective message appended to the
// conversation before a retry attempt. It must be deterministic for a given
// validation error.
type RetryMessageFunc func(validationErr error) Message

// defaultRetryMessage reflects the validation failure back to the model as
// a user message.
func defaultRetryMessage(validationErr error) Message {
	return Message{
		Role:    RoleUser,
		Content: fmt.Sprintf("%s%s", RetryMessagePrefix, validationErr.Error()),
	}
}

// retryBackend decorates a backend with bounded retry of recoverable
// output-validation failures. Transport and other fatal errors pass through
// on the first occurrence.
type retryBackend struct {
	inner        Backend
	maxRetries   int
	retryMessage RetryMessageFunc
	logger       *zap.Logger
}

// WithRetry wraps a backend so output-validation failures are retried up to
// maxRetries additional times. With maxRetries 0 the backend is returned
// unchanged.
func WithRetry(backend Backend, maxRetries int) Backend {
	return newRetryBackend(backend, maxRetries, nil, nil)
}

func newRetryBackend(backend Backend, maxRetries int, retryMessage RetryMessageFunc, logger *zap.Logger) Backend {
	if maxRetries <= 0 {
		return backend
	}
	if retryMessage == nil {
		retryMessage = defaultRetryMessage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryBackend{
		inner:        backend,
		maxRetries:   maxRetries,
		retryMessage: retryMessage,
		logger:       logger,
	}
}

// Complete issues the call, reissuing it with corrective context appended
// whenever the reply fails output validation, up to the configured bound.
// The final failure propagates to the caller unchanged.
func (b *retryBackend) Complete(ctx context.Context, messages []Message, functions []*FunctionDef, outputTypes []TypeDescriptor, stop []string) (*Reply, error) {
	policy := retrypolicy.NewBuilder[*Reply]().
		HandleIf(func(_ *Reply, err error) bool {
			return err != nil && IsRecoverable(err)
		}).
		WithMaxRetries(b.maxRetries).
		ReturnLastFailure().
		Build()

	reply, err := failsafe.With[*Reply](policy).
		WithContext(ctx).
		GetWithExecution(func(exec failsafe.Execution[*Reply]) (*Reply, error) {
			attempt := messages
			if exec.IsRetry() {
				if lastErr := exec.LastError(); lastErr != nil {
					b.logger.Warn(LogMsgRetryAttempt,
						zap.Int(LogFieldAttempt, exec.Attempts()),
						zap.Error(lastErr))
					attempt = make([]Message, 0, len(messages)+1)
					attempt = append(attempt, messages...)
					attempt = append(attempt, b.retryMessage(lastErr))
				}
			}
			return b.inner.Complete(ctx, attempt, functions, outputTypes, stop)
		})
	if err != nil && IsRecoverable(err) {
		b.logger.Warn(LogMsgRetryExceeded,
			zap.Int(LogFieldRetries, b.maxRetries),
			zap.Error(err))
	}
	return reply, err
}
