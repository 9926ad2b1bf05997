package promptfn

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// promptCore holds the shared state and call path of both prompt function
// variants. Stateless after construction: every field is read-only, so
// concurrent calls share nothing mutable.
type promptCore struct {
	name         string
	doc          string
	signature    *Signature
	messages     []MessageTemplate
	functions    []*FunctionDef
	stop         []string
	maxRetries   int
	model        Backend
	registry     *Registry
	outputTypes  []TypeDescriptor
	retryMessage RetryMessageFunc
	logger       *zap.Logger
}

// format binds the call arguments and renders the message templates.
// Fails with a binding or template error before any backend contact.
func (c *promptCore) format(args []any) ([]Message, error) {
	bound, err := c.signature.Bind(args...)
	if err != nil {
		return nil, err
	}
	return renderMessages(c.messages, bound)
}

// effectiveBackend resolves the backend for one call: the explicit model if
// configured, else the registry default. Resolved fresh on every call so
// registry changes are observed. Retry wrapping applies on top when
// maxRetries > 0.
func (c *promptCore) effectiveBackend() (Backend, error) {
	backend := c.model
	if backend == nil {
		var err error
		backend, err = c.registry.Backend()
		if err != nil {
			return nil, err
		}
	}
	return newRetryBackend(backend, c.maxRetries, c.retryMessage, c.logger), nil
}

// invoke runs the full call path: bind, render, resolve backend, complete.
func (c *promptCore) invoke(ctx context.Context, args []any) (*Reply, error) {
	messages, err := c.format(args)
	if err != nil {
		return nil, err
	}
	backend, err := c.effectiveBackend()
	if err != nil {
		return nil, err
	}

	callID := uuid.NewString()
	c.logger.Debug(LogMsgCallStart,
		zap.String(LogFieldFunction, c.name),
		zap.String(LogFieldCallID, callID),
		zap.Int(LogFieldMessages, len(messages)))

	reply, err := backend.Complete(ctx, messages, c.functions, c.outputTypes, c.stop)
	if err != nil {
		c.logger.Debug(LogMsgCallFailed,
			zap.String(LogFieldFunction, c.name),
			zap.String(LogFieldCallID, callID),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug(LogMsgCallComplete,
		zap.String(LogFieldFunction, c.name),
		zap.String(LogFieldCallID, callID))
	return reply, nil
}

// coerceContent narrows a reply's content to the declared return type. The
// backend contract says content arrives coerced already; a mismatch here is
// surfaced as an output-validation failure.
func coerceContent[R any](content any) (R, error) {
	if v, ok := content.(R); ok {
		return v, nil
	}
	var zero R
	return zero, NewOutputValidationError(ErrMsgOutputNotCoercible, nil)
}

// PromptFunc is the blocking prompt function variant. It is immutable and
// safe for concurrent calls.
type PromptFunc[R any] struct {
	core *promptCore
}

// Call binds the arguments, renders the conversation, and queries the
// backend, returning the reply content as the declared return type.
// Keyword arguments are passed as a trailing Kwargs value.
func (f *PromptFunc[R]) Call(ctx context.Context, args ...any) (R, error) {
	reply, err := f.core.invoke(ctx, args)
	if err != nil {
		var zero R
		return zero, err
	}
	return coerceContent[R](reply.Content)
}

// Format renders the message templates with the given arguments without
// contacting any backend. Rendering is pure and idempotent.
func (f *PromptFunc[R]) Format(args ...any) ([]Message, error) {
	return f.core.format(args)
}

// Name returns the declared function name.
func (f *PromptFunc[R]) Name() string { return f.core.name }

// Doc returns the declared documentation string.
func (f *PromptFunc[R]) Doc() string { return f.core.doc }

// Params returns the declared parameter list.
func (f *PromptFunc[R]) Params() []Param { return f.core.signature.Params() }

// Messages returns the stored message templates.
func (f *PromptFunc[R]) Messages() []MessageTemplate {
	return cloneTemplates(f.core.messages)
}

// Functions returns the declared side-callables.
func (f *PromptFunc[R]) Functions() []*FunctionDef {
	return cloneFunctions(f.core.functions)
}

// Stop returns the configured stop sequences.
func (f *PromptFunc[R]) Stop() []string { return cloneStrings(f.core.stop) }

// MaxRetries returns the configured retry bound.
func (f *PromptFunc[R]) MaxRetries() int { return f.core.maxRetries }

// OutputTypes returns the output variant set resolved from the declared
// return type at definition time.
func (f *PromptFunc[R]) OutputTypes() []TypeDescriptor {
	return cloneDescriptors(f.core.outputTypes)
}

// Definition returns the portable declarative form of the function.
func (f *PromptFunc[R]) Definition() (*Definition, error) {
	return f.core.definition()
}

// AsyncPromptFunc is the suspending prompt function variant. Start launches
// the call and returns a Future; the only suspension point is the
// outstanding backend call. Semantics are identical to PromptFunc.
type AsyncPromptFunc[R any] struct {
	core *promptCore
}

// Future is the pending result of an asynchronous call.
type Future[R any] struct {
	done  chan struct{}
	value R
	err   error
}

// Done returns a channel closed when the result is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the call finishes and returns its result.
func (f *Future[R]) Await() (R, error) {
	<-f.done
	return f.value, f.err
}

// Start begins an asynchronous call. Cancellation of ctx propagates to the
// in-flight backend request; this layer performs no cleanup of its own.
func (a *AsyncPromptFunc[R]) Start(ctx context.Context, args ...any) *Future[R] {
	fut := &Future[R]{done: make(chan struct{})}
	go func() {
		defer close(fut.done)
		reply, err := a.core.invoke(ctx, args)
		if err != nil {
			fut.err = err
			return
		}
		fut.value, fut.err = coerceContent[R](reply.Content)
	}()
	return fut
}

// Format renders the message templates with the given arguments without
// contacting any backend.
func (a *AsyncPromptFunc[R]) Format(args ...any) ([]Message, error) {
	return a.core.format(args)
}

// Name returns the declared function name.
func (a *AsyncPromptFunc[R]) Name() string { return a.core.name }

// Doc returns the declared documentation string.
func (a *AsyncPromptFunc[R]) Doc() string { return a.core.doc }

// Params returns the declared parameter list.
func (a *AsyncPromptFunc[R]) Params() []Param { return a.core.signature.Params() }

// Messages returns the stored message templates.
func (a *AsyncPromptFunc[R]) Messages() []MessageTemplate {
	return cloneTemplates(a.core.messages)
}

// Functions returns the declared side-callables.
func (a *AsyncPromptFunc[R]) Functions() []*FunctionDef {
	return cloneFunctions(a.core.functions)
}

// Stop returns the configured stop sequences.
func (a *AsyncPromptFunc[R]) Stop() []string { return cloneStrings(a.core.stop) }

// MaxRetries returns the configured retry bound.
func (a *AsyncPromptFunc[R]) MaxRetries() int { return a.core.maxRetries }

// OutputTypes returns the output variant set resolved at definition time.
func (a *AsyncPromptFunc[R]) OutputTypes() []TypeDescriptor {
	return cloneDescriptors(a.core.outputTypes)
}

// Definition returns the portable declarative form of the function.
func (a *AsyncPromptFunc[R]) Definition() (*Definition, error) {
	return a.core.definition()
}

func cloneTemplates(in []MessageTemplate) []MessageTemplate {
	out := make([]MessageTemplate, len(in))
	copy(out, in)
	return out
}

func cloneFunctions(in []*FunctionDef) []*FunctionDef {
	out := make([]*FunctionDef, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneDescriptors(in []TypeDescriptor) []TypeDescriptor {
	out := make([]TypeDescriptor, len(in))
	copy(out, in)
	return out
}
