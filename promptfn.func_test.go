package promptfn

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend returns a fixed reply and records what it was invoked with.
type fakeBackend struct {
	mu          sync.Mutex
	reply       *Reply
	err         error
	calls       int
	lastCall    fakeCall
	delay       time.Duration
	honorCancel bool
}

type fakeCall struct {
	messages    []Message
	functions   []*FunctionDef
	outputTypes []TypeDescriptor
	stop        []string
}

func (b *fakeBackend) Complete(ctx context.Context, messages []Message, functions []*FunctionDef, outputTypes []TypeDescriptor, stop []string) (*Reply, error) {
	b.mu.Lock()
	b.calls++
	b.lastCall = fakeCall{messages: messages, functions: functions, outputTypes: outputTypes, stop: stop}
	b.mu.Unlock()

	if b.honorCancel {
		select {
		case <-ctx.Done():
			return nil, NewTransportError(ErrMsgBackendFailed, ctx.Err())
		case <-time.After(b.delay):
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.reply, nil
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *fakeBackend) last() fakeCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastCall
}

func newGreeter(t *testing.T, backend Backend, extra ...Option) *PromptFunc[string] {
	t.Helper()
	opts := append([]Option{
		WithParams(RequiredParam("name")),
		WithMessages(UserMessage("Hello {name}")),
		WithModel(backend),
	}, extra...)
	fn, err := Define[string]("greet", opts...)
	require.NoError(t, err)
	return fn
}

func TestDefine_Validation(t *testing.T) {
	tests := []struct {
		name     string
		funcName string
		opts     []Option
		errMsg   string
	}{
		{
			name:     "empty name",
			funcName: "",
			opts:     []Option{WithMessages(UserMessage("hi"))},
			errMsg:   ErrMsgFuncNameRequired,
		},
		{
			name:     "no messages",
			funcName: "f",
			opts:     nil,
			errMsg:   ErrMsgMessagesRequired,
		},
		{
			name:     "negative retries",
			funcName: "f",
			opts:     []Option{WithMessages(UserMessage("hi")), WithMaxRetries(-1)},
			errMsg:   ErrMsgNegativeRetries,
		},
		{
			name:     "bad parameter order",
			funcName: "f",
			opts: []Option{
				WithMessages(UserMessage("hi")),
				WithParams(DefaultParam("a", 1), RequiredParam("b")),
			},
			errMsg: ErrMsgParamAfterDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Define[string](tt.funcName, tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefine_Metadata(t *testing.T) {
	fn, err := Define[string]("summarize",
		WithDoc("Summarize the given text."),
		WithParams(RequiredParam("text"), DefaultParam("tone", "neutral")),
		WithMessages(UserMessage("Summarize with a {tone} tone: {text}")),
		WithStop("END"),
		WithMaxRetries(2),
	)
	require.NoError(t, err)

	assert.Equal(t, "summarize", fn.Name())
	assert.Equal(t, "Summarize the given text.", fn.Doc())
	assert.Equal(t, []string{"END"}, fn.Stop())
	assert.Equal(t, 2, fn.MaxRetries())

	params := fn.Params()
	require.Len(t, params, 2)
	assert.Equal(t, "text", params[0].Name())
	def, ok := params[1].Default()
	assert.True(t, ok)
	assert.Equal(t, "neutral", def)

	types := fn.OutputTypes()
	require.Len(t, types, 1)
	assert.Equal(t, KindString, types[0].Kind())
}

func TestDefine_OutputTypesOverride(t *testing.T) {
	fn, err := Define[any]("answer",
		WithMessages(UserMessage("hi")),
		WithOutputTypes(StringType(), FunctionCallType()),
	)
	require.NoError(t, err)

	types := fn.OutputTypes()
	require.Len(t, types, 2)
	assert.Equal(t, KindString, types[0].Kind())
	assert.Equal(t, KindFunctionCall, types[1].Kind())
}

func TestPromptFunc_Call(t *testing.T) {
	backend := &fakeBackend{reply: &Reply{Content: "Hi there"}}
	fn := newGreeter(t, backend, WithStop("\n"))

	result, err := fn.Call(context.Background(), "World")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", result)

	call := backend.last()
	require.Len(t, call.messages, 1)
	assert.Equal(t, "Hello World", call.messages[0].Content)
	assert.Equal(t, []string{"\n"}, call.stop)
	require.Len(t, call.outputTypes, 1)
	assert.Equal(t, KindString, call.outputTypes[0].Kind())
}

func TestPromptFunc_Call_BindingErrorSkipsBackend(t *testing.T) {
	backend := &fakeBackend{reply: &Reply{Content: "unused"}}
	fn := newGreeter(t, backend)

	tests := []struct {
		name string
		args []any
	}{
		{name: "missing required", args: nil},
		{name: "unknown keyword", args: []any{"World", Kwargs{"bogus": 1}}},
		{name: "too many positional", args: []any{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fn.Call(context.Background(), tt.args...)
			require.Error(t, err)
			assert.True(t, IsBindingError(err))
			assert.Equal(t, 0, backend.callCount())
		})
	}
}

func TestPromptFunc_Call_TemplateErrorSkipsBackend(t *testing.T) {
	backend := &fakeBackend{reply: &Reply{Content: "unused"}}
	fn, err := Define[string]("bad",
		WithParams(RequiredParam("a")),
		WithMessages(UserMessage("{a} and {b}")),
		WithModel(backend),
	)
	require.NoError(t, err)

	_, err = fn.Call(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsTemplateError(err))
	assert.Equal(t, 0, backend.callCount())
}

func TestPromptFunc_Call_RegistryResolution(t *testing.T) {
	registry := NewRegistry()
	fn, err := Define[string]("greet",
		WithParams(RequiredParam("name")),
		WithMessages(UserMessage("Hello {name}")),
		WithRegistry(registry),
	)
	require.NoError(t, err)

	t.Run("no backend configured", func(t *testing.T) {
		_, err := fn.Call(context.Background(), "World")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgNoBackend)
	})

	t.Run("default observed after install", func(t *testing.T) {
		backend := &fakeBackend{reply: &Reply{Content: "one"}}
		registry.SetBackend(backend)

		result, err := fn.Call(context.Background(), "World")
		require.NoError(t, err)
		assert.Equal(t, "one", result)
	})

	t.Run("swap observed on next call", func(t *testing.T) {
		replacement := &fakeBackend{reply: &Reply{Content: "two"}}
		registry.SetBackend(replacement)

		result, err := fn.Call(context.Background(), "World")
		require.NoError(t, err)
		assert.Equal(t, "two", result)
		assert.Equal(t, 1, replacement.callCount())
	})
}

func TestPromptFunc_Call_ExplicitModelWins(t *testing.T) {
	registry := NewRegistry()
	registryBackend := &fakeBackend{reply: &Reply{Content: "registry"}}
	registry.SetBackend(registryBackend)

	explicit := &fakeBackend{reply: &Reply{Content: "explicit"}}
	fn := newGreeter(t, explicit, WithRegistry(registry))

	result, err := fn.Call(context.Background(), "World")
	require.NoError(t, err)
	assert.Equal(t, "explicit", result)
	assert.Equal(t, 0, registryBackend.callCount())
}

func TestPromptFunc_Call_RetriesWired(t *testing.T) {
	inner := alwaysInvalid()
	fn := newGreeter(t, inner, WithMaxRetries(2), WithLogger(zap.NewNop()))

	_, err := fn.Call(context.Background(), "World")
	require.Error(t, err)
	assert.True(t, IsRecoverable(err))
	assert.Equal(t, 3, inner.callCount())
}

func TestPromptFunc_Call_ContentMismatch(t *testing.T) {
	backend := &fakeBackend{reply: &Reply{Content: 12345}}
	fn := newGreeter(t, backend)

	_, err := fn.Call(context.Background(), "World")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgOutputNotCoercible)
}

func TestPromptFunc_Call_StructuredContent(t *testing.T) {
	type quote struct {
		Quote     string
		Character string
	}
	want := quote{Quote: "I am Iron Man.", Character: "Tony Stark"}
	backend := &fakeBackend{reply: &Reply{Content: want}}

	fn, err := Define[quote]("get_movie_quote",
		WithParams(RequiredParam("movie")),
		WithMessages(
			SystemMessage("You are a movie buff."),
			UserMessage("What is your favorite quote from {movie}?"),
		),
		WithModel(backend),
	)
	require.NoError(t, err)

	result, err := fn.Call(context.Background(), "Iron Man")
	require.NoError(t, err)
	assert.Equal(t, want, result)

	types := backend.last().outputTypes
	require.Len(t, types, 1)
	assert.Equal(t, KindObject, types[0].Kind())
}

func TestPromptFunc_Format_NoBackendContact(t *testing.T) {
	backend := &fakeBackend{reply: &Reply{Content: "x"}}
	fn := newGreeter(t, backend)

	messages, err := fn.Format("World")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Hello World", messages[0].Content)
	assert.Equal(t, 0, backend.callCount())
}

func TestAsyncPromptFunc_Start(t *testing.T) {
	backend := &fakeBackend{reply: &Reply{Content: "Hi there"}}
	fn, err := DefineAsync[string]("greet",
		WithParams(RequiredParam("name")),
		WithMessages(UserMessage("Hello {name}")),
		WithModel(backend),
	)
	require.NoError(t, err)

	future := fn.Start(context.Background(), "World")
	select {
	case <-future.Done():
	case <-time.After(time.Second):
		t.Fatal("future never completed")
	}

	result, err := future.Await()
	require.NoError(t, err)
	assert.Equal(t, "Hi there", result)
}

func TestAsyncPromptFunc_Cancellation(t *testing.T) {
	backend := &fakeBackend{reply: &Reply{Content: "slow"}, delay: time.Minute, honorCancel: true}
	fn, err := DefineAsync[string]("greet",
		WithParams(RequiredParam("name")),
		WithMessages(UserMessage("Hello {name}")),
		WithModel(backend),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	future := fn.Start(ctx, "World")
	cancel()

	_, err = future.Await()
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestBlockingAndAsyncParity(t *testing.T) {
	newPair := func(backend Backend) (*PromptFunc[string], *AsyncPromptFunc[string]) {
		opts := []Option{
			WithParams(RequiredParam("name")),
			WithMessages(UserMessage("Hello {name}")),
			WithModel(backend),
			WithMaxRetries(1),
		}
		blocking, err := Define[string]("greet", opts...)
		require.NoError(t, err)
		async, err := DefineAsync[string]("greet", opts...)
		require.NoError(t, err)
		return blocking, async
	}

	t.Run("identical success", func(t *testing.T) {
		blocking, async := newPair(&fakeBackend{reply: &Reply{Content: "same"}})

		fromBlocking, err := blocking.Call(context.Background(), "World")
		require.NoError(t, err)
		fromAsync, err := async.Start(context.Background(), "World").Await()
		require.NoError(t, err)

		assert.Equal(t, fromBlocking, fromAsync)
	})

	t.Run("identical error category", func(t *testing.T) {
		blocking, async := newPair(&fakeBackend{err: NewOutputValidationError(ErrMsgOutputNotCoercible, nil)})

		_, blockingErr := blocking.Call(context.Background(), "World")
		_, asyncErr := async.Start(context.Background(), "World").Await()

		require.Error(t, blockingErr)
		require.Error(t, asyncErr)
		assert.True(t, IsRecoverable(blockingErr))
		assert.True(t, IsRecoverable(asyncErr))
		assert.Equal(t, blockingErr.Error(), asyncErr.Error())
	})

	t.Run("identical binding failure", func(t *testing.T) {
		backend := &fakeBackend{reply: &Reply{Content: "x"}}
		blocking, async := newPair(backend)

		_, blockingErr := blocking.Call(context.Background())
		_, asyncErr := async.Start(context.Background()).Await()

		assert.True(t, IsBindingError(blockingErr))
		assert.True(t, IsBindingError(asyncErr))
		assert.Equal(t, 0, backend.callCount())
	})
}

func TestFunctionCall_Invoke(t *testing.T) {
	add := &FunctionDef{
		Name:        "add",
		Description: "Add two numbers",
		Parameters: map[string]any{
			SchemaKeyType: "object",
			SchemaKeyProperties: map[string]any{
				"a": map[string]any{SchemaKeyType: "number"},
				"b": map[string]any{SchemaKeyType: "number"},
			},
		},
		Fn: func(_ context.Context, args map[string]any) (any, error) {
			return args["a"].(int) + args["b"].(int), nil
		},
	}
	declared := &FunctionDef{Name: "noop"}
	functions := []*FunctionDef{declared, add}

	t.Run("dispatches to implementation", func(t *testing.T) {
		call := FunctionCall{Name: "add", Arguments: map[string]any{"a": 2, "b": 3}}
		result, err := call.Invoke(context.Background(), functions)
		require.NoError(t, err)
		assert.Equal(t, 5, result)
	})

	t.Run("unknown function", func(t *testing.T) {
		call := FunctionCall{Name: "missing"}
		_, err := call.Invoke(context.Background(), functions)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgSideFuncNotFound)
	})

	t.Run("no implementation bound", func(t *testing.T) {
		call := FunctionCall{Name: "noop"}
		_, err := call.Invoke(context.Background(), functions)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgSideFuncNoImpl)
	})
}

func TestPromptFunc_FunctionsForwarded(t *testing.T) {
	search := &FunctionDef{Name: "search", Description: "Web search"}
	backend := &fakeBackend{reply: &Reply{Content: FunctionCall{Name: "search"}}}

	fn, err := Define[FunctionCall]("lookup",
		WithParams(RequiredParam("query")),
		WithMessages(UserMessage("{query}")),
		WithFunctions(search),
		WithModel(backend),
	)
	require.NoError(t, err)

	result, err := fn.Call(context.Background(), "golang")
	require.NoError(t, err)
	assert.Equal(t, "search", result.Name)

	call := backend.last()
	require.Len(t, call.functions, 1)
	assert.Equal(t, "search", call.functions[0].Name)
	require.Len(t, call.outputTypes, 1)
	assert.Equal(t, KindFunctionCall, call.outputTypes[0].Kind())
}
