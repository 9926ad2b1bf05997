package promptfn

import "go.uber.org/zap"

// Option is a functional option for configuring a prompt function.
type Option func(*funcConfig)

// funcConfig holds the internal configuration collected by Define.
type funcConfig struct {
	doc          string
	params       []Param
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

// defaultFuncConfig returns the default prompt function configuration.
func defaultFuncConfig() *funcConfig {
	return &funcConfig{
		maxRetries: DefaultMaxRetries,
		registry:   DefaultRegistry,
		logger:     nil,
	}
}

// WithDoc sets the function's documentation string.
func WithDoc(doc string) Option {
	return func(c *funcConfig) {
		c.doc = doc
	}
}

// WithParams declares the function's ordered parameter list.
// Default: no parameters.
func WithParams(params ...Param) Option {
	return func(c *funcConfig) {
		c.params = params
	}
}

// WithMessages sets the ordered message templates. Required.
func WithMessages(messages ...MessageTemplate) Option {
	return func(c *funcConfig) {
		c.messages = messages
	}
}

// WithFunctions declares side-callables the model may invoke.
// Default: none.
func WithFunctions(functions ...*FunctionDef) Option {
	return func(c *funcConfig) {
		c.functions = functions
	}
}

// WithStop sets stop sequences passed to the backend.
// Default: none.
func WithStop(stop ...string) Option {
	return func(c *funcConfig) {
		c.stop = stop
	}
}

// WithMaxRetries bounds retries of output-validation failures.
// Default: 0 (no retry wrapping).
func WithMaxRetries(maxRetries int) Option {
	return func(c *funcConfig) {
		c.maxRetries = maxRetries
	}
}

// WithModel sets an explicit backend, bypassing registry resolution.
// Default: nil (resolve from the registry on every call).
func WithModel(backend Backend) Option {
	return func(c *funcConfig) {
		c.model = backend
	}
}

// WithRegistry sets the registry the function resolves its backend from
// when no explicit model is configured.
// Default: DefaultRegistry.
func WithRegistry(registry *Registry) Option {
	return func(c *funcConfig) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithOutputTypes overrides the output variant set derived from the return
// type, for union returns the Go type system cannot express directly.
func WithOutputTypes(types ...TypeDescriptor) Option {
	return func(c *funcConfig) {
		c.outputTypes = types
	}
}

// WithRetryMessage overrides the corrective message appended before each
// retry attempt. The function must be deterministic for a given error.
func WithRetryMessage(fn RetryMessageFunc) Option {
	return func(c *funcConfig) {
		c.retryMessage = fn
	}
}

// WithLogger sets the logger for call and retry events.
// Default: nil (no logging).
func WithLogger(logger *zap.Logger) Option {
	return func(c *funcConfig) {
		c.logger = logger
	}
}

// Define constructs a blocking prompt function named name whose calls
// return R. The declared return type is resolved into its output variant
// set once, here; calls reuse it unchanged.
func Define[R any](name string, opts ...Option) (*PromptFunc[R], error) {
	core, err := newCore[R](name, opts)
	if err != nil {
		return nil, err
	}
	return &PromptFunc[R]{core: core}, nil
}

// MustDefine is Define that panics on a definition error.
func MustDefine[R any](name string, opts ...Option) *PromptFunc[R] {
	fn, err := Define[R](name, opts...)
	if err != nil {
		panic(err)
	}
	return fn
}

// DefineAsync constructs the suspending prompt function variant. The
// execution mode is fixed here, at construction, not branched per call.
func DefineAsync[R any](name string, opts ...Option) (*AsyncPromptFunc[R], error) {
	core, err := newCore[R](name, opts)
	if err != nil {
		return nil, err
	}
	return &AsyncPromptFunc[R]{core: core}, nil
}

// MustDefineAsync is DefineAsync that panics on a definition error.
func MustDefineAsync[R any](name string, opts ...Option) *AsyncPromptFunc[R] {
	fn, err := DefineAsync[R](name, opts...)
	if err != nil {
		panic(err)
	}
	return fn
}

// newCore validates the configuration and builds the shared core.
func newCore[R any](name string, opts []Option) (*promptCore, error) {
	config := defaultFuncConfig()
	for _, opt := range opts {
		opt(config)
	}

	if name == "" {
		return nil, NewDefinitionError(ErrMsgFuncNameRequired, name)
	}
	if len(config.messages) == 0 {
		return nil, NewDefinitionError(ErrMsgMessagesRequired, name)
	}
	if config.maxRetries < 0 {
		return nil, NewDefinitionError(ErrMsgNegativeRetries, name)
	}

	signature, err := NewSignature(config.params)
	if err != nil {
		return nil, err
	}

	returnType := TypeFor[R]()
	if len(config.outputTypes) > 0 {
		returnType = Union(config.outputTypes...)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &promptCore{
		name:         name,
		doc:          config.doc,
		signature:    signature,
		messages:     cloneTemplates(config.messages),
		functions:    cloneFunctions(config.functions),
		stop:         cloneStrings(config.stop),
		maxRetries:   config.maxRetries,
		model:        config.model,
		registry:     config.registry,
		outputTypes:  returnType.FlattenOneLevel(),
		retryMessage: config.retryMessage,
		logger:       logger,
	}, nil
}
