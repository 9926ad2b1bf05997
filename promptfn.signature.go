package promptfn

// Param declares one parameter of a prompt function's signature.
type Param struct {
	name       string
	defaultVal any
	hasDefault bool
}

// RequiredParam declares a parameter that must receive a value on every call.
func RequiredParam(name string) Param {
	return Param{name: name}
}

// DefaultParam declares a parameter with a default value applied when the
// call omits it.
func DefaultParam(name string, defaultVal any) Param {
	return Param{name: name, defaultVal: defaultVal, hasDefault: true}
}

// Name returns the parameter name.
func (p Param) Name() string {
	return p.name
}

// Default returns the declared default value and whether one exists.
func (p Param) Default() (any, bool) {
	return p.defaultVal, p.hasDefault
}

// Kwargs supplies keyword arguments to a call. It must be the final call
// argument when present.
type Kwargs map[string]any

// Signature is the ordered parameter list a prompt function binds call
// arguments against. Immutable after construction.
type Signature struct {
	params []Param
	index  map[string]int
}

// NewSignature builds a signature from the declared parameter list.
// Parameter names must be unique and required parameters cannot follow
// defaulted ones, mirroring how call sites supply positional arguments.
func NewSignature(params []Param) (*Signature, error) {
	index := make(map[string]int, len(params))
	seenDefault := false
	for i, p := range params {
		if _, exists := index[p.name]; exists {
			return nil, NewDefinitionError(ErrMsgDuplicateParam, p.name)
		}
		if seenDefault && !p.hasDefault {
			return nil, NewDefinitionError(ErrMsgParamAfterDefault, p.name)
		}
		seenDefault = seenDefault || p.hasDefault
		index[p.name] = i
	}
	return &Signature{params: params, index: index}, nil
}

// Params returns a copy of the declared parameter list.
func (s *Signature) Params() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)
	return out
}

// Bind matches positional and keyword call arguments against the declared
// parameters and fills unset parameters from their defaults. A Kwargs value
// is only recognized as the final argument; every other failure mode names
// the offending argument.
func (s *Signature) Bind(args ...any) (*BoundArgs, error) {
	positional := args
	var kwargs Kwargs
	if n := len(args); n > 0 {
		if kw, ok := args[n-1].(Kwargs); ok {
			kwargs = kw
			positional = args[:n-1]
		}
	}
	for _, arg := range positional {
		if _, ok := arg.(Kwargs); ok {
			return nil, NewBindingError(ErrMsgKwargsNotLast, "")
		}
	}
	if len(positional) > len(s.params) {
		return nil, NewBindingError(ErrMsgTooManyArguments, "")
	}

	bound := newBoundArgs(len(s.params))
	for i, value := range positional {
		bound.set(s.params[i].name, value)
	}
	for name, value := range kwargs {
		idx, known := s.index[name]
		if !known {
			return nil, NewBindingError(ErrMsgUnknownArgument, name)
		}
		if idx < len(positional) {
			return nil, NewBindingError(ErrMsgDuplicateArgument, name)
		}
		bound.set(name, value)
	}

	// Apply defaults in declaration order so BoundArgs stays ordered.
	ordered := newBoundArgs(len(s.params))
	for _, p := range s.params {
		if value, ok := bound.Get(p.name); ok {
			ordered.set(p.name, value)
			continue
		}
		if !p.hasDefault {
			return nil, NewBindingError(ErrMsgMissingArgument, p.name)
		}
		ordered.set(p.name, p.defaultVal)
	}
	return ordered, nil
}

// BoundArgs is the ordered mapping from parameter name to supplied value
// produced by Signature.Bind.
type BoundArgs struct {
	names  []string
	values map[string]any
}

func newBoundArgs(capacity int) *BoundArgs {
	return &BoundArgs{
		names:  make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

func (b *BoundArgs) set(name string, value any) {
	if _, exists := b.values[name]; !exists {
		b.names = append(b.names, name)
	}
	b.values[name] = value
}

// Get returns the bound value for a parameter name.
func (b *BoundArgs) Get(name string) (any, bool) {
	value, ok := b.values[name]
	return value, ok
}

// Names returns the parameter names in binding order.
func (b *BoundArgs) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Map returns the bound arguments as a plain map.
func (b *BoundArgs) Map() map[string]any {
	out := make(map[string]any, len(b.values))
	for name, value := range b.values {
		out[name] = value
	}
	return out
}
