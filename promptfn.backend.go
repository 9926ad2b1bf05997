package promptfn

import (
	"context"
	"sync"
)

// Backend is the collaborator that turns a rendered conversation into a
// structured reply. Implementations own protocol framing and must coerce the
// reply content into one of the requested output types, returning an
// output-validation error (NewOutputValidationError) when they cannot so the
// retry proxy can distinguish recoverable failures from transport ones.
type Backend interface {
	Complete(ctx context.Context, messages []Message, functions []*FunctionDef, outputTypes []TypeDescriptor, stop []string) (*Reply, error)
}

// Usage reports token accounting for one backend call, when the backend
// provides it.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Reply is a backend's structured response. Content is already coerced into
// one of the output types requested on the call.
type Reply struct {
	Content any
	Usage   *Usage
}

// Registry holds the process-wide default backend. Prompt functions without
// an explicit model resolve their backend from a registry on every call, so
// swapping the default is observed by subsequent calls immediately.
// Registries are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	backend Backend
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetBackend installs the registry's default backend. A nil backend clears it.
func (r *Registry) SetBackend(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend = b
}

// Backend returns the registry's default backend, or an error if none is
// configured.
func (r *Registry) Backend() (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.backend == nil {
		return nil, NewNoBackendError()
	}
	return r.backend, nil
}

// DefaultRegistry is the process-wide registry used by prompt functions that
// are not given an explicit registry or model.
var DefaultRegistry = NewRegistry()

// SetDefaultBackend installs the process-wide default backend.
func SetDefaultBackend(b Backend) {
	DefaultRegistry.SetBackend(b)
}
