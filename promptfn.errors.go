package promptfn

import (
	"errors"

	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Binding errors
	ErrMsgMissingArgument   = "required argument missing"
	ErrMsgUnknownArgument   = "unknown keyword argument"
	ErrMsgDuplicateArgument = "argument supplied both positionally and by keyword"
	ErrMsgTooManyArguments  = "too many positional arguments"
	ErrMsgKwargsNotLast     = "keyword arguments must be the final call argument"

	// Template errors
	ErrMsgPlaceholderNotFound     = "template placeholder does not match any parameter"
	ErrMsgUnterminatedPlaceholder = "unterminated placeholder"
	ErrMsgEmptyPlaceholder        = "placeholder name cannot be empty"
	ErrMsgStrayCloseBrace         = "single '}' is not allowed; use '}}' for a literal brace"

	// Output validation errors
	ErrMsgOutputNotCoercible = "reply content does not match any requested output type"

	// Transport errors
	ErrMsgBackendFailed = "backend call failed"

	// Registry errors
	ErrMsgNoBackend = "no backend configured"

	// Definition errors
	ErrMsgFuncNameRequired  = "prompt function name cannot be empty"
	ErrMsgMessagesRequired  = "at least one message template is required"
	ErrMsgDuplicateParam    = "duplicate parameter name"
	ErrMsgParamAfterDefault = "required parameter cannot follow a defaulted parameter"
	ErrMsgNegativeRetries   = "max retries cannot be negative"
	ErrMsgInvalidRole       = "invalid message role"

	// Side-callable errors
	ErrMsgSideFuncNotFound = "no declared function matches the call"
	ErrMsgSideFuncNoImpl   = "declared function has no implementation bound"
)

// Error code constants for categorization
const (
	ErrCodeBinding   = "PROMPTFN_BINDING"
	ErrCodeTemplate  = "PROMPTFN_TEMPLATE"
	ErrCodeOutput    = "PROMPTFN_OUTPUT"
	ErrCodeTransport = "PROMPTFN_TRANSPORT"
	ErrCodeConfig    = "PROMPTFN_CONFIG"
	ErrCodeRegistry  = "PROMPTFN_REGISTRY"
)

// NewBindingError creates an error for call arguments that do not satisfy
// the declared signature. Raised before any backend contact.
func NewBindingError(msg string, argName string) error {
	return cuserr.NewValidationError(ErrCodeBinding, msg).
		WithMetadata(MetaKeyCategory, CategoryBinding).
		WithMetadata(MetaKeyArgument, argName)
}

// NewTemplateError creates an error for a template placeholder that cannot
// be satisfied by the bound arguments.
func NewTemplateError(msg string, placeholder string) error {
	return cuserr.NewValidationError(ErrCodeTemplate, msg).
		WithMetadata(MetaKeyCategory, CategoryTemplate).
		WithMetadata(MetaKeyPlaceholder, placeholder)
}

// NewOutputValidationError creates the recoverable error a backend returns
// when its reply could not be coerced into any requested output type.
// The retry proxy retries this category and no other.
func NewOutputValidationError(msg string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeOutput, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeOutput, msg)
	}
	return err.WithMetadata(MetaKeyCategory, CategoryOutput)
}

// NewTransportError creates a non-recoverable backend failure
// (connectivity, authorization, protocol). Never retried.
func NewTransportError(msg string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeTransport, msg)
	} else {
		err = cuserr.NewInternalError(ErrCodeTransport, nil)
	}
	return err.WithMetadata(MetaKeyCategory, CategoryTransport)
}

// NewNoBackendError creates an error for a call with no explicit model and
// an empty registry.
func NewNoBackendError() error {
	return cuserr.NewNotFoundError(MetaKeyBackend, ErrMsgNoBackend).
		WithMetadata(MetaKeyCategory, CategoryConfig)
}

// NewDefinitionError creates an error for an invalid prompt function
// definition (empty name, no messages, bad parameter order, ...).
func NewDefinitionError(msg string, name string) error {
	return cuserr.NewValidationError(ErrCodeConfig, msg).
		WithMetadata(MetaKeyCategory, CategoryConfig).
		WithMetadata(MetaKeyFunction, name)
}

// NewSideFuncError creates an error for a function call that cannot be
// dispatched to a declared side-callable.
func NewSideFuncError(msg string, funcName string) error {
	return cuserr.NewNotFoundError(SchemaKeyFunction, msg).
		WithMetadata(MetaKeyCategory, CategoryConfig).
		WithMetadata(MetaKeyFunction, funcName)
}

// errCategory extracts the category metadata from an error, if present.
func errCategory(err error) (string, bool) {
	var customErr *cuserr.CustomError
	if !errors.As(err, &customErr) {
		return "", false
	}
	return customErr.GetMetadata(MetaKeyCategory)
}

// IsBindingError reports whether err is a call-argument binding failure.
func IsBindingError(err error) bool {
	cat, ok := errCategory(err)
	return ok && cat == CategoryBinding
}

// IsTemplateError reports whether err is a template placeholder failure.
func IsTemplateError(err error) bool {
	cat, ok := errCategory(err)
	return ok && cat == CategoryTemplate
}

// IsTransportError reports whether err is a non-recoverable backend failure.
func IsTransportError(err error) bool {
	cat, ok := errCategory(err)
	return ok && cat == CategoryTransport
}

// IsRecoverable reports whether err is an output-validation failure that the
// retry proxy is allowed to retry.
func IsRecoverable(err error) bool {
	cat, ok := errCategory(err)
	return ok && cat == CategoryOutput
}
