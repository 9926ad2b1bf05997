package promptfn

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Placeholder delimiter constants - single braces with doubling as the
// escape rule, so literal braces survive substitution
const (
	PlaceholderOpen  = '{'
	PlaceholderClose = '}'
)

// Default configuration values
const (
	// DefaultMaxRetries disables retry wrapping entirely
	DefaultMaxRetries = 0
)

// RetryMessagePrefix prefixes the corrective user message appended to the
// conversation before a retry attempt.
const RetryMessagePrefix = "The previous response was invalid: "

// Error category values stored under MetaKeyCategory
const (
	CategoryBinding   = "binding"
	CategoryTemplate  = "template"
	CategoryOutput    = "output_validation"
	CategoryTransport = "transport"
	CategoryConfig    = "config"
)

// Metadata key constants for error context
const (
	MetaKeyCategory    = "category"
	MetaKeyArgument    = "argument"
	MetaKeyPlaceholder = "placeholder"
	MetaKeyFunction    = "function"
	MetaKeyBackend     = "backend"
)

// Schema key constants for side-callable parameter schemas
const (
	SchemaKeyType                 = "type"
	SchemaKeyDescription          = "description"
	SchemaKeyProperties           = "properties"
	SchemaKeyStrict               = "strict"
	SchemaKeyAdditionalProperties = "additionalProperties"
	SchemaKeyName                 = "name"
	SchemaKeyFunction             = "function"
	SchemaKeyParameters           = "parameters"
	SchemaKeyInputSchema          = "input_schema"
)

// Type descriptor display names for scalar and special variants
const (
	TypeNameString       = "string"
	TypeNameInt          = "int"
	TypeNameFloat        = "float"
	TypeNameBool         = "bool"
	TypeNameAny          = "any"
	TypeNameFunctionCall = "function_call"
	TypeNameUnion        = "union"
)

// Log message constants
const (
	LogMsgCallStart     = "prompt function call started"
	LogMsgCallComplete  = "prompt function call complete"
	LogMsgCallFailed    = "prompt function call failed"
	LogMsgRetryAttempt  = "retrying backend call with corrective context"
	LogMsgRetryExceeded = "retry budget exhausted"
)

// Log field name constants
const (
	LogFieldFunction = "function"
	LogFieldCallID   = "call_id"
	LogFieldAttempt  = "attempt"
	LogFieldMessages = "messages"
	LogFieldRetries  = "max_retries"
)
