package promptfn

import "strings"

// Message represents a concrete conversation message sent to a backend.
// Content is usually a rendered string but may carry a typed value for
// assistant examples or a FunctionCall.
type Message struct {
	// Role of the message sender: "system", "user", "assistant", or "tool"
	Role string `yaml:"role" json:"role"`
	// Content of the message
	Content any `yaml:"content" json:"content"`
}

// MessageTemplate is an immutable role-tagged content template. The template
// text uses {name} placeholders resolved against bound arguments at render
// time. A template constructed from a typed value (AssistantValue) renders
// to that value verbatim with no substitution.
type MessageTemplate struct {
	role     string
	template string
	value    any
	typed    bool
}

// SystemMessage creates a system-role message template.
func SystemMessage(template string) MessageTemplate {
	return MessageTemplate{role: RoleSystem, template: template}
}

// UserMessage creates a user-role message template.
func UserMessage(template string) MessageTemplate {
	return MessageTemplate{role: RoleUser, template: template}
}

// AssistantMessage creates an assistant-role message template.
func AssistantMessage(template string) MessageTemplate {
	return MessageTemplate{role: RoleAssistant, template: template}
}

// AssistantValue creates an assistant-role template holding a pre-typed
// content value, for few-shot examples of structured output. The value is
// passed through to the backend unchanged.
func AssistantValue(value any) MessageTemplate {
	return MessageTemplate{role: RoleAssistant, value: value, typed: true}
}

// MessageOf creates a message template with an explicit role. The role must
// be one of the Role constants.
func MessageOf(role string, template string) (MessageTemplate, error) {
	if !isValidRole(role) {
		return MessageTemplate{}, NewDefinitionError(ErrMsgInvalidRole, role)
	}
	return MessageTemplate{role: role, template: template}, nil
}

// Role returns the template's role tag.
func (t MessageTemplate) Role() string {
	return t.role
}

// Template returns the template text. Empty for typed templates.
func (t MessageTemplate) Template() string {
	return t.template
}

// IsTyped reports whether the template carries a pre-typed content value
// instead of template text.
func (t MessageTemplate) IsTyped() bool {
	return t.typed
}

// EscapeBraces doubles curly braces in a string so it can be embedded in a
// message template without its braces being interpreted as placeholders.
func EscapeBraces(text string) string {
	text = strings.ReplaceAll(text, "{", "{{")
	return strings.ReplaceAll(text, "}", "}}")
}

// isValidRole checks a role tag against the known role constants.
func isValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}
