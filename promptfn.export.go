package promptfn

import (
	"gopkg.in/yaml.v3"
)

// Definition error messages
const (
	ErrMsgDefinitionParseFailed   = "definition parsing failed"
	ErrMsgTypedMessageNotPortable = "typed message content cannot be exported"
)

// Definition is the portable declarative form of a prompt function: the
// parts of its configuration that survive serialization. Backends, side
// function implementations, and loggers are wired back in at Define time.
type Definition struct {
	// Name of the prompt function
	Name string `yaml:"name" json:"name"`
	// Doc is the function's documentation string
	Doc string `yaml:"doc,omitempty" json:"doc,omitempty"`
	// Params is the ordered declared parameter list
	Params []ParamDef `yaml:"params,omitempty" json:"params,omitempty"`
	// Messages is the ordered message template list
	Messages []MessageDef `yaml:"messages" json:"messages"`
	// Stop sequences passed to the backend
	Stop []string `yaml:"stop,omitempty" json:"stop,omitempty"`
	// MaxRetries bounds retries of output-validation failures
	MaxRetries int `yaml:"max_retries,omitempty" json:"max_retries,omitempty"`
}

// ParamDef is the serialized form of a declared parameter.
type ParamDef struct {
	// Name of the parameter
	Name string `yaml:"name" json:"name"`
	// Required indicates the parameter must be supplied on every call
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`
	// Default value applied when the call omits the parameter
	Default any `yaml:"default,omitempty" json:"default,omitempty"`
}

// MessageDef is the serialized form of a message template.
type MessageDef struct {
	// Role of the message: "system", "user", "assistant", or "tool"
	Role string `yaml:"role" json:"role"`
	// Content template text with {name} placeholders
	Content string `yaml:"content" json:"content"`
}

// Validate checks the definition for structural consistency using the same
// rules Define enforces.
func (d *Definition) Validate() error {
	if d == nil || d.Name == "" {
		return NewDefinitionError(ErrMsgFuncNameRequired, "")
	}
	if len(d.Messages) == 0 {
		return NewDefinitionError(ErrMsgMessagesRequired, d.Name)
	}
	if d.MaxRetries < 0 {
		return NewDefinitionError(ErrMsgNegativeRetries, d.Name)
	}
	for _, m := range d.Messages {
		if !isValidRole(m.Role) {
			return NewDefinitionError(ErrMsgInvalidRole, d.Name)
		}
	}
	if _, err := NewSignature(d.params()); err != nil {
		return err
	}
	return nil
}

// Options converts the definition into Define options, so a loaded
// definition plus runtime wiring (model, functions, logger) reconstructs
// the function:
//
//	def, _ := promptfn.ParseDefinition(data)
//	fn, _ := promptfn.Define[string](def.Name, def.Options()...)
func (d *Definition) Options() []Option {
	templates := make([]MessageTemplate, 0, len(d.Messages))
	for _, m := range d.Messages {
		templates = append(templates, MessageTemplate{role: m.Role, template: m.Content})
	}
	opts := []Option{
		WithDoc(d.Doc),
		WithParams(d.params()...),
		WithMessages(templates...),
		WithMaxRetries(d.MaxRetries),
	}
	if len(d.Stop) > 0 {
		opts = append(opts, WithStop(d.Stop...))
	}
	return opts
}

func (d *Definition) params() []Param {
	params := make([]Param, 0, len(d.Params))
	for _, p := range d.Params {
		if p.Required {
			params = append(params, RequiredParam(p.Name))
			continue
		}
		params = append(params, DefaultParam(p.Name, p.Default))
	}
	return params
}

// ExportDefinition serializes a validated definition to YAML.
func ExportDefinition(d *Definition) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, NewDefinitionError(ErrMsgDefinitionParseFailed, d.Name)
	}
	return data, nil
}

// ParseDefinition deserializes and validates a YAML definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, NewDefinitionError(ErrMsgDefinitionParseFailed, "")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// definition builds the portable form of a core. Typed assistant templates
// carry arbitrary Go values and are refused rather than lossily stringified.
func (c *promptCore) definition() (*Definition, error) {
	messages := make([]MessageDef, 0, len(c.messages))
	for _, t := range c.messages {
		if t.typed {
			return nil, NewDefinitionError(ErrMsgTypedMessageNotPortable, c.name)
		}
		messages = append(messages, MessageDef{Role: t.role, Content: t.template})
	}

	params := make([]ParamDef, 0, len(c.signature.params))
	for _, p := range c.signature.params {
		def := ParamDef{Name: p.name, Required: !p.hasDefault}
		if p.hasDefault {
			def.Default = p.defaultVal
		}
		params = append(params, def)
	}

	return &Definition{
		Name:       c.name,
		Doc:        c.doc,
		Params:     params,
		Messages:   messages,
		Stop:       cloneStrings(c.stop),
		MaxRetries: c.maxRetries,
	}, nil
}
