package promptfn

import (
	"context"
	"encoding/json"
)

// SideFuncImpl is the Go implementation bound to a declared side-callable.
type SideFuncImpl func(ctx context.Context, args map[string]any) (any, error)

// FunctionDef declares a side-callable the backend may instruct the model to
// invoke instead of returning plain content.
type FunctionDef struct {
	// Name of the function
	Name string `yaml:"name" json:"name"`
	// Description of what the function does
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Parameters schema for function arguments
	Parameters map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	// Strict enables strict parameter validation
	Strict bool `yaml:"strict,omitempty" json:"strict,omitempty"`
	// Fn is the local implementation invoked by FunctionCall.Invoke
	Fn SideFuncImpl `yaml:"-" json:"-"`
}

// FunctionCall is the reply content produced when the model chooses to
// invoke a declared side-callable rather than answer directly.
type FunctionCall struct {
	// Name of the declared function being called
	Name string `json:"name"`
	// Arguments the model supplied for the call
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Invoke dispatches the call to the matching declared function.
func (c FunctionCall) Invoke(ctx context.Context, functions []*FunctionDef) (any, error) {
	for _, def := range functions {
		if def == nil || def.Name != c.Name {
			continue
		}
		if def.Fn == nil {
			return nil, NewSideFuncError(ErrMsgSideFuncNoImpl, c.Name)
		}
		return def.Fn(ctx, c.Arguments)
	}
	return nil, NewSideFuncError(ErrMsgSideFuncNotFound, c.Name)
}

// ToOpenAITool converts the FunctionDef to OpenAI tool calling format.
func (f *FunctionDef) ToOpenAITool() map[string]any {
	if f == nil {
		return nil
	}

	funcDef := map[string]any{
		SchemaKeyName: f.Name,
	}
	if f.Description != "" {
		funcDef[SchemaKeyDescription] = f.Description
	}
	if f.Parameters != nil {
		params := copySchema(f.Parameters)
		if f.Strict {
			ensureAdditionalPropertiesFalse(params)
		}
		funcDef[SchemaKeyParameters] = params
	}
	if f.Strict {
		funcDef[SchemaKeyStrict] = true
	}

	return map[string]any{
		SchemaKeyType:     SchemaKeyFunction,
		SchemaKeyFunction: funcDef,
	}
}

// ToAnthropicTool converts the FunctionDef to Anthropic tool use format.
func (f *FunctionDef) ToAnthropicTool() map[string]any {
	if f == nil {
		return nil
	}

	tool := map[string]any{
		SchemaKeyName: f.Name,
	}
	if f.Description != "" {
		tool[SchemaKeyDescription] = f.Description
	}
	if f.Parameters != nil {
		params := copySchema(f.Parameters)
		ensureAdditionalPropertiesFalse(params)
		tool[SchemaKeyInputSchema] = params
	}

	return tool
}

// ToJSON returns the JSON representation of the FunctionDef.
func (f *FunctionDef) ToJSON() (string, error) {
	if f == nil {
		return "", nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// copySchema creates a deep copy of a schema map.
func copySchema(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for k, v := range src {
		switch val := v.(type) {
		case map[string]any:
			dst[k] = copySchema(val)
		case []any:
			dst[k] = copySlice(val)
		default:
			dst[k] = v
		}
	}
	return dst
}

// copySlice creates a deep copy of a slice.
func copySlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, v := range src {
		switch val := v.(type) {
		case map[string]any:
			dst[i] = copySchema(val)
		case []any:
			dst[i] = copySlice(val)
		default:
			dst[i] = v
		}
	}
	return dst
}

// ensureAdditionalPropertiesFalse recursively sets additionalProperties to
// false on object schemas, as required by strict mode across providers.
func ensureAdditionalPropertiesFalse(schema map[string]any) {
	if schema == nil {
		return
	}

	if typeVal, ok := schema[SchemaKeyType]; ok && typeVal == "object" {
		if _, exists := schema[SchemaKeyAdditionalProperties]; !exists {
			schema[SchemaKeyAdditionalProperties] = false
		}
	}

	if props, ok := schema[SchemaKeyProperties].(map[string]any); ok {
		for _, propVal := range props {
			if propSchema, ok := propVal.(map[string]any); ok {
				ensureAdditionalPropertiesFalse(propSchema)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		ensureAdditionalPropertiesFalse(items)
	}
}
