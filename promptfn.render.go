package promptfn

import (
	"fmt"
	"strconv"
	"strings"
)

// renderMessages renders each template in order against the bound arguments.
// Rendering is pure: the same templates and arguments always produce the
// same messages, and nothing is mutated.
func renderMessages(templates []MessageTemplate, args *BoundArgs) ([]Message, error) {
	messages := make([]Message, 0, len(templates))
	for _, tmpl := range templates {
		msg, err := tmpl.render(args)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// render produces a concrete message from the template. Typed templates
// pass their value through untouched.
func (t MessageTemplate) render(args *BoundArgs) (Message, error) {
	if t.typed {
		return Message{Role: t.role, Content: t.value}, nil
	}
	content, err := substitute(t.template, args)
	if err != nil {
		return Message{}, err
	}
	return Message{Role: t.role, Content: content}, nil
}

// substitute replaces {name} placeholders with the string form of the bound
// argument. Doubled braces ("{{" and "}}") emit a single literal brace and
// are never treated as placeholder delimiters. A lone "}" is an error so
// that mismatched escapes fail loudly instead of rendering garbage.
func substitute(template string, args *BoundArgs) (string, error) {
	var out strings.Builder
	out.Grow(len(template))

	for i := 0; i < len(template); i++ {
		ch := template[i]
		switch ch {
		case PlaceholderOpen:
			if i+1 < len(template) && template[i+1] == PlaceholderOpen {
				out.WriteByte(PlaceholderOpen)
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], PlaceholderClose)
			if end < 0 {
				return "", NewTemplateError(ErrMsgUnterminatedPlaceholder, "")
			}
			name := template[i+1 : i+1+end]
			if name == "" {
				return "", NewTemplateError(ErrMsgEmptyPlaceholder, "")
			}
			value, ok := args.Get(name)
			if !ok {
				return "", NewTemplateError(ErrMsgPlaceholderNotFound, name)
			}
			out.WriteString(formatValue(value))
			i += end + 1
		case PlaceholderClose:
			if i+1 < len(template) && template[i+1] == PlaceholderClose {
				out.WriteByte(PlaceholderClose)
				i++
				continue
			}
			return "", NewTemplateError(ErrMsgStrayCloseBrace, strconv.Itoa(i))
		default:
			out.WriteByte(ch)
		}
	}
	return out.String(), nil
}

// formatValue converts a bound argument to its template string form.
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
