package schema

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// IsExpression reports whether a parameter value is an expression that is
// only resolvable at runtime. Expression values are exempt from static
// type checking: "={{ $json.count }}" may legally fill a number property.
func IsExpression(value any) bool {
	text, ok := value.(string)
	if !ok {
		return false
	}

	if strings.HasPrefix(text, "={{") {
		return true
	}

	return strings.Contains(text, "{{") && strings.Contains(text, "}}")
}

// CheckValue validates a configured value against the property's declared
// type. It returns false plus a human-readable detail on mismatch.
// Expression values always pass; they carry no static type.
func (p *Property) CheckValue(value any) (bool, string) {
	if IsExpression(value) {
		return true, ""
	}

	doc := p.jsonSchema()
	if doc == nil {
		return true, ""
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(doc),
		gojsonschema.NewGoLoader(value),
	)
	if err != nil {
		return false, err.Error()
	}

	if result.Valid() {
		return true, ""
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.Description())
	}

	return false, strings.Join(details, "; ")
}

// jsonSchema maps the property declaration to a JSON Schema document that
// gojsonschema can compile. JSON-typed properties accept either raw JSON
// text or an already-structured value, so they get no schema here.
func (p *Property) jsonSchema() map[string]any {
	switch p.Type {
	case PropertyTypeString:
		return map[string]any{"type": "string"}
	case PropertyTypeNumber:
		return map[string]any{"type": "number"}
	case PropertyTypeBoolean:
		return map[string]any{"type": "boolean"}
	case PropertyTypeOptions:
		if len(p.Options) == 0 {
			return map[string]any{"type": "string"}
		}

		return map[string]any{"enum": p.Options}
	case PropertyTypeMultiOptions:
		items := map[string]any{}
		if len(p.Options) > 0 {
			items["enum"] = p.Options
		}

		return map[string]any{"type": "array", "items": items}
	case PropertyTypeCollection:
		return map[string]any{"type": "object"}
	case PropertyTypeJSON:
		return nil
	}

	return nil
}

// CheckJSONText reports whether a json-typed property holds parseable JSON
// when configured as text. Structured values pass unconditionally.
func CheckJSONText(value any) bool {
	text, ok := value.(string)
	if !ok {
		return true
	}

	if IsExpression(text) || strings.TrimSpace(text) == "" {
		return true
	}

	return json.Valid([]byte(text))
}
