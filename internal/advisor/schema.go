package advisor

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Type is the JSON shape a schema field expects.
type Type int

const (
	TypeString Type = iota
	TypeArray
	TypeObject
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field describes a required value. Elem describes array elements; Fields lists
// the required keys of an object in validation order.
type Field struct {
	Name   string
	Type   Type
	Elem   *Field
	Fields []Field
}

func str(name string) Field { return Field{Name: name, Type: TypeString} }

func arrayOf(name string, elem Field) Field {
	return Field{Name: name, Type: TypeArray, Elem: &elem}
}

func object(name string, fields ...Field) Field {
	return Field{Name: name, Type: TypeObject, Fields: fields}
}

// RecommendationSchema describes the recommendation document. Every field is required.
var RecommendationSchema = object("",
	arrayOf("usefulStacks", object("", str("name"), str("reason"), str("synergy"))),
	arrayOf("avoidStacks", object("", str("name"), str("reason"))),
	arrayOf("roadmap", object("",
		str("phase"),
		str("duration"),
		arrayOf("skills", str("")),
		arrayOf("resources", object("", str("title"), str("url"), str("type"))),
	)),
	str("summary"),
)

// Validate checks a decoded JSON value against f and returns the first violation
// as a KindSchemaViolation *Error naming its path.
func (f Field) Validate(value any) error {
	if err := f.validate("", value); err != nil {
		return err
	}
	return nil
}

func (f Field) validate(path string, value any) *Error {
	label := path
	if label == "" {
		label = "document"
	}
	if value == nil {
		return newSchemaViolation(label, fmt.Sprintf("expected %s, got null", f.Type))
	}

	switch f.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return newSchemaViolation(label, fmt.Sprintf("expected string, got %s", jsonTypeName(value)))
		}
	case TypeArray:
		items, ok := value.([]any)
		if !ok {
			return newSchemaViolation(label, fmt.Sprintf("expected array, got %s", jsonTypeName(value)))
		}
		if f.Elem == nil {
			return nil
		}
		for i, item := range items {
			if err := f.Elem.validate(path+"["+strconv.Itoa(i)+"]", item); err != nil {
				return err
			}
		}
	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return newSchemaViolation(label, fmt.Sprintf("expected object, got %s", jsonTypeName(value)))
		}
		for _, child := range f.Fields {
			childPath := child.Name
			if path != "" {
				childPath = path + "." + child.Name
			}
			v, present := obj[child.Name]
			if !present {
				return newSchemaViolation(childPath, "field is missing")
			}
			if err := child.validate(childPath, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
