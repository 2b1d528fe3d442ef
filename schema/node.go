package schema

import (
	"bytes"
	"maps"
	"slices"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeNull    Type = "null"
)

// UnmarshalJSON accepts both "type": "string" and "type": ["string", "null"].
// For the array form the first non-null entry is used.
func (t *Type) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '[' {
		var types []Type
		if err := json.Unmarshal(b, &types); err != nil {
			return errors.Wrap(err, "invalid type list")
		}
		*t = ""
		for _, typ := range types {
			if typ != TypeNull {
				*t = typ
				return nil
			}
		}
		if len(types) > 0 {
			*t = TypeNull
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrap(err, "invalid type")
	}
	*t = Type(s)
	return nil
}

// Node is the subset of a JSON Schema used to generate Java types.
type Node struct {
	ID          string `json:"$id,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Type        Type   `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Format      string `json:"format,omitempty"`

	Properties           map[string]*Node `json:"properties,omitempty"`
	Required             []string         `json:"required,omitempty"`
	Items                *Node            `json:"items,omitempty"`
	AdditionalProperties json.RawMessage  `json:"additionalProperties,omitempty"`

	// Enum is kept raw so that malformed values can be reported by the
	// generator instead of failing the decode.
	Enum    json.RawMessage `json:"enum,omitempty"`
	Default json.RawMessage `json:"default,omitempty"`

	Definitions map[string]*Node `json:"definitions,omitempty"`
	Defs        map[string]*Node `json:"$defs,omitempty"`
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func (n *Node) HasEnum() bool { return !isNull(n.Enum) }

func (n *Node) HasDefault() bool { return !isNull(n.Default) }

// IsEmpty reports whether the node carries no type information at all.
func (n *Node) IsEmpty() bool {
	return len(n.Type) == 0 && len(n.Ref) == 0 && len(n.Properties) == 0 && !n.HasEnum()
}

func (n *Node) IsRequired(name string) bool {
	return slices.Contains(n.Required, name)
}

// PropertyNames returns the property names in sorted order.
func (n *Node) PropertyNames() []string {
	return slices.Sorted(maps.Keys(n.Properties))
}
