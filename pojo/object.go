package pojo

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/harrybrwn/pojogen/array"
	"github.com/harrybrwn/pojogen/java"
	"github.com/harrybrwn/pojogen/mapping"
	"github.com/harrybrwn/pojogen/schema"
)

type property struct {
	// name in the json document
	name  string
	field string
	typ   java.ClassName
	node  *schema.Node
	value string
	// enum constant used as the default
	constant string
}

func (p *property) renamed() bool { return p.field != p.name }

// generateObject writes a bean with one private field, a getter and a setter
// per property.
func (g *Generator) generateObject(uri string, node *schema.Node, m *mapping.Mapping) error {
	names := node.PropertyNames()
	props := make([]*property, 0, len(names))
	fields := make(map[string]string, len(names))
	// resolve everything before the unit is opened
	for _, name := range names {
		p := property{
			name:  name,
			field: java.FieldName(name),
			node:  node.Properties[name],
		}
		if other, ok := fields[p.field]; ok {
			return shapeError(uri, "properties %q and %q both map to the field %q", other, name, p.field)
		}
		fields[p.field] = name
		typ, err := g.Resolve(schema.Child(uri, "properties", name))
		if err != nil {
			return err
		}
		p.typ = typ
		if p.node != nil && p.node.HasDefault() {
			g.defaultValue(uri, &p)
		}
		props = append(props, &p)
	}

	name := m.Generated()
	return g.emit(uri, name, func(w *java.Writer) error {
		requestSupertypes(w, m)
		if m.IgnoreAdditionalProperties {
			w.RequestImport(java.JsonIgnoreProperties)
		}
		for _, p := range props {
			w.RequestImport(p.typ)
		}
		if array.Any(props, (*property).renamed) {
			w.RequestImport(java.JsonProperty)
		}

		w.WriteJavadoc(javadoc(node)...)
		if m.IgnoreAdditionalProperties {
			w.WriteAnnotation(java.JsonIgnoreProperties, "ignoreUnknown = true")
		}
		decl := java.ClassDecl{
			Name:       name,
			Kind:       java.KindClass,
			Visibility: java.Public,
			Modifiers:  m.Modifiers,
			Implements: m.Implements,
		}
		if m.Extends != nil {
			decl.Extends = []java.ClassName{*m.Extends}
		}
		w.StartClass(decl)
		for _, p := range props {
			if p.node != nil {
				w.WriteJavadoc(javadoc(p.node)...)
			}
			if p.renamed() {
				w.WriteAnnotation(java.JsonProperty, javaString(p.name))
			}
			value := p.value
			if len(p.constant) > 0 {
				value = w.ShortName(p.typ) + "." + p.constant
			}
			w.WriteField(java.Field{
				Visibility: java.Private,
				Type:       p.typ,
				Name:       p.field,
				Value:      value,
			})
		}
		for _, p := range props {
			w.WriteEmptyLine()
			w.StartMethod(java.Method{
				Visibility: java.Public,
				Returns:    p.typ,
				Name:       getterName(p.field),
			})
			w.WriteCode("return " + p.field + ";")
			w.EndMethod()

			w.WriteEmptyLine()
			w.StartMethod(java.Method{
				Visibility: java.Public,
				Returns:    java.Void,
				Name:       setterName(p.field),
				Params:     []java.Param{{Type: p.typ, Name: p.field}},
			})
			w.WriteCode("this." + p.field + " = " + p.field + ";")
			w.EndMethod()
		}
		w.EndClass()
		return nil
	})
}

// defaultValue renders the "default" of a property as a Java expression.
// Defaults that do not fit the property's type are dropped with a warning.
func (g *Generator) defaultValue(uri string, p *property) {
	var ok bool
	if constants, isEnum := g.enums[p.typ.String()]; isEnum {
		var s string
		if json.Unmarshal(p.node.Default, &s) == nil {
			p.constant, ok = constants[s]
		}
	} else {
		p.value, ok = literal(p.typ, p.node.Default)
	}
	if !ok {
		g.logger.Warn("ignoring default value",
			"uri", uri,
			"property", p.name,
			"type", p.typ.String(),
			"default", string(p.node.Default))
	}
}

func literal(typ java.ClassName, raw json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch {
	case typ.Equal(java.String):
		s, ok := v.(string)
		if !ok {
			return "", false
		}
		return javaString(s), true
	case typ.Equal(java.Integer):
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return "", false
		}
		return strconv.FormatInt(int64(f), 10), true
	case typ.Equal(java.Double):
		f, ok := v.(float64)
		if !ok {
			return "", false
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s, true
	case typ.Equal(java.BooleanObject):
		b, ok := v.(bool)
		if !ok {
			return "", false
		}
		return strconv.FormatBool(b), true
	}
	return "", false
}
