package pojo

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/harrybrwn/pojogen/java"
	"github.com/harrybrwn/pojogen/mapping"
	"github.com/harrybrwn/pojogen/schema"
)

// enumEmitter writes the body of a string enum in one of the supported styles.
type enumEmitter interface {
	// Prepare requests the imports needed by the generated code.
	Prepare(w *java.Writer)
	// EmitValue is called for every literal in document order.
	EmitValue(w *java.Writer, constant, literal string)
	// EmitSupportCode writes everything after the values.
	EmitSupportCode(w *java.Writer) error
}

func newEnumEmitter(style java.Kind, name java.ClassName) (enumEmitter, error) {
	switch style {
	case java.KindClass:
		return &classEnum{name: name}, nil
	case java.KindEnum:
		return &nativeEnum{name: name}, nil
	}
	return nil, errors.Errorf("unknown enum style %q", style)
}

// generateEnum writes a string schema with an "enum" list.
func (g *Generator) generateEnum(uri string, node *schema.Node, m *mapping.Mapping) error {
	literals, err := enumLiterals(uri, node.Enum)
	if err != nil {
		return err
	}
	style := mapping.GetFeature(g.registry, FeatureEnumStyle)
	name := m.Generated()
	emitter, err := newEnumEmitter(style, name)
	if err != nil {
		return configError(uri, "%v", err)
	}
	if style == java.KindEnum && len(literals) == 0 {
		return shapeError(uri, "an enum needs at least one value")
	}
	switch {
	case style == java.KindEnum && len(m.Modifiers) > 0:
		return configError(uri, "modifiers are not allowed on a native enum")
	case m.HasModifier(java.Abstract):
		// the constants instantiate the class
		return configError(uri, "an enum class cannot be abstract")
	}
	constants := make(map[string]string, len(literals))
	seen := make(map[string]string, len(literals))
	for _, lit := range literals {
		c := java.ConstantName(lit)
		if other, ok := seen[c]; ok {
			return shapeError(uri, "enum values %q and %q both map to the constant %s", other, lit, c)
		}
		seen[c] = lit
		constants[lit] = c
	}

	err = g.emit(uri, name, func(w *java.Writer) error {
		requestSupertypes(w, m)
		emitter.Prepare(w)
		decl := java.ClassDecl{
			Name:       name,
			Kind:       style,
			Visibility: java.Public,
			Modifiers:  m.Modifiers,
			Implements: m.Implements,
		}
		if style == java.KindClass && m.Extends != nil {
			decl.Extends = []java.ClassName{*m.Extends}
		}
		w.WriteJavadoc(javadoc(node)...)
		w.StartClass(decl)
		for _, lit := range literals {
			emitter.EmitValue(w, constants[lit], lit)
		}
		if err := emitter.EmitSupportCode(w); err != nil {
			return err
		}
		w.EndClass()
		return nil
	})
	if err != nil {
		return err
	}
	g.enums[m.ClassName.String()] = constants
	return nil
}

// enumLiterals checks the raw "enum" keyword and returns its string values.
func enumLiterals(uri string, raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, shapeError(uri, "expected an array for enum, got %s", raw)
	}
	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, shapeError(uri, "invalid enum: %v", err)
	}
	literals := make([]string, 0, len(values))
	for _, v := range values {
		var s string
		if err := json.Unmarshal(v, &s); err != nil || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return nil, shapeError(uri, "expected string enum values, got %s", v)
		}
		literals = append(literals, s)
	}
	return literals, nil
}

// valueSupport is the code shared by both styles: the value field, the
// constructor and the accessors.
func valueSupport(w *java.Writer, ctor java.Visibility) {
	w.WriteEmptyLine()
	w.WriteField(java.Field{
		Visibility: java.Private,
		Modifiers:  []java.Modifier{java.Final},
		Type:       java.String,
		Name:       "value",
	})
	w.WriteEmptyLine()
	w.StartConstructor(ctor, java.Param{Type: java.String, Name: "value"})
	w.WriteCode("this.value = value;")
	w.EndMethod()

	w.WriteEmptyLine()
	w.StartMethod(java.Method{Visibility: java.Public, Returns: java.String, Name: "getValue"})
	w.WriteCode("return value;")
	w.EndMethod()

	w.WriteEmptyLine()
	w.WriteAnnotation(java.Override)
	w.StartMethod(java.Method{Visibility: java.Public, Returns: java.String, Name: "toString"})
	w.WriteCode("return getValue();")
	w.EndMethod()
}

// classEnum emits a final-field-per-value class:
//
//	public static final Color RED = new Color("red");
type classEnum struct {
	name java.ClassName
}

func (e *classEnum) Prepare(w *java.Writer) {
	w.RequestImport(java.Objects)
}

func (e *classEnum) EmitValue(w *java.Writer, constant, literal string) {
	w.WriteField(java.Field{
		Visibility: java.Public,
		Modifiers:  []java.Modifier{java.Static, java.Final},
		Type:       e.name,
		Name:       constant,
		Value:      "new " + e.name.Raw + "(" + javaString(literal) + ")",
	})
}

func (e *classEnum) EmitSupportCode(w *java.Writer) error {
	valueSupport(w, java.Public)
	objects := w.ShortName(java.Objects)

	w.WriteEmptyLine()
	w.WriteAnnotation(java.Override)
	w.StartMethod(java.Method{Visibility: java.Public, Returns: java.Int, Name: "hashCode"})
	w.WriteCode("return " + objects + ".hash(value);")
	w.EndMethod()

	w.WriteEmptyLine()
	w.WriteAnnotation(java.Override)
	w.StartMethod(java.Method{
		Visibility: java.Public,
		Returns:    java.Boolean,
		Name:       "equals",
		Params:     []java.Param{{Type: java.Object, Name: "obj"}},
	})
	w.WriteCode(
		"if (!(obj instanceof "+e.name.Raw+")) {",
		"\treturn false;",
		"}",
		"return "+objects+".equals(value, (("+e.name.Raw+") obj).value);",
	)
	w.EndMethod()
	return nil
}

// nativeEnum emits a java enum:
//
//	RED("red"),
//	GREEN("green");
type nativeEnum struct {
	name   java.ClassName
	values int
}

func (e *nativeEnum) Prepare(*java.Writer) {}

func (e *nativeEnum) EmitValue(w *java.Writer, constant, literal string) {
	if e.values > 0 {
		w.Write(",\n")
	}
	w.WriteIndent()
	w.Write(constant + "(" + javaString(literal) + ")")
	e.values++
}

func (e *nativeEnum) EmitSupportCode(w *java.Writer) error {
	if e.values == 0 {
		return errors.Wrapf(ErrSchemaShape, "enum %s has no values", e.name)
	}
	w.Write(";\n")
	valueSupport(w, java.Private)
	return nil
}
