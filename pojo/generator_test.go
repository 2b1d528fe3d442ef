package pojo

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/pkg/errors"

	"github.com/harrybrwn/pojogen/java"
	"github.com/harrybrwn/pojogen/mapping"
	"github.com/harrybrwn/pojogen/schema"
)

type testEnv struct {
	registry *mapping.Registry
	store    *schema.Store
	sink     *MemorySink
	gen      *Generator
}

func newTestEnv(t *testing.T, docs map[string]string) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := testEnv{
		registry: mapping.NewRegistry(),
		store:    schema.NewStore(),
		sink:     NewMemorySink(),
	}
	env.registry.SetLogger(logger)
	for base, doc := range docs {
		if err := env.store.Add(base, []byte(doc)); err != nil {
			t.Fatal(err)
		}
	}
	env.gen = New(env.registry, env.store, env.sink, WithLogger(logger))
	return &env
}

func (env *testEnv) mapTo(t *testing.T, uri, class string) {
	t.Helper()
	err := env.registry.AddMapping(uri, mapping.Mapping{ClassName: java.MustParseClassName(class)})
	if err != nil {
		t.Fatal(err)
	}
}

func (env *testEnv) unit(t *testing.T, class string) string {
	t.Helper()
	u, ok := env.sink.Unit(java.MustParseClassName(class))
	if !ok {
		t.Fatalf("no unit for %s", class)
	}
	return u.String()
}

func lines(l ...string) string { return strings.Join(l, "\n") + "\n" }

func TestGenerateObject(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"": `{"type":"object","properties":{"key":{"type":"string","default":"foo"}}}`,
	})
	env.mapTo(t, "#", "test.Test")
	name, err := env.gen.Generate("#")
	is.NoErr(err)
	is.Equal(name.String(), "test.Test")
	is.Equal(len(env.sink.Units()), 1)
	is.Equal(env.unit(t, "test.Test"), lines(
		"// AUTO GENERATED. DO NOT EDIT!",
		"// Source: #",
		"package test;",
		"",
		"public class Test {",
		"\tprivate String key = \"foo\";",
		"",
		"\tpublic String getKey() {",
		"\t\treturn key;",
		"\t}",
		"",
		"\tpublic void setKey(String key) {",
		"\t\tthis.key = key;",
		"\t}",
		"}",
	))
}

func TestGenerateIsMemoized(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"": `{"type":"object","properties":{"key":{"type":"string"}}}`,
	})
	env.mapTo(t, "#", "test.Test")
	first, err := env.gen.Generate("#")
	is.NoErr(err)
	second, err := env.gen.Generate("#")
	is.NoErr(err)
	is.True(first.Equal(second))
	is.Equal(len(env.sink.Units()), 1)

	err = env.registry.AddMapping("#", mapping.Mapping{ClassName: java.NewClassName("test", "Other")})
	is.True(errors.Is(err, mapping.ErrMappingFrozen))
}

func TestGenerateBuiltins(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/all.json": `{
			"type": "object",
			"properties": {
				"count": {"type": "integer"},
				"ratio": {"type": ["number", "null"]},
				"ok": {"type": "boolean"},
				"tags": {"type": "array", "items": {"type": "string"}},
				"anything": {},
				"list": {"type": "array"},
				"nothing": {"type": "null"}
			}
		}`,
	})
	env.mapTo(t, "http://x.com/all.json#", "com.x.All")
	for _, tt := range []struct {
		fragment string
		exp      java.ClassName
	}{
		{"/properties/count", java.Integer},
		{"/properties/ratio", java.Double},
		{"/properties/ok", java.BooleanObject},
		{"/properties/tags", java.ListOf(java.String)},
		{"/properties/anything", java.Object},
		{"/properties/list", java.ListOf(java.Object)},
		{"/properties/nothing", java.Object},
	} {
		name, err := env.gen.Generate("http://x.com/all.json#" + tt.fragment)
		is.NoErr(err)
		is.True(name.Equal(tt.exp))
	}
	is.Equal(len(env.sink.Units()), 0)

	_, err := env.gen.Generate("http://x.com/all.json#")
	is.NoErr(err)
	out := env.unit(t, "com.x.All")
	is.True(strings.Contains(out, "import java.util.List;\n"))
	for _, field := range []string{
		"\tprivate Object anything;\n",
		"\tprivate Integer count;\n",
		"\tprivate List<Object> list;\n",
		"\tprivate Object nothing;\n",
		"\tprivate Boolean ok;\n",
		"\tprivate Double ratio;\n",
		"\tprivate List<String> tags;\n",
		"\tpublic List<String> getTags() {\n",
		"\tpublic void setTags(List<String> tags) {\n",
	} {
		is.True(strings.Contains(out, field))
	}
}

func TestGenerateBuiltinMapping(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/a.json": `{"type":"object","properties":{"id":{"type":"string","format":"uuid"}}}`,
	})
	env.mapTo(t, "http://x.com/a.json#", "com.x.A")
	env.mapTo(t, "http://x.com/a.json#/properties/id", "java.util.UUID")
	_, err := env.gen.Generate("http://x.com/a.json#")
	is.NoErr(err)
	is.Equal(len(env.sink.Units()), 1)
	out := env.unit(t, "com.x.A")
	is.True(strings.Contains(out, "import java.util.UUID;\n"))
	is.True(strings.Contains(out, "\tprivate UUID id;\n"))
}

func TestGenerateSelfReference(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/tree-node.json": `{
			"type": "object",
			"properties": {
				"parent": {"$ref": "#"},
				"children": {"type": "array", "items": {"$ref": "#"}}
			}
		}`,
	})
	mapping.SetFeature(env.registry, mapping.FeatureDefaultPackageName, "com.x")
	name, err := env.gen.Generate("http://x.com/tree-node.json#")
	is.NoErr(err)
	is.Equal(name.String(), "com.x.TreeNode")
	is.Equal(len(env.sink.Units()), 1)
	out := env.unit(t, "com.x.TreeNode")
	is.True(strings.Contains(out, "package com.x;\n"))
	is.True(strings.Contains(out, "public class TreeNode {\n"))
	is.True(strings.Contains(out, "\tprivate List<TreeNode> children;\n"))
	is.True(strings.Contains(out, "\tprivate TreeNode parent;\n"))
}

func TestGenerateCycleAcrossDocuments(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/a.json": `{"type":"object","properties":{"b":{"$ref":"b.json"}}}`,
		"http://x.com/b.json": `{"type":"object","properties":{"a":{"$ref":"a.json#"}}}`,
	})
	mapping.SetFeature(env.registry, mapping.FeatureDefaultPackageName, "com.x")
	name, err := env.gen.Generate("http://x.com/a.json#")
	is.NoErr(err)
	is.Equal(name.String(), "com.x.A")
	units := env.sink.Units()
	is.Equal(len(units), 2)
	// B is finished first since A's body depends on it
	is.Equal(units[0].Name.String(), "com.x.B")
	is.Equal(units[1].Name.String(), "com.x.A")
	is.True(strings.Contains(env.unit(t, "com.x.A"), "\tprivate B b;\n"))
	is.True(strings.Contains(env.unit(t, "com.x.B"), "\tprivate A a;\n"))

	name, err = env.gen.Generate("http://x.com/b.json#")
	is.NoErr(err)
	is.Equal(name.String(), "com.x.B")
	is.Equal(len(env.sink.Units()), 2)
}

func TestGenerateRecursiveArray(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"": `{"$defs": {
			"list": {"type": "array", "items": {"$ref": "#/$defs/list"}},
			"a": {"$ref": "#/$defs/b"},
			"b": {"$ref": "#/$defs/a"}
		}}`,
	})
	for _, uri := range []string{"#/$defs/list", "#/$defs/a"} {
		_, err := env.gen.Generate(uri)
		is.True(errors.Is(err, ErrSchemaShape))
	}
}

func TestGenerateMappingOptions(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/person.json": `{
			"title": "Person",
			"description": "Somebody.\nAnybody.",
			"type": "object",
			"properties": {
				"first-name": {"type": "string", "description": "Given name"},
				"friend": {"$ref": "#"}
			}
		}`,
	})
	generated := java.NewClassName("com.x", "AbstractPerson")
	base := java.NewClassName("com.base", "Base")
	is.NoErr(env.registry.AddMapping("http://x.com/person.json#", mapping.Mapping{
		ClassName:                  java.NewClassName("com.x", "Person"),
		GeneratedClassName:         &generated,
		Extends:                    &base,
		Implements:                 []java.ClassName{java.NewClassName("java.io", "Serializable")},
		IgnoreAdditionalProperties: true,
		Modifiers:                  []java.Modifier{java.Abstract},
	}))
	name, err := env.gen.Generate("http://x.com/person.json#")
	is.NoErr(err)
	is.Equal(name.String(), "com.x.Person")
	_, ok := env.sink.Unit(java.NewClassName("com.x", "Person"))
	is.True(!ok)
	is.Equal(env.unit(t, "com.x.AbstractPerson"), lines(
		"// AUTO GENERATED. DO NOT EDIT!",
		"// Source: http://x.com/person.json#",
		"package com.x;",
		"",
		"import com.base.Base;",
		"import com.fasterxml.jackson.annotation.JsonIgnoreProperties;",
		"import com.fasterxml.jackson.annotation.JsonProperty;",
		"import java.io.Serializable;",
		"",
		"/**",
		" * Person",
		" *",
		" * Somebody.",
		" * Anybody.",
		" */",
		"@JsonIgnoreProperties(ignoreUnknown = true)",
		"public abstract class AbstractPerson extends Base implements Serializable {",
		"\t/** Given name */",
		"\t@JsonProperty(\"first-name\")",
		"\tprivate String firstName;",
		"\tprivate Person friend;",
		"",
		"\tpublic String getFirstName() {",
		"\t\treturn firstName;",
		"\t}",
		"",
		"\tpublic void setFirstName(String firstName) {",
		"\t\tthis.firstName = firstName;",
		"\t}",
		"",
		"\tpublic Person getFriend() {",
		"\t\treturn friend;",
		"\t}",
		"",
		"\tpublic void setFriend(Person friend) {",
		"\t\tthis.friend = friend;",
		"\t}",
		"}",
	))
}

func TestGenerateImportCollision(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"urn:thing": `{"type":"object","properties":{"x":{"type":"string"},"y":{"type":"string"}}}`,
	})
	env.mapTo(t, "urn:thing#", "com.a.Thing")
	env.mapTo(t, "urn:thing#/properties/x", "com.b.Item")
	env.mapTo(t, "urn:thing#/properties/y", "com.c.Item")
	_, err := env.gen.Generate("urn:thing#")
	is.NoErr(err)
	out := env.unit(t, "com.a.Thing")
	is.True(strings.Contains(out, "import com.b.Item;\n"))
	is.True(!strings.Contains(out, "import com.c.Item;"))
	is.True(strings.Contains(out, "\tprivate Item x;\n"))
	is.True(strings.Contains(out, "\tprivate com.c.Item y;\n"))
	is.True(strings.Contains(out, "\tpublic com.c.Item getY() {\n"))
}

func TestGenerateDefaults(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/d.json": `{
			"type": "object",
			"properties": {
				"ratio": {"type": "number", "default": 3},
				"small": {"type": "number", "default": 0.25},
				"count": {"type": "integer", "default": 2},
				"bad": {"type": "integer", "default": "two"},
				"ok": {"type": "boolean", "default": true},
				"text": {"type": "string", "default": "a \"quoted\"\nline"},
				"color": {"$ref": "#/definitions/color", "default": "light-blue"},
				"shade": {"$ref": "#/definitions/color", "default": "purple"}
			},
			"definitions": {
				"color": {"type": "string", "enum": ["red", "light-blue"]}
			}
		}`,
	})
	mapping.SetFeature(env.registry, mapping.FeatureDefaultPackageName, "com.x")
	_, err := env.gen.Generate("http://x.com/d.json#")
	is.NoErr(err)
	is.Equal(len(env.sink.Units()), 2)
	out := env.unit(t, "com.x.D")
	for _, field := range []string{
		"\tprivate Integer bad;\n",
		"\tprivate Color color = Color.LIGHT_BLUE;\n",
		"\tprivate Integer count = 2;\n",
		"\tprivate Boolean ok = true;\n",
		"\tprivate Double ratio = 3.0;\n",
		"\tprivate Color shade;\n",
		"\tprivate Double small = 0.25;\n",
		"\tprivate String text = \"a \\\"quoted\\\"\\nline\";\n",
	} {
		is.True(strings.Contains(out, field))
	}
}

func TestGenerateUnknownType(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"": `{"type":"object","properties":{"x":{"type":"decimal"}}}`,
	})
	_, err := env.gen.Generate("#")
	is.True(errors.Is(err, ErrSchemaShape))
	var cge *CodeGenerationError
	is.True(errors.As(err, &cge))
	is.Equal(cge.Type, "#/properties/x")
	is.True(strings.HasPrefix(err.Error(), "#/properties/x: "))
	is.Equal(len(env.sink.Units()), 0)
}

func TestGenerateLoadError(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"": `{"type":"object","properties":{"x":{"$ref":"http://x.com/missing.json#"}}}`,
	})
	_, err := env.gen.Generate("#")
	is.True(errors.Is(err, schema.ErrNotFound))
	var cge *CodeGenerationError
	is.True(errors.As(err, &cge))
	is.Equal(cge.Type, "http://x.com/missing.json#")
	is.Equal(len(env.sink.Units()), 0)
}

func TestGenerateDuplicateFields(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"": `{"type":"object","properties":{"first-name":{"type":"string"},"firstName":{"type":"string"}}}`,
	})
	_, err := env.gen.Generate("#")
	is.True(errors.Is(err, ErrSchemaShape))
	is.Equal(len(env.sink.Units()), 0)
}

func TestGenerateSelfReferenceThroughRef(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/tree.json": `{
			"$ref": "#/definitions/node",
			"definitions": {
				"node": {
					"type": "object",
					"properties": {
						"child": {"$ref": "#"},
						"siblings": {"type": "array", "items": {"$ref": "#"}}
					}
				}
			}
		}`,
	})
	mapping.SetFeature(env.registry, mapping.FeatureDefaultPackageName, "com.x")
	name, err := env.gen.Generate("http://x.com/tree.json#")
	is.NoErr(err)
	is.Equal(name.String(), "com.x.Node")
	is.Equal(len(env.sink.Units()), 1)
	out := env.unit(t, "com.x.Node")
	is.True(strings.Contains(out, "\tprivate Node child;\n"))
	is.True(strings.Contains(out, "\tprivate List<Node> siblings;\n"))

	again, err := env.gen.Generate("http://x.com/tree.json#/definitions/node")
	is.NoErr(err)
	is.True(again.Equal(name))
	is.Equal(len(env.sink.Units()), 1)
}

func TestGenerateDefaultPackageNames(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/person.json": `{
			"type": "object",
			"properties": {
				"home": {"type": "string", "format": "address"},
				"other": {"type": "string", "format": "person"},
				"work": {"type": "string", "format": "address"}
			}
		}`,
	})
	env.mapTo(t, "http://x.com/person.json#/properties/home", "Address")
	env.mapTo(t, "http://x.com/person.json#/properties/other", "com.other.Person")
	env.mapTo(t, "http://x.com/person.json#/properties/work", "com.other.Address")
	name, err := env.gen.Generate("http://x.com/person.json#")
	is.NoErr(err)
	is.Equal(name.String(), "Person")
	out := env.unit(t, "Person")
	is.True(!strings.Contains(out, "import "))
	is.True(strings.Contains(out, "\npublic class Person {\n"))
	is.True(strings.Contains(out, "\tprivate Address home;\n"))
	is.True(strings.Contains(out, "\tprivate com.other.Person other;\n"))
	is.True(strings.Contains(out, "\tprivate com.other.Address work;\n"))
	is.True(strings.Contains(out, "\tpublic void setWork(com.other.Address work) {\n"))
}

func TestGenerateDerivedNameCollision(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/shop.json": `{
			"type": "object",
			"properties": {
				"color": {"type": "string", "enum": ["red"]},
				"favorite": {"$ref": "#/definitions/color"},
				"paint": {"$ref": "#/definitions/paint"}
			},
			"definitions": {
				"color": {"type": "object", "properties": {"name": {"type": "string"}}},
				"paint": {"type": "object", "properties": {"name": {"type": "string"}}},
				"tint": {"type": "object", "properties": {"name": {"type": "string"}}}
			}
		}`,
	})
	mapping.SetFeature(env.registry, mapping.FeatureDefaultPackageName, "com.x")
	// a mapping that has not been generated yet still owns its name
	env.mapTo(t, "http://x.com/shop.json#/definitions/tint", "com.x.Paint")
	_, err := env.gen.Generate("http://x.com/shop.json#")
	is.NoErr(err)
	is.Equal(len(env.sink.Units()), 4)
	out := env.unit(t, "com.x.Shop")
	is.True(strings.Contains(out, "\tprivate Color color;\n"))
	is.True(strings.Contains(out, "\tprivate Color2 favorite;\n"))
	is.True(strings.Contains(out, "\tprivate Paint2 paint;\n"))
	is.True(strings.Contains(env.unit(t, "com.x.Color"), "\npublic enum Color {\n"))
	is.True(strings.Contains(env.unit(t, "com.x.Color2"), "\npublic class Color2 {\n"))
	is.True(strings.Contains(env.unit(t, "com.x.Paint2"), "\npublic class Paint2 {\n"))

	name, err := env.gen.Generate("http://x.com/shop.json#/definitions/tint")
	is.NoErr(err)
	is.Equal(name.String(), "com.x.Paint")
	is.Equal(len(env.sink.Units()), 5)
}

func TestGenerateMappedNameCollision(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/a.json": `{"$defs": {
			"a": {"type": "object", "properties": {"x": {"type": "string"}}},
			"b": {"type": "object", "properties": {"y": {"type": "string"}}}
		}}`,
	})
	env.mapTo(t, "http://x.com/a.json#/$defs/a", "com.x.Same")
	env.mapTo(t, "http://x.com/a.json#/$defs/b", "com.x.Same")
	_, err := env.gen.Generate("http://x.com/a.json#/$defs/a")
	is.NoErr(err)
	_, err = env.gen.Generate("http://x.com/a.json#/$defs/b")
	is.True(errors.Is(err, ErrConfig))
	is.True(strings.Contains(err.Error(), "http://x.com/a.json#/$defs/a"))
	is.Equal(len(env.sink.Units()), 1)
	is.True(strings.Contains(env.unit(t, "com.x.Same"), "\tprivate String x;\n"))
}

func TestGenerateAvoidsImplicitNames(t *testing.T) {
	is := is.New(t)
	env := newTestEnv(t, map[string]string{
		"http://x.com/a.json": `{"definitions": {
			"override": {"type": "string", "enum": ["yes"]},
			"color": {"type": "string", "enum": ["red"]},
			"string": {"type": "object", "properties": {"x": {"type": "string"}}}
		}}`,
	})
	mapping.SetFeature(env.registry, mapping.FeatureDefaultPackageName, "com.x")
	mapping.SetFeature(env.registry, FeatureEnumStyle, java.KindClass)

	name, err := env.gen.Generate("http://x.com/a.json#/definitions/override")
	is.NoErr(err)
	is.Equal(name.String(), "com.x.Override2")
	is.True(strings.Contains(env.unit(t, "com.x.Override2"), "\t@Override\n\tpublic String toString() {\n"))
	name, err = env.gen.Generate("http://x.com/a.json#/definitions/string")
	is.NoErr(err)
	is.Equal(name.String(), "com.x.String2")
	is.True(strings.Contains(env.unit(t, "com.x.String2"), "\tprivate String x;\n"))

	// a mapped class of the same package hides java.lang
	env.mapTo(t, "http://x.com/a.json#/definitions/other", "com.x.Override")
	_, err = env.gen.Generate("http://x.com/a.json#/definitions/color")
	is.NoErr(err)
	out := env.unit(t, "com.x.Color")
	is.True(strings.Contains(out, "\t@java.lang.Override\n\tpublic String toString() {\n"))
	is.True(!strings.Contains(out, "\t@Override\n"))
}

func TestDerivedName(t *testing.T) {
	is := is.New(t)
	for _, tt := range []struct{ uri, exp string }{
		{"http://x.com/person.json#", "person"},
		{"http://x.com/person.json", "person"},
		{"http://x.com/person.json#/properties/address", "address"},
		{"http://x.com/person.json#/definitions/color", "color"},
		{"http://x.com/person.json#/$defs/color/properties/hue", "hue"},
		{"http://x.com/person.json#/properties/tags/items", "tags"},
		{"http://x.com/person.json#/properties/items", "items"},
		{"http://x.com/person.json#/allOf/0", "person"},
		{"http://x.com/s/first%20name.yaml#/properties/a~1b", "a/b"},
		{"#", "Root"},
		{"http://x.com/", "Root"},
		{"urn:example:thing#", "example:thing"},
	} {
		is.Equal(derivedName(tt.uri), tt.exp)
	}
}

func TestJavaString(t *testing.T) {
	is := is.New(t)
	is.Equal(javaString(`plain`), `"plain"`)
	is.Equal(javaString("a\"b\\c\n\t"), `"a\"b\\c\n\t"`)
	is.Equal(javaString("\x01"), `"\u0001"`)
	is.Equal(javaString("é"), `"é"`)
	is.Equal(javaString("😀"), `"\ud83d\ude00"`)
}
