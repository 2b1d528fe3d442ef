package pojo

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/harrybrwn/pojogen/java"
	"github.com/harrybrwn/pojogen/mapping"
	"github.com/harrybrwn/pojogen/schema"
)

// FeatureEnumStyle selects how string enums are generated: as a java enum
// (java.KindEnum) or as a class with constants (java.KindClass).
var FeatureEnumStyle = mapping.Feature[java.Kind]{Name: "enum-style", Default: java.KindEnum}

// Generator turns schema types into Java classes. One Generator is used per
// run; it remembers every type it has resolved so that each class is only
// written once and recursive schemas terminate.
type Generator struct {
	registry *mapping.Registry
	loader   schema.Loader
	sink     Sink
	logger   *slog.Logger

	// type uri -> name used to reference the type
	memo map[string]java.ClassName
	// uris currently being resolved -> the $ref target they are waiting on
	resolving map[string]string
	// generated class -> uri it was generated for
	classes map[string]string
	// enum class -> literal -> constant name
	enums map[string]map[string]string
}

type Option func(*Generator)

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func New(registry *mapping.Registry, loader schema.Loader, sink Sink, opts ...Option) *Generator {
	g := &Generator{
		registry:  registry,
		loader:    loader,
		sink:      sink,
		logger:    slog.Default(),
		memo:      make(map[string]java.ClassName),
		resolving: make(map[string]string),
		classes:   make(map[string]string),
		enums:     make(map[string]map[string]string),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate writes the class for the type at uri, and every class it depends
// on, to the sink. It returns the name other code should use to refer to the
// type. Built-in types (strings, numbers, lists, ...) produce no output.
func (g *Generator) Generate(uri string) (java.ClassName, error) {
	name, err := g.Resolve(uri)
	if err != nil {
		return java.ClassName{}, err
	}
	g.logger.Info("generated type", "uri", uri, "class", name.String())
	return name, nil
}

// Resolve returns the class name for uri, generating it if needed.
func (g *Generator) Resolve(uri string) (java.ClassName, error) {
	if name, ok := g.memo[uri]; ok {
		return name, nil
	}
	if _, ok := g.resolving[uri]; ok {
		if name, ok := g.reentered(uri); ok {
			return name, nil
		}
		return java.ClassName{}, shapeError(uri, "recursive type must be an object")
	}
	g.resolving[uri] = ""
	defer delete(g.resolving, uri)

	g.logger.Debug("resolving type", "uri", uri)
	node, err := g.loader.Load(uri)
	if err != nil {
		return java.ClassName{}, wrapError(uri, errors.Wrap(err, "failed to load schema"))
	}
	if len(node.Ref) > 0 {
		return g.resolveRef(uri, node)
	}

	switch node.Type {
	case schema.TypeString:
		if node.HasEnum() {
			return g.declare(uri, node, g.generateEnum)
		}
		return g.builtin(uri, java.String)
	case schema.TypeInteger:
		return g.builtin(uri, java.Integer)
	case schema.TypeNumber:
		return g.builtin(uri, java.Double)
	case schema.TypeBoolean:
		return g.builtin(uri, java.BooleanObject)
	case schema.TypeNull:
		return g.builtin(uri, java.Object)
	case schema.TypeArray:
		return g.resolveArray(uri, node)
	case schema.TypeObject:
		return g.declare(uri, node, g.generateObject)
	case "":
		switch {
		case len(node.Properties) > 0:
			return g.declare(uri, node, g.generateObject)
		case node.HasEnum():
			return g.declare(uri, node, g.generateEnum)
		}
		return g.builtin(uri, java.Object)
	}
	return java.ClassName{}, shapeError(uri, "unsupported type %q", node.Type)
}

func (g *Generator) resolveRef(uri string, node *schema.Node) (java.ClassName, error) {
	target, err := schema.ResolveRef(uri, node.Ref)
	if err != nil {
		return java.ClassName{}, shapeError(uri, "invalid $ref: %v", err)
	}
	g.resolving[uri] = target
	name, err := g.Resolve(target)
	if err != nil {
		return java.ClassName{}, err
	}
	g.memo[uri] = name
	return name, nil
}

// reentered follows the $ref chain of a uri that is already being resolved.
// The recursion is fine when the chain reaches a class that has been
// declared.
func (g *Generator) reentered(uri string) (java.ClassName, bool) {
	target := g.resolving[uri]
	for range len(g.resolving) {
		if len(target) == 0 {
			break
		}
		if name, ok := g.memo[target]; ok {
			return name, true
		}
		target = g.resolving[target]
	}
	return java.ClassName{}, false
}

func (g *Generator) resolveArray(uri string, node *schema.Node) (java.ClassName, error) {
	if m, ok := g.registry.Mapping(uri); ok {
		return g.remember(uri, m.ClassName), nil
	}
	item := java.Object
	if node.Items != nil {
		var err error
		item, err = g.Resolve(schema.Child(uri, "items"))
		if err != nil {
			return java.ClassName{}, err
		}
	}
	return g.remember(uri, java.ListOf(item)), nil
}

// builtin resolves types that map onto existing classes. A mapping replaces
// the default class but nothing is generated.
func (g *Generator) builtin(uri string, name java.ClassName) (java.ClassName, error) {
	if m, ok := g.registry.Mapping(uri); ok {
		name = m.ClassName
	}
	return g.remember(uri, name), nil
}

func (g *Generator) remember(uri string, name java.ClassName) java.ClassName {
	g.memo[uri] = name
	return name
}

type typeGenerator func(uri string, node *schema.Node, m *mapping.Mapping) error

// declare resolves a type that needs its own class. The type is memoized
// before its body is generated so that references back to it terminate.
func (g *Generator) declare(uri string, node *schema.Node, generate typeGenerator) (java.ClassName, error) {
	m, ok := g.registry.Mapping(uri)
	if !ok {
		name := g.className(uri)
		if err := g.registry.AddMapping(uri, mapping.Mapping{ClassName: name}); err != nil {
			return java.ClassName{}, wrapError(uri, errors.Wrap(ErrConfig, err.Error()))
		}
		m, _ = g.registry.Mapping(uri)
	}
	generated := m.Generated().String()
	if other, ok := g.classes[generated]; ok && other != uri {
		return java.ClassName{}, configError(uri, "class %s is already generated for %s", generated, other)
	}
	g.classes[generated] = uri
	g.registry.Freeze(uri)
	g.memo[uri] = m.ClassName

	if err := generate(uri, node, &m); err != nil {
		delete(g.memo, uri)
		return java.ClassName{}, wrapError(uri, err)
	}
	g.logger.Debug("generated class",
		"uri", uri,
		"class", m.Generated().String(),
		"referenced-as", m.ClassName.String())
	return m.ClassName, nil
}

// className derives a class name for a type without a mapping. A name that
// is already used by another type, or that would hide a java.lang type, gets
// a numeric suffix.
func (g *Generator) className(uri string) java.ClassName {
	pkg := g.registry.DefaultPackageName(uri)
	base := java.TypeName(derivedName(uri))
	name := java.NewClassName(pkg, base)
	for i := 2; g.taken(uri, name); i++ {
		name = java.NewClassName(pkg, base+strconv.Itoa(i))
	}
	if name.Raw != base {
		g.logger.Warn("renamed derived class", "uri", uri, "name", base, "class", name.String())
	}
	return name
}

func (g *Generator) taken(uri string, name java.ClassName) bool {
	if java.IsImplicitName(name.Raw) {
		return true
	}
	if _, ok := g.classes[name.String()]; ok {
		return true
	}
	owner, ok := g.registry.Owner(name)
	return ok && owner != uri
}

// emit opens an output unit for name and writes the file header before
// handing the writer to body.
func (g *Generator) emit(uri string, name java.ClassName, body func(w *java.Writer) error) (err error) {
	out, err := g.sink.Create(name)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", name)
	}
	defer func() {
		if e := out.Close(); e != nil && err == nil {
			err = errors.Wrapf(e, "failed to close %s", name)
		}
	}()
	w := java.NewWriter(out)
	w.WriteComment("AUTO GENERATED. DO NOT EDIT!", "Source: "+uri)
	w.WritePackage(name.Package)
	w.RequestImport(name)
	// classes of the same package hide imports and java.lang
	for _, n := range g.registry.ClassNames(name.Package) {
		w.RequestImport(n)
	}
	if err = body(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write %s", name)
	}
	return nil
}

// requestSupertypes imports the mapping's supertypes ahead of any
// declaration.
func requestSupertypes(w *java.Writer, m *mapping.Mapping) {
	if m.Extends != nil {
		w.RequestImport(*m.Extends)
	}
	for _, i := range m.Implements {
		w.RequestImport(i)
	}
}

func javadoc(node *schema.Node) []string {
	var lines []string
	if len(node.Title) > 0 {
		lines = append(lines, node.Title)
	}
	if len(node.Description) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, strings.Split(strings.TrimSpace(node.Description), "\n")...)
	}
	return lines
}
