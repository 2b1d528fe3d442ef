package java

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/harrybrwn/pojogen/array"
)

// ImplicitPackage is always in scope and never needs an import.
const ImplicitPackage = "java.lang"

var implicitNames = map[string]struct{}{
	"Boolean": {}, "Byte": {}, "CharSequence": {}, "Character": {}, "Class": {},
	"Cloneable": {}, "Comparable": {}, "Deprecated": {}, "Double": {}, "Enum": {},
	"Error": {}, "Exception": {}, "Float": {}, "FunctionalInterface": {},
	"Integer": {}, "Iterable": {}, "Long": {}, "Math": {}, "Number": {},
	"Object": {}, "Override": {}, "Record": {}, "Runnable": {},
	"RuntimeException": {}, "SafeVarargs": {}, "Short": {}, "String": {},
	"StringBuilder": {}, "SuppressWarnings": {}, "System": {}, "Thread": {},
	"Throwable": {}, "Void": {},
}

// IsImplicitName reports whether raw names a commonly used java.lang type
// that a class of the same name would hide.
func IsImplicitName(raw string) bool {
	_, ok := implicitNames[raw]
	return ok
}

// ClassName is a reference to a Java type: the package, the unqualified name
// and any generic type arguments. It is an immutable value; compare with Equal.
type ClassName struct {
	Package  string
	Raw      string
	TypeArgs []ClassName
}

var (
	Void    = ClassName{Raw: "void"}
	Int     = ClassName{Raw: "int"}
	Boolean = ClassName{Raw: "boolean"}

	String        = ClassName{Package: ImplicitPackage, Raw: "String"}
	Object        = ClassName{Package: ImplicitPackage, Raw: "Object"}
	Integer       = ClassName{Package: ImplicitPackage, Raw: "Integer"}
	Double        = ClassName{Package: ImplicitPackage, Raw: "Double"}
	BooleanObject = ClassName{Package: ImplicitPackage, Raw: "Boolean"}
	Override      = ClassName{Package: ImplicitPackage, Raw: "Override"}

	Objects = ClassName{Package: "java.util", Raw: "Objects"}
	List    = ClassName{Package: "java.util", Raw: "List"}

	JsonProperty         = ClassName{Package: "com.fasterxml.jackson.annotation", Raw: "JsonProperty"}
	JsonIgnoreProperties = ClassName{Package: "com.fasterxml.jackson.annotation", Raw: "JsonIgnoreProperties"}
)

func NewClassName(pkg, raw string, args ...ClassName) ClassName {
	return ClassName{Package: pkg, Raw: raw, TypeArgs: args}
}

// ListOf returns java.util.List parameterized with elem.
func ListOf(elem ClassName) ClassName {
	return List.WithTypeArgs(elem)
}

// WithTypeArgs returns a copy of c with the given type arguments.
func (c ClassName) WithTypeArgs(args ...ClassName) ClassName {
	c.TypeArgs = append([]ClassName(nil), args...)
	return c
}

// Qualified returns the dotted name without type arguments.
func (c ClassName) Qualified() string {
	if len(c.Package) == 0 {
		return c.Raw
	}
	return c.Package + "." + c.Raw
}

func (c ClassName) String() string {
	if len(c.TypeArgs) == 0 {
		return c.Qualified()
	}
	return c.Qualified() + "<" + strings.Join(array.Map(c.TypeArgs, ClassName.String), ",") + ">"
}

func (c ClassName) IsZero() bool {
	return len(c.Raw) == 0 && len(c.Package) == 0 && len(c.TypeArgs) == 0
}

func (c ClassName) Equal(o ClassName) bool {
	if c.Package != o.Package || c.Raw != o.Raw || len(c.TypeArgs) != len(o.TypeArgs) {
		return false
	}
	for i := range c.TypeArgs {
		if !c.TypeArgs[i].Equal(o.TypeArgs[i]) {
			return false
		}
	}
	return true
}

// MarshalText lets class names be used in yaml and json documents.
func (c ClassName) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClassName) UnmarshalText(b []byte) error {
	parsed, err := ParseClassName(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func MustParseClassName(s string) ClassName {
	c, err := ParseClassName(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClassName parses the canonical form "pkg.Outer.Inner<pkg2.A, pkg2.B>".
// Whitespace around the name and around type arguments is ignored.
func ParseClassName(s string) (ClassName, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return ClassName{}, errors.New("empty class name")
	}
	var (
		c    ClassName
		base = s
	)
	if ix := strings.IndexByte(s, '<'); ix >= 0 {
		if s[len(s)-1] != '>' {
			return ClassName{}, errors.Errorf("invalid class name %q: expected '>' at end of type arguments", s)
		}
		base = strings.TrimSpace(s[:ix])
		args, err := splitTypeArgs(s[ix+1 : len(s)-1])
		if err != nil {
			return ClassName{}, errors.Wrapf(err, "invalid class name %q", s)
		}
		c.TypeArgs = make([]ClassName, 0, len(args))
		for _, a := range args {
			arg, err := ParseClassName(a)
			if err != nil {
				return ClassName{}, errors.Wrapf(err, "invalid type argument in %q", s)
			}
			c.TypeArgs = append(c.TypeArgs, arg)
		}
	}
	if strings.ContainsAny(base, "<>, \t\n") {
		return ClassName{}, errors.Errorf("invalid class name %q", s)
	}
	if ix := strings.LastIndexByte(base, '.'); ix >= 0 {
		c.Package = base[:ix]
		c.Raw = base[ix+1:]
	} else {
		c.Raw = base
	}
	if len(c.Raw) == 0 {
		return ClassName{}, errors.Errorf("invalid class name %q: missing simple name", s)
	}
	return c, nil
}

// splitTypeArgs splits on commas that are not nested inside another
// argument list.
func splitTypeArgs(s string) ([]string, error) {
	var (
		args  []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced '>'")
			}
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unbalanced '<'")
	}
	args = append(args, s[start:])
	for i, a := range args {
		a = strings.TrimSpace(a)
		if len(a) == 0 {
			return nil, errors.New("empty type argument")
		}
		args[i] = a
	}
	return args, nil
}
