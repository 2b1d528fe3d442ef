package mapping

import (
	"slices"

	"github.com/harrybrwn/pojogen/java"
)

// Mapping binds a schema type URI to the Java class that represents it.
type Mapping struct {
	// Target is the type URI this mapping applies to.
	Target string
	// ClassName is how other generated code refers to the type.
	ClassName java.ClassName
	// GeneratedClassName, when set, is the name of the class that is actually
	// emitted. This allows ClassName to be a hand-written subclass of the
	// generated one.
	GeneratedClassName *java.ClassName

	Extends                    *java.ClassName
	Implements                 []java.ClassName
	IgnoreAdditionalProperties bool
	Modifiers                  []java.Modifier
}

// Generated returns the name of the emitted class.
func (m *Mapping) Generated() java.ClassName {
	if m.GeneratedClassName != nil {
		return *m.GeneratedClassName
	}
	return m.ClassName
}

func (m *Mapping) HasModifier(mod java.Modifier) bool {
	return slices.Contains(m.Modifiers, mod)
}

func (m Mapping) clone() Mapping {
	m.ClassName = cloneName(m.ClassName)
	if m.GeneratedClassName != nil {
		g := cloneName(*m.GeneratedClassName)
		m.GeneratedClassName = &g
	}
	if m.Extends != nil {
		e := cloneName(*m.Extends)
		m.Extends = &e
	}
	if m.Implements != nil {
		impls := make([]java.ClassName, len(m.Implements))
		for i, n := range m.Implements {
			impls[i] = cloneName(n)
		}
		m.Implements = impls
	}
	m.Modifiers = slices.Clone(m.Modifiers)
	return m
}

func cloneName(n java.ClassName) java.ClassName {
	if n.TypeArgs != nil {
		args := make([]java.ClassName, len(n.TypeArgs))
		for i, a := range n.TypeArgs {
			args[i] = cloneName(a)
		}
		n.TypeArgs = args
	}
	return n
}
