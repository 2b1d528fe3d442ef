package java

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind is the keyword that opens a type declaration.
type Kind string

const (
	KindClass     Kind = "class"
	KindEnum      Kind = "enum"
	KindInterface Kind = "interface"
)

func (k Kind) Valid() bool {
	switch k {
	case KindClass, KindEnum, KindInterface:
		return true
	}
	return false
}

type Visibility string

const (
	Public         Visibility = "public"
	Protected      Visibility = "protected"
	Private        Visibility = "private"
	PackagePrivate Visibility = ""
)

type Modifier string

const (
	Abstract Modifier = "abstract"
	Final    Modifier = "final"
	Static   Modifier = "static"
)

func ParseModifier(s string) (Modifier, error) {
	m := Modifier(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Abstract, Final, Static:
		return m, nil
	}
	return "", errors.Errorf("unknown modifier %q", s)
}
