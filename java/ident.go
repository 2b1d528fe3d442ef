package java

import (
	"strings"
	"unicode"

	"github.com/harrybrwn/pojogen/internal/str"
)

var keywords = map[string]struct{}{
	"abstract": {}, "assert": {}, "boolean": {}, "break": {}, "byte": {}, "case": {},
	"catch": {}, "char": {}, "class": {}, "const": {}, "continue": {}, "default": {},
	"do": {}, "double": {}, "else": {}, "enum": {}, "extends": {}, "final": {},
	"finally": {}, "float": {}, "for": {}, "goto": {}, "if": {}, "implements": {},
	"import": {}, "instanceof": {}, "int": {}, "interface": {}, "long": {}, "native": {},
	"new": {}, "package": {}, "private": {}, "protected": {}, "public": {}, "return": {},
	"short": {}, "static": {}, "strictfp": {}, "super": {}, "switch": {}, "synchronized": {},
	"this": {}, "throw": {}, "throws": {}, "transient": {}, "try": {}, "void": {},
	"volatile": {}, "true": {}, "false": {}, "null": {}, "_": {},
}

func IsKeyword(s string) bool {
	_, ok := keywords[s]
	return ok
}

// FieldName turns a property name into a lower camel case identifier.
func FieldName(property string) string {
	return Identifier(str.Camel(property))
}

// TypeName turns a free-form name into an upper camel case identifier.
func TypeName(name string) string {
	return Identifier(str.Pascal(name))
}

// ConstantName upper-cases an enum literal: "light-blue" becomes "LIGHT_BLUE".
func ConstantName(literal string) string {
	if len(literal) == 0 {
		return "EMPTY"
	}
	var b strings.Builder
	for _, r := range literal {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteByte('_')
		}
	}
	return Identifier(b.String())
}

// Identifier makes s a legal Java identifier.
func Identifier(s string) string {
	if len(s) == 0 {
		s = "_"
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	id := b.String()
	if IsKeyword(id) {
		id += "_"
	}
	return id
}
