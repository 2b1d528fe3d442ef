package pojo

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/harrybrwn/pojogen/schema"
)

// derivedName picks a class name for a type without a mapping: the last
// named segment of the fragment, else the document's file name, else "Root".
//
//	http://x.com/person.json#                          -> person
//	http://x.com/person.json#/properties/address       -> address
//	http://x.com/person.json#/definitions/color        -> color
//	http://x.com/person.json#/properties/tags/items    -> tags
func derivedName(uri string) string {
	var name string
	tokens, err := schema.ParsePointer(schema.Fragment(uri))
	if err == nil {
		for i := 0; i < len(tokens); i++ {
			switch tokens[i] {
			case "properties", "definitions", "$defs", "patternProperties":
				if i+1 < len(tokens) {
					i++
					name = tokens[i]
				}
			case "items", "additionalProperties", "allOf", "anyOf", "oneOf", "not":
			default:
				// array indices below allOf and friends
				if !isIndex(tokens[i]) {
					name = tokens[i]
				}
			}
		}
	}
	if len(name) > 0 {
		return name
	}
	base := schema.StripFragment(uri)
	if u, err := url.Parse(base); err == nil {
		p := u.Path
		if len(p) == 0 {
			p = u.Opaque
		}
		name = strings.TrimSuffix(path.Base(p), path.Ext(p))
	}
	switch name {
	case "", ".", "/":
		return "Root"
	}
	return name
}

func isIndex(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// upperFirst is used to build accessor names: "firstName" -> "FirstName".
func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func getterName(field string) string { return "get" + upperFirst(field) }
func setterName(field string) string { return "set" + upperFirst(field) }

// javaString quotes s as a Java string literal.
func javaString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			switch {
			case r < 0x20 || r == 0x7f:
				fmt.Fprintf(&b, `\u%04x`, r)
			case r > 0xffff:
				// surrogate pair
				r -= 0x10000
				fmt.Fprintf(&b, `\u%04x\u%04x`, 0xd800+(r>>10), 0xdc00+(r&0x3ff))
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
