package str

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Title upper-cases the first rune of every word, keeping the separators.
func Title[T ~string](s T) string {
	prev := ' '
	return strings.Map(
		func(r rune) rune {
			if IsSeparator(prev) {
				prev = r
				return unicode.ToTitle(r)
			}
			prev = r
			return r
		}, string(s))
}

// Pascal joins the words of s with each word title-cased and the separators
// removed: "first-name" becomes "FirstName".
func Pascal[T ~string](s T) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(Title(w))
	}
	return b.String()
}

// Camel is Pascal with a lower-cased first rune.
func Camel[T ~string](s T) string {
	p := Pascal(s)
	if p == "" {
		return p
	}
	r, n := utf8.DecodeRuneInString(p)
	return string(unicode.ToLower(r)) + p[n:]
}

// Words splits s on separator runes, dropping empty words.
func Words[T ~string](s T) []string {
	return strings.FieldsFunc(string(s), IsSeparator)
}

func IsSeparator(r rune) bool {
	// ASCII alphanumerics and underscore are not separators
	if r <= 0x7F {
		switch {
		case '0' <= r && r <= '9':
			return false
		case 'a' <= r && r <= 'z':
			return false
		case 'A' <= r && r <= 'Z':
			return false
		case r == '_':
			return false
		}
		return true
	}
	// Letters and digits are not separators
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return false
	}
	// Otherwise, all we can do for now is treat spaces as separators.
	return unicode.IsSpace(r)
}
