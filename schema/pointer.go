package schema

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// StripFragment returns uri without its fragment.
func StripFragment(uri string) string {
	if ix := strings.IndexByte(uri, '#'); ix >= 0 {
		return uri[:ix]
	}
	return uri
}

// Fragment returns the part of uri after '#' or an empty string.
func Fragment(uri string) string {
	if ix := strings.IndexByte(uri, '#'); ix >= 0 {
		return uri[ix+1:]
	}
	return ""
}

// Escape encodes a single JSON pointer reference token so it can be placed
// in a URI fragment.
func Escape(token string) string {
	return url.PathEscape(pointerEscaper.Replace(token))
}

// Child appends reference tokens to the fragment of uri:
//
//	Child("a.json#", "properties", "first name") == "a.json#/properties/first%20name"
func Child(uri string, tokens ...string) string {
	var b strings.Builder
	b.WriteString(uri)
	if !strings.Contains(uri, "#") {
		b.WriteByte('#')
	}
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(Escape(t))
	}
	return b.String()
}

// ParsePointer splits an RFC 6901 pointer (as found in a URI fragment) into
// its unescaped reference tokens.
func ParsePointer(ptr string) ([]string, error) {
	if len(ptr) == 0 {
		return nil, nil
	}
	if ptr[0] != '/' {
		return nil, errors.Errorf("invalid json pointer %q: must start with '/'", ptr)
	}
	parts := strings.Split(ptr[1:], "/")
	for i, p := range parts {
		unescaped, err := url.PathUnescape(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid json pointer %q", ptr)
		}
		parts[i] = pointerUnescaper.Replace(unescaped)
	}
	return parts, nil
}

// Lookup walks a decoded JSON document following tokens.
func Lookup(doc any, tokens []string) (any, error) {
	cur := doc
	for i, tok := range tokens {
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[tok]
			if !ok {
				return nil, errors.Wrapf(ErrNotFound, "no member %q at /%s", tok, strings.Join(tokens[:i], "/"))
			}
			cur = next
		case []any:
			ix, err := strconv.Atoi(tok)
			if err != nil || ix < 0 || ix >= len(v) {
				return nil, errors.Wrapf(ErrNotFound, "no index %q at /%s", tok, strings.Join(tokens[:i], "/"))
			}
			cur = v[ix]
		default:
			return nil, errors.Wrapf(ErrNotFound, "cannot descend into %T at /%s", cur, strings.Join(tokens[:i], "/"))
		}
	}
	return cur, nil
}

// ResolveRef resolves a "$ref" value against the URI of the node that
// contains it. The result always carries a fragment separator.
func ResolveRef(base, ref string) (string, error) {
	if strings.HasPrefix(ref, "#") {
		return StripFragment(base) + ref, nil
	}
	b, err := url.Parse(StripFragment(base))
	if err != nil {
		return "", errors.Wrapf(err, "invalid base uri %q", base)
	}
	r, err := url.Parse(StripFragment(ref))
	if err != nil {
		return "", errors.Wrapf(err, "invalid $ref %q", ref)
	}
	return b.ResolveReference(r).String() + "#" + Fragment(ref), nil
}
