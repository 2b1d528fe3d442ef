package schema

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("schema not found")

// Loader resolves a type URI to the schema node it points at.
type Loader interface {
	Load(uri string) (*Node, error)
}

// Store holds decoded schema documents keyed by their base URI and serves
// nodes addressed by "<base>#<json pointer>".
type Store struct {
	docs  map[string]any
	order []string
}

func NewStore() *Store {
	return &Store{docs: make(map[string]any)}
}

// Add decodes a JSON or YAML document and registers it under baseURI. Any
// fragment on baseURI is ignored.
func (s *Store) Add(baseURI string, doc []byte) error {
	v, err := decode(doc)
	if err != nil {
		return errors.Wrapf(err, "failed to decode schema %q", baseURI)
	}
	s.add(StripFragment(baseURI), v)
	return nil
}

// AddFile reads a schema document from disk. The document is registered
// under its "$id" when it has one and under its absolute file URI otherwise.
// The base URI is returned.
func (s *Store) AddFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	v, err := decode(b)
	if err != nil {
		return "", errors.Wrapf(err, "failed to decode schema file %q", path)
	}
	base := ""
	if m, ok := v.(map[string]any); ok {
		if id, ok := m["$id"].(string); ok && len(id) > 0 {
			base = StripFragment(id)
		}
	}
	if len(base) == 0 {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", errors.WithStack(err)
		}
		base = "file://" + filepath.ToSlash(abs)
	}
	s.add(base, v)
	return base, nil
}

func (s *Store) add(base string, v any) {
	if _, ok := s.docs[base]; ok {
		slog.Warn("replacing schema document", "uri", base)
	} else {
		s.order = append(s.order, base)
	}
	s.docs[base] = v
}

// Has reports whether a document is registered under base.
func (s *Store) Has(base string) bool {
	_, ok := s.docs[StripFragment(base)]
	return ok
}

// Documents lists the base URI of every document in insertion order.
func (s *Store) Documents() []string {
	return append([]string(nil), s.order...)
}

func (s *Store) Load(uri string) (*Node, error) {
	base := StripFragment(uri)
	doc, ok := s.docs[base]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "no document %q", base)
	}
	tokens, err := ParsePointer(Fragment(uri))
	if err != nil {
		return nil, err
	}
	v, err := Lookup(doc, tokens)
	if err != nil {
		return nil, errors.Wrapf(err, "%q", uri)
	}
	switch b := v.(type) {
	case bool:
		if b {
			// "true" accepts anything
			return &Node{}, nil
		}
		return nil, errors.Errorf("%q: the false schema has no type", uri)
	case map[string]any:
	default:
		return nil, errors.Errorf("%q: expected a schema object, got %T", uri, v)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var n Node
	if err = json.Unmarshal(raw, &n); err != nil {
		return nil, errors.Wrapf(err, "%q: invalid schema", uri)
	}
	return &n, nil
}

func decode(doc []byte) (any, error) {
	var v any
	err := json.Unmarshal(doc, &v)
	if err == nil {
		return v, nil
	}
	var y any
	if yerr := yaml.Unmarshal(doc, &y); yerr != nil {
		return nil, errors.Wrap(err, "neither json nor yaml")
	}
	return normalize(y), nil
}

// normalize converts yaml maps with non-string keys into json objects.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	}
	return v
}
