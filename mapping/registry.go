package mapping

import (
	"log/slog"
	"maps"
	"net/url"
	"slices"

	"github.com/pkg/errors"

	"github.com/harrybrwn/pojogen/java"
)

var ErrMappingFrozen = errors.New("mapping is frozen")

// Registry holds the mappings and features for one generation run.
type Registry struct {
	mappings map[string]Mapping
	frozen   map[string]struct{}
	packages map[string]string
	features map[string]any
	logger   *slog.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		mappings: make(map[string]Mapping),
		frozen:   make(map[string]struct{}),
		packages: make(map[string]string),
		features: make(map[string]any),
		logger:   slog.Default(),
	}
}

func (r *Registry) SetLogger(l *slog.Logger) { r.logger = l }

// AddMapping registers m for uri, replacing any previous mapping.
func (r *Registry) AddMapping(uri string, m Mapping) error {
	if _, ok := r.frozen[uri]; ok {
		return errors.Wrapf(ErrMappingFrozen, "cannot replace mapping for %q", uri)
	}
	if !isAbsolute(uri) {
		r.logger.Warn("mapping uri is not absolute", "uri", uri)
	}
	m.Target = uri
	r.mappings[uri] = m.clone()
	return nil
}

// AddMappings registers every mapping under its Target.
func (r *Registry) AddMappings(ms []Mapping) error {
	for _, m := range ms {
		if err := r.AddMapping(m.Target, m); err != nil {
			return err
		}
	}
	return nil
}

// Mapping returns a copy of the mapping registered for exactly uri.
func (r *Registry) Mapping(uri string) (Mapping, bool) {
	m, ok := r.mappings[uri]
	if !ok {
		return Mapping{}, false
	}
	return m.clone(), true
}

// Owner returns the uri of a mapping that refers to or generates name.
func (r *Registry) Owner(name java.ClassName) (string, bool) {
	for _, uri := range slices.Sorted(maps.Keys(r.mappings)) {
		m := r.mappings[uri]
		if m.ClassName.Equal(name) || m.Generated().Equal(name) {
			return uri, true
		}
	}
	return "", false
}

// ClassNames lists the mapped class names declared in pkg, sorted.
func (r *Registry) ClassNames(pkg string) []java.ClassName {
	seen := make(map[string]java.ClassName)
	for _, m := range r.mappings {
		for _, n := range []java.ClassName{m.ClassName, m.Generated()} {
			if n.Package == pkg && len(n.TypeArgs) == 0 {
				seen[n.Qualified()] = n
			}
		}
	}
	names := make([]java.ClassName, 0, len(seen))
	for _, q := range slices.Sorted(maps.Keys(seen)) {
		names = append(names, seen[q])
	}
	return names
}

// Freeze prevents the mapping for uri from being replaced. It is called once
// a class has been generated from the mapping.
func (r *Registry) Freeze(uri string) {
	r.frozen[uri] = struct{}{}
}

func (r *Registry) IsFrozen(uri string) bool {
	_, ok := r.frozen[uri]
	return ok
}

// AddDefaultPackageName records a package for every type below baseURI.
//
// The value is stored but DefaultPackageName does not consult it yet; the
// FeatureDefaultPackageName feature applies to every URI.
func (r *Registry) AddDefaultPackageName(baseURI, pkg string) {
	r.packages[baseURI] = pkg
}

// DefaultPackageName returns the package for a class synthesized for uri.
func (r *Registry) DefaultPackageName(uri string) string {
	pkg := GetFeature(r, FeatureDefaultPackageName)
	r.logger.Warn("using the default package name", "uri", uri, "package", pkg)
	return pkg
}

func isAbsolute(uri string) bool {
	u, err := url.Parse(uri)
	return err == nil && u.IsAbs()
}
