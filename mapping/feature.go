package mapping

// Feature is a typed configuration key stored in a Registry.
type Feature[T any] struct {
	Name    string
	Default T
}

// FeatureDefaultPackageName is the package given to classes whose type URI
// has no mapping.
var FeatureDefaultPackageName = Feature[string]{Name: "default-package-name", Default: ""}

// GetFeature returns the value of f, or its default when it was never set.
func GetFeature[T any](r *Registry, f Feature[T]) T {
	v, ok := r.features[f.Name]
	if !ok {
		return f.Default
	}
	t, ok := v.(T)
	if !ok {
		return f.Default
	}
	return t
}

// SetFeature sets f and returns its previous value.
func SetFeature[T any](r *Registry, f Feature[T], value T) T {
	prev := GetFeature(r, f)
	r.features[f.Name] = value
	return prev
}
