package array

func Append[T any](arrs ...[]T) []T {
	res := make([]T, 0)
	for _, arr := range arrs {
		res = append(res, arr...)
	}
	return res
}

func Map[I, O any](arr []I, fn func(I) O) []O {
	res := make([]O, len(arr))
	for i, v := range arr {
		res[i] = fn(v)
	}
	return res
}

// Any reports whether fn is true for at least one element.
func Any[T any](arr []T, fn func(T) bool) bool {
	for _, v := range arr {
		if fn(v) {
			return true
		}
	}
	return false
}
