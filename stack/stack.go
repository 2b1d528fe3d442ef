package stack

type elem[T any] struct {
	prev  *elem[T]
	value T
}

// Stack is a last-in first-out list. The zero value is an empty stack.
type Stack[T any] struct {
	end *elem[T]
	len int
}

func (s *Stack[T]) Empty() bool { return s.end == nil }
func (s *Stack[T]) Len() int    { return s.len }

func (s *Stack[T]) Push(v T) {
	n := elem[T]{value: v, prev: s.end}
	s.end = &n
	s.len++
}

func (s *Stack[T]) Pop() (T, bool) {
	e := s.end
	if e == nil {
		var v T
		return v, false
	}
	s.end = e.prev
	s.len--
	return e.value, true
}

func (s *Stack[T]) Peek() (T, bool) {
	if s.end == nil {
		var v T
		return v, false
	}
	return s.end.value, true
}
