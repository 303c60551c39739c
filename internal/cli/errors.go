package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type outOfRangeError struct {
	what  string
	index int
	max   int
}

func (e outOfRangeError) Error() string {
	if e.max < 0 {
		return fmt.Sprintf("%s %d out of range (nothing to choose from)", e.what, e.index)
	}
	return fmt.Sprintf("%s %d out of range (0..%d)", e.what, e.index, e.max)
}

func errOutOfRange(what string, index, max int) error {
	return outOfRangeError{what: what, index: index, max: max}
}
