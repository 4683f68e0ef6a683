package cast

import (
	"fmt"
	"strings"
)

// Tag is the comparable identity of a static Go type.
// Two tags are equal iff they were produced by TagOf with the same type argument.
type Tag interface {
	String() string
	tag()
}

type typeTag[T any] struct{}

func (typeTag[T]) tag() {}

func (typeTag[T]) String() string {
	return strings.TrimPrefix(fmt.Sprintf("%T", (*T)(nil)), "*")
}

// TagOf returns the tag of T.
func TagOf[T any]() Tag {
	return typeTag[T]{}
}
