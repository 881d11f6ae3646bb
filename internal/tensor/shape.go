package tensor

import (
	"fmt"
	"strings"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	return append(Shape(nil), s...)
}

// String formats the shape as "[d0 d1 ...]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprint(dim)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Info describes a tensor without referencing its memory.
// Validation works on Info so a plan can be checked before anything is allocated.
type Info struct {
	Shape Shape
	DType DataType
}

// NewInfo returns an Info for the given shape and type.
func NewInfo(shape Shape, dtype DataType) Info {
	return Info{Shape: shape.Clone(), DType: dtype}
}

// NumElements returns the number of elements described by the info.
func (i Info) NumElements() int {
	return i.Shape.NumElements()
}

// ByteSize returns the memory size in bytes a tensor with this info occupies.
func (i Info) ByteSize() int {
	return i.NumElements() * i.DType.Size()
}

// String returns a short description such as "float32[1 6 6 1]".
func (i Info) String() string {
	return i.DType.String() + i.Shape.String()
}
