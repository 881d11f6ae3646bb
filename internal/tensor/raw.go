package tensor

import (
	"fmt"
	"unsafe"
)

// RawTensor is a typed view over a caller-owned byte buffer.
//
// RawTensor never reallocates; every accessor returns slices aliasing the
// same memory, so writes through AsFloat32 are visible to every holder.
type RawTensor struct {
	data  []byte
	shape Shape
	dtype DataType
}

// NewRaw allocates a zeroed RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		data:  make([]byte, shape.NumElements()*dtype.Size()),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromFloat32 wraps an existing float32 slice without copying it.
// The slice must hold at least shape.NumElements() values.
func FromFloat32(shape Shape, values []float32) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	n := shape.NumElements()
	if len(values) < n {
		return nil, fmt.Errorf("buffer holds %d values, shape %v needs %d", len(values), shape, n)
	}
	//nolint:gosec // unsafe.Slice for zero-copy view, length checked above
	data := unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), n*Float32.Size())
	return &RawTensor{data: data, shape: shape.Clone(), dtype: Float32}, nil
}

// MustFromFloat32 is FromFloat32 that panics on error. Intended for tests and fixtures.
func MustFromFloat32(shape Shape, values []float32) *RawTensor {
	t, err := FromFloat32(shape, values)
	if err != nil {
		panic(err)
	}
	return t
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Info returns the tensor's metadata.
func (r *RawTensor) Info() Info {
	return Info{Shape: r.shape, DType: r.dtype}
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}
