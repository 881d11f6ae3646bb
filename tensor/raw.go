// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/winograd/internal/tensor"
)

// RawTensor is a typed view over a caller-owned buffer.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Info()
//   - Zero-copy data access via AsFloat32()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
//	data := raw.AsFloat32() // shares raw's memory
type RawTensor = tensor.RawTensor

// NewRaw allocates a zeroed tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromFloat32 wraps values without copying them.
func FromFloat32(shape Shape, values []float32) (*RawTensor, error) {
	return tensor.FromFloat32(shape, values)
}

// MustFromFloat32 is FromFloat32 that panics on error.
func MustFromFloat32(shape Shape, values []float32) *RawTensor {
	return tensor.MustFromFloat32(shape, values)
}
