// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/winograd/internal/tensor"
)

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float16 DataType = tensor.Float16
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Uint8   DataType = tensor.Uint8
)

// Shape represents the dimensions of a tensor.
// Example: Shape{1, 6, 6, 3} is one 6×6 image with 3 channels.
type Shape = tensor.Shape

// Info is tensor metadata without storage.
type Info = tensor.Info

// NewInfo returns the metadata of a tensor with the given shape and type.
func NewInfo(shape Shape, dtype DataType) Info {
	return tensor.NewInfo(shape, dtype)
}
