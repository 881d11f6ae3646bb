// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the tensor views consumed by the Winograd kernels.
//
// # Overview
//
// Tensors here are thin, borrowed views over float32 storage:
//   - Shape and DataType describe a tensor
//   - Info carries shape and type without memory, for validation
//   - RawTensor wraps a caller-owned buffer without copying it
//
// # Basic Usage
//
//	import "github.com/born-ml/winograd/tensor"
//
//	func main() {
//	    x, _ := tensor.NewRaw(tensor.Shape{1, 6, 6, 1}, tensor.Float32)
//	    data := x.AsFloat32() // aliases x's memory
//	    data[0] = 1
//
//	    w := tensor.MustFromFloat32(tensor.Shape{3, 3, 1, 1}, make([]float32, 9))
//	    fmt.Println(w.Info()) // float32[3 3 1 1]
//	}
//
// # Layouts
//
// Feature maps are NHWC: [batches, rows, cols, channels] with the channel
// innermost. Filter banks are HWIO: [rows, cols, input channels, output
// channels].
//
// # Supported Data Types
//
// Only Float32 is accepted by the convolution kernels. The other types
// exist so callers get a typed error rather than silent reinterpretation.
package tensor
