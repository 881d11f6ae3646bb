// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package winograd provides Winograd minimal-filtering 2D convolution.
//
// # Overview
//
// A Configuration such as Winograd2x2_3x3 fixes the output tile and kernel
// size. Convolving with it takes three transforms and a batched matrix
// multiply; Convolution runs all of them:
//
//	import (
//	    "github.com/born-ml/winograd/tensor"
//	    "github.com/born-ml/winograd/winograd"
//	)
//
//	func main() {
//	    cfg := winograd.Winograd4x4_3x3
//	    info, err := winograd.NewInfo(cfg,
//	        winograd.NewKernelShape(64, 32, 3, 3),     // OC, IC, rows, cols
//	        winograd.NewTensor4DShape(1, 56, 56, 32),  // NHWC
//	        winograd.PaddingSame)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    conv, err := winograd.NewConvolution(cfg, info, winograd.DefaultOptions())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := conv.PrepareWeights(weights); err != nil { // HWIO
//	        log.Fatal(err)
//	    }
//	    if err := conv.Run(input, bias, output); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Kernels
//
// Callers with their own scheduler can drive the kernels directly. Each has
// a pure Validate function, a Configure step that binds borrowed tensors,
// and a Run method over a window of work:
//   - InputTransform: tiles of the NHWC input into the transform domain
//   - WeightsTransform: HWIO filters into the transform domain
//   - OutputTransform: products back into NHWC output tiles, plus bias
//
// Run takes a parallel.Window and parallel.ThreadInfo from package
// github.com/born-ml/winograd/parallel, whose Schedule drives any kernel.
// The workspaces of all three share one MatrixStride and hold WorkspaceSize
// elements, so the products can be computed by any strided batched GEMM.
//
// # Errors
//
// Validation errors wrap one of the Err* sentinels; test them with errors.Is.
package winograd
