// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go reference convolution.
//
// # Overview
//
// This package implements:
//   - Direct 2D convolution over NHWC inputs and HWIO filters (im2col)
//   - Arbitrary stride and symmetric zero padding
//   - A naive strided batched matrix multiply
//
// # Basic Usage
//
//	backend := cpu.New()
//	out := backend.Conv2D(input, weights, bias, 1, 0) // VALID
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each operation allocates
// its own output and does not share mutable state.
package cpu
