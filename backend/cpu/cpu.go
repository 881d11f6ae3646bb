// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/winograd/internal/backend/cpu"
)

// Backend represents the CPU reference backend.
//
// It computes convolutions directly with im2col and float64 accumulation,
// which makes it the baseline Winograd results are checked against.
type Backend = internalcpu.CPUBackend

// New creates a new CPU backend using every CPU.
//
// Example:
//
//	import (
//	    "github.com/born-ml/winograd/backend/cpu"
//	    "github.com/born-ml/winograd/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    y := backend.Conv2D(x, w, nil, 1, 1) // SAME for a 3x3 kernel
//	}
func New() *Backend {
	return internalcpu.New()
}
