// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package parallel exposes the scheduling types the Winograd kernels run on.
//
// A kernel reports its full Window; a scheduler splits it into disjoint
// parts and calls Run for each, possibly concurrently:
//
//	k := winograd.NewInputTransform(cfg)
//	if err := k.Configure(...); err != nil {
//	    return err
//	}
//	for i, w := range k.Window().Split(4, 1) {
//	    go k.Run(w, parallel.ThreadInfo{ThreadID: i, NumThreads: 4})
//	}
//
// Schedule does this with a WaitGroup barrier and honors kernels that
// report IsParallelisable() == false.
package parallel

import (
	"github.com/born-ml/winograd/internal/parallel"
)

// Window is a half-open range [Start, End) of kernel work units.
type Window = parallel.Window

// ThreadInfo identifies the worker executing a window.
type ThreadInfo = parallel.ThreadInfo

// Runnable is the scheduling contract of a configured kernel.
type Runnable = parallel.Runnable

// Config controls parallel execution behavior.
type Config = parallel.Config

// DefaultConfig returns a configuration using every CPU.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// Sequential returns a configuration that runs on the calling goroutine.
func Sequential() Config {
	return parallel.Sequential()
}

// Schedule runs r over its full window and returns once every part has finished.
func Schedule(r Runnable, cfg Config) {
	parallel.Schedule(r, cfg)
}
