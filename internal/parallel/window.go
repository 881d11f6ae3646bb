package parallel

import (
	"fmt"
	"sync"
)

// Window is a half-open range [Start, End) of kernel work units.
type Window struct {
	Start int
	End   int
}

// Len returns the number of units in the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// Empty reports whether the window holds no work.
func (w Window) Empty() bool {
	return w.End <= w.Start
}

// Within reports whether w lies entirely inside outer.
func (w Window) Within(outer Window) bool {
	return w.Start >= outer.Start && w.End <= outer.End && w.Start <= w.End
}

// String formats the window as "[start, end)".
func (w Window) String() string {
	return fmt.Sprintf("[%d, %d)", w.Start, w.End)
}

// Split partitions w into at most n contiguous, disjoint windows whose
// lengths differ by at most one. Each part holds at least minSize units
// unless w itself is smaller.
func (w Window) Split(n, minSize int) []Window {
	total := w.Len()
	if total <= 0 {
		return nil
	}
	minSize = max(minSize, 1)
	n = max(min(n, total/minSize), 1)

	parts := make([]Window, 0, n)
	base, extra := total/n, total%n
	start := w.Start
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		parts = append(parts, Window{Start: start, End: start + size})
		start += size
	}
	return parts
}

// ThreadInfo identifies the worker executing a window.
type ThreadInfo struct {
	ThreadID   int
	NumThreads int
}

// Runnable is the scheduling contract of a configured kernel.
//
// Run must be safe to call concurrently for disjoint windows.
type Runnable interface {
	Name() string
	IsParallelisable() bool
	Window() Window
	Run(w Window, info ThreadInfo)
}

// Schedule runs r over its full window and returns once every part has finished.
// Kernels that report IsParallelisable() == false always run as one window
// on the calling goroutine.
func Schedule(r Runnable, cfg Config) {
	full := r.Window()
	if full.Empty() {
		return
	}
	if !r.IsParallelisable() || cfg.workers() == 1 {
		r.Run(full, ThreadInfo{ThreadID: 0, NumThreads: 1})
		return
	}

	parts := full.Split(cfg.workers(), cfg.MinChunkSize)
	if len(parts) == 1 {
		r.Run(full, ThreadInfo{ThreadID: 0, NumThreads: 1})
		return
	}

	var wg sync.WaitGroup
	for i, part := range parts {
		wg.Add(1)
		go func(id int, w Window) {
			defer wg.Done()
			r.Run(w, ThreadInfo{ThreadID: id, NumThreads: len(parts)})
		}(i, part)
	}
	wg.Wait()
}
