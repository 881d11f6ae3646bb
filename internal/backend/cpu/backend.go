// Package cpu implements the pure Go reference backend the Winograd kernels are checked against.
package cpu

import (
	"github.com/born-ml/winograd/internal/parallel"
)

// CPUBackend runs reference operations on the CPU.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a new CPU backend using the default parallel configuration.
func New() *CPUBackend {
	return &CPUBackend{
		parallel: parallel.DefaultConfig(),
	}
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{parallel: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}
