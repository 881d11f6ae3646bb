// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package winograd

import (
	"github.com/born-ml/winograd/internal/winograd"
)

// Shape descriptors.
type (
	// KernelShape describes a filter bank: output and input channels, rows, cols.
	KernelShape = winograd.KernelShape

	// Tensor4DShape describes an NHWC feature map.
	Tensor4DShape = winograd.Tensor4DShape

	// TileShape is the spatial size of an output tile.
	TileShape = winograd.TileShape

	// PaddingType selects VALID or SAME convolution.
	PaddingType = winograd.PaddingType

	// Info binds the shapes of one convolution.
	Info = winograd.Info
)

// Padding constants.
const (
	PaddingValid PaddingType = winograd.PaddingValid
	PaddingSame  PaddingType = winograd.PaddingSame
)

// Configuration is a Winograd variant F(m×m, r×r).
type Configuration = winograd.Configuration

// Built-in configurations.
var (
	Winograd2x2_3x3 = winograd.Winograd2x2_3x3
	Winograd4x4_3x3 = winograd.Winograd4x4_3x3
	Winograd3x3_2x2 = winograd.Winograd3x3_2x2
)

// Kernels and the plan that runs them.
type (
	Kernel           = winograd.Kernel
	InputTransform   = winograd.InputTransform
	WeightsTransform = winograd.WeightsTransform
	OutputTransform  = winograd.OutputTransform
	Convolution      = winograd.Convolution
	Options          = winograd.Options
)

// Validation errors.
var (
	ErrUnsupportedDataType   = winograd.ErrUnsupportedDataType
	ErrUnsupportedKernel     = winograd.ErrUnsupportedKernel
	ErrUnsupportedPadding    = winograd.ErrUnsupportedPadding
	ErrOutputShapeMismatch   = winograd.ErrOutputShapeMismatch
	ErrBiasShapeMismatch     = winograd.ErrBiasShapeMismatch
	ErrWorkspaceTooSmall     = winograd.ErrWorkspaceTooSmall
	ErrInvalidShape          = winograd.ErrInvalidShape
	ErrConfigurationMismatch = winograd.ErrConfigurationMismatch
	ErrWeightsNotPrepared    = winograd.ErrWeightsNotPrepared
)

// Kernel names.
const (
	InputTransformName   = winograd.InputTransformName
	WeightsTransformName = winograd.WeightsTransformName
	OutputTransformName  = winograd.OutputTransformName
)

// NewKernelShape returns a KernelShape.
func NewKernelShape(outputChannels, inputChannels, rows, cols int) KernelShape {
	return winograd.NewKernelShape(outputChannels, inputChannels, rows, cols)
}

// NewTensor4DShape returns a Tensor4DShape.
func NewTensor4DShape(batches, rows, cols, channels int) Tensor4DShape {
	return winograd.NewTensor4DShape(batches, rows, cols, channels)
}

// NewInfo checks that cfg supports the shapes and returns their Info.
func NewInfo(cfg *Configuration, kernel KernelShape, input Tensor4DShape, padding PaddingType) (Info, error) {
	return winograd.NewInfo(cfg, kernel, input, padding)
}

// Configurations lists the built-in configurations.
func Configurations() []*Configuration {
	return winograd.Configurations()
}

// Lookup returns the configuration for an output tile and kernel size.
func Lookup(tile TileShape, kernelSize int) (*Configuration, error) {
	return winograd.Lookup(tile, kernelSize)
}

// NewInputTransform returns an unconfigured input transform.
func NewInputTransform(cfg *Configuration) *InputTransform {
	return winograd.NewInputTransform(cfg)
}

// NewWeightsTransform returns an unconfigured weights transform.
func NewWeightsTransform(cfg *Configuration) *WeightsTransform {
	return winograd.NewWeightsTransform(cfg)
}

// NewOutputTransform returns an unconfigured output transform.
func NewOutputTransform(cfg *Configuration) *OutputTransform {
	return winograd.NewOutputTransform(cfg)
}

// ValidateInputTransform checks an input transform without touching memory.
var ValidateInputTransform = winograd.ValidateInputTransform

// ValidateWeightsTransform checks a weights transform without touching memory.
var ValidateWeightsTransform = winograd.ValidateWeightsTransform

// ValidateOutputTransform checks an output transform without touching memory.
var ValidateOutputTransform = winograd.ValidateOutputTransform

// NewConvolution allocates a plan for info.
func NewConvolution(cfg *Configuration, info Info, opts Options) (*Convolution, error) {
	return winograd.NewConvolution(cfg, info, opts)
}

// DefaultOptions uses every CPU.
func DefaultOptions() Options {
	return winograd.DefaultOptions()
}
