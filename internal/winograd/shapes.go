package winograd

import (
	"fmt"

	"github.com/born-ml/winograd/internal/tensor"
)

// PaddingType selects the convolution boundary policy.
type PaddingType int

const (
	// PaddingValid applies no padding; the output shrinks by kernel-1.
	PaddingValid PaddingType = iota
	// PaddingSame zero-pads so that, at stride 1, output and input spatial sizes match.
	PaddingSame
)

// String returns "VALID" or "SAME".
func (p PaddingType) String() string {
	switch p {
	case PaddingValid:
		return "VALID"
	case PaddingSame:
		return "SAME"
	default:
		return fmt.Sprintf("PaddingType(%d)", int(p))
	}
}

// KernelShape describes a filter bank.
type KernelShape struct {
	OutputChannels int
	InputChannels  int
	Rows           int
	Cols           int
}

// NewKernelShape returns a KernelShape.
func NewKernelShape(outputChannels, inputChannels, rows, cols int) KernelShape {
	return KernelShape{OutputChannels: outputChannels, InputChannels: inputChannels, Rows: rows, Cols: cols}
}

// TensorShape returns the HWIO tensor shape holding the kernel weights.
func (k KernelShape) TensorShape() tensor.Shape {
	return tensor.Shape{k.Rows, k.Cols, k.InputChannels, k.OutputChannels}
}

// Size returns the number of weights.
func (k KernelShape) Size() int {
	return k.OutputChannels * k.InputChannels * k.Rows * k.Cols
}

// Tensor4DShape describes an NHWC feature map.
type Tensor4DShape struct {
	Batches  int
	Rows     int
	Cols     int
	Channels int
}

// NewTensor4DShape returns a Tensor4DShape.
func NewTensor4DShape(batches, rows, cols, channels int) Tensor4DShape {
	return Tensor4DShape{Batches: batches, Rows: rows, Cols: cols, Channels: channels}
}

// TensorShape returns the NHWC tensor shape.
func (s Tensor4DShape) TensorShape() tensor.Shape {
	return tensor.Shape{s.Batches, s.Rows, s.Cols, s.Channels}
}

// Size returns the number of elements.
func (s Tensor4DShape) Size() int {
	return s.Batches * s.Rows * s.Cols * s.Channels
}

// String formats the shape as {batches, rows, cols, channels}.
func (s Tensor4DShape) String() string {
	return fmt.Sprintf("{%d, %d, %d, %d}", s.Batches, s.Rows, s.Cols, s.Channels)
}

// TileShape is the spatial size of an output tile.
type TileShape struct {
	Rows int
	Cols int
}

// Info binds everything that determines a Winograd convolution's storage
// sizes and strides. It is immutable once built.
type Info struct {
	OutputTile TileShape
	Kernel     KernelShape
	Input      Tensor4DShape
	Padding    PaddingType
}

// NewInfo builds the Info for running kernel over input with the given
// configuration and padding, checking that the combination is supported.
func NewInfo(cfg *Configuration, kernel KernelShape, input Tensor4DShape, padding PaddingType) (Info, error) {
	info := Info{
		OutputTile: TileShape{Rows: cfg.outputTileRows, Cols: cfg.outputTileCols},
		Kernel:     kernel,
		Input:      input,
		Padding:    padding,
	}
	if err := cfg.check(info); err != nil {
		return Info{}, err
	}
	return info, nil
}

// OutputShape returns the spatial-domain output shape.
func (i Info) OutputShape() Tensor4DShape {
	return outputShape(i.Kernel, i.Input, i.Padding)
}

// TileRows returns the number of tile rows covering the output.
func (i Info) TileRows() int {
	return ceilDiv(i.OutputShape().Rows, i.OutputTile.Rows)
}

// TileCols returns the number of tile columns covering the output.
func (i Info) TileCols() int {
	return ceilDiv(i.OutputShape().Cols, i.OutputTile.Cols)
}

// TileCount returns the number of tiles per batch.
func (i Info) TileCount() int {
	return i.TileRows() * i.TileCols()
}

// MatrixRows returns the row count of every input and output matrix.
func (i Info) MatrixRows() int {
	return i.TileCount() * i.Input.Batches
}

// MatrixStride returns the element offset between consecutive matrices,
// shared by the input, weights and output workspaces.
func (i Info) MatrixStride() int {
	return sharedStride(i.MatrixRows(), i.Kernel.InputChannels, i.Kernel.OutputChannels)
}

// PadTop returns the number of zero rows implied above the input.
func (i Info) PadTop() int {
	return padBefore(i.Kernel.Rows, i.Padding)
}

// PadLeft returns the number of zero columns implied left of the input.
func (i Info) PadLeft() int {
	return padBefore(i.Kernel.Cols, i.Padding)
}

func outputShape(kernel KernelShape, input Tensor4DShape, padding PaddingType) Tensor4DShape {
	out := Tensor4DShape{
		Batches:  input.Batches,
		Rows:     input.Rows,
		Cols:     input.Cols,
		Channels: kernel.OutputChannels,
	}
	if padding == PaddingValid {
		out.Rows = input.Rows - kernel.Rows + 1
		out.Cols = input.Cols - kernel.Cols + 1
	}
	return out
}

func padBefore(kernelSize int, padding PaddingType) int {
	if padding == PaddingSame {
		return (kernelSize - 1) / 2
	}
	return 0
}

// sharedStride is large enough for an MxK input matrix, a KxN weights
// matrix and an MxN output matrix.
func sharedStride(m, k, n int) int {
	return max(m*k, m*n, k*n)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
