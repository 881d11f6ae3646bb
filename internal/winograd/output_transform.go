package winograd

import (
	"github.com/born-ml/winograd/internal/parallel"
	"github.com/born-ml/winograd/internal/tensor"
	"github.com/pkg/errors"
)

// OutputTransform maps the product matrices back to the spatial domain,
// adds the bias and writes each output tile into an NHWC tensor, clipping
// tiles that overhang the output edge.
type OutputTransform struct {
	_ noCopy

	cfg *Configuration

	biases       []float32 // nil means no bias
	workspace    []float32 // borrowed
	output       []float32 // NHWC, borrowed
	matrixStride int
	batches      int
	rows         int // output rows
	cols         int // output cols
	channels     int

	tileRows int
	tileCols int
}

// NewOutputTransform returns an unconfigured output transform for cfg.
func NewOutputTransform(cfg *Configuration) *OutputTransform {
	return &OutputTransform{cfg: cfg}
}

// Name returns OutputTransformName.
func (k *OutputTransform) Name() string {
	return OutputTransformName
}

// IsParallelisable reports true; tiles write disjoint output blocks.
func (k *OutputTransform) IsParallelisable() bool {
	return true
}

// OutputStorageSize delegates to the configuration.
func (k *OutputTransform) OutputStorageSize(batches, rows, cols, outputChannels int, samePadding bool) (int, error) {
	return k.cfg.OutputStorageSize(batches, rows, cols, outputChannels, samePadding)
}

// MatrixStride delegates to the configuration.
func (k *OutputTransform) MatrixStride(kernel KernelShape, input Tensor4DShape, padding PaddingType) (int, error) {
	return k.cfg.MatrixStride(kernel, input, padding)
}

// OutputShape returns the spatial shape the convolution produces.
func (k *OutputTransform) OutputShape(kernel KernelShape, input Tensor4DShape, padding PaddingType) Tensor4DShape {
	return k.cfg.OutputShape(kernel, input, padding)
}

// ValidateOutputTransform checks that workspace, the optional bias and
// output fit info under cfg. It does not touch memory.
func ValidateOutputTransform(cfg *Configuration, workspace tensor.Info, bias *tensor.Info, output tensor.Info, info Info) error {
	if err := cfg.checkType("transformed output", cfg.outputType, workspace.DType); err != nil {
		return err
	}
	if err := cfg.checkType("output", cfg.outputType, output.DType); err != nil {
		return err
	}
	if err := cfg.check(info); err != nil {
		return err
	}
	if need := cfg.workspaceSize(info); workspace.NumElements() < need {
		return errors.Wrapf(ErrWorkspaceTooSmall, "transformed output holds %d elements, need %d",
			workspace.NumElements(), need)
	}
	if bias != nil {
		if err := cfg.checkType("bias", cfg.outputType, bias.DType); err != nil {
			return err
		}
		if want := (tensor.Shape{info.Kernel.OutputChannels}); !bias.Shape.Equal(want) {
			return errors.Wrapf(ErrBiasShapeMismatch, "bias %v, need %v", bias.Shape, want)
		}
	}
	if want := info.OutputShape().TensorShape(); !output.Shape.Equal(want) {
		return errors.Wrapf(ErrOutputShapeMismatch, "output %v, convolution produces %v", output.Shape, want)
	}
	return nil
}

// Configure binds the kernel to the product workspace, optional biases and
// the NHWC output. rows and cols are the output's spatial dimensions.
func (k *OutputTransform) Configure(biases, workspace *tensor.RawTensor, matrixStride int,
	output *tensor.RawTensor, batches, rows, cols, channels int) error {
	cfg := k.cfg
	if err := cfg.checkType("transformed output", cfg.outputType, workspace.DType()); err != nil {
		return err
	}
	if err := cfg.checkType("output", cfg.outputType, output.DType()); err != nil {
		return err
	}
	if batches <= 0 || rows <= 0 || cols <= 0 || channels <= 0 {
		return errors.Wrapf(ErrInvalidShape, "output %dx%dx%dx%d", batches, rows, cols, channels)
	}
	if need := batches * rows * cols * channels; output.NumElements() < need {
		return errors.Wrapf(ErrOutputShapeMismatch, "output holds %d elements, %dx%dx%dx%d needs %d",
			output.NumElements(), batches, rows, cols, channels, need)
	}
	if biases != nil {
		if err := cfg.checkType("bias", cfg.outputType, biases.DType()); err != nil {
			return err
		}
		if want := (tensor.Shape{channels}); !biases.Shape().Equal(want) {
			return errors.Wrapf(ErrBiasShapeMismatch, "bias %v, need %v", biases.Shape(), want)
		}
	}
	tileRows := ceilDiv(rows, cfg.outputTileRows)
	tileCols := ceilDiv(cols, cfg.outputTileCols)
	matrixRows := tileRows * tileCols * batches
	if matrixStride < matrixRows*channels {
		return errors.Wrapf(ErrWorkspaceTooSmall, "matrix stride %d below %dx%d matrix",
			matrixStride, matrixRows, channels)
	}
	if need := requiredSpan(cfg.Coefficients(), matrixStride, matrixRows, channels); workspace.NumElements() < need {
		return errors.Wrapf(ErrWorkspaceTooSmall, "transformed output holds %d elements, need %d",
			workspace.NumElements(), need)
	}

	k.biases = nil
	if biases != nil {
		k.biases = biases.AsFloat32()
	}
	k.workspace = workspace.AsFloat32()
	k.output = output.AsFloat32()
	k.matrixStride = matrixStride
	k.batches, k.rows, k.cols, k.channels = batches, rows, cols, channels
	k.tileRows, k.tileCols = tileRows, tileCols
	return nil
}

// Window returns one unit per tile across all batches.
func (k *OutputTransform) Window() parallel.Window {
	return parallel.Window{Start: 0, End: k.batches * k.tileRows * k.tileCols}
}

// Run inverse-transforms the tiles in w.
func (k *OutputTransform) Run(w parallel.Window, _ parallel.ThreadInfo) {
	mustRunnable(k.Name(), k.workspace != nil, w, k.Window())

	var (
		alpha = k.cfg.InnerTileRows()
		m     = k.cfg.outputTileRows
		n     = k.channels
		tiles = k.tileRows * k.tileCols
	)
	values := make([]float32, alpha*alpha*n)
	tmp := make([]float32, m*alpha*n)
	block := make([]float32, m*m*n)

	for t := w.Start; t < w.End; t++ {
		for e := 0; e < alpha*alpha; e++ {
			copy(values[e*n:(e+1)*n], k.workspace[e*k.matrixStride+t*n:])
		}

		// Y = Aᵀ M A
		leftMultiply(tmp, k.cfg.at, values, m, alpha, alpha, n)
		rightMultiplyT(block, tmp, k.cfg.at, m, alpha, m, n)
		if k.biases != nil {
			for p := 0; p < m*m; p++ {
				axpy(1, k.biases, block[p*n:(p+1)*n])
			}
		}

		b, rem := t/tiles, t%tiles
		r0 := (rem / k.tileCols) * m
		c0 := (rem % k.tileCols) * m
		if r0+m <= k.rows && c0+m <= k.cols {
			k.scatterInterior(block, b, r0, c0, m)
		} else {
			k.scatterBorder(block, b, r0, c0, m)
		}
	}
}

// scatterInterior writes a whole tile; each tile row is contiguous in NHWC.
func (k *OutputTransform) scatterInterior(block []float32, b, r0, c0, m int) {
	span := m * k.channels
	for i := 0; i < m; i++ {
		dst := ((b*k.rows+r0+i)*k.cols + c0) * k.channels
		copy(k.output[dst:dst+span], block[i*span:(i+1)*span])
	}
}

// scatterBorder writes the part of a tile that lies inside the output.
func (k *OutputTransform) scatterBorder(block []float32, b, r0, c0, m int) {
	rows := min(m, k.rows-r0)
	cols := min(m, k.cols-c0)
	span := cols * k.channels
	for i := 0; i < rows; i++ {
		dst := ((b*k.rows+r0+i)*k.cols + c0) * k.channels
		copy(k.output[dst:dst+span], block[i*m*k.channels:])
	}
}
