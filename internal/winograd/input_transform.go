package winograd

import (
	"github.com/born-ml/winograd/internal/parallel"
	"github.com/born-ml/winograd/internal/tensor"
	"github.com/pkg/errors"
)

// InputTransform tiles an NHWC feature map and maps every tile into the
// transform domain.
//
// Tile t (batch-major, then row-major over the tile grid) becomes row t of
// each coefficient matrix; the channel is the column.
type InputTransform struct {
	_ noCopy

	cfg *Configuration

	input        []float32 // NHWC, borrowed
	output       []float32 // workspace, borrowed
	batches      int
	rows         int
	cols         int
	channels     int
	padding      PaddingType
	matrixStride int

	tileRows int
	tileCols int
	padTop   int
	padLeft  int
}

// NewInputTransform returns an unconfigured input transform for cfg.
func NewInputTransform(cfg *Configuration) *InputTransform {
	return &InputTransform{cfg: cfg}
}

// Name returns InputTransformName.
func (k *InputTransform) Name() string {
	return InputTransformName
}

// IsParallelisable reports true; tiles write disjoint matrix rows.
func (k *InputTransform) IsParallelisable() bool {
	return true
}

// InputStorageSize delegates to the configuration.
func (k *InputTransform) InputStorageSize(batches, channels, rows, cols int, samePadding bool) (int, error) {
	return k.cfg.InputStorageSize(batches, channels, rows, cols, samePadding)
}

// MatrixStride delegates to the configuration.
func (k *InputTransform) MatrixStride(kernel KernelShape, input Tensor4DShape, padding PaddingType) (int, error) {
	return k.cfg.MatrixStride(kernel, input, padding)
}

// ValidateInputTransform checks that input can be transformed into output
// for info under cfg. It does not touch memory.
func ValidateInputTransform(cfg *Configuration, input, output tensor.Info, info Info) error {
	if err := cfg.checkType("input", cfg.inputType, input.DType); err != nil {
		return err
	}
	if err := cfg.checkType("transformed input", cfg.inputType, output.DType); err != nil {
		return err
	}
	if err := cfg.check(info); err != nil {
		return err
	}
	if want := info.Input.TensorShape(); !input.Shape.Equal(want) {
		return errors.Wrapf(ErrInvalidShape, "input %v, info describes %v", input.Shape, want)
	}
	if need := cfg.workspaceSize(info); output.NumElements() < need {
		return errors.Wrapf(ErrWorkspaceTooSmall, "transformed input holds %d elements, need %d",
			output.NumElements(), need)
	}
	return nil
}

// Configure binds the kernel to an NHWC input and the output workspace.
func (k *InputTransform) Configure(input *tensor.RawTensor, batches, rows, cols, channels int,
	padding PaddingType, output *tensor.RawTensor, matrixStride int) error {
	cfg := k.cfg
	if err := cfg.checkType("input", cfg.inputType, input.DType()); err != nil {
		return err
	}
	if err := cfg.checkType("transformed input", cfg.inputType, output.DType()); err != nil {
		return err
	}
	if err := cfg.checkPadding(padding); err != nil {
		return err
	}
	if batches <= 0 || channels <= 0 {
		return errors.Wrapf(ErrInvalidShape, "batches=%d channels=%d", batches, channels)
	}
	tileRows, tileCols, err := cfg.tiles(rows, cols, padding == PaddingSame)
	if err != nil {
		return err
	}
	if need := batches * rows * cols * channels; input.NumElements() < need {
		return errors.Wrapf(ErrInvalidShape, "input holds %d elements, %dx%dx%dx%d needs %d",
			input.NumElements(), batches, rows, cols, channels, need)
	}
	matrixRows := tileRows * tileCols * batches
	if matrixStride < matrixRows*channels {
		return errors.Wrapf(ErrWorkspaceTooSmall, "matrix stride %d below %dx%d matrix",
			matrixStride, matrixRows, channels)
	}
	if need := requiredSpan(cfg.Coefficients(), matrixStride, matrixRows, channels); output.NumElements() < need {
		return errors.Wrapf(ErrWorkspaceTooSmall, "transformed input holds %d elements, need %d",
			output.NumElements(), need)
	}

	k.input = input.AsFloat32()
	k.output = output.AsFloat32()
	k.batches, k.rows, k.cols, k.channels = batches, rows, cols, channels
	k.padding = padding
	k.matrixStride = matrixStride
	k.tileRows, k.tileCols = tileRows, tileCols
	k.padTop = padBefore(cfg.kernelRows, padding)
	k.padLeft = padBefore(cfg.kernelCols, padding)
	return nil
}

// Window returns one unit per tile across all batches.
func (k *InputTransform) Window() parallel.Window {
	return parallel.Window{Start: 0, End: k.batches * k.tileRows * k.tileCols}
}

// Run transforms the tiles in w.
func (k *InputTransform) Run(w parallel.Window, _ parallel.ThreadInfo) {
	mustRunnable(k.Name(), k.input != nil, w, k.Window())

	var (
		alpha = k.cfg.InnerTileRows()
		m     = k.cfg.outputTileRows
		c     = k.channels
		tiles = k.tileRows * k.tileCols
	)
	patch := make([]float32, alpha*alpha*c)
	tmp := make([]float32, alpha*alpha*c)

	for t := w.Start; t < w.End; t++ {
		b, rem := t/tiles, t%tiles
		r0 := (rem/k.tileCols)*m - k.padTop
		c0 := (rem%k.tileCols)*m - k.padLeft

		if r0 >= 0 && c0 >= 0 && r0+alpha <= k.rows && c0+alpha <= k.cols {
			k.gatherInterior(patch, b, r0, c0, alpha)
		} else {
			k.gatherBorder(patch, b, r0, c0, alpha)
		}

		// U = Bᵀ d B; patch is reused for U once tmp holds Bᵀ d.
		leftMultiply(tmp, k.cfg.bt, patch, alpha, alpha, alpha, c)
		rightMultiplyT(patch, tmp, k.cfg.bt, alpha, alpha, alpha, c)

		for e := 0; e < alpha*alpha; e++ {
			copy(k.output[e*k.matrixStride+t*c:][:c], patch[e*c:(e+1)*c])
		}
	}
}

// gatherInterior copies a tile that lies fully inside the input. Each patch
// row is one contiguous run of alpha*channels elements in NHWC.
func (k *InputTransform) gatherInterior(patch []float32, b, r0, c0, alpha int) {
	span := alpha * k.channels
	for i := 0; i < alpha; i++ {
		src := ((b*k.rows+r0+i)*k.cols + c0) * k.channels
		copy(patch[i*span:(i+1)*span], k.input[src:src+span])
	}
}

// gatherBorder copies a tile that overlaps the padding, zero-filling every
// cell outside the input.
func (k *InputTransform) gatherBorder(patch []float32, b, r0, c0, alpha int) {
	c := k.channels
	for i := 0; i < alpha; i++ {
		row := r0 + i
		for j := 0; j < alpha; j++ {
			col := c0 + j
			dst := patch[(i*alpha+j)*c : (i*alpha+j+1)*c]
			if row < 0 || row >= k.rows || col < 0 || col >= k.cols {
				clear(dst)
				continue
			}
			copy(dst, k.input[((b*k.rows+row)*k.cols+col)*c:])
		}
	}
}
