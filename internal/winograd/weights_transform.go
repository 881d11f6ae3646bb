package winograd

import (
	"github.com/born-ml/winograd/internal/parallel"
	"github.com/born-ml/winograd/internal/tensor"
	"github.com/pkg/errors"
)

// WeightsTransform maps an HWIO filter bank into the transform domain.
//
// Coefficient (i, j) of the filter for (ic, oc) lands in matrix i·α+j at
// row ic, column oc: each matrix is the InputChannels x OutputChannels
// right-hand operand of the batched multiply.
type WeightsTransform struct {
	_ noCopy

	cfg *Configuration

	weights        []float32 // HWIO, borrowed
	output         []float32 // workspace, borrowed
	matrixStride   int
	outputChannels int
	inputChannels  int
}

// NewWeightsTransform returns an unconfigured weights transform for cfg.
func NewWeightsTransform(cfg *Configuration) *WeightsTransform {
	return &WeightsTransform{cfg: cfg}
}

// Name returns WeightsTransformName.
func (k *WeightsTransform) Name() string {
	return WeightsTransformName
}

// IsParallelisable reports false: the per-filter work is small next to the
// tile transforms, so the scheduler keeps it on a single worker.
func (k *WeightsTransform) IsParallelisable() bool {
	return false
}

// WeightStorageSize delegates to the configuration.
func (k *WeightsTransform) WeightStorageSize(outputChannels, inputChannels int) int {
	return k.cfg.WeightStorageSize(outputChannels, inputChannels)
}

// MatrixStride delegates to the configuration.
func (k *WeightsTransform) MatrixStride(kernel KernelShape, input Tensor4DShape, padding PaddingType) (int, error) {
	return k.cfg.MatrixStride(kernel, input, padding)
}

// ValidateWeightsTransform checks that weights can be transformed into
// output for info under cfg. It does not touch memory.
func ValidateWeightsTransform(cfg *Configuration, weights, output tensor.Info, info Info) error {
	if len(weights.Shape) != 4 {
		return errors.Wrapf(ErrUnsupportedKernel, "weights must be 4D [rows, cols, in, out], got %v", weights.Shape)
	}
	if err := cfg.checkKernel(weights.Shape[0], weights.Shape[1]); err != nil {
		return err
	}
	if err := cfg.checkType("weights", cfg.inputType, weights.DType); err != nil {
		return err
	}
	if err := cfg.checkType("transformed weights", cfg.inputType, output.DType); err != nil {
		return err
	}
	if err := cfg.check(info); err != nil {
		return err
	}
	if want := info.Kernel.TensorShape(); !weights.Shape.Equal(want) {
		return errors.Wrapf(ErrInvalidShape, "weights %v, kernel shape needs %v", weights.Shape, want)
	}
	if need := cfg.workspaceSize(info); output.NumElements() < need {
		return errors.Wrapf(ErrWorkspaceTooSmall, "transformed weights hold %d elements, need %d",
			output.NumElements(), need)
	}
	return nil
}

// Configure binds the kernel to weights (HWIO) and the output workspace.
func (k *WeightsTransform) Configure(weights, output *tensor.RawTensor, matrixStride, outputChannels, inputChannels int) error {
	cfg := k.cfg
	if err := cfg.checkType("weights", cfg.inputType, weights.DType()); err != nil {
		return err
	}
	if err := cfg.checkType("transformed weights", cfg.inputType, output.DType()); err != nil {
		return err
	}
	if outputChannels <= 0 || inputChannels <= 0 {
		return errors.Wrapf(ErrInvalidShape, "channels out=%d in=%d", outputChannels, inputChannels)
	}
	want := tensor.Shape{cfg.kernelRows, cfg.kernelCols, inputChannels, outputChannels}
	if !weights.Shape().Equal(want) {
		return errors.Wrapf(ErrInvalidShape, "weights %v, need %v", weights.Shape(), want)
	}
	if matrixStride < inputChannels*outputChannels {
		return errors.Wrapf(ErrWorkspaceTooSmall, "matrix stride %d below %dx%d matrix",
			matrixStride, inputChannels, outputChannels)
	}
	if need := requiredSpan(cfg.Coefficients(), matrixStride, inputChannels, outputChannels); output.NumElements() < need {
		return errors.Wrapf(ErrWorkspaceTooSmall, "transformed weights hold %d elements, need %d",
			output.NumElements(), need)
	}

	k.weights = weights.AsFloat32()
	k.output = output.AsFloat32()
	k.matrixStride = matrixStride
	k.outputChannels = outputChannels
	k.inputChannels = inputChannels
	return nil
}

// Window returns one unit per input channel.
func (k *WeightsTransform) Window() parallel.Window {
	return parallel.Window{Start: 0, End: k.inputChannels}
}

// Run transforms the filters of the input channels in w, for every output channel.
func (k *WeightsTransform) Run(w parallel.Window, _ parallel.ThreadInfo) {
	mustRunnable(k.Name(), k.weights != nil, w, k.Window())

	var (
		r     = k.cfg.kernelRows
		alpha = k.cfg.InnerTileRows()
		oc    = k.outputChannels
		ic    = k.inputChannels
	)
	filter := make([]float32, r*r*oc)
	tmp := make([]float32, alpha*r*oc)
	v := make([]float32, alpha*alpha*oc)

	for c := w.Start; c < w.End; c++ {
		// Gather the r x r filter of input channel c, output channels innermost.
		for p := 0; p < r*r; p++ {
			copy(filter[p*oc:(p+1)*oc], k.weights[(p*ic+c)*oc:])
		}

		leftMultiply(tmp, k.cfg.g, filter, alpha, r, r, oc)
		rightMultiplyT(v, tmp, k.cfg.g, alpha, r, alpha, oc)

		for e := 0; e < alpha*alpha; e++ {
			copy(k.output[e*k.matrixStride+c*oc:][:oc], v[e*oc:(e+1)*oc])
		}
	}
}
