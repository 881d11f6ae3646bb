package winograd

import (
	"io"
	"sync"

	"github.com/born-ml/winograd/internal/gemm"
	"github.com/born-ml/winograd/internal/parallel"
	"github.com/born-ml/winograd/internal/serialization"
	"github.com/born-ml/winograd/internal/tensor"
	"github.com/pkg/errors"
)

// Options controls how a Convolution executes.
type Options struct {
	Parallel parallel.Config
}

// DefaultOptions uses every CPU. The chunk size is small because a window
// unit is a whole tile or a whole coefficient matrix.
func DefaultOptions() Options {
	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = 4
	return Options{Parallel: cfg}
}

// Convolution runs one Winograd convolution shape end to end:
// input transform, batched multiply, output transform.
//
// It owns the three transform-domain workspaces and borrows every tensor
// passed to it for the duration of a call. A Convolution must not be used
// from several goroutines at once; it parallelises each stage internally.
type Convolution struct {
	_ noCopy

	cfg    *Configuration
	info   Info
	opts   Options
	stride int
	gemm   gemm.Batched

	transformedInput   *tensor.RawTensor
	transformedWeights *tensor.RawTensor
	transformedOutput  *tensor.RawTensor

	inputTransform   *InputTransform
	weightsTransform *WeightsTransform
	outputTransform  *OutputTransform

	weightsReady bool
}

// NewConvolution validates info against cfg and allocates the workspaces.
func NewConvolution(cfg *Configuration, info Info, opts Options) (*Convolution, error) {
	if err := cfg.check(info); err != nil {
		return nil, err
	}

	c := &Convolution{
		cfg:    cfg,
		info:   info,
		opts:   opts,
		stride: info.MatrixStride(),
		gemm: gemm.Batched{
			Count:  cfg.Coefficients(),
			M:      info.MatrixRows(),
			K:      info.Kernel.InputChannels,
			N:      info.Kernel.OutputChannels,
			Stride: info.MatrixStride(),
		},
		inputTransform:   NewInputTransform(cfg),
		weightsTransform: NewWeightsTransform(cfg),
		outputTransform:  NewOutputTransform(cfg),
	}

	size := cfg.workspaceSize(info)
	for _, ws := range []**tensor.RawTensor{&c.transformedInput, &c.transformedWeights, &c.transformedOutput} {
		t, err := tensor.NewRaw(tensor.Shape{size}, cfg.inputType)
		if err != nil {
			return nil, errors.Wrap(err, "failed to allocate workspace")
		}
		*ws = t
	}
	if err := c.gemm.Validate(c.transformedInput.AsFloat32(), c.transformedWeights.AsFloat32(),
		c.transformedOutput.AsFloat32()); err != nil {
		return nil, errors.Wrap(ErrWorkspaceTooSmall, err.Error())
	}
	return c, nil
}

// Info returns the convolution's shapes.
func (c *Convolution) Info() Info {
	return c.info
}

// Configuration returns the configuration the plan was built for.
func (c *Convolution) Configuration() *Configuration {
	return c.cfg
}

// MatrixStride returns the stride shared by the three workspaces.
func (c *Convolution) MatrixStride() int {
	return c.stride
}

// OutputShape returns the shape Run writes.
func (c *Convolution) OutputShape() Tensor4DShape {
	return c.info.OutputShape()
}

// WeightsPrepared reports whether transformed weights are loaded.
func (c *Convolution) WeightsPrepared() bool {
	return c.weightsReady
}

// PrepareWeights transforms an HWIO filter bank. The result is kept until
// the next PrepareWeights or LoadWeights call.
func (c *Convolution) PrepareWeights(weights *tensor.RawTensor) error {
	if err := c.configureWeights(weights); err != nil {
		return err
	}
	parallel.Schedule(c.weightsTransform, c.opts.Parallel)
	c.weightsReady = true
	return nil
}

// Run convolves input with the prepared weights, adds bias when it is not
// nil, and writes NHWC results into output.
func (c *Convolution) Run(input, bias, output *tensor.RawTensor) error {
	if !c.weightsReady {
		return errors.Wrap(ErrWeightsNotPrepared, "run")
	}
	if err := c.configureInput(input); err != nil {
		return err
	}
	if err := c.configureOutput(bias, output); err != nil {
		return err
	}

	parallel.Schedule(c.inputTransform, c.opts.Parallel)
	c.multiply()
	parallel.Schedule(c.outputTransform, c.opts.Parallel)
	return nil
}

// Forward is PrepareWeights followed by Run, with the weights and input
// transforms executing concurrently.
func (c *Convolution) Forward(input, weights, bias, output *tensor.RawTensor) error {
	if err := c.configureWeights(weights); err != nil {
		return err
	}
	if err := c.configureInput(input); err != nil {
		return err
	}
	if err := c.configureOutput(bias, output); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		parallel.Schedule(c.weightsTransform, c.opts.Parallel)
	}()
	go func() {
		defer wg.Done()
		parallel.Schedule(c.inputTransform, c.opts.Parallel)
	}()
	wg.Wait()
	c.weightsReady = true

	c.multiply()
	parallel.Schedule(c.outputTransform, c.opts.Parallel)
	return nil
}

// SaveWeights writes the prepared weights densely packed, one
// InputChannels x OutputChannels matrix per coefficient.
func (c *Convolution) SaveWeights(w io.Writer) error {
	if !c.weightsReady {
		return errors.Wrap(ErrWeightsNotPrepared, "save weights")
	}

	k := c.info.Kernel
	matrix := k.InputChannels * k.OutputChannels
	ws := c.transformedWeights.AsFloat32()
	values := make([]float32, c.cfg.Coefficients()*matrix)
	for e := 0; e < c.cfg.Coefficients(); e++ {
		copy(values[e*matrix:(e+1)*matrix], ws[e*c.stride:])
	}

	return serialization.Write(w, &serialization.WeightsRecord{
		Configuration:  c.cfg.name,
		KernelRows:     k.Rows,
		KernelCols:     k.Cols,
		OutputChannels: k.OutputChannels,
		InputChannels:  k.InputChannels,
		Coefficients:   c.cfg.Coefficients(),
		Values:         values,
	})
}

// LoadWeights reads weights written by SaveWeights from a plan with the
// same configuration and kernel shape.
func (c *Convolution) LoadWeights(r io.Reader) error {
	rec, err := serialization.Read(r)
	if err != nil {
		return errors.Wrap(err, "load weights")
	}

	k := c.info.Kernel
	if rec.Configuration != c.cfg.name || rec.Coefficients != c.cfg.Coefficients() {
		return errors.Wrapf(ErrConfigurationMismatch, "weights were transformed by %s (%d coefficients), plan uses %s",
			rec.Configuration, rec.Coefficients, c.cfg.name)
	}
	if rec.KernelRows != k.Rows || rec.KernelCols != k.Cols ||
		rec.OutputChannels != k.OutputChannels || rec.InputChannels != k.InputChannels {
		return errors.Wrapf(ErrConfigurationMismatch, "weights hold %dx%d kernels %d->%d, plan needs %dx%d %d->%d",
			rec.KernelRows, rec.KernelCols, rec.InputChannels, rec.OutputChannels,
			k.Rows, k.Cols, k.InputChannels, k.OutputChannels)
	}

	matrix := k.InputChannels * k.OutputChannels
	ws := c.transformedWeights.AsFloat32()
	for e := 0; e < rec.Coefficients; e++ {
		copy(ws[e*c.stride:][:matrix], rec.Values[e*matrix:(e+1)*matrix])
	}
	c.weightsReady = true
	return nil
}

func (c *Convolution) configureWeights(weights *tensor.RawTensor) error {
	if err := ValidateWeightsTransform(c.cfg, weights.Info(), c.transformedWeights.Info(), c.info); err != nil {
		return err
	}
	return c.weightsTransform.Configure(weights, c.transformedWeights, c.stride,
		c.info.Kernel.OutputChannels, c.info.Kernel.InputChannels)
}

func (c *Convolution) configureInput(input *tensor.RawTensor) error {
	if err := ValidateInputTransform(c.cfg, input.Info(), c.transformedInput.Info(), c.info); err != nil {
		return err
	}
	in := c.info.Input
	return c.inputTransform.Configure(input, in.Batches, in.Rows, in.Cols, in.Channels,
		c.info.Padding, c.transformedInput, c.stride)
}

func (c *Convolution) configureOutput(bias, output *tensor.RawTensor) error {
	var biasInfo *tensor.Info
	if bias != nil {
		bi := bias.Info()
		biasInfo = &bi
	}
	if err := ValidateOutputTransform(c.cfg, c.transformedOutput.Info(), biasInfo, output.Info(), c.info); err != nil {
		return err
	}
	out := c.info.OutputShape()
	return c.outputTransform.Configure(bias, c.transformedOutput, c.stride,
		output, out.Batches, out.Rows, out.Cols, out.Channels)
}

func (c *Convolution) multiply() {
	c.gemm.Run(c.transformedInput.AsFloat32(), c.transformedWeights.AsFloat32(),
		c.transformedOutput.AsFloat32(), c.opts.Parallel)
}
