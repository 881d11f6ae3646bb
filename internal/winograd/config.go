package winograd

import (
	"github.com/born-ml/winograd/internal/tensor"
	"github.com/pkg/errors"
)

// Configuration binds an output tile and kernel geometry to its transform
// matrices. The three kernels built from one Configuration share the tiling
// rule and the coefficient count; workspaces of different configurations
// must never be mixed.
//
// For F(m, r) with α = m + r - 1 the kernels compute
//
//	U = Bᵀ d B      (α×α input tile)
//	V = G g Gᵀ      (α×α filter)
//	Y = Aᵀ (U ⊙ V) A (m×m output tile)
//
// where the element-wise product is summed over input channels by the
// external batched matrix multiply.
//
// A Configuration is immutable; the built-in values are shared freely.
type Configuration struct {
	name           string
	outputTileRows int
	outputTileCols int
	kernelRows     int
	kernelCols     int
	inputType      tensor.DataType
	outputType     tensor.DataType

	// samePadding is false for even kernels, which cannot be padded symmetrically.
	samePadding bool

	bt []float32 // α×α, row-major
	g  []float32 // α×r, row-major
	at []float32 // m×α, row-major
}

// Built-in configurations.
var (
	// Winograd2x2_3x3 is F(2×2, 3×3): 16 coefficients, 2.25x fewer multiplies.
	Winograd2x2_3x3 = &Configuration{
		name:           "F(2x2,3x3)",
		outputTileRows: 2, outputTileCols: 2,
		kernelRows: 3, kernelCols: 3,
		inputType: tensor.Float32, outputType: tensor.Float32,
		samePadding: true,
		bt: []float32{
			1, 0, -1, 0,
			0, 1, 1, 0,
			0, -1, 1, 0,
			0, 1, 0, -1,
		},
		g: []float32{
			1, 0, 0,
			0.5, 0.5, 0.5,
			0.5, -0.5, 0.5,
			0, 0, 1,
		},
		at: []float32{
			1, 1, 1, 0,
			0, 1, -1, -1,
		},
	}

	// Winograd4x4_3x3 is F(4×4, 3×3): 36 coefficients, 4x fewer multiplies.
	Winograd4x4_3x3 = &Configuration{
		name:           "F(4x4,3x3)",
		outputTileRows: 4, outputTileCols: 4,
		kernelRows: 3, kernelCols: 3,
		inputType: tensor.Float32, outputType: tensor.Float32,
		samePadding: true,
		bt: []float32{
			4, 0, -5, 0, 1, 0,
			0, -4, -4, 1, 1, 0,
			0, 4, -4, -1, 1, 0,
			0, -2, -1, 2, 1, 0,
			0, 2, -1, -2, 1, 0,
			0, 4, 0, -5, 0, 1,
		},
		g: []float32{
			1.0 / 4, 0, 0,
			-1.0 / 6, -1.0 / 6, -1.0 / 6,
			-1.0 / 6, 1.0 / 6, -1.0 / 6,
			1.0 / 24, 1.0 / 12, 1.0 / 6,
			1.0 / 24, -1.0 / 12, 1.0 / 6,
			0, 0, 1,
		},
		at: []float32{
			1, 1, 1, 1, 1, 0,
			0, 1, -1, 2, -2, 0,
			0, 1, 1, 4, 4, 0,
			0, 1, -1, 8, -8, 1,
		},
	}

	// Winograd3x3_2x2 is F(3×3, 2×2): 16 coefficients. VALID padding only.
	Winograd3x3_2x2 = &Configuration{
		name:           "F(3x3,2x2)",
		outputTileRows: 3, outputTileCols: 3,
		kernelRows: 2, kernelCols: 2,
		inputType: tensor.Float32, outputType: tensor.Float32,
		samePadding: false,
		bt: []float32{
			1, 0, -1, 0,
			0, 1, 1, 0,
			0, -1, 1, 0,
			0, -1, 0, 1,
		},
		g: []float32{
			1, 0,
			0.5, 0.5,
			0.5, -0.5,
			0, 1,
		},
		at: []float32{
			1, 1, 1, 0,
			0, 1, -1, 0,
			0, 1, 1, 1,
		},
	}
)

// Configurations lists the built-in configurations.
func Configurations() []*Configuration {
	return []*Configuration{Winograd2x2_3x3, Winograd4x4_3x3, Winograd3x3_2x2}
}

// Lookup returns the configuration for an output tile and a square kernel size.
func Lookup(tile TileShape, kernelSize int) (*Configuration, error) {
	for _, cfg := range Configurations() {
		if cfg.outputTileRows == tile.Rows && cfg.outputTileCols == tile.Cols && cfg.kernelRows == kernelSize {
			return cfg, nil
		}
	}
	return nil, errors.Wrapf(ErrUnsupportedKernel, "no configuration for %dx%d tiles with a %dx%d kernel",
		tile.Rows, tile.Cols, kernelSize, kernelSize)
}

// Name returns the configuration name, e.g. "F(2x2,3x3)".
func (c *Configuration) Name() string {
	return c.name
}

// OutputTileRows returns m for the rows.
func (c *Configuration) OutputTileRows() int {
	return c.outputTileRows
}

// OutputTileCols returns m for the columns.
func (c *Configuration) OutputTileCols() int {
	return c.outputTileCols
}

// OutputTile returns the output tile shape.
func (c *Configuration) OutputTile() TileShape {
	return TileShape{Rows: c.outputTileRows, Cols: c.outputTileCols}
}

// KernelRows returns r for the rows.
func (c *Configuration) KernelRows() int {
	return c.kernelRows
}

// KernelCols returns r for the columns.
func (c *Configuration) KernelCols() int {
	return c.kernelCols
}

// InputType returns the element type of inputs and weights.
func (c *Configuration) InputType() tensor.DataType {
	return c.inputType
}

// OutputType returns the element type of outputs and biases.
func (c *Configuration) OutputType() tensor.DataType {
	return c.outputType
}

// InnerTileRows returns α for the rows: the input patch height per tile.
func (c *Configuration) InnerTileRows() int {
	return c.outputTileRows + c.kernelRows - 1
}

// InnerTileCols returns α for the columns: the input patch width per tile.
func (c *Configuration) InnerTileCols() int {
	return c.outputTileCols + c.kernelCols - 1
}

// Coefficients returns the number of transform-domain matrices.
func (c *Configuration) Coefficients() int {
	return c.InnerTileRows() * c.InnerTileCols()
}

// SupportsSamePadding reports whether SAME padding can be used.
func (c *Configuration) SupportsSamePadding() bool {
	return c.samePadding
}

// String returns the configuration name.
func (c *Configuration) String() string {
	return c.name
}

// checkPadding rejects padding the configuration cannot provide.
func (c *Configuration) checkPadding(padding PaddingType) error {
	switch padding {
	case PaddingValid:
		return nil
	case PaddingSame:
		if !c.samePadding {
			return errors.Wrapf(ErrUnsupportedPadding, "%s cannot pad a %dx%d kernel symmetrically",
				c.name, c.kernelRows, c.kernelCols)
		}
		return nil
	default:
		return errors.Wrapf(ErrUnsupportedPadding, "%s", padding)
	}
}

// checkKernel rejects kernels the configuration was not built for.
func (c *Configuration) checkKernel(rows, cols int) error {
	if rows != cols {
		return errors.Wrapf(ErrUnsupportedKernel, "kernel %dx%d is not square", rows, cols)
	}
	if rows != c.kernelRows {
		return errors.Wrapf(ErrUnsupportedKernel, "%s needs a %dx%d kernel, got %dx%d",
			c.name, c.kernelRows, c.kernelCols, rows, cols)
	}
	return nil
}

// checkType rejects element types other than the configuration's.
func (c *Configuration) checkType(what string, want, got tensor.DataType) error {
	if got != want {
		return errors.Wrapf(ErrUnsupportedDataType, "%s: %s needs %s, got %s", what, c.name, want, got)
	}
	return nil
}

// check validates a whole Info against the configuration.
func (c *Configuration) check(info Info) error {
	if info.OutputTile.Rows != c.outputTileRows || info.OutputTile.Cols != c.outputTileCols {
		return errors.Wrapf(ErrConfigurationMismatch, "info has %dx%d tiles, %s has %dx%d",
			info.OutputTile.Rows, info.OutputTile.Cols, c.name, c.outputTileRows, c.outputTileCols)
	}
	if err := c.checkKernel(info.Kernel.Rows, info.Kernel.Cols); err != nil {
		return err
	}
	if err := c.checkPadding(info.Padding); err != nil {
		return err
	}

	k, in := info.Kernel, info.Input
	if k.OutputChannels <= 0 || k.InputChannels <= 0 {
		return errors.Wrapf(ErrInvalidShape, "kernel channels %dx%d", k.OutputChannels, k.InputChannels)
	}
	if in.Batches <= 0 || in.Rows <= 0 || in.Cols <= 0 || in.Channels <= 0 {
		return errors.Wrapf(ErrInvalidShape, "input %s", in)
	}
	if in.Channels != k.InputChannels {
		return errors.Wrapf(ErrInvalidShape, "input has %d channels, kernel expects %d", in.Channels, k.InputChannels)
	}
	if out := info.OutputShape(); out.Rows <= 0 || out.Cols <= 0 {
		return errors.Wrapf(ErrInvalidShape, "input %dx%d is smaller than the %dx%d kernel",
			in.Rows, in.Cols, k.Rows, k.Cols)
	}
	return nil
}
