package winograd

import "github.com/pkg/errors"

// tiles returns the tile grid covering the output of a rows x cols input.
func (c *Configuration) tiles(rows, cols int, samePadding bool) (int, int, error) {
	outRows, outCols := rows, cols
	if !samePadding {
		outRows = rows - c.kernelRows + 1
		outCols = cols - c.kernelCols + 1
	}
	if outRows <= 0 || outCols <= 0 {
		return 0, 0, errors.Wrapf(ErrInvalidShape, "%dx%d input leaves no output for a %dx%d kernel",
			rows, cols, c.kernelRows, c.kernelCols)
	}
	return ceilDiv(outRows, c.outputTileRows), ceilDiv(outCols, c.outputTileCols), nil
}

func (c *Configuration) paddingOf(samePadding bool) PaddingType {
	if samePadding {
		return PaddingSame
	}
	return PaddingValid
}

// InputStorageSize returns the number of elements the transformed input
// occupies when its matrices are packed densely (matrix stride equal to
// tiles x batches x channels). Workspaces laid out with MatrixStride, which
// also fits the output and weights matrices, need WorkspaceSize elements
// instead; the two agree only when the input matrix is the largest of the
// three.
func (c *Configuration) InputStorageSize(batches, channels, rows, cols int, samePadding bool) (int, error) {
	if err := c.checkPadding(c.paddingOf(samePadding)); err != nil {
		return 0, err
	}
	if batches <= 0 || channels <= 0 {
		return 0, errors.Wrapf(ErrInvalidShape, "batches=%d channels=%d", batches, channels)
	}
	tileRows, tileCols, err := c.tiles(rows, cols, samePadding)
	if err != nil {
		return 0, err
	}
	return c.Coefficients() * tileRows * tileCols * batches * channels, nil
}

// OutputStorageSize returns the number of elements of the transform-domain
// output when its matrices are packed densely. rows and cols are the
// spatial dimensions of the convolution's input. Workspaces laid out with
// MatrixStride need WorkspaceSize elements instead.
func (c *Configuration) OutputStorageSize(batches, rows, cols, outputChannels int, samePadding bool) (int, error) {
	if err := c.checkPadding(c.paddingOf(samePadding)); err != nil {
		return 0, err
	}
	if batches <= 0 || outputChannels <= 0 {
		return 0, errors.Wrapf(ErrInvalidShape, "batches=%d output channels=%d", batches, outputChannels)
	}
	tileRows, tileCols, err := c.tiles(rows, cols, samePadding)
	if err != nil {
		return 0, err
	}
	return c.Coefficients() * tileRows * tileCols * batches * outputChannels, nil
}

// WeightStorageSize returns the number of elements of the transformed
// weights when packed densely.
func (c *Configuration) WeightStorageSize(outputChannels, inputChannels int) int {
	return c.Coefficients() * outputChannels * inputChannels
}

// OutputShape returns the shape of convolving input with kernel.
func (c *Configuration) OutputShape(kernel KernelShape, input Tensor4DShape, padding PaddingType) Tensor4DShape {
	return outputShape(kernel, input, padding)
}

// MatrixStride returns the stride shared by the input, weights and output
// workspaces of one convolution. It depends only on the shapes, so the
// input-side and output-side kernels always agree on it.
func (c *Configuration) MatrixStride(kernel KernelShape, input Tensor4DShape, padding PaddingType) (int, error) {
	info, err := NewInfo(c, kernel, input, padding)
	if err != nil {
		return 0, err
	}
	return info.MatrixStride(), nil
}

// WorkspaceSize returns the number of elements each lockstep workspace
// needs: one MatrixStride per coefficient.
func (c *Configuration) WorkspaceSize(kernel KernelShape, input Tensor4DShape, padding PaddingType) (int, error) {
	stride, err := c.MatrixStride(kernel, input, padding)
	if err != nil {
		return 0, err
	}
	return c.Coefficients() * stride, nil
}

// workspaceSize is WorkspaceSize for an already checked Info.
func (c *Configuration) workspaceSize(info Info) int {
	return c.Coefficients() * info.MatrixStride()
}

// requiredSpan returns the elements touched by count matrices of size
// rows x cols spaced stride apart.
func requiredSpan(count, stride, rows, cols int) int {
	return (count-1)*stride + rows*cols
}
