package cpu

import (
	"fmt"

	"github.com/born-ml/winograd/internal/parallel"
	"github.com/born-ml/winograd/internal/tensor"
)

// Conv2D performs direct 2D convolution using the im2col algorithm.
//
// Input shape: [batch, height, width, in_channels] (NHWC)
// Kernel shape: [kernel_h, kernel_w, in_channels, out_channels] (HWIO)
// Bias shape: [out_channels], or nil
// Output shape: [batch, out_h, out_w, out_channels]
//
// Parameters:
//   - stride: Stride for convolution
//   - padding: Zero rows/columns added on every side
//
// Algorithm: Im2col
//  1. Transform input patches into rows (im2col)
//  2. View the HWIO kernel as a [K_h*K_w*C_in, C_out] matrix
//  3. Multiply; the [N*H_out*W_out, C_out] result is already NHWC
//
// Accumulation is done in float64 so the result can serve as a reference.
func (cpu *CPUBackend) Conv2D(input, kernel, bias *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,H,W,C], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [K_h,K_w,C_in,C_out], got %dD", len(kernelShape)))
	}
	if input.DType() != tensor.Float32 || kernel.DType() != tensor.Float32 {
		panic(fmt.Sprintf("conv2d: unsupported dtype %s/%s", input.DType(), kernel.DType()))
	}

	N := inputShape[0]     // batch size
	H := inputShape[1]     // input height
	W := inputShape[2]     // input width
	CIn := inputShape[3]   // input channels
	KH := kernelShape[0]   // kernel height
	KW := kernelShape[1]   // kernel width
	CInK := kernelShape[2] // kernel input channels (must match CIn)
	COut := kernelShape[3] // output channels

	if CIn != CInK {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", CIn, CInK))
	}
	if bias != nil && bias.NumElements() != COut {
		panic(fmt.Sprintf("conv2d: bias has %d elements, want %d", bias.NumElements(), COut))
	}

	// out_h = (H + 2*padding - KH) / stride + 1
	HOut := (H+2*padding-KH)/stride + 1
	WOut := (W+2*padding-KW)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	output, err := tensor.NewRaw(tensor.Shape{N, HOut, WOut, COut}, tensor.Float32)
	if err != nil {
		panic(fmt.Sprintf("conv2d: failed to create output tensor: %v", err))
	}

	colWidth := KH * KW * CIn
	colHeight := N * HOut * WOut
	colBuf := make([]float32, colHeight*colWidth)
	im2colNHWC(colBuf, input.AsFloat32(), N, H, W, CIn, KH, KW, HOut, WOut, stride, padding, cpu.parallel)

	var biasData []float32
	if bias != nil {
		biasData = bias.AsFloat32()
	}
	kernelData := kernel.AsFloat32()
	outputData := output.AsFloat32()

	// result[j, o] = sum_k colBuf[j, k] * kernel[k, o]
	parallel.For(colHeight, func(j int) {
		row := colBuf[j*colWidth : (j+1)*colWidth]
		for o := 0; o < COut; o++ {
			var sum float64
			if biasData != nil {
				sum = float64(biasData[o])
			}
			for k, v := range row {
				sum += float64(v) * float64(kernelData[k*COut+o])
			}
			outputData[j*COut+o] = float32(sum)
		}
	}, cpu.parallel)

	return output
}

// im2colNHWC transforms an NHWC input into a patch matrix.
//
// Output: colBuf [N * H_out * W_out, K_h * K_w * C]
//
// Each row holds the patch of one output position with channels innermost,
// matching the HWIO kernel flattened to [K_h*K_w*C_in, C_out].
func im2colNHWC(colBuf, inputData []float32, N, H, W, C, KH, KW, HOut, WOut, stride, padding int, cfg parallel.Config) {
	colWidth := KH * KW * C

	parallel.ForBatch(N, HOut, func(n, outH int) {
		for outW := 0; outW < WOut; outW++ {
			hStart := outH*stride - padding
			wStart := outW*stride - padding
			bufIdx := ((n*HOut+outH)*WOut + outW) * colWidth

			for kh := 0; kh < KH; kh++ {
				for kw := 0; kw < KW; kw++ {
					h := hStart + kh
					w := wStart + kw
					dst := colBuf[bufIdx : bufIdx+C]
					if h >= 0 && h < H && w >= 0 && w < W {
						copy(dst, inputData[((n*H+h)*W+w)*C:])
					} else {
						// Out of bounds (padding with zero)
						clear(dst)
					}
					bufIdx += C
				}
			}
		}
	}, cfg)
}
