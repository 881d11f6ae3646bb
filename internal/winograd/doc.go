// Package winograd implements 2D convolution with Winograd minimal filtering.
//
// A convolution F(m×m, r×r) splits the NHWC input into overlapping α×α
// tiles (α = m + r - 1) stepped by m, and computes each m×m output tile as
//
//	Y = Aᵀ [ Σ_c (G g_c Gᵀ) ⊙ (Bᵀ d_c B) ] A
//
// The work is split across three kernels that communicate through
// transform-domain workspaces:
//
//   - InputTransform writes Bᵀ d B for every tile.
//   - WeightsTransform writes G g Gᵀ for every filter.
//   - OutputTransform reads the products, applies Aᵀ · A, adds the bias and
//     writes the clipped output tiles.
//
// Each workspace holds α² matrices, one per coefficient, matrix e starting
// at element e*MatrixStride. Inside a matrix element (row, col) lives at
// row*cols + col. The input matrices are tiles x input channels, the
// weights matrices input x output channels and the output matrices
// tiles x output channels, so the sum over channels is α² independent
// matrix products (see package gemm).
//
// All three kernels follow the same lifecycle: a pure Validate* function,
// Configure to bind borrowed tensors, then Run over disjoint windows, which
// parallel.Schedule may execute concurrently. Convolution wires the three
// together for callers that do not need to drive the kernels themselves:
//
//	info, err := winograd.NewInfo(winograd.Winograd2x2_3x3, kernel, input, winograd.PaddingSame)
//	conv, err := winograd.NewConvolution(winograd.Winograd2x2_3x3, info, winograd.DefaultOptions())
//	err = conv.PrepareWeights(weights)
//	err = conv.Run(x, bias, y)
package winograd
