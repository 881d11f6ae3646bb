package cpu

import (
	"fmt"

	"github.com/born-ml/winograd/internal/tensor"
)

// BatchMatMulStrided multiplies count pairs of matrices stored in flat
// workspaces, matrix i starting at element i*stride of a, b and c:
//
//	c_i [M, N] = a_i [M, K] @ b_i [K, N]
//
// This is the naive reference for the strided Winograd workspace layout.
func (cpu *CPUBackend) BatchMatMulStrided(a, b, c *tensor.RawTensor, count, m, k, n, stride int) {
	for _, t := range []*tensor.RawTensor{a, b, c} {
		if t.DType() != tensor.Float32 {
			panic(fmt.Sprintf("BatchMatMulStrided: unsupported dtype %s", t.DType()))
		}
	}
	if stride < m*k || stride < k*n || stride < m*n {
		panic(fmt.Sprintf("BatchMatMulStrided: stride %d overlaps matrices (m=%d k=%d n=%d)", stride, m, k, n))
	}
	need := (count - 1) * stride
	if a.NumElements() < need+m*k || b.NumElements() < need+k*n || c.NumElements() < need+m*n {
		panic("BatchMatMulStrided: workspace too small")
	}

	batchMatmulFloat32(c.AsFloat32(), a.AsFloat32(), b.AsFloat32(), count, m, k, n, stride)
}

// batchMatmulFloat32 performs strided batched matrix multiplication for float32.
func batchMatmulFloat32(c, a, b []float32, batchSize, m, k, n, stride int) {
	for batch := 0; batch < batchSize; batch++ {
		off := batch * stride

		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				sum := float32(0)
				for kIdx := 0; kIdx < k; kIdx++ {
					sum += a[off+i*k+kIdx] * b[off+kIdx*n+j]
				}
				c[off+i*n+j] = sum
			}
		}
	}
}
