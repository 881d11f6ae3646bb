package winograd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/winograd/internal/backend/cpu"
	"github.com/born-ml/winograd/internal/tensor"
	"github.com/stretchr/testify/require"
)

func randomTensor(t *testing.T, rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32)
	require.NoError(t, err)
	data := raw.AsFloat32()
	for i := range data {
		data[i] = rng.Float32()*2 - 1
	}
	return raw
}

func zeros(t *testing.T, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32)
	require.NoError(t, err)
	return raw
}

// directConv computes the reference result with the im2col backend.
func directConv(input, weights, bias *tensor.RawTensor, kernelSize int, padding PaddingType) *tensor.RawTensor {
	return cpu.New().Conv2D(input, weights, bias, 1, padBefore(kernelSize, padding))
}

// requireClose fails unless got matches want within 1e-4 relative to the
// largest reference magnitude.
func requireClose(t *testing.T, want, got []float32) {
	t.Helper()
	require.Len(t, got, len(want))

	scale := 1.0
	for _, v := range want {
		scale = math.Max(scale, math.Abs(float64(v)))
	}
	tol := 1e-4 * scale
	for i := range want {
		if d := math.Abs(float64(want[i] - got[i])); d > tol {
			require.Failf(t, "values differ", "index %d: want %g, got %g (tolerance %g)", i, want[i], got[i], tol)
		}
	}
}
