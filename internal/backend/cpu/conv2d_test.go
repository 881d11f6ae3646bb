package cpu

import (
	"testing"

	"github.com/born-ml/winograd/internal/parallel"
	"github.com/born-ml/winograd/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTensor(t *testing.T, shape tensor.Shape, fill func(i int) float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32)
	require.NoError(t, err)
	data := raw.AsFloat32()
	for i := range data {
		data[i] = fill(i)
	}
	return raw
}

// TestConv2D_BasicForward tests basic Conv2D forward pass.
func TestConv2D_BasicForward(t *testing.T) {
	backend := New()

	// Input: [1, 3, 3, 1]
	// 1 2 3
	// 4 5 6
	// 7 8 9
	input := newTensor(t, tensor.Shape{1, 3, 3, 1}, func(i int) float32 { return float32(i + 1) })

	// Kernel: [2, 2, 1, 1]
	// 1 0
	// 0 1
	kernel := tensor.MustFromFloat32(tensor.Shape{2, 2, 1, 1}, []float32{1, 0, 0, 1})

	output := backend.Conv2D(input, kernel, nil, 1, 0)

	require.Equal(t, tensor.Shape{1, 2, 2, 1}, output.Shape())
	// Diagonal sums of each 2x2 patch.
	assert.Equal(t, []float32{6, 8, 12, 14}, output.AsFloat32())
}

// TestConv2D_WithPadding tests Conv2D with zero padding.
func TestConv2D_WithPadding(t *testing.T) {
	backend := New()

	input := newTensor(t, tensor.Shape{1, 3, 3, 1}, func(int) float32 { return 1 })
	kernel := newTensor(t, tensor.Shape{3, 3, 1, 1}, func(int) float32 { return 1 })

	output := backend.Conv2D(input, kernel, nil, 1, 1)

	require.Equal(t, tensor.Shape{1, 3, 3, 1}, output.Shape())
	// Corner: 4 valid elements, edge: 6, center: 9.
	assert.Equal(t, []float32{
		4, 6, 4,
		6, 9, 6,
		4, 6, 4,
	}, output.AsFloat32())
}

// TestConv2D_WithStride tests Conv2D with stride > 1.
func TestConv2D_WithStride(t *testing.T) {
	backend := New()

	input := newTensor(t, tensor.Shape{1, 4, 4, 1}, func(i int) float32 { return float32(i + 1) })
	kernel := newTensor(t, tensor.Shape{2, 2, 1, 1}, func(int) float32 { return 1 })

	output := backend.Conv2D(input, kernel, nil, 2, 0)

	require.Equal(t, tensor.Shape{1, 2, 2, 1}, output.Shape())
	// [1,2,5,6]=14 [3,4,7,8]=22 [9,10,13,14]=46 [11,12,15,16]=54
	assert.Equal(t, []float32{14, 22, 46, 54}, output.AsFloat32())
}

// TestConv2D_MultiChannel tests Conv2D with multiple input/output channels.
func TestConv2D_MultiChannel(t *testing.T) {
	backend := New()

	// Channel 0 all 1s, channel 1 all 2s, interleaved in NHWC.
	input := newTensor(t, tensor.Shape{1, 3, 3, 2}, func(i int) float32 { return float32(i%2 + 1) })

	// Output channel 0 weights 1, output channel 1 weights 0.5 (output channel innermost).
	kernel := newTensor(t, tensor.Shape{2, 2, 2, 2}, func(i int) float32 {
		if i%2 == 0 {
			return 1
		}
		return 0.5
	})

	output := backend.Conv2D(input, kernel, nil, 1, 0)

	require.Equal(t, tensor.Shape{1, 2, 2, 2}, output.Shape())
	// Each patch: 4*1 + 4*2 = 12, scaled by 0.5 for channel 1.
	assert.Equal(t, []float32{12, 6, 12, 6, 12, 6, 12, 6}, output.AsFloat32())
}

// TestConv2D_Batch tests Conv2D with batch size > 1.
func TestConv2D_Batch(t *testing.T) {
	backend := New()

	// Batch 0: [1,2,3,4], batch 1: [5,6,7,8]
	input := newTensor(t, tensor.Shape{2, 2, 2, 1}, func(i int) float32 { return float32(i + 1) })
	kernel := newTensor(t, tensor.Shape{2, 2, 1, 1}, func(int) float32 { return 1 })

	output := backend.Conv2D(input, kernel, nil, 1, 0)

	require.Equal(t, tensor.Shape{2, 1, 1, 1}, output.Shape())
	assert.Equal(t, []float32{10, 26}, output.AsFloat32())
}

func TestConv2D_Bias(t *testing.T) {
	backend := NewWithConfig(parallel.Sequential())

	input := newTensor(t, tensor.Shape{1, 2, 2, 1}, func(i int) float32 { return float32(i + 1) })
	kernel := tensor.MustFromFloat32(tensor.Shape{1, 1, 1, 2}, []float32{1, -1})
	bias := tensor.MustFromFloat32(tensor.Shape{2}, []float32{10, 100})

	output := backend.Conv2D(input, kernel, bias, 1, 0)

	require.Equal(t, tensor.Shape{1, 2, 2, 2}, output.Shape())
	assert.Equal(t, []float32{11, 99, 12, 98, 13, 97, 14, 96}, output.AsFloat32())
}

func TestConv2D_ParallelMatchesSequential(t *testing.T) {
	input := newTensor(t, tensor.Shape{2, 9, 7, 3}, func(i int) float32 { return float32(i%11) - 5 })
	kernel := newTensor(t, tensor.Shape{3, 3, 3, 4}, func(i int) float32 { return float32(i%5) - 2 })

	seq := NewWithConfig(parallel.Sequential()).Conv2D(input, kernel, nil, 1, 1)
	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}).Conv2D(input, kernel, nil, 1, 1)

	assert.Equal(t, seq.AsFloat32(), par.AsFloat32())
}

func TestConv2D_Panics(t *testing.T) {
	backend := New()
	input := newTensor(t, tensor.Shape{1, 3, 3, 2}, func(int) float32 { return 1 })

	t.Run("channel mismatch", func(t *testing.T) {
		kernel := newTensor(t, tensor.Shape{3, 3, 1, 1}, func(int) float32 { return 1 })
		assert.Panics(t, func() { backend.Conv2D(input, kernel, nil, 1, 0) })
	})
	t.Run("kernel larger than input", func(t *testing.T) {
		kernel := newTensor(t, tensor.Shape{5, 5, 2, 1}, func(int) float32 { return 1 })
		assert.Panics(t, func() { backend.Conv2D(input, kernel, nil, 1, 0) })
	})
	t.Run("bias size", func(t *testing.T) {
		kernel := newTensor(t, tensor.Shape{3, 3, 2, 2}, func(int) float32 { return 1 })
		bias := newTensor(t, tensor.Shape{3}, func(int) float32 { return 1 })
		assert.Panics(t, func() { backend.Conv2D(input, kernel, bias, 1, 0) })
	})
}

func BenchmarkConv2D(b *testing.B) {
	backend := New()
	input, _ := tensor.NewRaw(tensor.Shape{1, 32, 32, 16}, tensor.Float32)
	kernel, _ := tensor.NewRaw(tensor.Shape{3, 3, 16, 16}, tensor.Float32)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		backend.Conv2D(input, kernel, nil, 1, 1)
	}
}
