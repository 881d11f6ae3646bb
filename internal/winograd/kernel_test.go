package winograd

import (
	"math/rand"
	"testing"

	"github.com/born-ml/winograd/internal/parallel"
	"github.com/born-ml/winograd/internal/tensor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsTransform_CenterTap(t *testing.T) {
	cfg := Winograd2x2_3x3
	weights := tensor.MustFromFloat32(tensor.Shape{3, 3, 1, 1}, []float32{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	})
	out := zeros(t, tensor.Shape{16})

	k := NewWeightsTransform(cfg)
	require.NoError(t, k.Configure(weights, out, 1, 1, 1))
	assert.Equal(t, parallel.Window{Start: 0, End: 1}, k.Window())
	parallel.Schedule(k, parallel.Sequential())

	// G[:,1] = (0, 1/2, -1/2, 0), so V is its outer product.
	assert.Equal(t, []float32{
		0, 0, 0, 0,
		0, 0.25, -0.25, 0,
		0, -0.25, 0.25, 0,
		0, 0, 0, 0,
	}, out.AsFloat32())
}

func TestWeightsTransform_Layout(t *testing.T) {
	cfg := Winograd2x2_3x3
	const oc, ic, stride = 3, 2, 10

	// Filter (ic, oc) is the constant oc*ic+ic+1.
	weights := zeros(t, tensor.Shape{3, 3, ic, oc})
	data := weights.AsFloat32()
	for p := 0; p < 9; p++ {
		for c := 0; c < ic; c++ {
			for o := 0; o < oc; o++ {
				data[(p*ic+c)*oc+o] = float32(o*ic + c + 1)
			}
		}
	}
	out := zeros(t, tensor.Shape{16 * stride})

	k := NewWeightsTransform(cfg)
	require.NoError(t, k.Configure(weights, out, stride, oc, ic))
	k.Run(k.Window(), parallel.ThreadInfo{NumThreads: 1})

	// A constant filter k transforms to k * outer(rowsum(G)) with
	// rowsum(G) = (1, 3/2, 1/2, 1); coefficient 0 is k itself.
	ws := out.AsFloat32()
	for c := 0; c < ic; c++ {
		for o := 0; o < oc; o++ {
			want := float32(o*ic + c + 1)
			assert.InDelta(t, want, ws[c*oc+o], 1e-6)
			assert.InDelta(t, want*1.5*1.5, ws[5*stride+c*oc+o], 1e-5)
		}
	}
	// Gap between the 2x3 matrix and the next one is untouched.
	assert.Equal(t, float32(0), ws[ic*oc])
}

func TestInputTransform_ConstantTile(t *testing.T) {
	cfg := Winograd2x2_3x3
	input := tensor.MustFromFloat32(tensor.Shape{1, 4, 4, 1}, []float32{
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
	})
	out := zeros(t, tensor.Shape{16})

	k := NewInputTransform(cfg)
	require.NoError(t, k.Configure(input, 1, 4, 4, 1, PaddingValid, out, 1))
	assert.Equal(t, 1, k.Window().Len())
	k.Run(k.Window(), parallel.ThreadInfo{NumThreads: 1})

	// Rows of Bᵀ sum to (0, 2, 0, 0).
	want := make([]float32, 16)
	want[5] = 4
	assert.Equal(t, want, out.AsFloat32())
}

func TestInputTransform_BorderTiles(t *testing.T) {
	cfg := Winograd2x2_3x3
	rng := rand.New(rand.NewSource(3))
	info, err := NewInfo(cfg, NewKernelShape(1, 2, 3, 3), NewTensor4DShape(1, 3, 3, 2), PaddingSame)
	require.NoError(t, err)
	require.Equal(t, 4, info.TileCount())

	input := randomTensor(t, rng, info.Input.TensorShape())
	out := zeros(t, tensor.Shape{cfg.workspaceSize(info)})

	k := NewInputTransform(cfg)
	require.NoError(t, k.Configure(input, 1, 3, 3, 2, PaddingSame, out, info.MatrixStride()))
	parallel.Schedule(k, parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})

	// Tile 3 starts at (1, 1); only its top-left 2x2 cells lie inside the input.
	x := input.AsFloat32()
	at := func(r, c, ch int) float32 {
		if r > 2 || c > 2 {
			return 0
		}
		return x[(r*3+c)*2+ch]
	}
	stride := info.MatrixStride()
	ws := out.AsFloat32()
	for ch := 0; ch < 2; ch++ {
		// U[0][0] = d00 - d02 - d20 + d22 over the patch origin (1, 1).
		want := at(1, 1, ch) - at(1, 3, ch) - at(3, 1, ch) + at(3, 3, ch)
		assert.InDelta(t, want, ws[0*stride+3*2+ch], 1e-6)
	}
}

func TestKernels_Names(t *testing.T) {
	cfg := Winograd2x2_3x3
	tests := []struct {
		kernel       Kernel
		name         string
		parallelised bool
	}{
		{NewInputTransform(cfg), "WinogradInputTransform", true},
		{NewWeightsTransform(cfg), "WinogradWeightsTransform", false},
		{NewOutputTransform(cfg), "WinogradOutputTransform", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.kernel.Name())
		assert.Equal(t, tt.parallelised, tt.kernel.IsParallelisable())
	}
}

func TestKernels_RunBeforeConfigure(t *testing.T) {
	cfg := Winograd2x2_3x3
	w := parallel.Window{Start: 0, End: 1}
	assert.Panics(t, func() { NewInputTransform(cfg).Run(w, parallel.ThreadInfo{}) })
	assert.Panics(t, func() { NewWeightsTransform(cfg).Run(w, parallel.ThreadInfo{}) })
	assert.Panics(t, func() { NewOutputTransform(cfg).Run(w, parallel.ThreadInfo{}) })
}

func TestKernels_WindowOutOfRange(t *testing.T) {
	cfg := Winograd2x2_3x3
	input := zeros(t, tensor.Shape{1, 6, 6, 1})
	out := zeros(t, tensor.Shape{64})

	k := NewInputTransform(cfg)
	require.NoError(t, k.Configure(input, 1, 6, 6, 1, PaddingValid, out, 4))
	assert.Equal(t, parallel.Window{Start: 0, End: 4}, k.Window())
	assert.Panics(t, func() { k.Run(parallel.Window{Start: 2, End: 5}, parallel.ThreadInfo{}) })
	assert.NotPanics(t, func() { k.Run(parallel.Window{Start: 2, End: 4}, parallel.ThreadInfo{}) })
}

func TestConfigure_Errors(t *testing.T) {
	cfg := Winograd2x2_3x3
	input := zeros(t, tensor.Shape{1, 6, 6, 1})
	ws := zeros(t, tensor.Shape{64})
	weights := zeros(t, tensor.Shape{3, 3, 1, 1})
	output := zeros(t, tensor.Shape{1, 4, 4, 1})
	f64, err := tensor.NewRaw(tensor.Shape{64}, tensor.Float64)
	require.NoError(t, err)

	tests := []struct {
		name   string
		run    func() error
		target error
	}{
		{"input dtype", func() error {
			return NewInputTransform(cfg).Configure(input, 1, 6, 6, 1, PaddingValid, f64, 4)
		}, ErrUnsupportedDataType},
		{"input stride overlaps", func() error {
			return NewInputTransform(cfg).Configure(input, 1, 6, 6, 1, PaddingValid, ws, 3)
		}, ErrWorkspaceTooSmall},
		{"input workspace short", func() error {
			return NewInputTransform(cfg).Configure(input, 1, 6, 6, 1, PaddingValid, ws, 5)
		}, ErrWorkspaceTooSmall},
		{"input same on even kernel", func() error {
			return NewInputTransform(Winograd3x3_2x2).Configure(input, 1, 6, 6, 1, PaddingSame, ws, 4)
		}, ErrUnsupportedPadding},
		{"weights shape", func() error {
			return NewWeightsTransform(cfg).Configure(weights, ws, 4, 2, 1)
		}, ErrInvalidShape},
		{"output short", func() error {
			return NewOutputTransform(cfg).Configure(nil, ws, 4, output, 1, 5, 5, 1)
		}, ErrOutputShapeMismatch},
		{"output bias", func() error {
			return NewOutputTransform(cfg).Configure(zeros(t, tensor.Shape{1}), ws, 4, zeros(t, tensor.Shape{1, 4, 4, 2}), 1, 4, 4, 2)
		}, ErrBiasShapeMismatch},
		{"output bias too long", func() error {
			return NewOutputTransform(cfg).Configure(zeros(t, tensor.Shape{3}), ws, 4, zeros(t, tensor.Shape{1, 4, 4, 2}), 1, 4, 4, 2)
		}, ErrBiasShapeMismatch},
		{"output bias not a vector", func() error {
			return NewOutputTransform(cfg).Configure(zeros(t, tensor.Shape{1, 2}), ws, 4, zeros(t, tensor.Shape{1, 4, 4, 2}), 1, 4, 4, 2)
		}, ErrBiasShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg := Winograd2x2_3x3
	info, err := NewInfo(cfg, NewKernelShape(4, 3, 3, 3), NewTensor4DShape(2, 7, 9, 3), PaddingSame)
	require.NoError(t, err)
	size := cfg.workspaceSize(info)

	f32 := func(shape ...int) tensor.Info { return tensor.NewInfo(shape, tensor.Float32) }
	ws := f32(size)
	input := f32(2, 7, 9, 3)
	weights := f32(3, 3, 3, 4)
	output := f32(2, 7, 9, 4)
	bias := f32(4)

	other, err := NewInfo(Winograd4x4_3x3, info.Kernel, info.Input, PaddingSame)
	require.NoError(t, err)

	tests := []struct {
		name   string
		run    func() error
		target error
	}{
		{"weights float64", func() error {
			return ValidateWeightsTransform(cfg, tensor.NewInfo(weights.Shape, tensor.Float64), ws, info)
		}, ErrUnsupportedDataType},
		{"weights 5x5", func() error {
			return ValidateWeightsTransform(cfg, f32(5, 5, 3, 4), ws, info)
		}, ErrUnsupportedKernel},
		{"weights not square", func() error {
			return ValidateWeightsTransform(cfg, f32(3, 2, 3, 4), ws, info)
		}, ErrUnsupportedKernel},
		{"weights 3D", func() error {
			return ValidateWeightsTransform(cfg, f32(3, 3, 12), ws, info)
		}, ErrUnsupportedKernel},
		{"weights channels", func() error {
			return ValidateWeightsTransform(cfg, f32(3, 3, 3, 5), ws, info)
		}, ErrInvalidShape},
		{"weights workspace", func() error {
			return ValidateWeightsTransform(cfg, weights, f32(size-1), info)
		}, ErrWorkspaceTooSmall},
		{"input shape", func() error {
			return ValidateInputTransform(cfg, f32(2, 7, 8, 3), ws, info)
		}, ErrInvalidShape},
		{"input workspace", func() error {
			return ValidateInputTransform(cfg, input, f32(16), info)
		}, ErrWorkspaceTooSmall},
		{"input other configuration", func() error {
			return ValidateInputTransform(cfg, input, ws, other)
		}, ErrConfigurationMismatch},
		{"output shape", func() error {
			return ValidateOutputTransform(cfg, ws, &bias, f32(2, 5, 7, 4), info)
		}, ErrOutputShapeMismatch},
		{"output bias", func() error {
			b := f32(5)
			return ValidateOutputTransform(cfg, ws, &b, output, info)
		}, ErrBiasShapeMismatch},
		{"output dtype", func() error {
			return ValidateOutputTransform(cfg, ws, nil, tensor.NewInfo(output.Shape, tensor.Int32), info)
		}, ErrUnsupportedDataType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	cfg := Winograd4x4_3x3
	info, err := NewInfo(cfg, NewKernelShape(2, 3, 3, 3), NewTensor4DShape(1, 9, 9, 3), PaddingSame)
	require.NoError(t, err)

	ws := tensor.NewInfo(tensor.Shape{cfg.workspaceSize(info)}, tensor.Float32)
	input := tensor.NewInfo(info.Input.TensorShape(), tensor.Float32)
	weights := tensor.NewInfo(info.Kernel.TensorShape(), tensor.Float32)
	output := tensor.NewInfo(info.OutputShape().TensorShape(), tensor.Float32)
	bad := tensor.NewInfo(tensor.Shape{1, 9, 9, 2}, tensor.Float32)

	for i := 0; i < 3; i++ {
		assert.NoError(t, ValidateInputTransform(cfg, input, ws, info))
		assert.NoError(t, ValidateWeightsTransform(cfg, weights, ws, info))
		assert.NoError(t, ValidateOutputTransform(cfg, ws, nil, output, info))

		err := ValidateOutputTransform(cfg, ws, nil, bad, info)
		assert.True(t, errors.Is(err, ErrOutputShapeMismatch))
	}
}

func TestNewInfo_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Configuration
		kernel  KernelShape
		input   Tensor4DShape
		padding PaddingType
		target  error
	}{
		{"same on even kernel", Winograd3x3_2x2, NewKernelShape(1, 1, 2, 2), NewTensor4DShape(1, 6, 6, 1), PaddingSame, ErrUnsupportedPadding},
		{"non-square", Winograd2x2_3x3, NewKernelShape(1, 1, 3, 1), NewTensor4DShape(1, 6, 6, 1), PaddingValid, ErrUnsupportedKernel},
		{"wrong size", Winograd2x2_3x3, NewKernelShape(1, 1, 5, 5), NewTensor4DShape(1, 6, 6, 1), PaddingValid, ErrUnsupportedKernel},
		{"channel mismatch", Winograd2x2_3x3, NewKernelShape(1, 2, 3, 3), NewTensor4DShape(1, 6, 6, 1), PaddingValid, ErrInvalidShape},
		{"too small", Winograd2x2_3x3, NewKernelShape(1, 1, 3, 3), NewTensor4DShape(1, 2, 6, 1), PaddingValid, ErrInvalidShape},
		{"no batches", Winograd2x2_3x3, NewKernelShape(1, 1, 3, 3), NewTensor4DShape(0, 6, 6, 1), PaddingValid, ErrInvalidShape},
		{"unknown padding", Winograd2x2_3x3, NewKernelShape(1, 1, 3, 3), NewTensor4DShape(1, 6, 6, 1), PaddingType(9), ErrUnsupportedPadding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInfo(tt.cfg, tt.kernel, tt.input, tt.padding)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}
