// Package gemm multiplies the per-coefficient matrices of Winograd workspaces.
//
// The three workspaces share one layout: Count matrices, matrix i starting
// at element i*Stride, each stored row-major with no row padding. For every
// i the product C_i = A_i · B_i is computed with gonum's blas32.Gemm.
package gemm

import (
	"github.com/born-ml/winograd/internal/parallel"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Batched describes Count independent products of an MxK by a KxN matrix.
type Batched struct {
	Count  int
	M      int
	K      int
	N      int
	Stride int
}

// Validate checks the dimensions and that a, b and c hold every matrix.
func (g Batched) Validate(a, b, c []float32) error {
	if g.Count <= 0 || g.M <= 0 || g.K <= 0 || g.N <= 0 {
		return errors.Errorf("gemm: invalid dimensions count=%d m=%d k=%d n=%d", g.Count, g.M, g.K, g.N)
	}
	if g.Stride < max(g.M*g.K, g.K*g.N, g.M*g.N) {
		return errors.Errorf("gemm: stride %d overlaps matrices (m=%d k=%d n=%d)", g.Stride, g.M, g.K, g.N)
	}
	for _, op := range []struct {
		name       string
		data       []float32
		rows, cols int
	}{
		{"a", a, g.M, g.K},
		{"b", b, g.K, g.N},
		{"c", c, g.M, g.N},
	} {
		if need := (g.Count-1)*g.Stride + op.rows*op.cols; len(op.data) < need {
			return errors.Errorf("gemm: %s holds %d elements, need %d", op.name, len(op.data), need)
		}
	}
	return nil
}

// Multiply computes C_i = A_i · B_i for a single matrix index.
func (g Batched) Multiply(i int, a, b, c []float32) {
	off := i * g.Stride
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		general(a[off:], g.M, g.K),
		general(b[off:], g.K, g.N),
		0,
		general(c[off:], g.M, g.N),
	)
}

// Run computes every product, spreading matrices across workers.
// Callers must Validate first.
func (g Batched) Run(a, b, c []float32, cfg parallel.Config) {
	parallel.For(g.Count, func(i int) {
		g.Multiply(i, a, b, c)
	}, cfg)
}

func general(data []float32, rows, cols int) blas32.General {
	return blas32.General{Rows: rows, Cols: cols, Stride: cols, Data: data[:rows*cols]}
}
