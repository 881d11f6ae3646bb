package winograd

// axpy computes y += a*x over len(y) elements.
func axpy(a float32, x, y []float32) {
	x = x[:len(y)]
	for i := range y {
		y[i] += a * x[i]
	}
}

// leftMultiply computes dst = m · src where src is a rows x cols grid of
// vectors of width w, m is out x rows, and dst is out x cols.
func leftMultiply(dst, m, src []float32, out, rows, cols, w int) {
	for i := 0; i < out; i++ {
		for j := 0; j < cols; j++ {
			d := dst[(i*cols+j)*w:][:w]
			clear(d)
			for l := 0; l < rows; l++ {
				if a := m[i*rows+l]; a != 0 {
					axpy(a, src[(l*cols+j)*w:], d)
				}
			}
		}
	}
}

// rightMultiplyT computes dst = src · mᵀ where src is a rows x cols grid
// of vectors of width w, m is out x cols, and dst is rows x out.
func rightMultiplyT(dst, src, m []float32, rows, cols, out, w int) {
	for i := 0; i < rows; i++ {
		for j := 0; j < out; j++ {
			d := dst[(i*out+j)*w:][:w]
			clear(d)
			for l := 0; l < cols; l++ {
				if a := m[j*cols+l]; a != 0 {
					axpy(a, src[(i*cols+l)*w:], d)
				}
			}
		}
	}
}
