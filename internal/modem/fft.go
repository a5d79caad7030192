package modem

import (
	"math"
	"math/cmplx"
)

// FFT computes the Discrete Fourier Transform using an iterative
// Cooley-Tukey radix-2 decimation-in-time algorithm.
// Input length must be a power of 2.
func FFT(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	copy(out, x)
	if n <= 1 {
		return out
	}
	if n&(n-1) != 0 {
		panic("FFT: length must be a power of 2")
	}

	bitReverse(out)
	butterflies(out, -1)
	return out
}

// IFFT computes the Inverse Discrete Fourier Transform with 1/N scaling,
// so that IFFT(FFT(x)) == x within numerical tolerance.
func IFFT(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	copy(out, x)
	if n <= 1 {
		return out
	}
	if n&(n-1) != 0 {
		panic("IFFT: length must be a power of 2")
	}

	bitReverse(out)
	butterflies(out, +1)

	scale := complex(1.0/float64(n), 0)
	for i := range out {
		out[i] *= scale
	}
	return out
}

// butterflies runs the log2(n) combining stages in place. sign selects
// the twiddle direction: -1 forward, +1 inverse.
func butterflies(x []complex128, sign float64) {
	n := len(x)
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := cmplx.Exp(complex(0, sign*2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < half; k++ {
				even := x[start+k]
				odd := w * x[start+k+half]
				x[start+k] = even + odd
				x[start+k+half] = even - odd
				w *= step
			}
		}
	}
}

func bitReverse(x []complex128) {
	n := len(x)
	bits := 0
	for tmp := n; tmp > 1; tmp >>= 1 {
		bits++
	}
	for i := 0; i < n; i++ {
		j := 0
		for b := 0; b < bits; b++ {
			if i&(1<<b) != 0 {
				j |= 1 << (bits - 1 - b)
			}
		}
		if j > i {
			x[i], x[j] = x[j], x[i]
		}
	}
}

// RealFFT performs FFT on real-valued input.
func RealFFT(x []float64) []complex128 {
	cx := make([]complex128, len(x))
	for i, v := range x {
		cx[i] = complex(v, 0)
	}
	return FFT(cx)
}

// RealIFFT performs IFFT and returns only the real part.
func RealIFFT(x []complex128) []float64 {
	res := IFFT(x)
	out := make([]float64, len(res))
	for i, v := range res {
		out[i] = real(v)
	}
	return out
}
