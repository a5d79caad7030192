package modem

import "math/cmplx"

// Equalizer performs training-based channel estimation for the acoustic
// frame path: a known wideband symbol is transmitted once per frame and the
// per-bin response H(k) = Y(k)/X(k) is held for the rest of the frame.
// This complements the per-symbol pilot estimation in chanest.go.
type Equalizer struct {
	fftSize int
	resp    []complex128
	lo, hi  int // inclusive bin range covered by the training symbol
}

// NewEqualizer creates an equalizer covering bins [lo, hi].
func NewEqualizer(fftSize, lo, hi int) *Equalizer {
	return &Equalizer{
		fftSize: fftSize,
		resp:    make([]complex128, fftSize),
		lo:      lo,
		hi:      hi,
	}
}

// EstimateFromTraining estimates the channel response from a known training
// symbol. received is the FFT of the received training symbol; known is the
// transmitted frequency-domain symbol. Bins where the training symbol is
// zero are filled by linear interpolation between neighbouring estimates.
func (eq *Equalizer) EstimateFromTraining(received, known []complex128) {
	eq.resp = make([]complex128, eq.fftSize)
	for k := eq.lo; k <= eq.hi && k < len(received) && k < len(known); k++ {
		if known[k] != 0 {
			eq.resp[k] = received[k] / known[k]
		}
	}
	eq.interpolate()
}

func (eq *Equalizer) interpolate() {
	prev := -1
	for k := eq.lo; k <= eq.hi; k++ {
		if eq.resp[k] == 0 {
			continue
		}
		if prev >= 0 && k-prev > 1 {
			v1, v2 := eq.resp[prev], eq.resp[k]
			for j := prev + 1; j < k; j++ {
				t := complex(float64(j-prev)/float64(k-prev), 0)
				eq.resp[j] = v1*(1-t) + v2*t
			}
		}
		prev = k
	}
}

// Equalize divides the received spectrum by the estimated response
// (zero forcing). Bins with a near-zero estimate are passed through.
func (eq *Equalizer) Equalize(spectrum []complex128) []complex128 {
	out := make([]complex128, len(spectrum))
	copy(out, spectrum)
	for k := eq.lo; k <= eq.hi && k < len(out); k++ {
		if h := eq.resp[k]; cmplx.Abs(h) > 1e-10 {
			out[k] = spectrum[k] / h
		}
	}
	return out
}

// Response returns a copy of the estimated channel response.
func (eq *Equalizer) Response() []complex128 {
	out := make([]complex128, len(eq.resp))
	copy(out, eq.resp)
	return out
}
