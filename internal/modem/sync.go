package modem

import (
	"math"
	"math/cmplx"
	"math/rand"
)

// Schmidl-Cox preamble generation and detection for the acoustic frame
// path. The preamble's first symbol carries a PN sequence on even bins
// only, so its time-domain form has two identical halves that the detector
// correlates against each other.

// DetectionThreshold is the minimum Schmidl-Cox metric (0 to 1) accepted
// as a preamble.
const DetectionThreshold = 0.7

// PreambleGenerator builds the sync and channel-estimation symbols for a
// subcarrier plan. Only bins below the DC null are used so the symbols can
// be made real-valued by Hermitian symmetry.
type PreambleGenerator struct {
	plan *Plan
}

// NewPreambleGenerator creates a preamble generator for the plan.
func NewPreambleGenerator(plan *Plan) *PreambleGenerator {
	return &PreambleGenerator{plan: plan}
}

// pnSpectrum fills the low usable band [guard+1, fftSize/2) with a seeded
// BPSK PN sequence at the given bin stride and mirrors it for real output.
// At stride 2 the sequence starts on an even bin: the half-symbol
// repetition the detector relies on holds only when every occupied bin
// (and its Hermitian mirror) is even.
func (pg *PreambleGenerator) pnSpectrum(seed int64, stride int) []complex128 {
	p := pg.plan
	spec := make([]complex128, p.FFTSize)
	rng := rand.New(rand.NewSource(seed))
	start := p.GuardLo + 1
	if stride == 2 && start%2 != 0 {
		start++
	}
	for k := start; k < p.FFTSize/2; k += stride {
		if rng.Intn(2) == 0 {
			spec[k] = complex(1, 0)
		} else {
			spec[k] = complex(-1, 0)
		}
	}
	hermitianMirror(spec)
	return spec
}

// GenerateSchmidlCox generates the two preamble symbols: symbol 1 with
// energy on even bins only (half-symbol repetition), symbol 2 with the
// whole band filled for fine timing and frequency estimation.
func (pg *PreambleGenerator) GenerateSchmidlCox() (symbol1, symbol2 []float64) {
	spec1 := pg.pnSpectrum(42, 2)
	td1 := RealIFFT(spec1)
	symbol1 = addCyclicPrefix(td1, pg.plan.CPLen)
	normalizeAmplitude(symbol1)

	spec2 := pg.pnSpectrum(43, 1)
	td2 := RealIFFT(spec2)
	symbol2 = addCyclicPrefix(td2, pg.plan.CPLen)
	normalizeAmplitude(symbol2)
	return
}

// GenerateTraining generates the known channel-estimation symbol and its
// frequency-domain reference.
func (pg *PreambleGenerator) GenerateTraining() ([]float64, []complex128) {
	spec := pg.pnSpectrum(44, 1)

	known := make([]complex128, pg.plan.FFTSize)
	copy(known, spec)

	td := RealIFFT(spec)
	samples := addCyclicPrefix(td, pg.plan.CPLen)
	normalizeAmplitude(samples)
	return samples, known
}

func hermitianMirror(spec []complex128) {
	n := len(spec)
	for k := 1; k < n/2; k++ {
		spec[n-k] = cmplx.Conj(spec[k])
	}
	spec[0] = 0
	spec[n/2] = 0
}

// PreambleDetector finds Schmidl-Cox preambles in a real-valued signal.
type PreambleDetector struct {
	fftSize   int
	cpLen     int
	threshold float64
}

// NewPreambleDetector creates a detector matching the plan's geometry.
func NewPreambleDetector(plan *Plan) *PreambleDetector {
	return &PreambleDetector{
		fftSize:   plan.FFTSize,
		cpLen:     plan.CPLen,
		threshold: DetectionThreshold,
	}
}

// Detect returns the first sample index whose metric exceeds the detection
// threshold, or -1. The metric plateaus across the cyclic prefix; taking
// the first crossing lands at or slightly before the true start, and a
// small early offset is a circular shift the frame equalizer absorbs.
func (pd *PreambleDetector) Detect(signal []float64) int {
	idx, _ := pd.scan(signal, false)
	return idx
}

// DetectWithMetrics additionally returns the metric at every candidate
// position, for debugging and visualization.
func (pd *PreambleDetector) DetectWithMetrics(signal []float64) (int, []float64) {
	return pd.scan(signal, true)
}

func (pd *PreambleDetector) scan(signal []float64, keep bool) (int, []float64) {
	half := pd.fftSize / 2
	symbolLen := pd.fftSize + pd.cpLen
	n := len(signal) - symbolLen
	if n <= 0 {
		return -1, nil
	}

	var metrics []float64
	if keep {
		metrics = make([]float64, n)
	}

	idx := -1
	for d := 0; d < n; d++ {
		// P(d) = sum x[d+m]*x[d+m+N/2]; R(d) = energy of the second half.
		var p, rr float64
		for m := 0; m < half && d+m+half < len(signal); m++ {
			a := signal[d+m]
			b := signal[d+m+half]
			p += a * b
			rr += b * b
		}
		var metric float64
		if rr > 0 {
			metric = (p * p) / (rr * rr)
		}
		if keep {
			metrics[d] = metric
		}
		if idx < 0 && metric > pd.threshold {
			idx = d
			if !keep {
				return idx, nil
			}
		}
	}

	return idx, metrics
}

// EstimateFrequencyOffset estimates the fractional frequency offset (in
// subcarrier spacings) from the half-symbol correlation of the preamble.
// The capture is real-valued, so the correlation has no imaginary part
// and only the sign survives: the result is 0 (halves correlate) or 1
// (halves anti-correlate), not a fractional estimate.
func EstimateFrequencyOffset(signal []float64, startIdx, fftSize int) float64 {
	half := fftSize / 2
	if startIdx+fftSize > len(signal) {
		return 0
	}
	var p float64
	for m := 0; m < half; m++ {
		p += signal[startIdx+m] * signal[startIdx+m+half]
	}
	// Real signals carry no imaginary correlation component.
	return math.Atan2(0, p) / math.Pi
}
