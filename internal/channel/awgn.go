package channel

import (
	"math"
	"math/rand"
)

// AWGN adds white Gaussian noise at a target SNR. Each instance owns its
// RNG, so independent channels can run concurrently with reproducible
// seeds.
type AWGN struct {
	rng *rand.Rand
}

// NewAWGN creates a seeded AWGN channel.
func NewAWGN(seed int64) *AWGN {
	return &AWGN{rng: rand.New(rand.NewSource(seed))}
}

// Apply adds complex Gaussian noise sized from the measured signal power
// and the requested SNR in dB. It returns the noisy signal and the noise
// variance used.
func (ch *AWGN) Apply(in []complex128, snrDB float64) ([]complex128, float64) {
	p := SignalPower(in)
	noiseVar := p / math.Pow(10, snrDB/10)
	sigma := math.Sqrt(noiseVar / 2) // per real dimension

	out := make([]complex128, len(in))
	for i, s := range in {
		out[i] = s + complex(ch.rng.NormFloat64()*sigma, ch.rng.NormFloat64()*sigma)
	}
	return out, noiseVar
}

// ApplyReal adds real Gaussian noise to a real-valued signal.
func (ch *AWGN) ApplyReal(in []float64, snrDB float64) ([]float64, float64) {
	var p float64
	for _, s := range in {
		p += s * s
	}
	if len(in) > 0 {
		p /= float64(len(in))
	}
	noiseVar := p / math.Pow(10, snrDB/10)
	sigma := math.Sqrt(noiseVar)

	out := make([]float64, len(in))
	for i, s := range in {
		out[i] = s + ch.rng.NormFloat64()*sigma
	}
	return out, noiseVar
}

// SignalPower returns the mean squared magnitude of the signal.
func SignalPower(x []complex128) float64 {
	if len(x) == 0 {
		return 0
	}
	var p float64
	for _, s := range x {
		p += real(s)*real(s) + imag(s)*imag(s)
	}
	return p / float64(len(x))
}

// EbN0ToSNR converts Eb/N0 in dB to per-symbol SNR in dB for the given
// bits per symbol and code rate.
func EbN0ToSNR(ebn0DB float64, bitsPerSymbol int, codeRate float64) float64 {
	return ebn0DB + 10*math.Log10(float64(bitsPerSymbol)*codeRate)
}

// SNRToEbN0 is the inverse of EbN0ToSNR.
func SNRToEbN0(snrDB float64, bitsPerSymbol int, codeRate float64) float64 {
	return snrDB - 10*math.Log10(float64(bitsPerSymbol)*codeRate)
}
