package modem

import (
	"fmt"
	"math"
)

// Acoustic frame path: real-valued OFDM for playout through a sound card.
// Data occupies only the bins below the DC null; the upper half of the
// spectrum is the Hermitian mirror, so the IFFT output is real.
//
// Frame layout: [SC preamble 1][SC preamble 2][training][data symbols...]

// AudioModem modulates and demodulates real-valued OFDM symbols.
type AudioModem struct {
	plan     *Plan
	cst      *Constellation
	dataBins []int // plan data bins below DC
}

// NewAudioModem creates an acoustic modem for the plan and modulation.
func NewAudioModem(plan *Plan, mod Modulation) *AudioModem {
	am := &AudioModem{plan: plan, cst: NewConstellation(mod)}
	for _, k := range plan.DataBins {
		if k < plan.FFTSize/2 {
			am.dataBins = append(am.dataBins, k)
		}
	}
	return am
}

// BitsPerSymbol returns the data bits carried by one acoustic OFDM symbol.
func (am *AudioModem) BitsPerSymbol() int {
	return len(am.dataBins) * am.cst.Mod.BitsPerSymbol()
}

// ModulateSymbol maps one symbol's worth of bits into real time samples.
func (am *AudioModem) ModulateSymbol(bits []byte) []float64 {
	syms := am.cst.MapBits(bits)

	spec := make([]complex128, am.plan.FFTSize)
	for i, k := range am.dataBins {
		if i < len(syms) {
			spec[k] = syms[i]
		}
	}
	hermitianMirror(spec)

	td := RealIFFT(spec)
	out := addCyclicPrefix(td, am.plan.CPLen)
	normalizeAmplitude(out)
	return out
}

// DemodulateSymbol recovers the bits of one acoustic OFDM symbol, using the
// equalizer's frame-level channel estimate.
func (am *AudioModem) DemodulateSymbol(samples []float64, eq *Equalizer) []byte {
	td := removeCyclicPrefix(samples, am.plan.CPLen)
	spectrum := RealFFT(td)
	equalized := eq.Equalize(spectrum)

	syms := make([]complex128, len(am.dataBins))
	for i, k := range am.dataBins {
		syms[i] = equalized[k]
	}
	return am.cst.DemapSymbols(syms)
}

// GenerateFrame builds a complete transmittable frame from payload bytes.
func (am *AudioModem) GenerateFrame(data []byte) []float64 {
	pg := NewPreambleGenerator(am.plan)
	preamble1, preamble2 := pg.GenerateSchmidlCox()
	training, _ := pg.GenerateTraining()

	bits := BytesToBits(data)
	if rem := len(bits) % am.BitsPerSymbol(); rem != 0 {
		bits = append(bits, make([]byte, am.BitsPerSymbol()-rem)...)
	}

	frame := make([]float64, 0, len(preamble1)+len(preamble2)+len(training)+
		(len(bits)/am.BitsPerSymbol())*am.plan.SymbolLen())
	frame = append(frame, preamble1...)
	frame = append(frame, preamble2...)
	frame = append(frame, training...)
	for i := 0; i < len(bits); i += am.BitsPerSymbol() {
		frame = append(frame, am.ModulateSymbol(bits[i:i+am.BitsPerSymbol()])...)
	}
	return frame
}

// ReceiveFrame detects and demodulates a frame, returning up to
// expectedBits/8 payload bytes.
func (am *AudioModem) ReceiveFrame(samples []float64, expectedBits int) ([]byte, error) {
	symbolLen := am.plan.SymbolLen()

	detector := NewPreambleDetector(am.plan)
	startIdx := detector.Detect(samples)
	if startIdx < 0 {
		return nil, fmt.Errorf("preamble not detected")
	}

	trainingStart := startIdx + 2*symbolLen
	if trainingStart+symbolLen > len(samples) {
		return nil, fmt.Errorf("insufficient samples for channel training")
	}

	trainingTD := removeCyclicPrefix(samples[trainingStart:trainingStart+symbolLen], am.plan.CPLen)
	receivedTraining := RealFFT(trainingTD)

	pg := NewPreambleGenerator(am.plan)
	_, knownTraining := pg.GenerateTraining()

	eq := NewEqualizer(am.plan.FFTSize, am.plan.GuardLo+1, am.plan.FFTSize/2-1)
	eq.EstimateFromTraining(receivedTraining, knownTraining)

	dataStart := trainingStart + symbolLen
	if dataStart >= len(samples) {
		return nil, fmt.Errorf("no data samples after training symbol")
	}

	var bits []byte
	for off := dataStart; off+symbolLen <= len(samples); off += symbolLen {
		bits = append(bits, am.DemodulateSymbol(samples[off:off+symbolLen], eq)...)
	}
	if len(bits) < expectedBits {
		return nil, fmt.Errorf("demodulated %d bits, expected %d", len(bits), expectedBits)
	}
	if expectedBits > 0 {
		bits = bits[:expectedBits]
	}
	return BitsToBytes(bits), nil
}

// BytesToBits unpacks bytes into 0/1 bit bytes, MSB first.
func BytesToBits(data []byte) []byte {
	bits := make([]byte, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (b >> uint(7-j)) & 1
		}
	}
	return bits
}

// BitsToBytes packs 0/1 bit bytes into bytes, MSB first. Trailing bits
// that do not fill a byte are dropped.
func BitsToBytes(bits []byte) []byte {
	data := make([]byte, len(bits)/8)
	for i := range data {
		var b byte
		for j := 0; j < 8; j++ {
			b = (b << 1) | (bits[i*8+j] & 1)
		}
		data[i] = b
	}
	return data
}

func addCyclicPrefix(samples []float64, cpLen int) []float64 {
	n := len(samples)
	out := make([]float64, cpLen+n)
	copy(out, samples[n-cpLen:])
	copy(out[cpLen:], samples)
	return out
}

func removeCyclicPrefix(samples []float64, cpLen int) []float64 {
	if len(samples) <= cpLen {
		return samples
	}
	return samples[cpLen:]
}

func normalizeAmplitude(samples []float64) {
	maxAbs := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs > 0 {
		scale := 0.8 / maxAbs // headroom against clipping
		for i := range samples {
			samples[i] *= scale
		}
	}
}

// SamplesToFloat32 converts samples for audio output.
func SamplesToFloat32(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}

// Float32ToSamples converts audio input for processing.
func Float32ToSamples(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}
	return out
}

// ApplyDCRemoval removes DC offset with a one-pole high-pass filter.
func ApplyDCRemoval(samples []float64) []float64 {
	if len(samples) == 0 {
		return samples
	}
	const alpha = 0.999
	out := make([]float64, len(samples))
	dc := samples[0]
	for i, s := range samples {
		dc = alpha*dc + (1-alpha)*s
		out[i] = s - dc
	}
	return out
}

// ApplyAGC scales the signal to the target RMS level.
func ApplyAGC(samples []float64, targetRMS float64) []float64 {
	if len(samples) == 0 {
		return samples
	}
	var sumSq float64
	for _, s := range samples {
		sumSq += s * s
	}
	rms := math.Sqrt(sumSq / float64(len(samples)))
	if rms < 1e-10 {
		return samples
	}
	gain := targetRMS / rms
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s * gain
	}
	return out
}
