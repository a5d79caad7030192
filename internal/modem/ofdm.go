package modem

import "fmt"

// OFDM modulation and demodulation over complex baseband samples.
//
// TX: data symbols → subcarrier mapping → IFFT → cyclic prefix insertion
// RX: cyclic prefix removal → FFT → pilot channel estimation → equalization
//
// The single-symbol paths perform no bounds validation; buffer sizes are
// fixed by the plan and checked once at setup time. The block paths check
// only that the flat buffers divide evenly.

// Modulator maps data symbols onto OFDM time-domain symbols.
type Modulator struct {
	plan *Plan
}

// NewModulator creates an OFDM modulator for the given subcarrier plan.
func NewModulator(plan *Plan) *Modulator {
	return &Modulator{plan: plan}
}

// ModulateSymbol produces one OFDM symbol from exactly plan.NumData() data
// symbols. Output length is plan.SymbolLen(). The operation is lossless and
// invertible absent channel distortion.
func (m *Modulator) ModulateSymbol(dataSyms []complex128) []complex128 {
	p := m.plan
	freq := make([]complex128, p.FFTSize)

	for i, k := range p.DataBins {
		freq[k] = dataSyms[i]
	}
	for _, k := range p.PilotBins {
		freq[k] = p.PilotValue
	}

	td := IFFT(freq)

	out := make([]complex128, p.SymbolLen())
	copy(out, td[p.FFTSize-p.CPLen:]) // cyclic prefix = tail repeated
	copy(out[p.CPLen:], td)
	return out
}

// ModulateBlock modulates a flat, symbol-major buffer of data symbols into
// a flat buffer of time samples.
func (m *Modulator) ModulateBlock(dataSyms []complex128) ([]complex128, error) {
	nd := m.plan.NumData()
	if len(dataSyms)%nd != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of %d data bins", len(dataSyms), nd)
	}
	numSymbols := len(dataSyms) / nd
	out := make([]complex128, 0, numSymbols*m.plan.SymbolLen())
	for s := 0; s < numSymbols; s++ {
		out = append(out, m.ModulateSymbol(dataSyms[s*nd:(s+1)*nd])...)
	}
	return out, nil
}

// Demodulator recovers equalized data symbols from OFDM time samples.
type Demodulator struct {
	plan *Plan
}

// NewDemodulator creates an OFDM demodulator for the given subcarrier plan.
func NewDemodulator(plan *Plan) *Demodulator {
	return &Demodulator{plan: plan}
}

// DemodulateSymbol demodulates one OFDM symbol of plan.SymbolLen() samples.
// It returns one equalized symbol per data bin in ascending bin order,
// plus the per-bin channel estimate used. With no pilots configured the
// channel is assumed to be unity.
func (d *Demodulator) DemodulateSymbol(samples []complex128) (dataSyms, hEst []complex128) {
	p := d.plan

	freq := FFT(samples[p.CPLen : p.CPLen+p.FFTSize])

	hEst = EstimateChannel(p, freq)

	raw := make([]complex128, p.NumData())
	for i, k := range p.DataBins {
		raw[i] = freq[k]
	}
	return EqualizeZF(raw, hEst), hEst
}

// DemodulateBlock demodulates a flat buffer containing whole OFDM symbols
// into a flat, symbol-major buffer of equalized data symbols.
func (d *Demodulator) DemodulateBlock(samples []complex128) ([]complex128, error) {
	symLen := d.plan.SymbolLen()
	if len(samples)%symLen != 0 {
		return nil, fmt.Errorf("sample count %d is not a multiple of symbol length %d", len(samples), symLen)
	}
	numSymbols := len(samples) / symLen
	out := make([]complex128, 0, numSymbols*d.plan.NumData())
	for s := 0; s < numSymbols; s++ {
		syms, _ := d.DemodulateSymbol(samples[s*symLen : (s+1)*symLen])
		out = append(out, syms...)
	}
	return out, nil
}
