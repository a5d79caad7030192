package modem

import "fmt"

// Plan is the subcarrier allocation for one OFDM configuration: which FFT
// bins carry data, which carry pilots, and which are left empty as guards
// or the DC null. The same plan must be shared by transmitter and receiver;
// it is computed once and never mutated afterwards.
//
// Layout: symmetric edge guards of FFTSize/8 bins each, DC null at bin
// FFTSize/2, pilots evenly spaced across the usable band (a pilot that
// would land on the DC null moves up one bin), every remaining usable bin
// assigned to data in ascending index order.
type Plan struct {
	FFTSize    int
	CPLen      int
	GuardLo    int
	GuardHi    int
	PilotBins  []int
	DataBins   []int
	PilotValue complex128
}

// NewPlan computes the bin assignment for the given FFT size, cyclic prefix
// length and pilot count. Invalid geometry is rejected here, once, so the
// modulate/demodulate hot paths can skip validation entirely.
func NewPlan(fftSize, cpLen, numPilots int) (*Plan, error) {
	if fftSize < 8 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d is not a power of 2 >= 8", fftSize)
	}
	if cpLen < 0 || cpLen >= fftSize {
		return nil, fmt.Errorf("cyclic prefix length %d out of range [0, %d)", cpLen, fftSize)
	}
	if numPilots < 0 {
		return nil, fmt.Errorf("pilot count %d is negative", numPilots)
	}

	guard := fftSize / 8
	usable := fftSize - 2*guard - 1 // -1 for the DC null
	if numPilots >= usable {
		return nil, fmt.Errorf("pilot count %d leaves no data bins (%d usable)", numPilots, usable)
	}

	p := &Plan{
		FFTSize:    fftSize,
		CPLen:      cpLen,
		GuardLo:    guard,
		GuardHi:    guard,
		PilotValue: complex(1, 0),
	}

	dc := fftSize / 2

	// Pilots evenly spaced among the usable bins.
	if numPilots > 0 {
		spacing := usable / (numPilots + 1)
		if spacing < 2 {
			return nil, fmt.Errorf("pilot count %d too dense for %d usable bins", numPilots, usable)
		}
		p.PilotBins = make([]int, numPilots)
		for i := 0; i < numPilots; i++ {
			k := guard + 1 + (i+1)*spacing
			if k == dc {
				// Even spacings can land a pilot on the DC null; shift
				// it to the neighboring bin so the null stays empty.
				// spacing >= 2 keeps the shifted bin clear of the next
				// pilot.
				k++
			}
			p.PilotBins[i] = k
		}
	}

	// Everything else in the usable range is data.
	for k := guard + 1; k < fftSize-guard; k++ {
		if k == dc || p.isPilot(k) {
			continue
		}
		p.DataBins = append(p.DataBins, k)
	}

	return p, nil
}

func (p *Plan) isPilot(k int) bool {
	for _, pk := range p.PilotBins {
		if pk == k {
			return true
		}
	}
	return false
}

// NumData returns the number of data subcarriers per OFDM symbol.
func (p *Plan) NumData() int { return len(p.DataBins) }

// NumPilots returns the number of pilot subcarriers per OFDM symbol.
func (p *Plan) NumPilots() int { return len(p.PilotBins) }

// SymbolLen returns the time-domain length of one OFDM symbol including
// the cyclic prefix.
func (p *Plan) SymbolLen() int { return p.FFTSize + p.CPLen }
