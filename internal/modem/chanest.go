package modem

import "math/cmplx"

// Pilot-based channel estimation. Each received OFDM symbol is estimated
// independently: measure H at the pilot bins, then linearly interpolate to
// every data bin. There is no temporal smoothing across symbols.

// epsMag2 is the floor applied to any squared magnitude before division.
// Degenerate channel estimates produce large but finite values, never
// NaN or Inf.
const epsMag2 = 1e-12

// EstimateChannel estimates the channel response at every data bin of the
// plan from the received frequency-domain symbol rxFreq (length FFTSize).
// The returned slice has one coefficient per data bin, in data-bin order.
func EstimateChannel(p *Plan, rxFreq []complex128) []complex128 {
	h := make([]complex128, p.NumData())

	if p.NumPilots() == 0 {
		for i := range h {
			h[i] = complex(1, 0)
		}
		return h
	}

	// H at each pilot: Rx * conj(pilot) / |pilot|^2.
	pMag2 := real(p.PilotValue)*real(p.PilotValue) + imag(p.PilotValue)*imag(p.PilotValue)
	if pMag2 < epsMag2 {
		pMag2 = epsMag2
	}
	hPilot := make([]complex128, p.NumPilots())
	for i, k := range p.PilotBins {
		hPilot[i] = rxFreq[k] * cmplx.Conj(p.PilotValue) * complex(1/pMag2, 0)
	}

	// Linear interpolation to the data bins. Single-sided cases repeat the
	// nearest pilot estimate.
	for d, dk := range p.DataBins {
		lo, hi := -1, -1
		for pi, pk := range p.PilotBins {
			if pk <= dk {
				lo = pi
			}
			if pk >= dk && hi < 0 {
				hi = pi
			}
		}

		switch {
		case lo < 0 && hi >= 0:
			h[d] = hPilot[hi]
		case hi < 0 && lo >= 0:
			h[d] = hPilot[lo]
		case lo >= 0 && hi >= 0 && lo != hi:
			alpha := float64(dk-p.PilotBins[lo]) / float64(p.PilotBins[hi]-p.PilotBins[lo])
			h[d] = hPilot[lo]*complex(1-alpha, 0) + hPilot[hi]*complex(alpha, 0)
		case lo >= 0:
			h[d] = hPilot[lo]
		default:
			h[d] = complex(1, 0)
		}
	}

	return h
}

// EqualizeZF applies combined matched-filter / zero-forcing equalization:
// out[i] = data[i] * conj(h[i]) / |h[i]|^2.
func EqualizeZF(data, h []complex128) []complex128 {
	out := make([]complex128, len(data))
	for i := range data {
		mag2 := real(h[i])*real(h[i]) + imag(h[i])*imag(h[i])
		if mag2 < epsMag2 {
			mag2 = epsMag2
		}
		out[i] = data[i] * cmplx.Conj(h[i]) * complex(1/mag2, 0)
	}
	return out
}

// EqualizeMMSE applies minimum mean-square-error equalization, which is
// more robust than zero forcing when the noise power is known:
// out[i] = data[i] * conj(h[i]) / (|h[i]|^2 + noisePower).
func EqualizeMMSE(data, h []complex128, noisePower float64) []complex128 {
	out := make([]complex128, len(data))
	for i := range data {
		mag2 := real(h[i])*real(h[i]) + imag(h[i])*imag(h[i]) + noisePower
		if mag2 < epsMag2 {
			mag2 = epsMag2
		}
		out[i] = data[i] * cmplx.Conj(h[i]) * complex(1/mag2, 0)
	}
	return out
}
