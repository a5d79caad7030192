package modem

import (
	"math/cmplx"
	"testing"
)

func TestEqualizer_EstimateAndEqualize(t *testing.T) {
	eq := NewEqualizer(64, 4, 12)

	known := make([]complex128, 64)
	received := make([]complex128, 64)
	gain := complex(0.6, -0.3)
	for k := 4; k <= 12; k++ {
		known[k] = complex(1, 0)
		received[k] = gain
	}

	eq.EstimateFromTraining(received, known)

	spectrum := make([]complex128, 64)
	for k := 4; k <= 12; k++ {
		spectrum[k] = gain * complex(float64(k), 0)
	}
	out := eq.Equalize(spectrum)

	for k := 4; k <= 12; k++ {
		want := complex(float64(k), 0)
		if cmplx.Abs(out[k]-want) > 1e-10 {
			t.Errorf("bin %d: %v, want %v", k, out[k], want)
		}
	}
}

func TestEqualizer_InterpolatesGaps(t *testing.T) {
	eq := NewEqualizer(64, 4, 8)

	// Training energy only at bins 4 and 8; 5..7 must be interpolated.
	known := make([]complex128, 64)
	received := make([]complex128, 64)
	known[4], known[8] = 1, 1
	received[4] = complex(1, 0)
	received[8] = complex(3, 0)

	eq.EstimateFromTraining(received, known)

	resp := eq.Response()
	want := []complex128{1, 1.5, 2, 2.5, 3}
	for i, k := range []int{4, 5, 6, 7, 8} {
		if cmplx.Abs(resp[k]-want[i]) > 1e-12 {
			t.Errorf("bin %d response %v, want %v", k, resp[k], want[i])
		}
	}
}

func TestEqualizer_PassesThroughDeadBins(t *testing.T) {
	eq := NewEqualizer(64, 4, 8)
	eq.EstimateFromTraining(make([]complex128, 64), make([]complex128, 64))

	spectrum := make([]complex128, 64)
	spectrum[6] = complex(2, 1)

	out := eq.Equalize(spectrum)
	if out[6] != spectrum[6] {
		t.Errorf("dead bin altered: %v, want %v", out[6], spectrum[6])
	}
}
