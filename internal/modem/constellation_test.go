package modem

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
)

func TestConstellation_UnitPower(t *testing.T) {
	for _, mod := range []Modulation{ModBPSK, ModQPSK, Mod16QAM} {
		c := NewConstellation(mod)

		var power float64
		for _, p := range c.points {
			power += real(p)*real(p) + imag(p)*imag(p)
		}
		power /= float64(len(c.points))

		if math.Abs(power-1.0) > 1e-10 {
			t.Errorf("%s average power = %v, want 1.0", mod, power)
		}
	}
}

func TestConstellation_MapDemapRoundTrip(t *testing.T) {
	for _, mod := range []Modulation{ModBPSK, ModQPSK, Mod16QAM} {
		c := NewConstellation(mod)
		bps := mod.BitsPerSymbol()

		// Every bit pattern survives a noiseless round trip.
		for idx := 0; idx < 1<<bps; idx++ {
			bits := make([]byte, bps)
			for b := 0; b < bps; b++ {
				bits[b] = byte((idx >> (bps - 1 - b)) & 1)
			}
			got := c.Demap(c.Map(bits))
			for b := range bits {
				if got[b] != bits[b] {
					t.Errorf("%s pattern %0*b: bit %d got %d", mod, bps, idx, b, got[b])
				}
			}
		}
	}
}

func TestConstellation_BPSKMapping(t *testing.T) {
	c := NewConstellation(ModBPSK)

	if real(c.Map([]byte{0})) <= 0 {
		t.Error("bit 0 should map to positive real")
	}
	if real(c.Map([]byte{1})) >= 0 {
		t.Error("bit 1 should map to negative real")
	}
}

func TestConstellation_QPSKGrayNeighbors(t *testing.T) {
	// Geometrically adjacent QPSK points (90 degrees apart) differ in
	// exactly one bit.
	c := NewConstellation(ModQPSK)
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			adjacent := cmplx.Abs(c.points[i]-c.points[j]) < math.Sqrt2+1e-9
			diff := i ^ j
			oneBit := diff&(diff-1) == 0
			if adjacent && !oneBit {
				t.Errorf("adjacent patterns %02b and %02b differ in more than one bit", i, j)
			}
		}
	}
}

func TestConstellation_MapBitsDemapSymbols(t *testing.T) {
	c := NewConstellation(Mod16QAM)
	rng := rand.New(rand.NewSource(9))

	bits := make([]byte, 400)
	for i := range bits {
		bits[i] = byte(rng.Intn(2))
	}

	got := c.DemapSymbols(c.MapBits(bits))
	if len(got) != len(bits) {
		t.Fatalf("got %d bits, want %d", len(got), len(bits))
	}
	for i := range bits {
		if got[i] != bits[i] {
			t.Fatalf("bit %d: got %d, want %d", i, got[i], bits[i])
		}
	}
}

func TestDemapSoft_SignConvention(t *testing.T) {
	// Positive LLR favors bit 0; BPSK bit 0 sits at +1.
	c := NewConstellation(ModBPSK)

	llrs := c.DemapSoft([]complex128{complex(0.8, 0), complex(-0.8, 0)}, 0.5)
	if llrs[0] <= 0 {
		t.Errorf("LLR for +0.8 = %v, want positive (bit 0)", llrs[0])
	}
	if llrs[1] >= 0 {
		t.Errorf("LLR for -0.8 = %v, want negative (bit 1)", llrs[1])
	}
}

func TestDemapSoft_MatchesHardDecision(t *testing.T) {
	// The sign of each LLR must agree with the hard demapper.
	rng := rand.New(rand.NewSource(10))
	for _, mod := range []Modulation{ModQPSK, Mod16QAM} {
		c := NewConstellation(mod)
		bps := mod.BitsPerSymbol()

		for trial := 0; trial < 200; trial++ {
			s := complex(rng.NormFloat64(), rng.NormFloat64())
			hard := c.Demap(s)
			soft := c.DemapSoft([]complex128{s}, 0.1)

			for b := 0; b < bps; b++ {
				var softBit byte
				if soft[b] < 0 {
					softBit = 1
				}
				if softBit != hard[b] {
					t.Fatalf("%s symbol %v bit %d: soft says %d (llr %v), hard says %d",
						mod, s, b, softBit, soft[b], hard[b])
				}
			}
		}
	}
}

func TestDemapSoft_ScalesWithNoise(t *testing.T) {
	c := NewConstellation(ModQPSK)
	s := []complex128{complex(0.5, 0.5)}

	clean := c.DemapSoft(s, 0.1)
	noisy := c.DemapSoft(s, 1.0)

	for b := range clean {
		if math.Abs(clean[b]) <= math.Abs(noisy[b]) {
			t.Errorf("bit %d: LLR magnitude did not grow with confidence", b)
		}
	}
}
