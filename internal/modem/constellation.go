package modem

import "math"

// Modulation identifies a constellation. The value is the number of bits
// carried per symbol.
type Modulation int

const (
	ModBPSK  Modulation = 1
	ModQPSK  Modulation = 2
	Mod16QAM Modulation = 4
)

// BitsPerSymbol returns the number of bits per constellation symbol.
func (m Modulation) BitsPerSymbol() int {
	return int(m)
}

// String returns the modulation name.
func (m Modulation) String() string {
	switch m {
	case ModBPSK:
		return "BPSK"
	case ModQPSK:
		return "QPSK"
	case Mod16QAM:
		return "16-QAM"
	default:
		return "Unknown"
	}
}

// Constellation holds the Gray-coded points of a modulation, normalized to
// unit average power.
type Constellation struct {
	Mod    Modulation
	points []complex128
}

// NewConstellation creates the constellation for the given modulation.
func NewConstellation(mod Modulation) *Constellation {
	c := &Constellation{Mod: mod}
	switch mod {
	case ModBPSK:
		// Bit 0 → +1, bit 1 → -1.
		c.points = []complex128{complex(1, 0), complex(-1, 0)}
	case Mod16QAM:
		c.generateQAM(4)
	default:
		c.Mod = ModQPSK
		// Gray-coded QPSK, indexed by bit pattern: 00, 01, 10, 11.
		c.points = []complex128{
			complex(1, 1),
			complex(-1, 1),
			complex(1, -1),
			complex(-1, -1),
		}
	}
	c.normalize()
	return c
}

func (c *Constellation) generateQAM(order int) {
	size := order * order
	c.points = make([]complex128, size)
	for i := 0; i < size; i++ {
		row, col := i/order, i%order
		grayRow := row ^ (row >> 1)
		grayCol := col ^ (col >> 1)
		x := float64(2*grayCol - order + 1)
		y := float64(2*grayRow - order + 1)
		c.points[i] = complex(x, y)
	}
}

func (c *Constellation) normalize() {
	var avgPower float64
	for _, p := range c.points {
		avgPower += real(p)*real(p) + imag(p)*imag(p)
	}
	avgPower /= float64(len(c.points))
	scale := 1.0 / math.Sqrt(avgPower)
	for i := range c.points {
		c.points[i] *= complex(scale, 0)
	}
}

// Map maps one group of bits to a constellation point.
func (c *Constellation) Map(bits []byte) complex128 {
	idx := 0
	for _, b := range bits {
		idx = (idx << 1) | int(b&1)
	}
	if idx >= len(c.points) {
		idx = 0
	}
	return c.points[idx]
}

// Demap finds the closest constellation point and returns its bits.
func (c *Constellation) Demap(symbol complex128) []byte {
	minDist := math.MaxFloat64
	minIdx := 0
	for i, p := range c.points {
		d := sqDist(symbol, p)
		if d < minDist {
			minDist = d
			minIdx = i
		}
	}
	nb := c.Mod.BitsPerSymbol()
	bits := make([]byte, nb)
	for i := nb - 1; i >= 0; i-- {
		bits[i] = byte(minIdx & 1)
		minIdx >>= 1
	}
	return bits
}

// MapBits maps a slice of bits (0/1 bytes, length a multiple of
// BitsPerSymbol) to constellation symbols.
func (c *Constellation) MapBits(bits []byte) []complex128 {
	bps := c.Mod.BitsPerSymbol()
	symbols := make([]complex128, len(bits)/bps)
	for i := range symbols {
		symbols[i] = c.Map(bits[i*bps : (i+1)*bps])
	}
	return symbols
}

// DemapSymbols hard-demaps constellation symbols back to bits.
func (c *Constellation) DemapSymbols(symbols []complex128) []byte {
	bps := c.Mod.BitsPerSymbol()
	bits := make([]byte, 0, len(symbols)*bps)
	for _, s := range symbols {
		bits = append(bits, c.Demap(s)...)
	}
	return bits
}

// DemapSoft computes per-bit log-likelihood ratios using the max-log
// approximation. Positive LLR favors bit value 0, matching the soft
// Viterbi decoder convention. noiseVar is the complex noise variance; the
// LLR magnitudes scale with 1/noiseVar but signs do not depend on it.
func (c *Constellation) DemapSoft(symbols []complex128, noiseVar float64) []float64 {
	if noiseVar < 1e-12 {
		noiseVar = 1e-12
	}
	bps := c.Mod.BitsPerSymbol()
	llrs := make([]float64, 0, len(symbols)*bps)

	for _, s := range symbols {
		for b := 0; b < bps; b++ {
			shift := uint(bps - 1 - b) // bit b is MSB-first in the point index
			min0 := math.MaxFloat64
			min1 := math.MaxFloat64
			for idx, p := range c.points {
				d := sqDist(s, p)
				if (idx>>shift)&1 == 0 {
					if d < min0 {
						min0 = d
					}
				} else if d < min1 {
					min1 = d
				}
			}
			// Closer to a bit-0 point → positive.
			llrs = append(llrs, (min1-min0)/noiseVar)
		}
	}
	return llrs
}

func sqDist(a, b complex128) float64 {
	dr := real(a) - real(b)
	di := imag(a) - imag(b)
	return dr*dr + di*di
}
