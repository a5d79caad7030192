package link

import (
	"fmt"

	"github.com/gocomms/phylab/internal/fec"
	"github.com/gocomms/phylab/internal/modem"
)

// Codec runs the full PHY chain for fixed-size link frames:
//
//	TX: frame → CRC-32 → Reed-Solomon → interleave ← conv encode → map → OFDM
//	RX: OFDM demod → soft demap → deinterleave → Viterbi (soft) → RS → CRC
//
// All sizes are fixed at construction, so transmitter and receiver agree on
// them without in-band signalling.
type Codec struct {
	plan       *modem.Plan
	modulator  *modem.Modulator
	demod      *modem.Demodulator
	cst        *modem.Constellation
	outer      *fec.OuterCode
	interleave *fec.BlockInterleaver

	payloadCap int // padded payload bytes per frame
	frameBytes int // marshalled frame size incl. header and CRC
	infoBits   int // bits entering the convolutional encoder
	codedBits  int // bits leaving the terminated convolutional encoder
	numSymbols int // OFDM symbols per frame
}

// Outer-code geometry for link frames. Small shard counts keep short
// frames from ballooning to a full RS(255,223) block.
const (
	linkDataShards   = 16
	linkParityShards = 8
)

const interleaverRows = 16

// NewCodec builds a codec for frames with up to payloadCap payload bytes.
func NewCodec(plan *modem.Plan, mod modem.Modulation, payloadCap int) (*Codec, error) {
	if payloadCap < 1 || payloadCap > 0xFFFF {
		return nil, fmt.Errorf("payload capacity %d out of range", payloadCap)
	}

	outer, err := fec.NewOuterCodeCustom(linkDataShards, linkParityShards)
	if err != nil {
		return nil, err
	}

	c := &Codec{
		plan:       plan,
		modulator:  modem.NewModulator(plan),
		demod:      modem.NewDemodulator(plan),
		cst:        modem.NewConstellation(mod),
		outer:      outer,
		payloadCap: payloadCap,
		frameBytes: HeaderSize + payloadCap + CRCSize,
	}

	c.infoBits = outer.EncodedSize(c.frameBytes) * 8
	c.codedBits = 2 * (c.infoBits + fec.ConvK - 1)

	cols := (c.codedBits + interleaverRows - 1) / interleaverRows
	c.interleave, err = fec.NewBlockInterleaver(interleaverRows, cols)
	if err != nil {
		return nil, err
	}

	bitsPerSym := plan.NumData() * c.cst.Mod.BitsPerSymbol()
	c.numSymbols = (c.interleave.Size() + bitsPerSym - 1) / bitsPerSym
	return c, nil
}

// PayloadCap returns the maximum payload bytes per frame.
func (c *Codec) PayloadCap() int { return c.payloadCap }

// FrameSamples returns the number of baseband samples per encoded frame.
func (c *Codec) FrameSamples() int { return c.numSymbols * c.plan.SymbolLen() }

// Encode turns a frame into complex baseband samples.
func (c *Codec) Encode(f *Frame) ([]complex128, error) {
	wire, err := f.Marshal(c.payloadCap)
	if err != nil {
		return nil, err
	}

	rsEncoded, err := c.outer.Encode(wire)
	if err != nil {
		return nil, fmt.Errorf("outer code: %w", err)
	}

	coded := fec.ConvEncodeTerminated(modem.BytesToBits(rsEncoded))

	// Pad to the interleaver block, interleave, then pad to a whole number
	// of OFDM symbols.
	block := make([]byte, c.interleave.Size())
	copy(block, coded)
	bits := c.interleave.Apply(block)

	bitsPerSym := c.plan.NumData() * c.cst.Mod.BitsPerSymbol()
	padded := make([]byte, c.numSymbols*bitsPerSym)
	copy(padded, bits)

	return c.modulator.ModulateBlock(c.cst.MapBits(padded))
}

// Decode recovers a frame from the baseband samples of one encoded frame.
// noiseVar scales the soft demapper LLRs; pass 1.0 when unknown.
func (c *Codec) Decode(samples []complex128, noiseVar float64) (*Frame, error) {
	if len(samples) != c.FrameSamples() {
		return nil, fmt.Errorf("got %d samples, frame needs %d", len(samples), c.FrameSamples())
	}

	syms, err := c.demod.DemodulateBlock(samples)
	if err != nil {
		return nil, err
	}

	llrs := c.cst.DemapSoft(syms, noiseVar)
	llrs = c.interleave.DeapplyLLR(llrs[:c.interleave.Size()])

	bits := fec.ViterbiDecodeSoftTerminated(llrs[:c.codedBits], c.infoBits)
	if bits == nil {
		return nil, fmt.Errorf("viterbi decode failed")
	}

	rsDecoded, err := c.outer.Decode(modem.BitsToBytes(bits))
	if err != nil {
		return nil, fmt.Errorf("outer code: %w", err)
	}

	return UnmarshalFrame(rsDecoded[:c.frameBytes])
}
