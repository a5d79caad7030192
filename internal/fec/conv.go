package fec

import (
	"math"
	"math/bits"
)

// Rate-1/2 convolutional code, constraint length 7, with the industry
// standard generator pair (Voyager / 802.11a): G0 = 0o133, G1 = 0o171.
// Decoding is maximum-likelihood Viterbi over the 64-state trellis, with
// hard (Hamming) or soft (LLR correlation) branch metrics.

const (
	ConvK      = 7               // constraint length
	ConvStates = 1 << (ConvK - 1) // 64 trellis states
	ConvG0     = 0o133
	ConvG1     = 0o171

	// ConvDelay is the structural decode delay of the traceback: the bit
	// emitted at step t is the input bit from step t-ConvDelay, and the
	// first ConvDelay output bits are zero. Callers that need a delay-free
	// contract use the Terminated encode/decode pair instead.
	ConvDelay = ConvK - 2
)

// ConvEncode encodes n input bits (0/1 bytes) into 2n coded bits. The
// shift register starts from zero on every call, so encoding is a pure
// function of the full input sequence.
func ConvEncode(in []byte) []byte {
	out := make([]byte, 2*len(in))
	state := 0
	for i, b := range in {
		state = ((state << 1) | int(b&1)) & (2*ConvStates - 1)
		out[2*i] = byte(bits.OnesCount(uint(state&ConvG0)) & 1)
		out[2*i+1] = byte(bits.OnesCount(uint(state&ConvG1)) & 1)
	}
	return out
}

// ConvEncodeTerminated encodes the input followed by K-1 zero flush bits,
// driving the encoder back to the all-zero state. Pair with
// ViterbiDecodeTerminated for a delay-free round trip.
func ConvEncodeTerminated(in []byte) []byte {
	padded := make([]byte, len(in)+ConvK-1)
	copy(padded, in)
	return ConvEncode(padded)
}

// expectedBits returns the two encoder output bits for the transition
// described by the 7-bit register value.
func expectedBits(fullState int) (byte, byte) {
	return byte(bits.OnesCount(uint(fullState&ConvG0)) & 1),
		byte(bits.OnesCount(uint(fullState&ConvG1)) & 1)
}

// trellis accumulates path metrics and survivor decisions over a decode
// window. Buffers are sized at runtime by the window length; there is no
// fixed step ceiling.
type trellis struct {
	steps int
	path  []int32 // predecessor state per (step, state), stride ConvStates
	pm    [ConvStates]float64
}

func newTrellis(steps int) *trellis {
	tr := &trellis{
		steps: steps,
		path:  make([]int32, steps*ConvStates),
	}
	for s := 1; s < ConvStates; s++ {
		tr.pm[s] = math.Inf(1)
	}
	return tr
}

// step relaxes every transition for one time step. branch returns the
// metric of the transition emitting bits (e0, e1). States are visited in
// ascending order with input bit 0 before bit 1, and updates use strict
// improvement, so ties resolve to the lower originating state.
func (tr *trellis) step(t int, branch func(e0, e1 byte) float64) {
	var pmNew [ConvStates]float64
	for s := range pmNew {
		pmNew[s] = math.Inf(1)
	}

	row := tr.path[t*ConvStates : (t+1)*ConvStates]
	for s := 0; s < ConvStates; s++ {
		if math.IsInf(tr.pm[s], 1) {
			continue
		}
		for bit := 0; bit <= 1; bit++ {
			full := (s << 1) | bit
			ns := full & (ConvStates - 1)
			e0, e1 := expectedBits(full)
			if metric := tr.pm[s] + branch(e0, e1); metric < pmNew[ns] {
				pmNew[ns] = metric
				row[ns] = int32(s)
			}
		}
	}
	tr.pm = pmNew
}

// traceback walks the survivor table backwards from the minimum-metric
// final state, emitting the bit shifted in ConvDelay steps earlier.
func (tr *trellis) traceback() []byte {
	best := 0
	for s := 1; s < ConvStates; s++ {
		if tr.pm[s] < tr.pm[best] {
			best = s
		}
	}

	decoded := make([]byte, tr.steps)
	state := best
	for t := tr.steps - 1; t >= 0; t-- {
		decoded[t] = byte((state >> (ConvK - 2)) & 1)
		state = int(tr.path[t*ConvStates+state])
	}
	return decoded
}

// ViterbiDecode hard-decision decodes 2n coded bits into n bits using the
// Hamming distance between received and expected bit pairs. The output
// carries the ConvDelay structural delay. An odd or too-short input
// returns an empty slice.
func ViterbiDecode(coded []byte) []byte {
	steps := len(coded) / 2
	if steps < 1 || len(coded)%2 != 0 {
		return nil
	}

	tr := newTrellis(steps)
	for t := 0; t < steps; t++ {
		r0 := coded[2*t] & 1
		r1 := coded[2*t+1] & 1
		tr.step(t, func(e0, e1 byte) float64 {
			var bm float64
			if e0 != r0 {
				bm++
			}
			if e1 != r1 {
				bm++
			}
			return bm
		})
	}
	return tr.traceback()
}

// ViterbiDecodeSoft decodes 2n log-likelihood ratios into n bits. Positive
// LLR favors bit value 0. The branch correlation rewards agreement between
// the expected bit polarity and the LLR sign; subtracting it keeps the
// minimization framing of the hard-decision path.
func ViterbiDecodeSoft(llr []float64) []byte {
	steps := len(llr) / 2
	if steps < 1 || len(llr)%2 != 0 {
		return nil
	}

	tr := newTrellis(steps)
	for t := 0; t < steps; t++ {
		l0 := llr[2*t]
		l1 := llr[2*t+1]
		tr.step(t, func(e0, e1 byte) float64 {
			bm := l0
			if e0 != 0 {
				bm = -l0
			}
			if e1 != 0 {
				bm -= l1
			} else {
				bm += l1
			}
			return -bm
		})
	}
	return tr.traceback()
}

// ViterbiDecodeTerminated decodes a stream produced by
// ConvEncodeTerminated, returning exactly nBits delay-free bits.
func ViterbiDecodeTerminated(coded []byte, nBits int) []byte {
	raw := ViterbiDecode(coded)
	return stripTail(raw, nBits)
}

// ViterbiDecodeSoftTerminated is the soft-decision counterpart of
// ViterbiDecodeTerminated.
func ViterbiDecodeSoftTerminated(llr []float64, nBits int) []byte {
	raw := ViterbiDecodeSoft(llr)
	return stripTail(raw, nBits)
}

func stripTail(raw []byte, nBits int) []byte {
	if nBits < 0 || len(raw) < ConvDelay+nBits {
		return nil
	}
	return raw[ConvDelay : ConvDelay+nBits]
}
