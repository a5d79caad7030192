package channel

import "fmt"

// Multipath is a static FIR channel: the output is the convolution of the
// input with a fixed tap vector. Delay spread up to the OFDM cyclic prefix
// length is absorbed by the prefix and corrected by the equalizer.
type Multipath struct {
	taps []complex128
}

// NewMultipath creates a channel with the given tap coefficients. The
// first tap is the direct path.
func NewMultipath(taps []complex128) (*Multipath, error) {
	if len(taps) == 0 {
		return nil, fmt.Errorf("multipath channel needs at least one tap")
	}
	c := make([]complex128, len(taps))
	copy(c, taps)
	return &Multipath{taps: c}, nil
}

// NumTaps returns the channel length.
func (ch *Multipath) NumTaps() int { return len(ch.taps) }

// Apply convolves the input with the channel taps. Output length equals
// input length; the tail beyond the input is truncated.
func (ch *Multipath) Apply(in []complex128) []complex128 {
	out := make([]complex128, len(in))
	for i := range in {
		var acc complex128
		for j, tap := range ch.taps {
			if i-j < 0 {
				break
			}
			acc += tap * in[i-j]
		}
		out[i] = acc
	}
	return out
}
