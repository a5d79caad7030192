package fec

import "fmt"

// BlockInterleaver permutes bits by writing row-major and reading
// column-major within a rows×cols block, spreading burst errors across the
// convolutional decoder's correction span.
type BlockInterleaver struct {
	rows, cols int
	perm       []int
	inv        []int
}

// NewBlockInterleaver builds the permutation tables for a rows×cols block.
func NewBlockInterleaver(rows, cols int) (*BlockInterleaver, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("invalid interleaver geometry %dx%d", rows, cols)
	}
	size := rows * cols
	it := &BlockInterleaver{
		rows: rows,
		cols: cols,
		perm: make([]int, size),
		inv:  make([]int, size),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			writeIdx := r*cols + c
			readIdx := c*rows + r
			it.perm[writeIdx] = readIdx
			it.inv[readIdx] = writeIdx
		}
	}
	return it, nil
}

// Size returns the block size rows*cols.
func (it *BlockInterleaver) Size() int { return it.rows * it.cols }

// Apply interleaves a full block of bits.
func (it *BlockInterleaver) Apply(in []byte) []byte {
	out := make([]byte, len(in))
	for i := 0; i < len(in) && i < len(it.perm); i++ {
		out[it.perm[i]] = in[i]
	}
	return out
}

// Deapply restores the original bit order.
func (it *BlockInterleaver) Deapply(in []byte) []byte {
	out := make([]byte, len(in))
	for i := 0; i < len(in) && i < len(it.inv); i++ {
		out[it.inv[i]] = in[i]
	}
	return out
}

// DeapplyLLR restores the original order of per-bit soft values, for
// deinterleaving ahead of the soft Viterbi decoder.
func (it *BlockInterleaver) DeapplyLLR(in []float64) []float64 {
	out := make([]float64, len(in))
	for i := 0; i < len(in) && i < len(it.inv); i++ {
		out[it.inv[i]] = in[i]
	}
	return out
}
