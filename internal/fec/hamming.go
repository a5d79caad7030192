package fec

// Hamming(7,4) systematic block code: 4 data bits, 3 parity bits, corrects
// any single bit error per codeword.

// Generator matrix rows, systematic form [I4 | P].
var hammingG = [4][7]byte{
	{1, 0, 0, 0, 1, 1, 0},
	{0, 1, 0, 0, 0, 1, 1},
	{0, 0, 1, 0, 1, 1, 1},
	{0, 0, 0, 1, 1, 0, 1},
}

// Parity check matrix H.
var hammingH = [3][7]byte{
	{1, 0, 1, 1, 1, 0, 0},
	{1, 1, 1, 0, 0, 1, 0},
	{0, 1, 1, 1, 0, 0, 1},
}

// HammingEncode encodes 4 data bits into a 7-bit codeword.
func HammingEncode(data [4]byte) [7]byte {
	var code [7]byte
	for j := 0; j < 7; j++ {
		for i := 0; i < 4; i++ {
			code[j] ^= (data[i] & 1) & hammingG[i][j]
		}
	}
	return code
}

// HammingDecode decodes a 7-bit codeword, correcting at most one bit
// error. It returns the 4 data bits and the corrected bit position, or -1
// if the syndrome was zero.
func HammingDecode(code [7]byte) ([4]byte, int) {
	var syndrome [3]byte
	for i := 0; i < 3; i++ {
		for j := 0; j < 7; j++ {
			syndrome[i] ^= (code[j] & 1) & hammingH[i][j]
		}
	}

	synVal := int(syndrome[0])<<2 | int(syndrome[1])<<1 | int(syndrome[2])
	errorPos := -1
	if synVal != 0 {
		for j := 0; j < 7; j++ {
			col := int(hammingH[0][j])<<2 | int(hammingH[1][j])<<1 | int(hammingH[2][j])
			if col == synVal {
				errorPos = j
				break
			}
		}
	}

	corrected := code
	if errorPos >= 0 {
		corrected[errorPos] ^= 1
	}

	var data [4]byte
	copy(data[:], corrected[:4])
	return data, errorPos
}
