package fec

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestCRC32_KnownVector(t *testing.T) {
	if got := CRC32([]byte("123456789")); got != 0xCBF43926 {
		t.Errorf("CRC32 check value = %08x, want CBF43926", got)
	}
}

func TestCRC32_AppendVerify(t *testing.T) {
	data := []byte("Test data for CRC verification")

	withCRC := AppendCRC32(data)
	if len(withCRC) != len(data)+4 {
		t.Fatalf("Expected length %d, got %d", len(data)+4, len(withCRC))
	}

	recovered, valid := VerifyCRC32(withCRC)
	if !valid {
		t.Error("CRC verification failed for valid data")
	}
	if !bytes.Equal(recovered, data) {
		t.Error("Recovered data mismatch")
	}

	// Corrupt data and verify detection
	withCRC[5] ^= 0xFF
	_, valid = VerifyCRC32(withCRC)
	if valid {
		t.Error("CRC verification should fail for corrupted data")
	}

	if _, valid := VerifyCRC32([]byte{1, 2}); valid {
		t.Error("short input accepted")
	}
}

func TestCRC16CCITT_KnownVector(t *testing.T) {
	if got := CRC16CCITT([]byte("123456789")); got != 0x29B1 {
		t.Errorf("CRC16-CCITT check value = %04x, want 29B1", got)
	}
}

func TestCRC24ModeS_SelfCheck(t *testing.T) {
	// Appending the 3 CRC bytes drives the remainder to zero.
	msg := []byte{0x8D, 0x4B, 0x1A, 0x00, 0x20, 0x4E, 0x38}
	crc := CRC24ModeS(msg)

	full := append(append([]byte{}, msg...),
		byte(crc>>16), byte(crc>>8), byte(crc))
	if got := CRC24ModeS(full); got != 0 {
		t.Errorf("remainder over message+CRC = %06x, want 0", got)
	}
}

func TestHamming_RoundTrip(t *testing.T) {
	for v := 0; v < 16; v++ {
		var data [4]byte
		for i := 0; i < 4; i++ {
			data[i] = byte((v >> i) & 1)
		}

		code := HammingEncode(data)
		got, pos := HammingDecode(code)
		if pos != -1 {
			t.Errorf("value %d: clean codeword reported error at %d", v, pos)
		}
		if got != data {
			t.Errorf("value %d: decoded %v, want %v", v, got, data)
		}
	}
}

func TestHamming_CorrectsSingleError(t *testing.T) {
	data := [4]byte{1, 0, 1, 1}
	code := HammingEncode(data)

	for errPos := 0; errPos < 7; errPos++ {
		corrupted := code
		corrupted[errPos] ^= 1

		got, pos := HammingDecode(corrupted)
		if pos != errPos {
			t.Errorf("error at %d reported at %d", errPos, pos)
		}
		if got != data {
			t.Errorf("error at %d: decoded %v, want %v", errPos, got, data)
		}
	}
}

func TestBlockInterleaver_RoundTrip(t *testing.T) {
	it, err := NewBlockInterleaver(16, 12)
	if err != nil {
		t.Fatalf("NewBlockInterleaver: %v", err)
	}
	if it.Size() != 192 {
		t.Fatalf("Size() = %d, want 192", it.Size())
	}

	rng := rand.New(rand.NewSource(11))
	in := make([]byte, it.Size())
	for i := range in {
		in[i] = byte(rng.Intn(2))
	}

	out := it.Deapply(it.Apply(in))
	if !bytes.Equal(out, in) {
		t.Error("interleave round trip altered the data")
	}
}

func TestBlockInterleaver_SpreadsBursts(t *testing.T) {
	it, err := NewBlockInterleaver(16, 12)
	if err != nil {
		t.Fatalf("NewBlockInterleaver: %v", err)
	}

	// A contiguous burst in the channel must land on well-separated
	// positions after deinterleaving.
	marked := make([]byte, it.Size())
	for i := 40; i < 48; i++ { // 8-bit burst
		marked[i] = 1
	}
	restored := it.Deapply(marked)

	last := -100
	for i, b := range restored {
		if b == 0 {
			continue
		}
		if i-last < 8 {
			t.Errorf("burst positions %d and %d too close after deinterleave", last, i)
		}
		last = i
	}
}

func TestBlockInterleaver_DeapplyLLR(t *testing.T) {
	it, err := NewBlockInterleaver(4, 8)
	if err != nil {
		t.Fatalf("NewBlockInterleaver: %v", err)
	}

	in := make([]float64, it.Size())
	for i := range in {
		in[i] = float64(i) + 0.5
	}

	// Interleave indices through Apply, then bring the values home.
	shuffled := make([]float64, len(in))
	idx := make([]byte, len(in))
	for i := range idx {
		idx[i] = byte(i)
	}
	for i, v := range it.Apply(idx) {
		shuffled[i] = in[int(v)]
	}

	restored := it.DeapplyLLR(shuffled)
	for i := range in {
		if restored[i] != in[i] {
			t.Fatalf("position %d: %v, want %v", i, restored[i], in[i])
		}
	}
}

func TestBlockInterleaver_InvalidGeometry(t *testing.T) {
	if _, err := NewBlockInterleaver(0, 5); err == nil {
		t.Error("accepted 0 rows")
	}
	if _, err := NewBlockInterleaver(5, -1); err == nil {
		t.Error("accepted negative cols")
	}
}

func TestOuterCode_RoundTrip(t *testing.T) {
	rs, err := NewOuterCodeCustom(10, 4)
	if err != nil {
		t.Fatalf("NewOuterCodeCustom: %v", err)
	}

	data := []byte("The quick brown fox jumps over the lazy dog")
	encoded, err := rs.Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) != rs.EncodedSize(len(data)) {
		t.Errorf("encoded length %d, want %d", len(encoded), rs.EncodedSize(len(data)))
	}

	decoded, err := rs.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded[:len(data)], data) {
		t.Error("decoded data mismatch")
	}
}

func TestOuterCode_DetectsCorruption(t *testing.T) {
	rs, err := NewOuterCodeCustom(10, 4)
	if err != nil {
		t.Fatalf("NewOuterCodeCustom: %v", err)
	}

	encoded, err := rs.Encode(bytes.Repeat([]byte{0x5A}, 40))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	encoded[3] ^= 0xFF
	if _, err := rs.Decode(encoded); err == nil {
		t.Error("Decode accepted corrupted block")
	}

	if _, err := rs.Decode(encoded[:len(encoded)-1]); err == nil {
		t.Error("Decode accepted ragged block")
	}
}

func TestOuterCode_Defaults(t *testing.T) {
	rs, err := NewOuterCode()
	if err != nil {
		t.Fatalf("NewOuterCode: %v", err)
	}
	if rs.DataShards() != DefaultDataShards || rs.ParityShards() != DefaultParityShards {
		t.Errorf("shards = %d/%d, want %d/%d",
			rs.DataShards(), rs.ParityShards(), DefaultDataShards, DefaultParityShards)
	}
}
