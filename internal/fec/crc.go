package fec

import (
	"encoding/binary"
	"hash/crc32"
)

// CRC32 computes the CRC-32 checksum using the IEEE polynomial.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// AppendCRC32 appends the 4-byte big-endian CRC-32 to the data.
func AppendCRC32(data []byte) []byte {
	out := make([]byte, len(data)+4)
	copy(out, data)
	binary.BigEndian.PutUint32(out[len(data):], CRC32(data))
	return out
}

// VerifyCRC32 checks the trailing CRC-32 and returns the data without it
// plus whether verification passed.
func VerifyCRC32(dataWithCRC []byte) ([]byte, bool) {
	if len(dataWithCRC) < 4 {
		return nil, false
	}
	data := dataWithCRC[:len(dataWithCRC)-4]
	expected := binary.BigEndian.Uint32(dataWithCRC[len(dataWithCRC)-4:])
	return data, CRC32(data) == expected
}

// CRC16CCITT computes CRC-16-CCITT (polynomial 0x1021, init 0xFFFF).
func CRC16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// CRC24ModeS computes the 24-bit CRC used by Mode-S / ADS-B downlink
// formats (polynomial 0xFFF409).
func CRC24ModeS(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc ^= uint32(b) << 16
		for i := 0; i < 8; i++ {
			if crc&0x800000 != 0 {
				crc = (crc << 1) ^ 0xFFF409
			} else {
				crc <<= 1
			}
			crc &= 0xFFFFFF
		}
	}
	return crc
}
