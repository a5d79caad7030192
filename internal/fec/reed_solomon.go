package fec

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// OuterCode is the Reed-Solomon outer code wrapped around link frames
// before convolutional encoding. Defaults approximate RS(255,223).
type OuterCode struct {
	enc        reedsolomon.Encoder
	dataShards int
	parShards  int
}

const (
	DefaultDataShards   = 223
	DefaultParityShards = 32
)

// NewOuterCode creates the default Reed-Solomon outer code.
func NewOuterCode() (*OuterCode, error) {
	return NewOuterCodeCustom(DefaultDataShards, DefaultParityShards)
}

// NewOuterCodeCustom creates an outer code with custom shard counts.
func NewOuterCodeCustom(dataShards, parityShards int) (*OuterCode, error) {
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("create reed-solomon encoder: %w", err)
	}
	return &OuterCode{enc: enc, dataShards: dataShards, parShards: parityShards}, nil
}

// Encode splits the data across the data shards, computes parity, and
// returns all shards concatenated.
func (rs *OuterCode) Encode(data []byte) ([]byte, error) {
	shards := rs.split(data)
	if err := rs.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	out := make([]byte, 0, (rs.dataShards+rs.parShards)*len(shards[0]))
	for _, shard := range shards {
		out = append(out, shard...)
	}
	return out, nil
}

// Decode verifies an encoded block and returns the data shards
// concatenated (including any padding added by Encode).
func (rs *OuterCode) Decode(encoded []byte) ([]byte, error) {
	total := rs.dataShards + rs.parShards
	if len(encoded)%total != 0 {
		return nil, fmt.Errorf("encoded size %d not divisible by %d shards", len(encoded), total)
	}
	shardSize := len(encoded) / total
	shards := make([][]byte, total)
	for i := range shards {
		shards[i] = make([]byte, shardSize)
		copy(shards[i], encoded[i*shardSize:(i+1)*shardSize])
	}

	if err := rs.enc.Reconstruct(shards); err != nil {
		return nil, fmt.Errorf("reconstruct: %w", err)
	}
	ok, err := rs.enc.Verify(shards)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("verification failed: data corrupted beyond repair")
	}

	var out []byte
	for i := 0; i < rs.dataShards; i++ {
		out = append(out, shards[i]...)
	}
	return out, nil
}

// EncodedSize returns the encoded length for a given payload length.
func (rs *OuterCode) EncodedSize(dataLen int) int {
	shardSize := (dataLen + rs.dataShards - 1) / rs.dataShards
	return (rs.dataShards + rs.parShards) * shardSize
}

// DataShards returns the number of data shards.
func (rs *OuterCode) DataShards() int { return rs.dataShards }

// ParityShards returns the number of parity shards.
func (rs *OuterCode) ParityShards() int { return rs.parShards }

func (rs *OuterCode) split(data []byte) [][]byte {
	total := rs.dataShards + rs.parShards
	shardSize := (len(data) + rs.dataShards - 1) / rs.dataShards
	shards := make([][]byte, total)
	for i := range shards {
		shards[i] = make([]byte, shardSize)
		if i < rs.dataShards {
			start := i * shardSize
			if start < len(data) {
				end := start + shardSize
				if end > len(data) {
					end = len(data)
				}
				copy(shards[i], data[start:end])
			}
		}
	}
	return shards
}
