package link

import (
	"encoding/binary"
	"fmt"

	"github.com/gocomms/phylab/internal/fec"
)

// Frame types.
const (
	TypeData    byte = 0x01
	TypeAck     byte = 0x02
	TypeControl byte = 0x03
)

const (
	HeaderSize = 4 // Type(1) + Seq(1) + PayloadLen(2)
	CRCSize    = 4
)

// Frame is one link-layer frame.
// Wire format: [Type(1B)][Seq(1B)][PayloadLen(2B)][Payload][CRC-32(4B)]
type Frame struct {
	Type    byte
	Seq     byte
	Payload []byte
}

// TypeName returns a readable name for the frame type.
func (f *Frame) TypeName() string {
	switch f.Type {
	case TypeData:
		return "DATA"
	case TypeAck:
		return "ACK"
	case TypeControl:
		return "CONTROL"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", f.Type)
	}
}

// Marshal serializes the frame, padding the payload field to paddedLen
// bytes so every frame of a codec has the same wire size. The CRC covers
// header and padded payload.
func (f *Frame) Marshal(paddedLen int) ([]byte, error) {
	if len(f.Payload) > paddedLen {
		return nil, fmt.Errorf("payload %d bytes exceeds frame capacity %d", len(f.Payload), paddedLen)
	}
	if len(f.Payload) > 0xFFFF {
		return nil, fmt.Errorf("payload %d bytes exceeds length field", len(f.Payload))
	}

	buf := make([]byte, HeaderSize+paddedLen)
	buf[0] = f.Type
	buf[1] = f.Seq
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(f.Payload)))
	copy(buf[HeaderSize:], f.Payload)
	return fec.AppendCRC32(buf), nil
}

// UnmarshalFrame parses and CRC-checks a frame serialized by Marshal.
func UnmarshalFrame(data []byte) (*Frame, error) {
	if len(data) < HeaderSize+CRCSize {
		return nil, fmt.Errorf("frame too short: %d bytes", len(data))
	}
	body, ok := fec.VerifyCRC32(data)
	if !ok {
		return nil, fmt.Errorf("frame CRC mismatch")
	}

	payloadLen := int(binary.BigEndian.Uint16(body[2:4]))
	if HeaderSize+payloadLen > len(body) {
		return nil, fmt.Errorf("payload length %d exceeds frame body %d", payloadLen, len(body)-HeaderSize)
	}

	return &Frame{
		Type:    body[0],
		Seq:     body[1],
		Payload: body[HeaderSize : HeaderSize+payloadLen],
	}, nil
}
