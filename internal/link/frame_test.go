package link

import (
	"bytes"
	"testing"
)

func TestFrame_MarshalUnmarshal(t *testing.T) {
	f := &Frame{Type: TypeData, Seq: 7, Payload: []byte("hello link layer")}

	wire, err := f.Marshal(32)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(wire) != HeaderSize+32+CRCSize {
		t.Fatalf("wire length %d, want %d", len(wire), HeaderSize+32+CRCSize)
	}

	got, err := UnmarshalFrame(wire)
	if err != nil {
		t.Fatalf("UnmarshalFrame: %v", err)
	}
	if got.Type != f.Type || got.Seq != f.Seq {
		t.Errorf("header mismatch: %+v", got)
	}
	if !bytes.Equal(got.Payload, f.Payload) {
		t.Errorf("payload %q, want %q", got.Payload, f.Payload)
	}
}

func TestFrame_EmptyPayload(t *testing.T) {
	f := &Frame{Type: TypeAck, Seq: 255}
	wire, err := f.Marshal(16)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := UnmarshalFrame(wire)
	if err != nil {
		t.Fatalf("UnmarshalFrame: %v", err)
	}
	if len(got.Payload) != 0 {
		t.Errorf("payload length %d, want 0", len(got.Payload))
	}
}

func TestFrame_PayloadTooLarge(t *testing.T) {
	f := &Frame{Type: TypeData, Payload: make([]byte, 33)}
	if _, err := f.Marshal(32); err == nil {
		t.Error("Marshal accepted oversized payload")
	}
}

func TestFrame_CorruptionDetected(t *testing.T) {
	f := &Frame{Type: TypeData, Seq: 1, Payload: []byte("payload")}
	wire, err := f.Marshal(16)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	for _, pos := range []int{0, 1, 3, 8, len(wire) - 1} {
		bad := append([]byte{}, wire...)
		bad[pos] ^= 0x01
		if _, err := UnmarshalFrame(bad); err == nil {
			t.Errorf("corruption at byte %d not detected", pos)
		}
	}
}

func TestFrame_TooShort(t *testing.T) {
	if _, err := UnmarshalFrame([]byte{1, 2, 3}); err == nil {
		t.Error("UnmarshalFrame accepted short input")
	}
}

func TestFrame_TypeName(t *testing.T) {
	cases := map[byte]string{
		TypeData:    "DATA",
		TypeAck:     "ACK",
		TypeControl: "CONTROL",
		0x7F:        "UNKNOWN(0x7f)",
	}
	for typ, want := range cases {
		f := &Frame{Type: typ}
		if got := f.TypeName(); got != want {
			t.Errorf("TypeName(0x%02x) = %q, want %q", typ, got, want)
		}
	}
}
