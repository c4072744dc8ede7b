package hqxfmt

import (
	"testing"

	"github.com/macfileformats/peeler/internal/crc16"
)

// encodeForTest wraps raw in a BinHex envelope: 0x90 bytes are escaped
// for the RLE90 layer, then the stream is packed 6 bits per character.
func encodeForTest(raw []byte) []byte {
	var rle []byte
	for _, b := range raw {
		rle = append(rle, b)
		if b == 0x90 {
			rle = append(rle, 0x00)
		}
	}
	out := []byte("(This file must be converted with BinHex 4.0)\n:")
	var acc uint32
	nbits := 0
	for _, b := range rle {
		acc = acc<<8 | uint32(b)
		nbits += 8
		for nbits >= 6 {
			nbits -= 6
			out = append(out, alphabet[(acc>>uint(nbits))&0x3F])
		}
	}
	if nbits > 0 {
		out = append(out, alphabet[(acc<<uint(6-nbits))&0x3F])
	}
	return append(out, ':')
}

// TestDecodeEmptyForks is the concrete scenario 1 from spec.md §8:
// a minimal HQX with filename "x" and both forks length 0.
func TestDecodeEmptyForks(t *testing.T) {
	envelope := []byte("(This file must be converted with BinHex 4.0)\n:!8B!!!!!!!!!!!!!!!!!!!!!!!!!<.>!!!!!:")
	got, err := Decode(envelope)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "x" {
		t.Errorf("name = %q, want %q", got.Name, "x")
	}
	if got.Type != 0 || got.Creator != 0 || got.Flags != 0 {
		t.Errorf("got type=%#x creator=%#x flags=%#x, want all zero", got.Type, got.Creator, got.Flags)
	}
	if len(got.Data) != 0 || len(got.Resource) != 0 {
		t.Errorf("expected both forks empty, got data=%d rsrc=%d", len(got.Data), len(got.Resource))
	}
}

func TestDecodeMissingPreambleFails(t *testing.T) {
	if _, err := Decode([]byte("not a binhex file")); err != ErrBadEnvelope {
		t.Fatalf("got %v, want ErrBadEnvelope", err)
	}
}

func TestDecodeMissingColonFails(t *testing.T) {
	src := []byte("(This file must be converted with BinHex 4.0)\nno colon here")
	if _, err := Decode(src); err != ErrBadEnvelope {
		t.Fatalf("got %v, want ErrBadEnvelope", err)
	}
}

func TestDecodeBadCharFails(t *testing.T) {
	src := []byte("(This file must be converted with BinHex 4.0)\n:\x01\x02:")
	if _, err := Decode(src); err != ErrBadChar {
		t.Fatalf("got %v, want ErrBadChar", err)
	}
}

func TestFlagsAreMaskedOnOutput(t *testing.T) {
	// Bits 14, 7, and 2 must be cleared even when set in the source.
	raw := []byte{1, 'x', 0}
	raw = append(raw, make([]byte, 8)...) // type, creator
	raw = append(raw, 0x40, 0x85)         // flags: bits 14, 7, 2, 0
	raw = append(raw, make([]byte, 8)...) // data and resource lengths
	crc := crc16.CCITT(raw)
	raw = append(raw, byte(crc>>8), byte(crc))
	raw = append(raw, 0, 0, 0, 0) // CRCs of the two empty forks
	got, err := Decode(encodeForTest(raw))
	if err != nil {
		t.Fatal(err)
	}
	if flags := got.Flags; flags != 1 {
		t.Fatalf("got %#x, want %#x", flags, 1)
	}
}
