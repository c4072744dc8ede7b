package rle90

import (
	"bytes"
	"testing"
)

func TestExpandHQXIllegalCount(t *testing.T) {
	_, err := ExpandHQX([]byte{0x41, 0x90, 0x01})
	if err != ErrIllegalCount {
		t.Fatalf("got err %v, want ErrIllegalCount", err)
	}
}

func TestExpandHQXBasic(t *testing.T) {
	// "A" then escape-literal 0x90, then repeat 'A' 3 more times.
	got, err := ExpandHQX([]byte{0x41, 0x90, 0x00, 0x41, 0x90, 0x04})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x41, 0x90, 0x41, 0x41, 0x41, 0x41}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestExpandSITMethod1Scenario(t *testing.T) {
	// spec.md scenario 3: 00 00 00 90 00 90 01 90 03 decompresses to
	// three literal zero bytes, a literal 0x90 (from 0x90 0x00), zero
	// additional 0x90 copies (from 0x90 0x01 - the HQX-diverging
	// "zero copies, not an error" case), then two more 0x90 copies
	// (from 0x90 0x03: N-1 = 2 repeats of the previous byte).
	in := []byte{0x00, 0x00, 0x00, 0x90, 0x00, 0x90, 0x01, 0x90, 0x03}
	got, err := ExpandSIT(in)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x00, 0x00, 0x90, 0x90, 0x90}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestExpandSITMethod1IllegalCountIsNotFatal(t *testing.T) {
	// Unlike HQX, a trailing count of 1 is legal and emits zero copies.
	got, err := ExpandSIT([]byte{0x41, 0x90, 0x01})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x41}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}
