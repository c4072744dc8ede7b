package cptrle

import (
	"bytes"
	"testing"
)

func TestDecodeLiteral8182(t *testing.T) {
	got, err := Decode([]byte{0x81, 0x82, 0x00}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x81, 0x82}) {
		t.Errorf("got % x", got)
	}
}

func TestDecodeNMinus2Rule(t *testing.T) {
	// 'Z' then 0x81 0x82 0x04 -> one more 'Z' plus max(0,4-2)=2 more.
	got, err := Decode([]byte{'Z', 0x81, 0x82, 0x04}, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{'Z', 'Z', 'Z', 'Z'}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestDecodeHalfEscape(t *testing.T) {
	// 0x81 0x81 emits one literal 0x81 and re-injects a phantom 0x81,
	// which then pairs with the following 0x82 0x00 into a literal pair.
	got, err := Decode([]byte{0x81, 0x81, 0x82, 0x00}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x81, 0x81, 0x82}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestDecodeLiteralAfterEscape(t *testing.T) {
	got, err := Decode([]byte{0x81, 0x41}, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x81, 0x41}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestDecodeProductionMismatchErrors(t *testing.T) {
	if _, err := Decode([]byte{'a'}, 5); err == nil {
		t.Fatal("expected an error")
	}
}
