package lzss13

import (
	"errors"
	"io"
	"testing"

	"github.com/macfileformats/peeler/internal/bitio"
	"github.com/macfileformats/peeler/internal/huffman"
)

func TestDecodeEmptyStreamErrors(t *testing.T) {
	if _, err := Decode(nil, 0); err == nil {
		t.Fatal("expected an error for an empty stream")
	}
}

func TestDecodeBadSelectorFatal(t *testing.T) {
	_, err := Decode([]byte{0x60}, 1)
	if !errors.Is(err, ErrBadSelector) {
		t.Fatalf("got %v, want ErrBadSelector", err)
	}
}

type emptyByteReader struct{}

func (emptyByteReader) ReadByte() (byte, error) { return 0, io.EOF }

func TestReadTreeSingleCommandLeafRoot(t *testing.T) {
	// A meta-code with exactly one used symbol degenerates to a
	// single-leaf tree whose Decode never consumes a bit, letting
	// this test drive readTree's "set absolute length" command (5,
	// i.e. curLen = cmd+1 = 6) without constructing a real bitstream.
	lengths := make([]int, metaSize)
	lengths[5] = 1
	meta := huffman.Build(lengths)

	br := bitio.NewLSBReader(emptyByteReader{})
	got, err := readTree(br, meta, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{6, 6, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestPredefinedTablesAreValidCanonicalCodes(t *testing.T) {
	for i, set := range predefinedTables {
		if len(set.litlen1) != litlenSize || len(set.litlen2) != litlenSize {
			t.Errorf("set %d: lit/len table wrong size", i+1)
		}
		if len(set.dist) < 11 || len(set.dist) > 14 {
			t.Errorf("set %d: dist table size %d out of 11..14", i+1, len(set.dist))
		}
		// Build must not panic on any predefined table.
		huffman.Build(set.litlen1)
		huffman.Build(set.dist)
	}
}
