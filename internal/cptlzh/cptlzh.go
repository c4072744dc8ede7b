// Package cptlzh implements CPT's LZH back-end: an 8 KiB sliding
// window, MSB-first bitstream, with three canonical Huffman trees per
// block (literal 256 symbols, length 64 symbols, offset 128 symbols)
// serialized as nibble-packed code lengths ahead of each block's
// token stream.
//
// Grounded on spec.md §4.7 directly; no teacher or pack file
// implements CPT. Reuses internal/huffman's canonical tree builder
// and internal/bitio's MSB-first reader.
package cptlzh

import (
	"errors"
	"fmt"

	"github.com/macfileformats/peeler/internal/bitio"
	"github.com/macfileformats/peeler/internal/huffman"
)

const (
	windowSize = 1 << 13 // 8 KiB
	litSize    = 256
	lenSize    = 64
	offSize    = 128
	endCost    = 0x1FFF0
)

// ErrProduction is returned when the decoded length doesn't match the
// container-declared length.
var ErrProduction = errors.New("cptlzh: produced length does not match declared length")

type countingByteReader struct {
	r     *byteSliceReader
	count int
}

func (c *countingByteReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.count++
	}
	return b, err
}

// Decode decompresses a CPT-LZH stream, producing exactly dstSize
// bytes.
func Decode(src []byte, dstSize uint32) ([]byte, error) {
	underlying := &byteSliceReader{src: src}
	counter := &countingByteReader{r: underlying}
	br := bitio.NewMSBReader(counter)

	var window [windowSize]byte
	wpos := 0
	out := make([]byte, 0, dstSize)

	for uint32(len(out)) < dstSize {
		litLengths, err := readLengthTable(br, litSize)
		if err != nil {
			return nil, err
		}
		lenLengths, err := readLengthTable(br, lenSize)
		if err != nil {
			return nil, err
		}
		offLengths, err := readLengthTable(br, offSize)
		if err != nil {
			return nil, err
		}
		litTree := huffman.Build(litLengths)
		lenTree := huffman.Build(lenLengths)
		offTree := huffman.Build(offLengths)

		counter.count = 0
		cost := 0
		for cost < endCost && uint32(len(out)) < dstSize {
			flag, err := br.ReadBit()
			if err != nil {
				return nil, err
			}
			if flag == 1 {
				sym, err := litTree.Decode(br)
				if err != nil {
					return nil, err
				}
				b := byte(sym)
				window[wpos] = b
				wpos = (wpos + 1) % windowSize
				out = append(out, b)
				cost += 2
				continue
			}

			length, err := lenTree.Decode(br)
			if err != nil {
				return nil, err
			}
			h, err := offTree.Decode(br)
			if err != nil {
				return nil, err
			}
			low6, err := br.ReadBits(6)
			if err != nil {
				return nil, err
			}
			offset := int(h)<<6 | int(low6)
			offset++ // 1-based
			cost += 3

			for i := 0; i < length; i++ {
				srcPos := (wpos - offset + windowSize) % windowSize
				b := window[srcPos]
				window[wpos] = b
				wpos = (wpos + 1) % windowSize
				out = append(out, b)
				if uint32(len(out)) > dstSize {
					return nil, ErrProduction
				}
			}
		}

		br.ByteAlign()
		if counter.count%2 != 0 {
			if err := br.DiscardBytes(3); err != nil && uint32(len(out)) < dstSize {
				return nil, err
			}
		} else {
			if err := br.DiscardBytes(2); err != nil && uint32(len(out)) < dstSize {
				return nil, err
			}
		}
	}

	if uint32(len(out)) != dstSize {
		return nil, ErrProduction
	}
	return out, nil
}

// readLengthTable reads a one-byte count N followed by N bytes of
// nibble-packed code lengths (high nibble first), producing exactly
// size code lengths.
func readLengthTable(br *bitio.MSBReader, size int) ([]int, error) {
	n, err := br.ReadBits(8)
	if err != nil {
		return nil, err
	}
	lengths := make([]int, 0, size)
	for i := uint32(0); i < n; i++ {
		byteVal, err := br.ReadBits(8)
		if err != nil {
			return nil, err
		}
		lengths = append(lengths, int(byteVal>>4))
		lengths = append(lengths, int(byteVal&0xF))
	}
	if len(lengths) > size {
		lengths = lengths[:size]
	}
	for len(lengths) < size {
		lengths = append(lengths, 0)
	}
	if !hasAnyNonzero(lengths) {
		return nil, fmt.Errorf("cptlzh: empty code-length table")
	}
	return lengths, nil
}

func hasAnyNonzero(lengths []int) bool {
	for _, l := range lengths {
		if l > 0 {
			return true
		}
	}
	return false
}

type byteSliceReader struct {
	src []byte
	pos int
}

func (r *byteSliceReader) ReadByte() (byte, error) {
	if r.pos >= len(r.src) {
		return 0, errShortRead
	}
	b := r.src[r.pos]
	r.pos++
	return b, nil
}

// DecodeAll decompresses a CPT-LZH stream whose decompressed length
// isn't known up front: it keeps decoding blocks until the
// compressed input is exhausted. Used when CPT-LZH is the first
// stage of a fork pipeline (LZH output feeds CPT-RLE, and only the
// pipeline's final post-RLE length is recorded in the directory
// entry, per spec.md §4.7).
func DecodeAll(src []byte) ([]byte, error) {
	underlying := &byteSliceReader{src: src}
	counter := &countingByteReader{r: underlying}
	br := bitio.NewMSBReader(counter)

	var window [windowSize]byte
	wpos := 0
	var out []byte

	for underlying.pos < len(underlying.src) {
		litLengths, err := readLengthTable(br, litSize)
		if err != nil {
			return nil, err
		}
		lenLengths, err := readLengthTable(br, lenSize)
		if err != nil {
			return nil, err
		}
		offLengths, err := readLengthTable(br, offSize)
		if err != nil {
			return nil, err
		}
		litTree := huffman.Build(litLengths)
		lenTree := huffman.Build(lenLengths)
		offTree := huffman.Build(offLengths)

		counter.count = 0
		cost := 0
		for cost < endCost {
			flag, err := br.ReadBit()
			if err != nil {
				return out, nil // ran out of input mid-block: treat as end of stream.
			}
			if flag == 1 {
				sym, err := litTree.Decode(br)
				if err != nil {
					return nil, err
				}
				b := byte(sym)
				window[wpos] = b
				wpos = (wpos + 1) % windowSize
				out = append(out, b)
				cost += 2
				continue
			}

			length, err := lenTree.Decode(br)
			if err != nil {
				return nil, err
			}
			h, err := offTree.Decode(br)
			if err != nil {
				return nil, err
			}
			low6, err := br.ReadBits(6)
			if err != nil {
				return nil, err
			}
			offset := int(h)<<6 | int(low6)
			offset++ // 1-based
			cost += 3

			for i := 0; i < length; i++ {
				srcPos := (wpos - offset + windowSize) % windowSize
				b := window[srcPos]
				window[wpos] = b
				wpos = (wpos + 1) % windowSize
				out = append(out, b)
			}
		}

		br.ByteAlign()
		if counter.count%2 != 0 {
			br.DiscardBytes(3)
		} else {
			br.DiscardBytes(2)
		}
	}

	return out, nil
}

var errShortRead = errors.New("cptlzh: unexpected end of bitstream")
