// Package lzss13 implements SIT method 13: LZSS over a 64 KiB sliding
// window with three canonical Huffman codes (two alternating lit/len
// codes and one distance code), either dynamically serialized via a
// fixed 37-symbol meta-code or selected from five predefined table
// sets.
//
// Grounded on internal/sit/huffman.go's canonical decode-tree shape
// and internal/sit/sit14.go's commented XAD pseudocode for a sibling
// LZ-plus-Huffman method (dynamic tree serialization driven by a
// small command alphabet, a sliding window, literal/match decode
// loop with alternating trees) — the command semantics here (set,
// zero, increment, decrement, short/medium/long repeat-run) are
// reshaped to the length-vector encoding spec.md §4.5 describes.
package lzss13

import (
	"errors"
	"fmt"

	"github.com/macfileformats/peeler/internal/bitio"
	"github.com/macfileformats/peeler/internal/huffman"
)

const (
	windowSize  = 1 << 16
	litlenSize  = 321
	metaSize    = 37
	symLenEnd   = 320
	lenBase     = 256
	lenDirectLo = 256
	lenDirectHi = 317
	lenField10  = 318
	lenField15  = 319
)

// ErrFatalSymbol320 is the decode-stream's designated fatal symbol.
var ErrFatalSymbol320 = errors.New("lzss13: fatal symbol 320 in lit/len stream")

// ErrBadSelector is returned for a header code-set selector value
// outside 0..5.
var ErrBadSelector = errors.New("lzss13: code-set selector out of range")

// ErrProduction is returned when the decoder produces more or fewer
// bytes than the container declared.
var ErrProduction = errors.New("lzss13: produced length does not match declared length")

// Decode decompresses a SIT method-13 stream, producing exactly
// dstSize bytes.
func Decode(src []byte, dstSize uint32) ([]byte, error) {
	if len(src) < 1 {
		return nil, errors.New("lzss13: empty stream")
	}
	header := src[0]
	s := header >> 4
	shared := (header>>3)&1 != 0
	k := int(header & 0x7)

	br := bitio.NewLSBReader(&byteSliceReader{src: src[1:]})

	var litlen1, litlen2, dist []int
	switch {
	case s == 0:
		meta := huffman.Build(metaCodeLengths[:])
		var err error
		litlen1, err = readTree(br, meta, litlenSize)
		if err != nil {
			return nil, err
		}
		if shared {
			litlen2 = litlen1
		} else {
			litlen2, err = readTree(br, meta, litlenSize)
			if err != nil {
				return nil, err
			}
		}
		dist, err = readTree(br, meta, k+10)
		if err != nil {
			return nil, err
		}
	case s >= 1 && s <= 5:
		set := predefinedTables[s-1]
		litlen1 = set.litlen1
		litlen2 = set.litlen2
		dist = set.dist
	default:
		return nil, ErrBadSelector
	}

	firstTree := huffman.Build(litlen1)
	secondTree := huffman.Build(litlen2)
	distTree := huffman.Build(dist)

	var window [windowSize]byte
	wpos := 0
	active := firstTree

	out := make([]byte, 0, dstSize)
	for uint32(len(out)) < dstSize {
		sym, err := active.Decode(br)
		if err != nil {
			return nil, err
		}

		if sym < 256 {
			b := byte(sym)
			window[wpos] = b
			wpos = (wpos + 1) % windowSize
			out = append(out, b)
			active = firstTree
			continue
		}

		var length int
		switch {
		case sym >= lenDirectLo && sym <= lenDirectHi:
			length = sym - 253
		case sym == lenField10:
			extra, err := br.ReadBits(10)
			if err != nil {
				return nil, err
			}
			length = int(extra) + 65
		case sym == lenField15:
			extra, err := br.ReadBits(15)
			if err != nil {
				return nil, err
			}
			length = int(extra) + 65
		case sym == symLenEnd:
			return nil, ErrFatalSymbol320
		default:
			return nil, fmt.Errorf("lzss13: invalid lit/len symbol %d", sym)
		}

		dsym, err := distTree.Decode(br)
		if err != nil {
			return nil, err
		}
		var distance int
		if dsym == 0 {
			distance = 1
		} else {
			extra, err := br.ReadBits(dsym - 1)
			if err != nil {
				return nil, err
			}
			distance = (1 << uint(dsym-1)) + int(extra) + 1
		}

		for i := 0; i < length; i++ {
			srcPos := (wpos - distance + windowSize) % windowSize
			b := window[srcPos]
			window[wpos] = b
			wpos = (wpos + 1) % windowSize
			out = append(out, b)
			if uint32(len(out)) > dstSize {
				return nil, ErrProduction
			}
		}
		active = secondTree
	}

	if uint32(len(out)) != dstSize {
		return nil, ErrProduction
	}
	return out, nil
}

// readTree reads `size` canonical code lengths via the meta-code
// command stream (spec.md §4.5): commands 0..30 set an absolute
// length, 31 zeroes it, 32/33 step it by one, and 34/35/36 repeat the
// current length for a short/medium/long extra run before the
// iteration's own emit.
func readTree(br *bitio.LSBReader, meta *huffman.Tree, size int) ([]int, error) {
	lengths := make([]int, 0, size)
	curLen := 0
	for len(lengths) < size {
		cmd, err := meta.Decode(br)
		if err != nil {
			return nil, err
		}
		extra := 0
		switch {
		case cmd <= 30:
			curLen = cmd + 1
		case cmd == 31:
			curLen = 0
		case cmd == 32:
			curLen++
		case cmd == 33:
			curLen--
		case cmd == 34:
			bit, err := br.ReadBit()
			if err != nil {
				return nil, err
			}
			if bit == 1 {
				extra = 1
			}
		case cmd == 35:
			r, err := br.ReadBits(3)
			if err != nil {
				return nil, err
			}
			extra = int(r) + 2
		case cmd == 36:
			r, err := br.ReadBits(6)
			if err != nil {
				return nil, err
			}
			extra = int(r) + 10
		default:
			return nil, fmt.Errorf("lzss13: invalid meta-code command %d", cmd)
		}
		for i := 0; i < extra && len(lengths) < size; i++ {
			lengths = append(lengths, curLen)
		}
		lengths = append(lengths, curLen)
	}
	return lengths[:size], nil
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

var errShortRead = errors.New("lzss13: unexpected end of bitstream")
