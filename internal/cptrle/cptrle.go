// Package cptrle implements CPT's outer RLE stage, always applied on
// top of a fork's payload (with LZH optionally prepended per
// spec.md §4.7). Escape byte 0x81 drives four cases: a literal
// 0x81 0x82 pair, a repeat-count-encoded run via the N-2 rule, a
// half-escape that re-injects a phantom 0x81 for re-detection, and a
// plain literal-follows-escape case.
//
// Grounded on spec.md §4.7 directly; no teacher or pack file
// implements CPT.
package cptrle

import (
	"errors"
	"io"
)

const escape = 0x81

// ErrRepeatBeforeAnyByte is returned if an N-2-rule repeat appears
// before any byte has been emitted to repeat.
var ErrRepeatBeforeAnyByte = errors.New("cptrle: repeat before any byte was emitted")

// ErrProduction is returned when the decoded length doesn't match the
// container-declared length.
var ErrProduction = errors.New("cptrle: produced length does not match declared length")

// Decode expands a CPT-RLE stream, producing exactly dstSize bytes.
func Decode(src []byte, dstSize uint32) ([]byte, error) {
	out := make([]byte, 0, dstSize)
	var prev byte
	havePrev := false

	pos := 0
	var phantom *byte
	next := func() (byte, bool) {
		if phantom != nil {
			b := *phantom
			phantom = nil
			return b, true
		}
		if pos >= len(src) {
			return 0, false
		}
		b := src[pos]
		pos++
		return b, true
	}

	for {
		b, ok := next()
		if !ok {
			break
		}
		if b != escape {
			out = append(out, b)
			prev, havePrev = b, true
			continue
		}

		x, ok := next()
		if !ok {
			return nil, io.ErrUnexpectedEOF
		}
		switch x {
		case 0x82:
			n, ok := next()
			if !ok {
				return nil, io.ErrUnexpectedEOF
			}
			if n == 0 {
				out = append(out, escape, 0x82)
				prev, havePrev = 0x82, true
			} else {
				if !havePrev {
					return nil, ErrRepeatBeforeAnyByte
				}
				extra := int(n) - 2
				if extra < 0 {
					extra = 0
				}
				out = append(out, prev)
				for i := 0; i < extra; i++ {
					out = append(out, prev)
				}
			}
		case escape:
			out = append(out, escape)
			prev, havePrev = escape, true
			ph := byte(escape)
			phantom = &ph
		default:
			out = append(out, escape, x)
			prev, havePrev = x, true
		}
	}

	if uint32(len(out)) != dstSize {
		return nil, ErrProduction
	}
	return out, nil
}
