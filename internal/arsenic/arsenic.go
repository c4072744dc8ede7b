// Package arsenic implements SIT method 15: an arithmetic-coded,
// move-to-front, Burrows-Wheeler-transformed pipeline with an
// optional randomization de-scramble and a final run-length
// expansion stage (spec.md §4.6).
//
// Grounded on internal/sit/arsenic.go's commented XAD pseudocode
// (SIT_Arsenic, SIT_getsym, SIT_getcode, SIT_update_model,
// SIT_reinit_model, SIT_init_model, SIT_dounmtf, SIT_unblocksort,
// SIT_write_and_unrle_and_unrnd), promoted from dead comments into a
// tested Go implementation operating on a complete input buffer
// instead of the teacher's xadInOut stream object. rndTable is
// transcribed verbatim from the commented SIT_rndtable constant.
package arsenic

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/macfileformats/peeler/internal/bitio"
)

// ErrBadSignature is returned when the stream header's two
// arithmetic-coded bytes don't decode to 'A' 's'.
var ErrBadSignature = errors.New("arsenic: bad stream signature")

// ErrUnexpectedEnd is returned when the end-of-stream flag is set
// before the declared number of bytes has been produced.
var ErrUnexpectedEnd = errors.New("arsenic: unexpected end of stream")

// ErrBlockOverflow is returned when a block's selector loop produces
// more bytes than the declared block capacity.
var ErrBlockOverflow = errors.New("arsenic: block exceeds declared capacity")

// ErrBadPrimaryIndex is returned when the BWT primary index is not a
// valid position within its block.
var ErrBadPrimaryIndex = errors.New("arsenic: BWT primary index out of range")

// ErrProduction is returned when the decoded stream produces more
// bytes than the container-declared length.
var ErrProduction = errors.New("arsenic: produced length does not match declared length")

type modelSym struct {
	sym     int
	cumfreq uint32
}

type model struct {
	increment, maxfreq, entries uint32
	syms                        []modelSym
}

func newModel(entries, start, increment, maxfreq uint32) *model {
	m := &model{increment: increment, maxfreq: maxfreq, entries: entries, syms: make([]modelSym, entries+1)}
	for i := uint32(0); i < entries; i++ {
		m.syms[i].sym = int(entries-1-i) + int(start)
	}
	reinitModel(m)
	return m
}

func reinitModel(m *model) {
	cumfreq := m.entries * m.increment
	for i := uint32(0); i <= m.entries; i++ {
		m.syms[i].cumfreq = cumfreq
		cumfreq -= m.increment
	}
}

func updateModel(m *model, symIndex int) {
	for i := 0; i < symIndex; i++ {
		m.syms[i].cumfreq += m.increment
	}
	if m.syms[0].cumfreq > m.maxfreq {
		for i := uint32(0); i < m.entries; i++ {
			m.syms[i].cumfreq -= m.syms[i+1].cumfreq
			m.syms[i].cumfreq++
			m.syms[i].cumfreq >>= 1
		}
		for i := int(m.entries) - 1; i >= 0; i-- {
			m.syms[i].cumfreq += m.syms[i+1].cumfreq
		}
	}
}

type decoder struct {
	br          *bitio.MSBReader
	rangeV, half, code uint32

	moveme  [256]byte
	inited  bool
}

func (d *decoder) getCode(symHigh, symLow, symTot uint32) error {
	renorm := d.rangeV / symTot
	lowIncr := renorm * symLow
	d.code -= lowIncr
	if symHigh == symTot {
		d.rangeV -= lowIncr
	} else {
		d.rangeV = (symHigh - symLow) * renorm
	}
	for d.rangeV <= d.half {
		d.rangeV <<= 1
		bit, err := d.br.ReadBit()
		if err != nil {
			return err
		}
		d.code = (d.code << 1) | uint32(bit)
	}
	return nil
}

func (d *decoder) getSym(m *model) (int, error) {
	total := m.syms[0].cumfreq
	freq := d.code / (d.rangeV / total)
	i := uint32(1)
	for ; i < m.entries; i++ {
		if m.syms[i].cumfreq <= freq {
			break
		}
	}
	sym := m.syms[i-1].sym
	if err := d.getCode(m.syms[i-1].cumfreq, m.syms[i].cumfreq, total); err != nil {
		return 0, err
	}
	updateModel(m, int(i-1))
	return sym, nil
}

// arithGetBits reads nbits through a binary (2-symbol) model, MSB
// first, accumulating into an unsigned value.
func (d *decoder) arithGetBits(m *model, nbits int) (uint32, error) {
	addme := uint32(1)
	accum := uint32(0)
	for ; nbits > 0; nbits-- {
		s, err := d.getSym(m)
		if err != nil {
			return 0, err
		}
		if s != 0 {
			accum += addme
		}
		addme += addme
	}
	return accum, nil
}

// dounmtf applies one move-to-front step. Pass -1 to (re)initialize
// the state, which it also does lazily on first use.
func (d *decoder) dounmtf(sym int) byte {
	if sym == -1 || !d.inited {
		for i := range d.moveme {
			d.moveme[i] = byte(i)
		}
		d.inited = true
	}
	if sym == -1 {
		return 0
	}
	result := d.moveme[sym]
	for i := sym; i > 0; i-- {
		d.moveme[i] = d.moveme[i-1]
	}
	d.moveme[0] = result
	return result
}

// unblocksort performs the inverse Burrows-Wheeler transform via the
// standard LF-mapping: count byte frequencies, compute cumulative
// bases, walk the block writing xform[base[c]+seen[c]++] = i, then
// follow the chain from lastIndex.
func unblocksort(block []byte, lastIndex uint32) []byte {
	n := len(block)
	var counts [256]uint32
	for _, b := range block {
		counts[b]++
	}
	var cumcounts [256]uint32
	var cum uint32
	for i := 0; i < 256; i++ {
		cumcounts[i] = cum
		cum += counts[i]
		counts[i] = 0
	}
	xform := make([]uint32, n)
	for i, b := range block {
		xform[cumcounts[b]+counts[b]] = uint32(i)
		counts[b]++
	}
	out := make([]byte, n)
	j := xform[lastIndex]
	for i := 0; i < n; i++ {
		out[i] = block[j]
		j = xform[j]
	}
	return out
}

// writeAndUnrleAndUnrnd walks the BWT-inverted (still final-RLE-
// encoded) block, optionally de-scrambling byte positions selected by
// rndTable, then expanding the trailing run-length stage: after four
// identical consecutive output bytes, the next input byte K encodes K
// additional copies (K == 0 means none).
func writeAndUnrleAndUnrnd(out *bytes.Buffer, block []byte, rnd bool) {
	rndIndex := 0
	rndCount := int(rndTable[rndIndex])
	count := 0
	var last byte
	for _, ch := range block {
		if rnd && rndCount == 0 {
			ch ^= 1
			rndIndex++
			if rndIndex == len(rndTable) {
				rndIndex = 0
			}
			rndCount = int(rndTable[rndIndex])
		}
		rndCount--

		if count == 4 {
			for j := byte(0); j < ch; j++ {
				out.WriteByte(last)
			}
			count = 0
		} else {
			out.WriteByte(ch)
			if ch != last {
				count = 0
				last = ch
			}
			count++
		}
	}
}

// Decode fully decompresses an Arsenic (SIT method 15) stream,
// producing exactly dstSize bytes.
func Decode(src []byte, dstSize uint32) ([]byte, error) {
	d := &decoder{
		br:    bitio.NewMSBReader(&byteSliceReader{src: src}),
		half:  1 << 24,
		rangeV: 1 << 25,
	}
	code, err := d.br.ReadBitsWide(26)
	if err != nil {
		return nil, err
	}
	d.code = code

	primary := newModel(2, 0, 1, 256)
	selector := newModel(11, 0, 8, 1024)
	groups := [7]*model{
		newModel(2, 2, 8, 1024),
		newModel(4, 4, 4, 1024),
		newModel(8, 8, 4, 1024),
		newModel(16, 16, 4, 1024),
		newModel(32, 32, 2, 1024),
		newModel(64, 64, 2, 1024),
		newModel(128, 128, 1, 1024),
	}

	a, err := d.arithGetBits(primary, 8)
	if err != nil {
		return nil, err
	}
	b, err := d.arithGetBits(primary, 8)
	if err != nil {
		return nil, err
	}
	if a != 'A' || b != 's' {
		return nil, ErrBadSignature
	}
	w, err := d.arithGetBits(primary, 4)
	if err != nil {
		return nil, err
	}
	blockBits := w + 9
	blockSize := uint32(1) << blockBits

	var out bytes.Buffer
	out.Grow(int(dstSize))

	eob, err := d.getSym(primary)
	if err != nil {
		return nil, err
	}

	for eob == 0 {
		rnd, err := d.getSym(primary)
		if err != nil {
			return nil, err
		}
		primaryIndex, err := d.arithGetBits(primary, int(blockBits))
		if err != nil {
			return nil, err
		}

		block := make([]byte, 0, blockSize)
		var repeatState, repeatCount uint32
		stop := false
		for !stop {
			sel, err := d.getSym(selector)
			if err != nil {
				return nil, err
			}
			var sym int
			switch {
			case sel == 0:
				sym = -1
				if repeatState == 0 {
					repeatState, repeatCount = 1, 1
				} else {
					repeatState += repeatState
					repeatCount += repeatState
				}
			case sel == 1:
				sym = -1
				if repeatState == 0 {
					repeatState, repeatCount = 1, 2
				} else {
					repeatState += repeatState
					repeatCount += repeatState
					repeatCount += repeatState
				}
			case sel == 2:
				sym = 1
			case sel == 10:
				stop = true
				sym = 0
			case sel >= 3 && sel <= 9:
				sym, err = d.getSym(groups[sel-3])
				if err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("arsenic: invalid selector %d", sel)
			}

			if repeatState != 0 && sym >= 0 {
				fillByte := d.dounmtf(0)
				for k := uint32(0); k < repeatCount; k++ {
					block = append(block, fillByte)
				}
				repeatState, repeatCount = 0, 0
			}
			if !stop && repeatState == 0 {
				block = append(block, d.dounmtf(sym))
			}
			if uint32(len(block)) > blockSize {
				return nil, ErrBlockOverflow
			}
		}

		if primaryIndex >= uint32(len(block)) {
			return nil, ErrBadPrimaryIndex
		}
		unsorted := unblocksort(block, primaryIndex)
		writeAndUnrleAndUnrnd(&out, unsorted, rnd != 0)

		eob, err = d.getSym(primary)
		if err != nil {
			return nil, err
		}
		reinitModel(selector)
		for _, g := range groups {
			reinitModel(g)
		}
		d.dounmtf(-1)
	}

	if _, err := d.arithGetBits(primary, 32); err != nil {
		return nil, err
	}

	result := out.Bytes()
	if uint32(len(result)) < dstSize {
		return nil, ErrUnexpectedEnd
	}
	if uint32(len(result)) != dstSize {
		return nil, ErrProduction
	}
	return result, nil
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

var errShortRead = errors.New("arsenic: unexpected end of bitstream")
