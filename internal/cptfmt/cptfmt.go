// Package cptfmt parses Compact Pro archives: a trailer-referenced
// directory offset, a recursive directory/file entry tree, and a
// per-fork pipeline of always-RLE with an optional LZH stage
// prepended (spec.md §4.7).
//
// Grounded on spec.md §4.7 directly; no teacher or pack file parses
// CPT (original_source/lib/formats/cpt.c is a doc-comment-only stub,
// confirmed by reading it). Reuses internal/cptrle and
// internal/cptlzh.
package cptfmt

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/macfileformats/peeler/internal/cptlzh"
	"github.com/macfileformats/peeler/internal/cptrle"
)

// Entry is one file pulled out of a CPT archive, with its
// directory-walk-order path already joined with "/".
type Entry struct {
	Name     string
	Type     uint32
	Creator  uint32
	Flags    uint16
	Data     []byte
	Resource []byte
}

var (
	ErrBadMagic       = errors.New("cptfmt: bad CPT magic")
	ErrMultiVolume    = errors.New("cptfmt: multi-volume CPT archives are not supported")
	ErrBadDirOffset   = errors.New("cptfmt: directory offset out of range")
	ErrEncrypted      = errors.New("cptfmt: encrypted entries are not supported")
	ErrTruncated      = errors.New("cptfmt: archive truncated")
)

const maxDirOffset = 256 << 20 // 256 MiB

// Detect reports whether src begins with a CPT initial header.
func Detect(src []byte) bool {
	return len(src) >= 8 && src[0] == 0x01 && src[1] == 0x01
}

// Decode parses a complete CPT archive into its entry list, in
// directory-walk order.
func Decode(src []byte) ([]Entry, error) {
	if len(src) < 8 {
		return nil, fmt.Errorf("cptfmt: %w: input too short", ErrTruncated)
	}
	if src[0] != 0x01 {
		return nil, ErrBadMagic
	}
	if src[1] != 0x01 {
		return nil, ErrMultiVolume
	}
	dirOffset := binary.BigEndian.Uint32(src[4:8])
	if dirOffset < 8 || dirOffset >= maxDirOffset || int(dirOffset) >= len(src) {
		return nil, ErrBadDirOffset
	}

	pos := int(dirOffset)
	if pos+4+2+1 > len(src) {
		return nil, fmt.Errorf("cptfmt: %w: directory header", ErrTruncated)
	}
	pos += 4 // 4-byte CRC, not validated.
	totalEntries := int(binary.BigEndian.Uint16(src[pos : pos+2]))
	pos += 2
	commentLen := int(src[pos])
	pos++
	if pos+commentLen > len(src) {
		return nil, fmt.Errorf("cptfmt: %w: comment", ErrTruncated)
	}
	pos += commentLen

	var entries []Entry
	walker := &walker{src: src}
	if _, err := walker.walkEntries(pos, totalEntries, "", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

type walker struct {
	src []byte
}

// walkEntries consumes exactly count entries starting at pos (a flat
// "consume C+1 entries from the parent's remaining total" recursion
// per spec.md §4.7), returning the position just past them.
func (w *walker) walkEntries(pos, count int, prefix string, out *[]Entry) (int, error) {
	for remaining := count; remaining > 0; remaining-- {
		if pos >= len(w.src) {
			return 0, fmt.Errorf("cptfmt: %w: entry", ErrTruncated)
		}
		nameLenByte := w.src[pos]
		isDir := nameLenByte&0x80 != 0
		nameLen := int(nameLenByte &^ 0x80)
		pos++
		if pos+nameLen > len(w.src) {
			return 0, fmt.Errorf("cptfmt: %w: entry name", ErrTruncated)
		}
		name := string(w.src[pos : pos+nameLen])
		pos += nameLen
		fullName := name
		if prefix != "" {
			fullName = prefix + "/" + name
		}

		if isDir {
			if pos+2 > len(w.src) {
				return 0, fmt.Errorf("cptfmt: %w: directory child count", ErrTruncated)
			}
			childCount := int(binary.BigEndian.Uint16(w.src[pos : pos+2]))
			pos += 2
			var err error
			pos, err = w.walkEntries(pos, childCount, fullName, out)
			if err != nil {
				return 0, err
			}
			remaining -= childCount
			continue
		}

		const fileFieldsLen = 45
		if pos+fileFieldsLen > len(w.src) {
			return 0, fmt.Errorf("cptfmt: %w: file entry fields", ErrTruncated)
		}
		f := w.src[pos : pos+fileFieldsLen]
		pos += fileFieldsLen

		fileOffset := binary.BigEndian.Uint32(f[1:5])
		typ := binary.BigEndian.Uint32(f[5:9])
		creator := binary.BigEndian.Uint32(f[9:13])
		// f[13:17] create date, f[17:21] modify date: unused.
		finderFlags := binary.BigEndian.Uint16(f[21:23])
		// f[23:27] data CRC: unused.
		flags := binary.BigEndian.Uint16(f[27:29])
		rsrcRawLen := binary.BigEndian.Uint32(f[29:33])
		dataRawLen := binary.BigEndian.Uint32(f[33:37])
		rsrcCompLen := binary.BigEndian.Uint32(f[37:41])
		dataCompLen := binary.BigEndian.Uint32(f[41:45])

		if flags&0x1 != 0 {
			return 0, ErrEncrypted
		}
		rsrcIsLZH := flags&0x2 != 0
		dataIsLZH := flags&0x4 != 0

		rsrcStart := int(fileOffset)
		dataStart := rsrcStart + int(rsrcCompLen)
		if dataStart+int(dataCompLen) > len(w.src) || rsrcStart < 0 {
			return 0, fmt.Errorf("cptfmt: %w: fork payload", ErrTruncated)
		}

		resource, err := decodeFork(w.src[rsrcStart:rsrcStart+int(rsrcCompLen)], rsrcRawLen, rsrcIsLZH)
		if err != nil {
			return 0, fmt.Errorf("cptfmt: resource fork: %w", err)
		}
		data, err := decodeFork(w.src[dataStart:dataStart+int(dataCompLen)], dataRawLen, dataIsLZH)
		if err != nil {
			return 0, fmt.Errorf("cptfmt: data fork: %w", err)
		}

		*out = append(*out, Entry{
			Name:     fullName,
			Type:     typ,
			Creator:  creator,
			Flags:    finderFlags,
			Data:     data,
			Resource: resource,
		})
	}
	return pos, nil
}

// decodeFork runs the always-RLE stage, with LZH prepended when the
// corresponding flag bit is set.
func decodeFork(compressed []byte, rawLen uint32, lzh bool) ([]byte, error) {
	rleInput := compressed
	if lzh {
		// LZH's own intermediate output length isn't recorded anywhere
		// in the directory entry (only the pipeline's final post-RLE
		// length is) so it runs to exhaustion of the compressed input.
		expanded, err := cptlzh.DecodeAll(compressed)
		if err != nil {
			return nil, fmt.Errorf("lzh stage: %w", err)
		}
		rleInput = expanded
	}
	out, err := cptrle.Decode(rleInput, rawLen)
	if err != nil {
		return nil, fmt.Errorf("rle stage: %w", err)
	}
	return out, nil
}
