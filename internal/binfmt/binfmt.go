// Package binfmt decodes MacBinary: a sequence of 128-byte blocks
// carrying one file's header, data fork, and resource fork, each
// fork padded to a 128-byte boundary (spec.md §4.3).
//
// Grounded on spec.md §4.3 directly; no teacher or pack file parses
// MacBinary. Reuses internal/crc16.CCITT.
package binfmt

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/macfileformats/peeler/internal/crc16"
)

const blockSize = 128

// ErrBadHeader covers any of the fixed structural header checks
// failing (zero bytes, name length range, CRC).
var ErrBadHeader = errors.New("binfmt: invalid MacBinary header")

// Header is the parsed fixed-layout 128-byte MacBinary header.
type Header struct {
	Name    string
	Type    uint32
	Creator uint32
	Flags   uint16
	DataLen uint32
	RsrcLen uint32
}

// Decoded is the fully unwrapped content of one MacBinary file.
type Decoded struct {
	Header
	Data     []byte
	Resource []byte
}

// Probe is the cheap, pure detect() used by the format registry: the
// structural header checks from Decode, without fork extraction.
func Probe(src []byte) bool {
	if len(src) < blockSize {
		return false
	}
	h := src[:blockSize]
	if h[0] != 0 || h[74] != 0 {
		return false
	}
	nameLen := int(h[1])
	if nameLen < 1 || nameLen > 63 {
		return false
	}
	storedCRC := binary.BigEndian.Uint16(h[124:126])
	if h[82] == 0 {
		return true
	}
	return crc16.CCITT(h[:124]) == storedCRC
}

func padTo128(n uint32) uint32 {
	return (n + blockSize - 1) / blockSize * blockSize
}

// Decode parses a complete MacBinary stream into its header and
// both forks.
func Decode(src []byte) (*Decoded, error) {
	if len(src) < blockSize {
		return nil, fmt.Errorf("binfmt: %w: need %d bytes, have %d", ErrBadHeader, blockSize, len(src))
	}
	h := src[:blockSize]

	if h[0] != 0 || h[74] != 0 {
		return nil, fmt.Errorf("binfmt: %w: reserved byte nonzero", ErrBadHeader)
	}
	nameLen := int(h[1])
	if nameLen < 1 || nameLen > 63 {
		return nil, fmt.Errorf("binfmt: %w: name length %d out of range", ErrBadHeader, nameLen)
	}

	storedCRC := binary.BigEndian.Uint16(h[124:126])
	v1Fallback := h[82] == 0
	if !v1Fallback && crc16.CCITT(h[:124]) != storedCRC {
		return nil, fmt.Errorf("binfmt: %w: header CRC mismatch", ErrBadHeader)
	}

	name := string(h[2 : 2+nameLen])
	typ := binary.BigEndian.Uint32(h[65:69])
	creator := binary.BigEndian.Uint32(h[69:73])
	flags := uint16(h[73])<<8 | uint16(h[101])
	dataLen := binary.BigEndian.Uint32(h[83:87])
	rsrcLen := binary.BigEndian.Uint32(h[87:91])
	secondaryLen := binary.BigEndian.Uint16(h[120:122])

	pos := uint32(blockSize)
	if secondaryLen > 0 {
		pos += padTo128(uint32(secondaryLen))
	}

	data, pos, err := readPaddedFork(src, pos, dataLen)
	if err != nil {
		return nil, fmt.Errorf("binfmt: data fork: %w", err)
	}
	resource, _, err := readPaddedFork(src, pos, rsrcLen)
	if err != nil {
		return nil, fmt.Errorf("binfmt: resource fork: %w", err)
	}

	flags &^= 1<<0 | 1<<1 | 1<<8 | 1<<9 | 1<<10

	return &Decoded{
		Header: Header{
			Name:    name,
			Type:    typ,
			Creator: creator,
			Flags:   flags,
			DataLen: dataLen,
			RsrcLen: rsrcLen,
		},
		Data:     data,
		Resource: resource,
	}, nil
}

func readPaddedFork(src []byte, start, length uint32) (data []byte, next uint32, err error) {
	end := start + length
	if uint64(end) > uint64(len(src)) {
		return nil, 0, fmt.Errorf("fork extends past input end")
	}
	data = src[start:end]
	next = start + padTo128(length)
	return data, next, nil
}

// PeelWrapper implements spec.md §4.3's fork-selection heuristic for
// wrapper mode: when the data fork does not begin with a known
// StuffIt signature but a resource fork is present, return the
// resource fork instead.
func PeelWrapper(src []byte, looksLikeSIT func([]byte) bool) ([]byte, error) {
	d, err := Decode(src)
	if err != nil {
		return nil, err
	}
	if !looksLikeSIT(d.Data) && len(d.Resource) > 0 {
		return d.Resource, nil
	}
	return d.Data, nil
}
