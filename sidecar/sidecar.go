// Package sidecar writes the companion-file format external callers
// use to persist a decoded entry's Finder metadata and resource fork
// alongside its data fork on a filesystem that has no native resource
// fork of its own (spec.md §6).
//
// Grounded on internal/appledouble.MakePrefix: same 26-byte fixed
// header shape and 12-byte descriptor table, trimmed to the two record
// kinds spec.md actually specifies (Finder info, resource fork)
// instead of AppleDouble's full ID space. Descriptors are written in
// that order (ID 9, then ID 2), not sorted by ID.
package sidecar

import "encoding/binary"

const (
	magic   = 0x00051607
	version = 0x00020000

	headerSize     = 26
	descriptorSize = 12

	// finderInfoID and resourceForkID are the only two entry kinds
	// spec.md's sidecar contract defines.
	finderInfoID  = 9
	resourceForkID = 2

	finderInfoSize = 32
)

// FinderInfo is the 32-byte block entry ID 9 carries: type, creator,
// flags, followed by 22 reserved zero bytes.
type FinderInfo struct {
	Type    uint32
	Creator uint32
	Flags   uint16
}

// Write serializes finder and resource (resource may be nil or empty,
// in which case only the Finder info record is emitted) into the
// sidecar wire format described in spec.md §6.
func Write(finder FinderInfo, resource []byte) []byte {
	n := 1
	if len(resource) > 0 {
		n++
	}

	buf := make([]byte, headerSize+descriptorSize*n)
	binary.BigEndian.PutUint32(buf[0:4], magic)
	binary.BigEndian.PutUint32(buf[4:8], version)
	binary.BigEndian.PutUint16(buf[24:26], uint16(n))

	finderBlock := make([]byte, finderInfoSize)
	binary.BigEndian.PutUint32(finderBlock[0:4], finder.Type)
	binary.BigEndian.PutUint32(finderBlock[4:8], finder.Creator)
	binary.BigEndian.PutUint16(finderBlock[8:10], finder.Flags)

	descOffset := headerSize
	putDescriptor(buf, descOffset, finderInfoID, uint32(len(buf)), uint32(len(finderBlock)))
	buf = append(buf, finderBlock...)

	if len(resource) > 0 {
		putDescriptor(buf, descOffset+descriptorSize, resourceForkID, uint32(len(buf)), uint32(len(resource)))
		buf = append(buf, resource...)
	}

	return buf
}

func putDescriptor(buf []byte, at int, id, offset, length uint32) {
	binary.BigEndian.PutUint32(buf[at:at+4], id)
	binary.BigEndian.PutUint32(buf[at+4:at+8], offset)
	binary.BigEndian.PutUint32(buf[at+8:at+12], length)
}
