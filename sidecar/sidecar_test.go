package sidecar

import (
	"encoding/binary"
	"testing"
)

func TestWriteHeaderAndFinderInfoOnly(t *testing.T) {
	fi := FinderInfo{Type: 0x54455854, Creator: 0x74747874, Flags: 0x1234}
	buf := Write(fi, nil)

	if got := binary.BigEndian.Uint32(buf[0:4]); got != magic {
		t.Errorf("magic = %#x, want %#x", got, magic)
	}
	if got := binary.BigEndian.Uint32(buf[4:8]); got != version {
		t.Errorf("version = %#x, want %#x", got, version)
	}
	if got := binary.BigEndian.Uint16(buf[24:26]); got != 1 {
		t.Errorf("entry count = %d, want 1", got)
	}

	id := binary.BigEndian.Uint32(buf[26:30])
	off := binary.BigEndian.Uint32(buf[30:34])
	length := binary.BigEndian.Uint32(buf[34:38])
	if id != finderInfoID {
		t.Errorf("entry id = %d, want %d", id, finderInfoID)
	}
	if length != finderInfoSize {
		t.Errorf("entry length = %d, want %d", length, finderInfoSize)
	}
	block := buf[off : off+length]
	if typ := binary.BigEndian.Uint32(block[0:4]); typ != fi.Type {
		t.Errorf("type = %#x, want %#x", typ, fi.Type)
	}
	if creator := binary.BigEndian.Uint32(block[4:8]); creator != fi.Creator {
		t.Errorf("creator = %#x, want %#x", creator, fi.Creator)
	}
	if flags := binary.BigEndian.Uint16(block[8:10]); flags != fi.Flags {
		t.Errorf("flags = %#x, want %#x", flags, fi.Flags)
	}
}

func TestWriteWithResourceFork(t *testing.T) {
	fi := FinderInfo{Type: 1, Creator: 2, Flags: 3}
	rsrc := []byte("resource payload")
	buf := Write(fi, rsrc)

	if got := binary.BigEndian.Uint16(buf[24:26]); got != 2 {
		t.Fatalf("entry count = %d, want 2", got)
	}

	rid := binary.BigEndian.Uint32(buf[38:42])
	roff := binary.BigEndian.Uint32(buf[42:46])
	rlen := binary.BigEndian.Uint32(buf[46:50])
	if rid != resourceForkID {
		t.Errorf("second entry id = %d, want %d", rid, resourceForkID)
	}
	if rlen != uint32(len(rsrc)) {
		t.Errorf("resource length = %d, want %d", rlen, len(rsrc))
	}
	if got := string(buf[roff : roff+rlen]); got != string(rsrc) {
		t.Errorf("resource payload = %q, want %q", got, rsrc)
	}
}
