package sitfmt

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/macfileformats/peeler/internal/crc16"
)

func buildClassicSingleEntryRawCopy(t *testing.T, name string, data []byte) []byte {
	t.Helper()
	header := make([]byte, 22)
	copy(header[0:4], "SIT!")
	binary.BigEndian.PutUint16(header[4:6], 1)
	copy(header[10:14], "rLau")

	entry := make([]byte, classicHeaderSize)
	entry[2] = byte(len(name))
	copy(entry[3:], name)
	binary.BigEndian.PutUint32(entry[66:70], 0x54455854) // "TEXT"
	binary.BigEndian.PutUint32(entry[88:92], uint32(len(data)))
	binary.BigEndian.PutUint32(entry[96:100], uint32(len(data)))
	binary.BigEndian.PutUint16(entry[100:102], crc16.IBM(nil))
	binary.BigEndian.PutUint16(entry[102:104], crc16.IBM(data))

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(entry)
	buf.Write(data)
	return buf.Bytes()
}

func TestDecodeClassicSingleEntryRawCopy(t *testing.T) {
	src := buildClassicSingleEntryRawCopy(t, "f", []byte("hello"))
	entries, err := Decode(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Name != "f" {
		t.Errorf("name = %q", e.Name)
	}
	if e.Type != 0x54455854 {
		t.Errorf("type = %#x", e.Type)
	}
	if !bytes.Equal(e.Data, []byte("hello")) {
		t.Errorf("data = %q", e.Data)
	}
	if len(e.Resource) != 0 {
		t.Errorf("resource = %q, want empty", e.Resource)
	}
}

func TestDecodeClassicBadForkCRCFails(t *testing.T) {
	src := buildClassicSingleEntryRawCopy(t, "f", []byte("hello"))
	// Corrupt the data fork CRC field.
	src[22+102] ^= 0xFF
	if _, err := Decode(src); err == nil {
		t.Fatal("expected a CRC error")
	}
}

func TestDecodeFolderScopingPrefixesNames(t *testing.T) {
	header := make([]byte, 22)
	copy(header[0:4], "SIT!")
	binary.BigEndian.PutUint16(header[4:6], 3)
	copy(header[10:14], "rLau")

	dirOpen := make([]byte, classicHeaderSize)
	dirOpen[0] = 0x20
	dirOpen[1] = 0x20
	dirName := "sub"
	dirOpen[2] = byte(len(dirName))
	copy(dirOpen[3:], dirName)

	data := []byte("xyz")
	fileEntry := make([]byte, classicHeaderSize)
	fileEntry[2] = 1
	copy(fileEntry[3:], "f")
	binary.BigEndian.PutUint32(fileEntry[88:92], uint32(len(data)))
	binary.BigEndian.PutUint32(fileEntry[96:100], uint32(len(data)))
	binary.BigEndian.PutUint16(fileEntry[100:102], crc16.IBM(nil))
	binary.BigEndian.PutUint16(fileEntry[102:104], crc16.IBM(data))

	dirClose := make([]byte, classicHeaderSize)
	dirClose[0] = 0x21
	dirClose[1] = 0x21

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(dirOpen)
	buf.Write(fileEntry)
	buf.Write(data)
	buf.Write(dirClose)

	entries, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Name != "sub/f" {
		t.Errorf("name = %q, want %q", entries[0].Name, "sub/f")
	}
}

func TestDetectOffsetPrefersEarlierMatch(t *testing.T) {
	src := buildClassicSingleEntryRawCopy(t, "f", []byte("hello"))
	// A v5 signature pair after the classic archive is a second, later
	// match; the classic one comes first and must win.
	v5 := v5FirstLiteral + string(make([]byte, 20)) + v5SecondLiteral
	junk := append(append([]byte("junkjunkjunk"), src...), v5...)
	off, ok := DetectOffset(junk)
	if !ok {
		t.Fatal("expected a detection")
	}
	if off != len("junkjunkjunk") {
		t.Errorf("offset = %d, want %d", off, len("junkjunkjunk"))
	}
}

func TestDecodeNoSignatureFails(t *testing.T) {
	if _, err := Decode([]byte("not an archive")); err != ErrBadSignature {
		t.Fatalf("got %v, want ErrBadSignature", err)
	}
}
