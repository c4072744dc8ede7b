package peeler

import (
	"bytes"
	"encoding/gob"
)

// EncodeEntryList serializes a Peel result for storage in
// internal/decodecache, so a CLI driver can skip re-decoding an
// unchanged input on a later run.
func EncodeEntryList(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeEntryList reverses EncodeEntryList.
func DecodeEntryList(blob []byte) ([]Entry, error) {
	var entries []Entry
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}
