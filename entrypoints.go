package peeler

import (
	"github.com/macfileformats/peeler/internal/binfmt"
	"github.com/macfileformats/peeler/internal/cptfmt"
	"github.com/macfileformats/peeler/internal/hqxfmt"
	"github.com/macfileformats/peeler/internal/sitfmt"
)

// PeelHQX decodes a BinHex 4.0 stream and applies the fork-selection
// heuristic (spec.md §6): when the data fork isn't itself StuffIt and
// a resource fork is present, the resource fork is returned instead.
func PeelHQX(buf []byte) ([]byte, error) {
	d, err := hqxfmt.Decode(buf)
	if err != nil {
		return nil, err
	}
	if len(d.Resource) > 0 && !looksLikeSIT(d.Data) {
		return d.Resource, nil
	}
	return d.Data, nil
}

// PeelHQXFile decodes a BinHex 4.0 stream into a single Entry with
// both forks intact.
func PeelHQXFile(buf []byte) (Entry, error) {
	d, err := hqxfmt.Decode(buf)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Metadata: Metadata{Name: d.Name, Type: d.Type, Creator: d.Creator, Flags: d.Flags},
		Data:     d.Data,
		Resource: d.Resource,
	}, nil
}

// PeelBIN decodes a MacBinary stream and applies the fork-selection
// heuristic (spec.md §4.3).
func PeelBIN(buf []byte) ([]byte, error) {
	return binfmt.PeelWrapper(buf, looksLikeSIT)
}

// PeelBINFile decodes a MacBinary stream into a single Entry with
// both forks untouched.
func PeelBINFile(buf []byte) (Entry, error) {
	d, err := binfmt.Decode(buf)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Metadata: Metadata{Name: d.Name, Type: d.Type, Creator: d.Creator, Flags: d.Flags},
		Data:     d.Data,
		Resource: d.Resource,
	}, nil
}

// PeelSIT decodes a classic or v5 StuffIt archive into its entry
// list.
func PeelSIT(buf []byte) ([]Entry, error) {
	es, err := sitfmt.Decode(buf)
	if err != nil {
		return nil, err
	}
	return fromSIT(es), nil
}

// PeelCPT decodes a Compact Pro archive into its entry list.
func PeelCPT(buf []byte) ([]Entry, error) {
	es, err := cptfmt.Decode(buf)
	if err != nil {
		return nil, err
	}
	return fromCPT(es), nil
}
