// Package peeler extracts the contents of classic Macintosh archive
// and transport-encoding files (BinHex, MacBinary, StuffIt, Compact
// Pro), producing each contained file's data fork, resource fork, and
// Finder metadata.
package peeler

// Metadata is the Finder-relevant identity of one extracted file.
type Metadata struct {
	Name    string // filename, UTF-8-clean but opaque
	Type    uint32 // Mac type code
	Creator uint32 // Mac creator code
	Flags   uint16 // Finder flag bits
}

// Entry is one file pulled out of an archive or transport encoding:
// its metadata plus its two forks. Either fork may be empty.
type Entry struct {
	Metadata
	Data     []byte
	Resource []byte
}

// Format names returned by Detect.
const (
	FormatHQX = "hqx"
	FormatBIN = "bin"
	FormatSIT = "sit"
	FormatCPT = "cpt"
)
