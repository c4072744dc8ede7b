package peeler

import "errors"

// Error kinds of the decoder pipeline. Every public decode operation
// either returns a valid result or an error — never both, never
// neither. The public operations do not wrap their errors in these
// values: they return the errors of the internal format and
// back-end packages (for example hqxfmt.ErrBadChar or
// sitfmt.ErrBadForkCRC) directly.
var (
	ErrShortInput    = errors.New("peeler: input too short")
	ErrSignature     = errors.New("peeler: signature or magic mismatch")
	ErrChecksum      = errors.New("peeler: CRC mismatch")
	ErrTruncated     = errors.New("peeler: truncated payload")
	ErrBitstream     = errors.New("peeler: invalid bitstream")
	ErrEncrypted     = errors.New("peeler: encrypted entries are not supported")
	ErrUnsupported   = errors.New("peeler: unsupported compression method")
	ErrMultiVolume   = errors.New("peeler: multi-volume archives are not supported")
	ErrOffsetOutOfRange = errors.New("peeler: fork or directory offset out of range")
	ErrTooDeep       = errors.New("peeler: wrapper recursion exceeded depth limit")
)
