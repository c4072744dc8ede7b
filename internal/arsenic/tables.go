package arsenic

// rndTable is the 256-entry randomization walk table, transcribed
// verbatim from the commented SIT_rndtable constant (the one piece of
// Arsenic grounding material that carries real historical byte
// values, unlike method 13's tables — see internal/lzss13's
// tables.go note).
var rndTable = [256]uint16{
	0xee, 0x56, 0xf8, 0xc3, 0x9d, 0x9f, 0xae, 0x2c,
	0xad, 0xcd, 0x24, 0x9d, 0xa6, 0x101, 0x18, 0xb9,
	0xa1, 0x82, 0x75, 0xe9, 0x9f, 0x55, 0x66, 0x6a,
	0x86, 0x71, 0xdc, 0x84, 0x56, 0x96, 0x56, 0xa1,
	0x84, 0x78, 0xb7, 0x32, 0x6a, 0x3, 0xe3, 0x2,
	0x11, 0x101, 0x8, 0x44, 0x83, 0x100, 0x43, 0xe3,
	0x1c, 0xf0, 0x86, 0x6a, 0x6b, 0xf, 0x3, 0x2d,
	0x86, 0x17, 0x7b, 0x10, 0xf6, 0x80, 0x78, 0x7a,
	0xa1, 0xe1, 0xef, 0x8c, 0xf6, 0x87, 0x4b, 0xa7,
	0xe2, 0x77, 0xfa, 0xb8, 0x81, 0xee, 0x77, 0xc0,
	0x9d, 0x29, 0x20, 0x27, 0x71, 0x12, 0xe0, 0x6b,
	0xd1, 0x7c, 0xa, 0x89, 0x7d, 0x87, 0xc4, 0x101,
	0xc1, 0x31, 0xaf, 0x38, 0x3, 0x68, 0x1b, 0x76,
	0x79, 0x3f, 0xdb, 0xc7, 0x1b, 0x36, 0x7b, 0xe2,
	0x63, 0x81, 0xee, 0xc, 0x63, 0x8b, 0x78, 0x38,
	0x97, 0x9b, 0xd7, 0x8f, 0xdd, 0xf2, 0xa3, 0x77,
	0x8c, 0xc3, 0x39, 0x20, 0xb3, 0x12, 0x11, 0xe,
	0x17, 0x42, 0x80, 0x2c, 0xc4, 0x92, 0x59, 0xc8,
	0xdb, 0x40, 0x76, 0x64, 0xb4, 0x55, 0x1a, 0x9e,
	0xfe, 0x5f, 0x6, 0x3c, 0x41, 0xef, 0xd4, 0xaa,
	0x98, 0x29, 0xcd, 0x1f, 0x2, 0xa8, 0x87, 0xd2,
	0xa0, 0x93, 0x98, 0xef, 0xc, 0x43, 0xed, 0x9d,
	0xc2, 0xeb, 0x81, 0xe9, 0x64, 0x23, 0x68, 0x1e,
	0x25, 0x57, 0xde, 0x9a, 0xcf, 0x7f, 0xe5, 0xba,
	0x41, 0xea, 0xea, 0x36, 0x1a, 0x28, 0x79, 0x20,
	0x5e, 0x18, 0x4e, 0x7c, 0x8e, 0x58, 0x7a, 0xef,
	0x91, 0x2, 0x93, 0xbb, 0x56, 0xa1, 0x49, 0x1b,
	0x79, 0x92, 0xf3, 0x58, 0x4f, 0x52, 0x9c, 0x2,
	0x77, 0xaf, 0x2a, 0x8f, 0x49, 0xd0, 0x99, 0x4d,
	0x98, 0x101, 0x60, 0x93, 0x100, 0x75, 0x31, 0xce,
	0x49, 0x20, 0x56, 0x57, 0xe2, 0xf5, 0x26, 0x2b,
	0x8a, 0xbf, 0xde, 0xd0, 0x83, 0x34, 0xf4, 0x17,
}
