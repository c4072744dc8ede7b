// Package crc16 implements the two CRC-16 variants the classic
// Macintosh archive formats use: the non-reflected CCITT polynomial
// (HQX, BIN) and the reflected IBM polynomial (SIT).
//
// Grounded on internal/sit/crc16.go's reflected table-driven updater;
// the non-reflected CCITT table is added here because HQX/BIN need it
// and the teacher's file only ever built the SIT variant.
package crc16

// CCITT is CRC-16/CCITT: poly 0x1021, init 0, no reflection. Used by
// HQX and BIN. Self-checking property: CCITT(content || big-endian
// stored-CRC) == 0.
var ccittTable [256]uint16

// IBM is CRC-16/IBM-reflected: poly 0xA001, init 0, byte-reflected
// table. Used by SIT.
var ibmTable [256]uint16

func init() {
	for i := range uint16(256) {
		k := i << 8
		for range 8 {
			if k&0x8000 != 0 {
				k = (k << 1) ^ 0x1021
			} else {
				k <<= 1
			}
		}
		ccittTable[i] = k
	}

	for i := range uint16(256) {
		k := i
		for range 8 {
			if k&1 != 0 {
				k = (k >> 1) ^ 0xa001
			} else {
				k >>= 1
			}
		}
		ibmTable[i] = k
	}
}

// CCITTUpdate folds buf into a running CCITT checksum.
func CCITTUpdate(check uint16, buf []byte) uint16 {
	for _, b := range buf {
		check = ccittTable[byte(check>>8)^b] ^ (check << 8)
	}
	return check
}

// CCITT computes the CRC-16/CCITT of buf from a zero initial value.
func CCITT(buf []byte) uint16 {
	return CCITTUpdate(0, buf)
}

// IBMUpdate folds buf into a running reflected-IBM checksum.
func IBMUpdate(check uint16, buf []byte) uint16 {
	for _, b := range buf {
		check = ibmTable[byte(check)^b] ^ check>>8
	}
	return check
}

// IBM computes the CRC-16/IBM-reflected of buf from a zero initial value.
func IBM(buf []byte) uint16 {
	return IBMUpdate(0, buf)
}
