package codec

import (
	"encoding/binary"
	"math"
)

const signFlag = 0x80

// DecodeSigned decodes a big-endian signed-magnitude integer of 1 to 8 bytes.
// A set top bit means positive. The magnitude is the big-endian value with
// the top bit cleared.
func DecodeSigned(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	m := uint64(b[0] &^ signFlag)
	for _, x := range b[1:] {
		m = m<<8 | uint64(x)
	}
	if b[0]&signFlag != 0 {
		return int64(m)
	}
	return -int64(m)
}

// DecodeSignedFloat applies the signed-magnitude rule to the bit pattern of a
// big-endian float64.
func DecodeSignedFloat(b []byte) float64 {
	bits := binary.BigEndian.Uint64(b)
	f := math.Float64frombits(bits &^ (uint64(signFlag) << 56))
	if b[0]&signFlag != 0 {
		return f
	}
	return -f
}
