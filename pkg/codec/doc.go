// Package codec decodes individual field values of Paradox data tables.
//
// A Paradox table declares its schema as a list of (type, size) pairs. Each
// record is a fixed-width run of bytes in which the fields follow one another
// in declared order. This package knows how wide each field is and how to turn
// its bytes into a Go value; walking headers and blocks is left to the
// paradox package.
//
// # Field Types
//
// Thirteen type tags are recognised:
//
//	0x01 Alpha          text, declared size bytes, zero padded
//	0x02 Date           4 bytes, days since 01.01.0001
//	0x03 Int16          2 bytes
//	0x04 Int32          4 bytes
//	0x06 Int64          8 bytes, surfaced as uint64
//	0x09 Logical        1 byte
//	0x0C MemoBlob       declared size bytes, not decoded
//	0x0D Blob           declared size bytes, not decoded
//	0x10 GraphicsBlob   declared size bytes, not decoded
//	0x14 Time           4 bytes, milliseconds since midnight
//	0x15 Timestamp      8 bytes, float milliseconds since 01.01.0001
//	0x16 AutoIncrement  4 bytes
//	0x18 Bytes          declared size bytes, not decoded
//
// Any other tag is reported as an *UnsupportedFieldTypeError.
//
// # Signed-Magnitude Numbers
//
// Numeric fields are stored big endian with an inverted sign flag in the top
// bit of the first byte: a set bit marks a positive value. DecodeSigned clears
// the flag, reads the remaining bits as an unsigned magnitude M and returns +M
// when the flag was set and -M when it was clear. An all-zero field therefore
// decodes to zero. Timestamps use the same rule over the bit pattern of an
// IEEE 754 double (DecodeSignedFloat).
//
// # Dates And Times
//
// Dates and timestamps outside 0001-01-01 .. 9999-12-31 are clamped to those
// bounds rather than reported as errors. All calendar values are in UTC.
//
// # Text
//
// Alpha values are returned as the raw bytes of the field with the NUL padding
// removed. The table header carries a DOS codepage; TextDecoder and DecodeText
// convert raw text for display.
//
// # Usage
//
//	c := cursor.New(recordBytes)
//	for _, f := range fields {
//	    v, err := codec.DecodeField(c, f)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(f.Name, v)
//	}
package codec
