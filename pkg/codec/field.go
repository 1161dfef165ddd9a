package codec

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// FieldType is the type tag stored in a table's field directory.
type FieldType uint8

// Known field type tags.
const (
	Alpha         FieldType = 0x01
	Date          FieldType = 0x02
	Int16         FieldType = 0x03
	Int32         FieldType = 0x04
	Int64         FieldType = 0x06
	Logical       FieldType = 0x09
	MemoBlob      FieldType = 0x0C
	Blob          FieldType = 0x0D
	GraphicsBlob  FieldType = 0x10
	Time          FieldType = 0x14
	Timestamp     FieldType = 0x15
	AutoIncrement FieldType = 0x16
	Bytes         FieldType = 0x18
)

var typeNames = map[FieldType]string{
	Alpha:         "text",
	Date:          "date",
	Int16:         "int16",
	Int32:         "int32",
	Int64:         "int64",
	Logical:       "bool",
	MemoBlob:      "mblob",
	Blob:          "blob",
	GraphicsBlob:  "gblob",
	Time:          "time",
	Timestamp:     "datetime",
	AutoIncrement: "autoincrement",
	Bytes:         "bytes",
}

// Valid reports whether t is one of the known tags.
func (t FieldType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// String returns the short type name used in listings, e.g. "int32".
func (t FieldType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(t))
}

// MarshalText encodes the type by name.
func (t FieldType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, &UnsupportedFieldTypeError{Tag: uint8(t)}
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (t *FieldType) UnmarshalText(text []byte) error {
	for ft, name := range typeNames {
		if name == string(text) {
			*t = ft
			return nil
		}
	}
	return errors.Newf("unknown field type %q", text)
}

// Width returns the number of record bytes a field of this type occupies.
// Numeric, date and time types have a fixed width; the others use the
// declared size.
func (t FieldType) Width(size uint8) int {
	switch t {
	case Logical:
		return 1
	case Int16:
		return 2
	case Date, Int32, Time, AutoIncrement:
		return 4
	case Int64, Timestamp:
		return 8
	default:
		return int(size)
	}
}

// Field describes one column of a table.
type Field struct {
	Type FieldType `json:"type"`
	Size uint8     `json:"size"`
	Name string    `json:"name"`
}

// Width returns the number of record bytes the field occupies.
func (f Field) Width() int {
	return f.Type.Width(f.Size)
}

func (f Field) String() string {
	return fmt.Sprintf("%s %s(%d)", f.Name, f.Type, f.Size)
}

// ErrUnsupportedFieldType matches every *UnsupportedFieldTypeError.
var ErrUnsupportedFieldType = errors.New("unsupported field type")

// UnsupportedFieldTypeError reports a type tag outside the known set.
type UnsupportedFieldTypeError struct {
	Tag uint8
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("unsupported field type 0x%02x", e.Tag)
}

// Is lets errors.Is(err, ErrUnsupportedFieldType) match.
func (e *UnsupportedFieldTypeError) Is(target error) bool {
	return target == ErrUnsupportedFieldType
}

// ParseFieldType validates a raw directory tag.
func ParseFieldType(tag uint8) (FieldType, error) {
	t := FieldType(tag)
	if !t.Valid() {
		return 0, &UnsupportedFieldTypeError{Tag: tag}
	}
	return t, nil
}
