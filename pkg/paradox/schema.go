package paradox

import (
	"github.com/cockroachdb/errors"
	"github.com/ssargent/pxdb/pkg/codec"
	"github.com/ssargent/pxdb/pkg/cursor"
)

// decodeSchema reads the field directory, the table name, the field names and
// the sort order text. The cursor must sit right after the fixed header.
func decodeSchema(c *cursor.Cursor, h *Header) ([]codec.Field, error) {
	limit := int(h.HeaderSize)
	fields := make([]codec.Field, 0, h.FieldsCount)
	for i := 0; i < int(h.FieldsCount); i++ {
		tag, err := c.Uint8()
		if err != nil {
			return nil, malformed(err, "field directory")
		}
		size, err := c.Uint8()
		if err != nil {
			return nil, malformed(err, "field directory")
		}
		ft, err := codec.ParseFieldType(tag)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", i)
		}
		fields = append(fields, codec.Field{Type: ft, Size: size})
	}

	// table name pointer and one pointer per field name; the names are read
	// from the literal strings that follow
	if err := c.Skip(4 + 4*len(fields)); err != nil {
		return nil, malformed(err, "field name pointers")
	}

	name, err := c.CString(limit)
	if err != nil {
		return nil, malformed(err, "table name")
	}
	h.TableName = name
	for c.Offset() < limit {
		b, err := c.PeekUint8()
		if err != nil || b != 0 {
			break
		}
		_ = c.Skip(1)
	}

	names := 0
	for i := range fields {
		name, err := c.CString(limit)
		if err != nil {
			break
		}
		fields[i].Name = name
		names++
	}
	if names != len(fields) {
		return nil, malformedf("read %d field names, want %d", names, len(fields))
	}

	if err := c.Skip(2 * len(fields)); err != nil {
		return nil, malformed(err, "field numbers")
	}
	h.SortOrderTxt, err = c.CString(limit)
	if err != nil {
		return nil, malformed(err, "sort order")
	}
	return fields, nil
}
