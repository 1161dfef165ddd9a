package paradox

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/pxdb/internal/pxtest"
	"github.com/ssargent/pxdb/pkg/codec"
	"github.com/ssargent/pxdb/pkg/cursor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeTableSchema(t *testing.T, table pxtest.Table) (*Header, []codec.Field, error) {
	t.Helper()
	c := cursor.New(table.Bytes())
	h, err := decodeHeader(c)
	require.NoError(t, err)
	fields, err := decodeSchema(c, h)
	return h, fields, err
}

func TestDecodeSchema(t *testing.T) {
	table := pxtest.Table{
		TableName:     "CUSTOMER.DB",
		SortOrderText: "intl",
		Fields: []codec.Field{
			{Type: codec.AutoIncrement, Size: 4, Name: "Id"},
			{Type: codec.Alpha, Size: 40, Name: "Name"},
			{Type: codec.Date, Size: 4, Name: "Since"},
			{Type: codec.MemoBlob, Size: 11, Name: "Notes"},
			{Type: codec.Timestamp, Size: 8, Name: "Updated"},
		},
	}

	h, fields, err := decodeTableSchema(t, table)
	require.NoError(t, err)
	assert.Equal(t, table.Fields, fields)
	assert.Equal(t, "CUSTOMER.DB", h.TableName)
	assert.Equal(t, "intl", h.SortOrderTxt)
}

func TestDecodeSchema_FewerNames(t *testing.T) {
	table := pxtest.Table{Fields: pxtest.OrdersFields(), DropNames: 1}

	_, _, err := decodeTableSchema(t, table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Contains(t, err.Error(), "read 2 field names, want 3")
}

func TestDecodeSchema_UnknownType(t *testing.T) {
	table := pxtest.Table{Fields: pxtest.OrdersFields(), RawTypes: []uint8{0x16, 0x05}}

	_, _, err := decodeTableSchema(t, table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFieldType))
	assert.False(t, errors.Is(err, ErrMalformed))

	var target *codec.UnsupportedFieldTypeError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, uint8(0x05), target.Tag)
}

func TestDecodeSchema_NoFields(t *testing.T) {
	table := pxtest.Table{RecordSize: 1}

	h, fields, err := decodeTableSchema(t, table)
	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.Equal(t, "TEST.DB", h.TableName)
}
