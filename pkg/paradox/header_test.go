package paradox

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/pxdb/internal/pxtest"
	"github.com/ssargent/pxdb/pkg/cursor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeader(t *testing.T) {
	table := pxtest.OrdersTable([]int64{1, 2, 3}, 10)
	table.NextAutoInc = 4
	table.SortOrder = 0x4C
	table.Codepage = 866
	table.WriteProtected = 1

	c := cursor.New(table.Bytes())
	h, err := decodeHeader(c)
	require.NoError(t, err)
	assert.Equal(t, 120, c.Offset())

	assert.Equal(t, uint16(24), h.RecordSize)
	assert.Equal(t, uint16(2048), h.HeaderSize)
	assert.Equal(t, uint8(FileTypeNonIndexed), h.FileType)
	assert.Equal(t, uint8(1), h.MaxTableSize)
	assert.Equal(t, 1024, h.BlockSize())
	assert.Equal(t, uint32(3), h.RecordsCount)
	assert.Equal(t, uint16(3), h.FieldsCount)
	assert.Equal(t, uint8(0x4C), h.SortOrder)
	assert.True(t, h.WriteProtected)
	assert.Equal(t, uint8(0x0C), h.VersionCommon)
	assert.Equal(t, uint32(4), h.NextAutoInc)
	assert.Equal(t, uint16(0x010C), h.VersionData)
	assert.Equal(t, uint16(866), h.Codepage)
}

func TestDecodeHeader_Rejects(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*pxtest.Table)
		want   error
	}{
		{"file type 1", func(tb *pxtest.Table) { tb.FileType = pxtest.Uint8(1) }, ErrMalformed},
		{"file type 3", func(tb *pxtest.Table) { tb.FileType = pxtest.Uint8(3) }, ErrMalformed},
		{"max table size 0", func(tb *pxtest.Table) { tb.MaxTableSize = pxtest.Uint8(0) }, ErrMalformed},
		{"max table size 33", func(tb *pxtest.Table) { tb.MaxTableSize = pxtest.Uint8(33) }, ErrMalformed},
		{"write protection 2", func(tb *pxtest.Table) { tb.WriteProtected = 2 }, ErrMalformed},
		{"version mismatch", func(tb *pxtest.Table) { tb.VersionDataDup = pxtest.Uint16(0x010B) }, ErrMalformed},
		{"aux password", func(tb *pxtest.Table) { tb.AuxPassCount = 1 }, ErrEncrypted},
		{"crypt info", func(tb *pxtest.Table) { tb.CryptInfo = 0xDEAD }, ErrEncrypted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			table := pxtest.Table{Fields: pxtest.OrdersFields()}
			tc.modify(&table)

			_, err := Decode(context.Background(), table.Bytes())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			if tc.want == ErrEncrypted {
				assert.False(t, errors.Is(err, ErrMalformed))
			}
		})
	}
}

func TestDecodeHeader_Accepts(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*pxtest.Table)
	}{
		{"indexed file type", func(tb *pxtest.Table) { tb.FileType = pxtest.Uint8(FileTypeIndexed) }},
		{"largest blocks", func(tb *pxtest.Table) { tb.MaxTableSize = pxtest.Uint8(32) }},
		{"write protected", func(tb *pxtest.Table) { tb.WriteProtected = 1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			table := pxtest.Table{Fields: pxtest.OrdersFields()}
			tc.modify(&table)

			db, err := Decode(context.Background(), table.Bytes())
			require.NoError(t, err)
			assert.Empty(t, db.Records)
		})
	}
}

func TestDecodeHeader_Truncated(t *testing.T) {
	data := pxtest.Table{Fields: pxtest.OrdersFields()}.Bytes()

	for _, n := range []int{0, 1, 5, 60, 119} {
		_, err := decodeHeader(cursor.New(data[:n]))
		require.Error(t, err, "length %d", n)
		assert.True(t, errors.Is(err, ErrMalformed), "length %d", n)
		assert.True(t, errors.Is(err, cursor.ErrTruncated), "length %d", n)
	}
}

func TestDecodeHeader_ZeroRecordSize(t *testing.T) {
	table := pxtest.Table{Fields: pxtest.OrdersFields()}
	data := table.Bytes()
	data[0], data[1] = 0, 0

	_, err := decodeHeader(cursor.New(data))
	assert.True(t, errors.Is(err, ErrMalformed))
}
