// Package pxtest builds synthetic Paradox data files for tests.
package pxtest

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ssargent/pxdb/pkg/codec"
)

const (
	unixEpochOrdinal = 719163
	fixedHeaderLen   = 120
	tableNameLen     = 79
)

// Row is one record's values in field order. Accepted Go types per field:
// Alpha string; Date time.Time or int64 days; Int16/Int32/Int64/AutoIncrement
// int64 (or int); Logical bool; Time time.Duration or int64 milliseconds;
// Timestamp time.Time or float64 milliseconds; blob kinds []byte or nil.
type Row []any

// Table describes a file to build. Zero values get sensible defaults.
type Table struct {
	FileType       *uint8 // nil: 2
	MaxTableSize   *uint8 // nil: 1
	RecordSize     uint16 // 0: sum of field widths
	HeaderSize     uint16 // 0: header length rounded up to 2048
	RecordsCount   *uint32
	WriteProtected uint8
	VersionCommon  uint8
	VersionData    uint16
	VersionDataDup *uint16
	AuxPassCount   uint8
	CryptInfo      uint32
	NextAutoInc    uint32
	Codepage       uint16
	SortOrder      uint8
	TableName      string
	SortOrderText  string
	Fields         []codec.Field
	RawTypes       []uint8 // overrides the directory type bytes
	Blocks         [][]Row // nil entry: empty block
	DropNames      int     // omit the last n field names and everything after them
	TrailingBytes  int     // garbage appended after the last block
}

// Uint8 returns a pointer for optional fields.
func Uint8(v uint8) *uint8 { return &v }

// Uint32 returns a pointer for optional fields.
func Uint32(v uint32) *uint32 { return &v }

// Uint16 returns a pointer for optional fields.
func Uint16(v uint16) *uint16 { return &v }

// EncodeSigned writes v in the format's signed-magnitude encoding.
func EncodeSigned(v int64, width int) []byte {
	m := uint64(v)
	neg := v < 0
	if neg {
		m = uint64(-v)
	}
	b := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(m)
		m >>= 8
	}
	if !neg {
		b[0] |= 0x80
	}
	return b
}

// EncodeSignedFloat writes f in the signed-magnitude float encoding.
func EncodeSignedFloat(f float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(math.Abs(f)))
	if f >= 0 {
		b[0] |= 0x80
	}
	return b
}

// DateOrdinal returns the day number stored for d.
func DateOrdinal(d time.Time) int64 {
	return d.Unix()/86400 + unixEpochOrdinal
}

// TimestampMillis returns the millisecond count stored for t.
func TimestampMillis(t time.Time) float64 {
	return float64(unixEpochOrdinal)*86400*1000 + float64(t.UnixMicro())/1000
}

// EncodeValue encodes one field value.
func EncodeValue(f codec.Field, v any) []byte {
	width := f.Width()
	switch f.Type {
	case codec.Alpha:
		b := make([]byte, width)
		copy(b, v.(string))
		return b
	case codec.Date:
		switch d := v.(type) {
		case time.Time:
			return EncodeSigned(DateOrdinal(d), width)
		default:
			return EncodeSigned(toInt64(v), width)
		}
	case codec.Int16, codec.Int32, codec.Int64, codec.AutoIncrement:
		return EncodeSigned(toInt64(v), width)
	case codec.Logical:
		if v.(bool) {
			return EncodeSigned(1, width)
		}
		return EncodeSigned(0, width)
	case codec.Time:
		if d, ok := v.(time.Duration); ok {
			return EncodeSigned(d.Milliseconds(), width)
		}
		return EncodeSigned(toInt64(v), width)
	case codec.Timestamp:
		if t, ok := v.(time.Time); ok {
			return EncodeSignedFloat(TimestampMillis(t))
		}
		return EncodeSignedFloat(v.(float64))
	default:
		b := make([]byte, width)
		if raw, ok := v.([]byte); ok {
			copy(b, raw)
		}
		return b
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case uint32:
		return int64(n)
	default:
		panic(fmt.Sprintf("pxtest: unsupported numeric %T", v))
	}
}

func (t *Table) defaults() {
	if t.FileType == nil {
		t.FileType = Uint8(2)
	}
	if t.MaxTableSize == nil {
		t.MaxTableSize = Uint8(1)
	}
	if t.VersionCommon == 0 {
		t.VersionCommon = 0x0C
	}
	if t.VersionData == 0 {
		t.VersionData = 0x010C
	}
	if t.Codepage == 0 {
		t.Codepage = 1252
	}
	if t.TableName == "" {
		t.TableName = "TEST.DB"
	}
	if t.SortOrderText == "" {
		t.SortOrderText = "ascii"
	}
	if t.RecordSize == 0 {
		for _, f := range t.Fields {
			t.RecordSize += uint16(f.Width())
		}
	}
}

func (t *Table) header() []byte {
	n := len(t.Fields)
	records := uint32(0)
	for _, rows := range t.Blocks {
		records += uint32(len(rows))
	}
	if t.RecordsCount != nil {
		records = *t.RecordsCount
	}
	dup := t.VersionData
	if t.VersionDataDup != nil {
		dup = *t.VersionDataDup
	}

	h := make([]byte, fixedHeaderLen)
	le := binary.LittleEndian
	le.PutUint16(h[0:], t.RecordSize)
	// header size patched below
	h[4] = *t.FileType
	h[5] = *t.MaxTableSize
	le.PutUint32(h[6:], records)
	le.PutUint16(h[12:], uint16(len(t.Blocks)))
	le.PutUint16(h[33:], uint16(n))
	h[41] = t.SortOrder
	h[56] = t.WriteProtected
	h[57] = t.VersionCommon
	h[61] = t.AuxPassCount
	le.PutUint32(h[64:], t.CryptInfo)
	le.PutUint32(h[73:], t.NextAutoInc)
	le.PutUint16(h[88:], t.VersionData)
	le.PutUint16(h[90:], dup)
	le.PutUint16(h[106:], t.Codepage)

	for i, f := range t.Fields {
		tag := uint8(f.Type)
		if i < len(t.RawTypes) {
			tag = t.RawTypes[i]
		}
		h = append(h, tag, f.Size)
	}
	h = le.AppendUint32(h, 0x1000)
	for i := range t.Fields {
		h = le.AppendUint32(h, uint32(0x2000+i))
	}

	name := make([]byte, tableNameLen)
	copy(name, t.TableName)
	h = append(h, name...)

	for _, f := range t.Fields[:n-min(t.DropNames, n)] {
		h = append(h, f.Name...)
		h = append(h, 0)
	}
	if t.DropNames > 0 {
		return h
	}
	for i := range t.Fields {
		h = le.AppendUint16(h, uint16(i+1))
	}
	h = append(h, t.SortOrderText...)
	return append(h, 0)
}

// Bytes encodes the table.
func (t Table) Bytes() []byte {
	t.defaults()
	h := t.header()

	headerSize := int(t.HeaderSize)
	if headerSize == 0 {
		headerSize = (len(h) + 2047) / 2048 * 2048
		if t.DropNames > 0 {
			headerSize = len(h)
		}
	}
	if headerSize > len(h) {
		h = append(h, make([]byte, headerSize-len(h))...)
	}
	binary.LittleEndian.PutUint16(h[2:], uint16(headerSize))
	out := h[:headerSize]

	blockSize := int(*t.MaxTableSize) * 1024
	for i, rows := range t.Blocks {
		out = append(out, t.block(i, rows, blockSize)...)
	}
	return append(out, make([]byte, t.TrailingBytes)...)
}

func (t *Table) block(num int, rows []Row, blockSize int) []byte {
	b := make([]byte, 6, blockSize)
	le := binary.LittleEndian
	le.PutUint16(b[0:], uint16(num+2))
	le.PutUint16(b[2:], uint16(num+1))
	if len(rows) == 0 {
		le.PutUint16(b[4:], uint16(-int16(t.RecordSize)))
	} else {
		le.PutUint16(b[4:], uint16((len(rows)-1)*int(t.RecordSize)))
	}

	for _, row := range rows {
		rec := make([]byte, 0, t.RecordSize)
		for i, f := range t.Fields {
			rec = append(rec, EncodeValue(f, row[i])...)
		}
		if len(rec) < int(t.RecordSize) {
			rec = append(rec, make([]byte, int(t.RecordSize)-len(rec))...)
		}
		b = append(b, rec...)
	}
	if len(b) > blockSize {
		panic(fmt.Sprintf("pxtest: block %d holds %d bytes, block size %d", num, len(b), blockSize))
	}
	return append(b, make([]byte, blockSize-len(b))...)
}

// WriteFile writes the table under t.TempDir() and returns its path.
func WriteFile(t testing.TB, name string, table Table) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, table.Bytes(), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// OrdersFields is the schema used by most tests: an autoincrement key, a
// customer name and an amount.
func OrdersFields() []codec.Field {
	return []codec.Field{
		{Type: codec.AutoIncrement, Size: 4, Name: "ID"},
		{Type: codec.Alpha, Size: 16, Name: "Customer"},
		{Type: codec.Int32, Size: 4, Name: "Amount"},
	}
}

// OrdersTable spreads the given keys across blocks of perBlock rows.
func OrdersTable(keys []int64, perBlock int) Table {
	t := Table{Fields: OrdersFields()}
	var block []Row
	for _, k := range keys {
		block = append(block, Row{k, fmt.Sprintf("cust-%d", k), k * 10})
		if len(block) == perBlock {
			t.Blocks = append(t.Blocks, block)
			block = nil
		}
	}
	if len(block) > 0 {
		t.Blocks = append(t.Blocks, block)
	}
	return t
}
