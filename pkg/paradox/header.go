package paradox

import (
	"github.com/cockroachdb/errors"
	"github.com/ssargent/pxdb/pkg/cursor"
)

// File type tags.
const (
	FileTypeIndexed    = 0
	FileTypeNonIndexed = 2
)

const maxTableSizeLimit = 32

// Header holds the table metadata stored ahead of the data blocks.
type Header struct {
	RecordSize     uint16 `json:"record_size"`
	HeaderSize     uint16 `json:"header_size"`
	FileType       uint8  `json:"file_type"`
	MaxTableSize   uint8  `json:"max_table_size"`
	RecordsCount   uint32 `json:"records_count"`
	FieldsCount    uint16 `json:"fields_count"`
	SortOrder      uint8  `json:"sort_order"`
	WriteProtected bool   `json:"write_protected"`
	VersionCommon  uint8  `json:"version_common"`
	NextAutoInc    uint32 `json:"next_auto_inc"`
	VersionData    uint16 `json:"version_data"`
	// Codepage as for DOS interrupt 0x21 function 0x66.
	Codepage     uint16 `json:"codepage"`
	TableName    string `json:"table_name"`
	SortOrderTxt string `json:"sort_order_txt"`
}

// BlockSize returns the size in bytes of one data block.
func (h *Header) BlockSize() int {
	return int(h.MaxTableSize) * 1024
}

// headerReader reads a run of little-endian fields, keeping the first error.
type headerReader struct {
	c   *cursor.Cursor
	err error
}

func (r *headerReader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	var v uint8
	v, r.err = r.c.Uint8()
	return v
}

func (r *headerReader) u16() uint16 {
	if r.err != nil {
		return 0
	}
	var v uint16
	v, r.err = r.c.Uint16()
	return v
}

func (r *headerReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	var v uint32
	v, r.err = r.c.Uint32()
	return v
}

func (r *headerReader) skip(n int) {
	if r.err != nil {
		return
	}
	r.err = r.c.Skip(n)
}

// decodeHeader reads the common header and the data file header.
func decodeHeader(c *cursor.Cursor) (*Header, error) {
	h := &Header{}
	r := &headerReader{c: c}

	h.RecordSize = r.u16()
	h.HeaderSize = r.u16()
	h.FileType = r.u8()
	if r.err == nil && h.FileType != FileTypeIndexed && h.FileType != FileTypeNonIndexed {
		return nil, malformedf("file type %d", h.FileType)
	}
	h.MaxTableSize = r.u8()
	if r.err == nil && (h.MaxTableSize < 1 || h.MaxTableSize > maxTableSizeLimit) {
		return nil, malformedf("max table size %d", h.MaxTableSize)
	}
	h.RecordsCount = r.u32()
	// next block, file blocks, first block, last block, unknown
	r.skip(2 * 5)
	// rebuild flag, index field number
	r.skip(2)
	// primary index pointer, unknown
	r.skip(4 * 2)
	r.skip(3)
	h.FieldsCount = r.u16()
	// primary key fields
	r.skip(2)
	// encryption
	r.skip(4)
	h.SortOrder = r.u8()
	// rebuild flag, unknown, change count, unknown, unknown
	r.skip(1 + 2 + 1 + 1 + 1)
	// table name and field list pointers
	r.skip(4 * 2)

	protected := r.u8()
	if r.err == nil && protected > 1 {
		return nil, malformedf("write protection flag %d", protected)
	}
	h.WriteProtected = protected == 1
	h.VersionCommon = r.u8()
	r.skip(2 + 1)
	if aux := r.u8(); r.err == nil && aux != 0 {
		return nil, errors.Wrapf(ErrEncrypted, "auxiliary pass count %d", aux)
	}
	r.skip(2)
	if crypt := r.u32(); r.err == nil && crypt != 0 {
		return nil, errors.Wrapf(ErrEncrypted, "crypt info pointer 0x%x", crypt)
	}
	// crypt info end, unknown
	r.skip(4 + 1)
	h.NextAutoInc = r.u32()
	// unknown, index update flag, unknown[5], unknown, unknown
	r.skip(2 + 1 + 5 + 1 + 2)

	h.VersionData = r.u16()
	if dup := r.u16(); r.err == nil && dup != h.VersionData {
		return nil, malformedf("data header version 0x%04x, duplicate 0x%04x", h.VersionData, dup)
	}
	r.skip(4 + 4 + 2 + 2 + 2)
	h.Codepage = r.u16()
	r.skip(4 + 2 + 6)

	if r.err != nil {
		return nil, malformed(r.err, "header")
	}
	if h.RecordSize == 0 {
		return nil, malformedf("record size 0")
	}
	return h, nil
}
