package store

import (
	"encoding/binary"
	"hash/crc32"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/s2"
)

// ErrCorruption is returned when a stored entry fails its checksum or cannot
// be decompressed.
var ErrCorruption = errors.New("mirror entry corrupted")

const (
	entryHeaderSize = 13

	flagCompressed uint8 = 1 << 0

	// values at or below this size are stored as is
	compressThreshold = 256
)

// Entry is one framed value in the mirror.
//
// Format: [CRC32(4)][KeySize(4)][ValueSize(4)][Flags(1)][Key][Value]
//
// The checksum covers everything after itself, with the value as stored.
type Entry struct {
	CRC32     uint32
	KeySize   uint32
	ValueSize uint32
	Flags     uint8
	Key       []byte
	Value     []byte
}

// Compressed reports whether the stored value is s2 compressed.
func (e *Entry) Compressed() bool {
	return e.Flags&flagCompressed != 0
}

// Size returns the encoded length of the entry.
func (e *Entry) Size() int {
	return entryHeaderSize + int(e.KeySize) + int(e.ValueSize)
}

// EncodeEntry frames key and value, compressing large values.
func EncodeEntry(key, value []byte) ([]byte, error) {
	if uint64(len(key)) > math.MaxUint32 || uint64(len(value)) > math.MaxUint32 {
		return nil, errors.Newf("entry too large: key %d bytes, value %d bytes", len(key), len(value))
	}

	e := &Entry{Key: key, Value: value}
	if len(value) > compressThreshold {
		if packed := s2.Encode(nil, value); len(packed) < len(value) {
			e.Value = packed
			e.Flags |= flagCompressed
		}
	}
	e.KeySize = uint32(len(e.Key))
	e.ValueSize = uint32(len(e.Value))
	e.CRC32 = e.checksum()

	buf := make([]byte, e.Size())
	binary.LittleEndian.PutUint32(buf[0:], e.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], e.KeySize)
	binary.LittleEndian.PutUint32(buf[8:], e.ValueSize)
	buf[12] = e.Flags
	copy(buf[entryHeaderSize:], e.Key)
	copy(buf[entryHeaderSize+len(e.Key):], e.Value)
	return buf, nil
}

// DecodeEntry parses and verifies a framed entry. Value is returned
// decompressed while Flags and ValueSize describe the stored form. Key aliases
// data.
func DecodeEntry(data []byte) (*Entry, error) {
	if len(data) < entryHeaderSize {
		return nil, errors.Wrapf(ErrCorruption, "entry of %d bytes is shorter than its header", len(data))
	}

	e := &Entry{
		CRC32:     binary.LittleEndian.Uint32(data[0:]),
		KeySize:   binary.LittleEndian.Uint32(data[4:]),
		ValueSize: binary.LittleEndian.Uint32(data[8:]),
		Flags:     data[12],
	}
	end := uint64(entryHeaderSize) + uint64(e.KeySize) + uint64(e.ValueSize)
	if uint64(len(data)) < end {
		return nil, errors.Wrapf(ErrCorruption, "entry of %d bytes, sizes need %d", len(data), end)
	}
	keyEnd := entryHeaderSize + int(e.KeySize)
	e.Key = data[entryHeaderSize:keyEnd]
	e.Value = data[keyEnd:int(end)]

	if sum := e.checksum(); sum != e.CRC32 {
		return nil, errors.Wrapf(ErrCorruption, "crc32 mismatch: stored %08x, computed %08x", e.CRC32, sum)
	}

	if e.Compressed() {
		value, err := s2.Decode(nil, e.Value)
		if err != nil {
			return nil, errors.Wrapf(errors.Mark(err, ErrCorruption), "decompress %q", e.Key)
		}
		e.Value = value
	}
	return e, nil
}

func (e *Entry) checksum() uint32 {
	var hdr [9]byte
	binary.LittleEndian.PutUint32(hdr[0:], e.KeySize)
	binary.LittleEndian.PutUint32(hdr[4:], e.ValueSize)
	hdr[8] = e.Flags

	crc := crc32.NewIEEE()
	_, _ = crc.Write(hdr[:])
	_, _ = crc.Write(e.Key)
	_, _ = crc.Write(e.Value)
	return crc.Sum32()
}
