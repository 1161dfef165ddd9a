package store

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_EncodeDecode(t *testing.T) {
	testCases := []struct {
		name       string
		key        []byte
		value      []byte
		compressed bool
	}{
		{"simple", []byte("orders/1"), []byte(`[1,"cust-1",10]`), false},
		{"empty key", []byte{}, []byte("v"), false},
		{"empty value", []byte("k"), []byte{}, false},
		{"binary", []byte{0x00, 0x01}, []byte{0xFF, 0xFE, 0xFD}, false},
		{"at threshold", []byte("k"), bytes.Repeat([]byte("a"), compressThreshold), false},
		{"large repetitive", []byte("k"), bytes.Repeat([]byte("row,"), 4096), true},
		{"unicode", []byte("ключ"), []byte("значение 🎯"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeEntry(tc.key, tc.value)
			require.NoError(t, err)

			e, err := DecodeEntry(encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.compressed, e.Compressed())
			assert.Equal(t, len(encoded), e.Size())
			assert.True(t, bytes.Equal(tc.key, e.Key))
			assert.True(t, bytes.Equal(tc.value, e.Value))
			if tc.compressed {
				assert.Less(t, len(encoded), len(tc.value))
			}
		})
	}
}

func TestEntry_Corruption(t *testing.T) {
	good, err := EncodeEntry([]byte("key"), []byte("value"))
	require.NoError(t, err)

	testCases := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"short header", func(b []byte) []byte { return b[:entryHeaderSize-1] }},
		{"truncated value", func(b []byte) []byte { return b[:len(b)-1] }},
		{"flipped value bit", func(b []byte) []byte { b[len(b)-1] ^= 0x01; return b }},
		{"flipped crc", func(b []byte) []byte { b[0] ^= 0xFF; return b }},
		{"oversized key", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[4:], 1<<31); return b }},
		{"flag set on plain value", func(b []byte) []byte { b[12] = flagCompressed; return b }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.mutate(append([]byte(nil), good...))
			_, err := DecodeEntry(data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorruption), "got %v", err)
		})
	}
}

func TestEntry_BadCompressedPayload(t *testing.T) {
	// a valid frame whose payload claims compression but is not s2 data
	e := &Entry{Key: []byte("k"), Value: []byte{0xFF, 0xFF, 0xFF, 0xFF}, Flags: flagCompressed}
	e.KeySize = uint32(len(e.Key))
	e.ValueSize = uint32(len(e.Value))
	e.CRC32 = e.checksum()

	buf := make([]byte, e.Size())
	binary.LittleEndian.PutUint32(buf[0:], e.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], e.KeySize)
	binary.LittleEndian.PutUint32(buf[8:], e.ValueSize)
	buf[12] = e.Flags
	copy(buf[entryHeaderSize:], e.Key)
	copy(buf[entryHeaderSize+1:], e.Value)

	_, err := DecodeEntry(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruption))
}
