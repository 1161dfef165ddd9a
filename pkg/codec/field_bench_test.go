//go:build bench
// +build bench

package codec

import (
	"bytes"
	"testing"

	"github.com/ssargent/pxdb/pkg/cursor"
)

func BenchmarkDecodeField(b *testing.B) {
	benchmarks := []struct {
		name  string
		field Field
		data  []byte
	}{
		{"alpha", Field{Type: Alpha, Size: 40}, append([]byte("some customer name"), bytes.Repeat([]byte{0}, 22)...)},
		{"int32", Field{Type: Int32, Size: 4}, encodeSigned(123456, 4)},
		{"date", Field{Type: Date, Size: 4}, encodeSigned(730120, 4)},
		{"timestamp", Field{Type: Timestamp, Size: 8}, encodeSignedFloat(63440000000000)},
		{"blob", Field{Type: Blob, Size: 20}, make([]byte, 20)},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := DecodeField(cursor.New(bm.data), bm.field); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
