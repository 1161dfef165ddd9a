//go:build bench
// +build bench

package paradox

import (
	"context"
	"testing"

	"github.com/ssargent/pxdb/internal/pxtest"
)

func BenchmarkDecode(b *testing.B) {
	keys := make([]int64, 4000)
	for i := range keys {
		keys[i] = int64(i + 1)
	}
	data := pxtest.OrdersTable(keys, 40).Bytes()

	benchmarks := []struct {
		name string
		opts []Option
	}{
		{"full", nil},
		{"resume_tail", []Option{WithResumeFrom(3900)}},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Decode(context.Background(), data, bm.opts...); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
