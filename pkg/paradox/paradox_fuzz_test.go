//go:build fuzz
// +build fuzz

package paradox

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/pxdb/internal/pxtest"
)

// FuzzDecode checks that arbitrary input never panics and that every failure
// is one of the package's classified errors.
func FuzzDecode(f *testing.F) {
	f.Add(pxtest.OrdersTable([]int64{1, 2, 3}, 2).Bytes())
	f.Add(pxtest.Table{Fields: pxtest.OrdersFields()}.Bytes())
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 1<<20 {
			t.Skip("input too large")
		}
		db, err := Decode(context.Background(), data)
		if err != nil {
			if !errors.IsAny(err, ErrMalformed, ErrEncrypted, ErrUnsupportedFieldType) {
				t.Fatalf("unclassified error: %v", err)
			}
			return
		}
		if len(db.Records) != int(db.Header.RecordsCount) {
			t.Fatalf("decoded %d records, header declares %d", len(db.Records), db.Header.RecordsCount)
		}
		for _, rec := range db.Records {
			if len(rec) != len(db.Fields) {
				t.Fatalf("record has %d values for %d fields", len(rec), len(db.Fields))
			}
		}
	})
}
