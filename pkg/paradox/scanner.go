package paradox

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/ssargent/pxdb/pkg/codec"
	"github.com/ssargent/pxdb/pkg/cursor"
)

// blockHeaderSize covers the unknown word, the block number and the
// additional data size that open every block.
const blockHeaderSize = 6

// scanner walks the data blocks from the end of the file towards its start so
// that the newest records are seen first.
type scanner struct {
	c      *cursor.Cursor
	h      *Header
	fields []codec.Field
	resume *int64
	log    zerolog.Logger

	// newest first; reversed once the scan ends
	records []Record
}

// errStop ends a scan early without failing it.
var errStop = errors.New("incremental cutoff")

func (s *scanner) scan(ctx context.Context) ([]Record, error) {
	start := int(s.h.HeaderSize)
	blockSize := s.h.BlockSize()
	remaining := s.c.Size() - start
	if remaining < 0 {
		return nil, malformedf("header size %d beyond file of %d bytes", start, s.c.Size())
	}
	if remaining%blockSize != 0 {
		return nil, malformedf("data region of %d bytes is not a multiple of block size %d", remaining, blockSize)
	}
	blocks := remaining / blockSize

	capacity := int(s.h.RecordsCount)
	if limit := remaining / int(s.h.RecordSize); capacity > limit {
		capacity = limit
	}
	s.records = make([]Record, 0, capacity)

	for b := blocks - 1; b >= 0; b-- {
		err := s.scanBlock(ctx, b, start+b*blockSize)
		if errors.Is(err, errStop) {
			s.log.Debug().Int("block", b).Int("records", len(s.records)).Msg("incremental cutoff reached")
			return s.ordered(), nil
		}
		if err != nil {
			return nil, err
		}
	}

	if len(s.records) != int(s.h.RecordsCount) {
		return nil, malformedf("found %d records, header declares %d", len(s.records), s.h.RecordsCount)
	}
	return s.ordered(), nil
}

func (s *scanner) scanBlock(ctx context.Context, index, offset int) error {
	g, err := s.c.PushSeek(offset)
	if err != nil {
		return malformed(err, "block %d", index)
	}
	defer g.Pop()

	if err := s.c.Skip(2); err != nil {
		return malformed(err, "block %d", index)
	}
	number, err := s.c.Uint16()
	if err != nil {
		return malformed(err, "block %d", index)
	}
	addDataSize, err := s.c.Int16()
	if err != nil {
		return malformed(err, "block %d", index)
	}
	if addDataSize < 0 {
		s.log.Debug().Int("block", index).Uint16("number", number).Msg("empty block")
		return nil
	}

	recordSize := int(s.h.RecordSize)
	count := int(addDataSize)/recordSize + 1
	if blockHeaderSize+count*recordSize > s.h.BlockSize() {
		return malformedf("block %d holds %d records of %d bytes", index, count, recordSize)
	}

	dataStart := s.c.Offset()
	for i := count - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(errors.Mark(err, ErrCancelled), "block %d record %d", index, i)
		}
		rec, err := s.readRecord(dataStart + i*recordSize)
		if err != nil {
			if errors.Is(err, errStop) {
				return err
			}
			return errors.Wrapf(err, "block %d record %d", index, i)
		}
		s.records = append(s.records, rec)
	}
	return nil
}

func (s *scanner) readRecord(offset int) (Record, error) {
	g, err := s.c.PushSeek(offset)
	if err != nil {
		return nil, malformed(err, "record")
	}
	defer g.Pop()

	rec := make(Record, 0, len(s.fields))
	for i, f := range s.fields {
		v, err := codec.DecodeField(s.c, f)
		if err != nil {
			return nil, malformed(err, "field %d", i)
		}
		if i == 0 && s.resume != nil {
			if key, _ := v.Key(); key < *s.resume {
				return nil, errStop
			}
		}
		rec = append(rec, v)
	}
	return rec, nil
}

// ordered returns the records oldest first.
func (s *scanner) ordered() []Record {
	out := s.records
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
