package paradox

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/ssargent/pxdb/pkg/codec"
	"github.com/ssargent/pxdb/pkg/cursor"
)

// Field describes one column of a table.
type Field = codec.Field

// Record is one row; values follow the field order of the schema.
type Record []codec.Value

// Key returns the record's autoincrement key when the first value holds one.
func (r Record) Key() (int64, bool) {
	if len(r) == 0 {
		return 0, false
	}
	return r[0].Key()
}

func (r Record) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}

// Database is a fully decoded table.
type Database struct {
	Header  Header   `json:"header"`
	Fields  []Field  `json:"fields"`
	Records []Record `json:"records"`

	resumeFrom *int64
}

// Incremental reports whether the load stopped at a resume key.
func (db *Database) Incremental() bool {
	return db.resumeFrom != nil
}

// FieldIndex returns the position of the named field or -1.
func (db *Database) FieldIndex(name string) int {
	for i, f := range db.Fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// Record returns the i-th record or nil when i is out of range.
func (db *Database) Record(i int) Record {
	if i < 0 || i >= len(db.Records) {
		return nil
	}
	return db.Records[i]
}

type options struct {
	resume    *int64
	logger    zerolog.Logger
	transcode bool
}

// Option configures Open and Decode.
type Option func(*options)

// WithResumeFrom loads only the records whose autoincrement key is at least
// key. The table's first field must be an autoincrement field.
func WithResumeFrom(key uint32) Option {
	return func(o *options) {
		k := int64(key)
		o.resume = &k
	}
}

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTranscoding converts text values from the table's codepage to UTF-8.
// Unknown codepages leave the text untouched.
func WithTranscoding() Option {
	return func(o *options) {
		o.transcode = true
	}
}

// Open reads and decodes the table file at path.
func Open(ctx context.Context, path string, opts ...Option) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	db, err := Decode(ctx, data, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return db, nil
}

// OpenSchema reads only the header and schema of the table at path. The
// returned Database has no records.
func OpenSchema(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	c := cursor.New(data)
	h, err := decodeHeader(c)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	fields, err := decodeSchema(c, h)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &Database{Header: *h, Fields: fields}, nil
}

// Decode decodes a table held in memory.
func Decode(ctx context.Context, data []byte, opts ...Option) (*Database, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	started := time.Now()

	c := cursor.New(data)
	h, err := decodeHeader(c)
	if err != nil {
		return nil, err
	}
	fields, err := decodeSchema(c, h)
	if err != nil {
		return nil, err
	}
	o.logger.Debug().
		Str("table", h.TableName).
		Uint16("fields", h.FieldsCount).
		Uint32("records", h.RecordsCount).
		Int("block_size", h.BlockSize()).
		Msg("schema decoded")

	if o.resume != nil && (len(fields) == 0 || fields[0].Type != codec.AutoIncrement) {
		return nil, errors.Wrapf(ErrIncrementalUnsupported, "table %q", h.TableName)
	}

	s := &scanner{c: c, h: h, fields: fields, resume: o.resume, log: o.logger}
	records, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	if o.transcode {
		if codec.TextDecoder(h.Codepage) != nil {
			for _, rec := range records {
				for i, v := range rec {
					if v.Kind() == codec.KindText {
						rec[i] = codec.TextValue(codec.DecodeText(v.Text(), h.Codepage))
					}
				}
			}
		}
	}

	o.logger.Debug().
		Str("table", h.TableName).
		Int("loaded", len(records)).
		Dur("took", time.Since(started)).
		Msg("table decoded")

	return &Database{Header: *h, Fields: fields, Records: records, resumeFrom: o.resume}, nil
}
