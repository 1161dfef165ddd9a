package paradox

import (
	"github.com/cockroachdb/errors"
	"github.com/ssargent/pxdb/pkg/codec"
	"github.com/ssargent/pxdb/pkg/cursor"
)

// Errors returned by Open and Decode. Test for them with errors.Is; every
// returned error matches at most one of them.
var (
	// ErrMalformed is returned when the file violates a structural rule of
	// the format, including truncated input.
	ErrMalformed = errors.New("file is not a paradox data file")

	// ErrEncrypted is returned for password protected tables.
	ErrEncrypted = errors.New("encrypted files are not supported")

	// ErrUnsupportedFieldType is returned when the schema uses an unknown
	// type tag. The error also satisfies errors.As with
	// *codec.UnsupportedFieldTypeError.
	ErrUnsupportedFieldType = codec.ErrUnsupportedFieldType

	// ErrIncrementalUnsupported is returned when a resume key is given for a
	// table whose first field is not an autoincrement field.
	ErrIncrementalUnsupported = errors.New("no autoincrement field for incremental load")

	// ErrCancelled is returned when the context is done during a scan. The
	// error also matches the context's own error.
	ErrCancelled = errors.New("load cancelled")
)

// malformed marks low-level decode failures as ErrMalformed and adds context.
func malformed(err error, format string, args ...interface{}) error {
	if errors.Is(err, cursor.ErrTruncated) || errors.Is(err, codec.ErrOutOfRange) {
		err = errors.Mark(err, ErrMalformed)
	}
	return errors.Wrapf(err, format, args...)
}

func malformedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, format, args...)
}
