package codec

import (
	"bytes"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/pxdb/pkg/cursor"
)

// ErrOutOfRange is returned when a field's bytes decode to a value the field
// type cannot represent, such as a time of day past midnight.
var ErrOutOfRange = errors.New("field value out of range")

// unixEpochOrdinal is the day number of 1970-01-01 counting 0001-01-01 as day 1.
const unixEpochOrdinal = 719163

const (
	maxDateOrdinal = 3652059 // 9999-12-31
	msPerDay       = 24 * 60 * 60 * 1000
)

var (
	unixEpoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

	// MinDate and MaxDate bound every decoded date and timestamp.
	MinDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(9999, time.December, 31, 23, 59, 59, 999999000, time.UTC)
)

// DecodeField reads one field at the cursor and advances past it.
func DecodeField(c *cursor.Cursor, f Field) (Value, error) {
	b, err := c.Raw(f.Width())
	if err != nil {
		return Value{}, errors.Wrapf(err, "field %q", f.Name)
	}

	switch f.Type {
	case Alpha:
		return TextValue(string(bytes.ReplaceAll(b, []byte{0}, nil))), nil
	case Date:
		return DateValue(dateFromOrdinal(DecodeSigned(b))), nil
	case Int16:
		return Int16Value(int16(DecodeSigned(b))), nil
	case Int32:
		return Int32Value(int32(DecodeSigned(b))), nil
	case Int64:
		return Int64Value(uint64(DecodeSigned(b))), nil
	case Logical:
		return BoolValue(DecodeSigned(b) != 0), nil
	case MemoBlob, Blob, GraphicsBlob:
		return BlobValue(), nil
	case Bytes:
		return BytesValue(), nil
	case Time:
		tod, err := timeOfDay(DecodeSigned(b))
		if err != nil {
			return Value{}, errors.Wrapf(err, "field %q", f.Name)
		}
		return TimeValue(tod), nil
	case Timestamp:
		return TimestampValue(timestampFromMillis(DecodeSignedFloat(b))), nil
	case AutoIncrement:
		return AutoIncrementValue(DecodeSigned(b)), nil
	default:
		return Value{}, &UnsupportedFieldTypeError{Tag: uint8(f.Type)}
	}
}

// dateFromOrdinal converts a day number to a date, clamping to MinDate/MaxDate.
func dateFromOrdinal(days int64) time.Time {
	switch {
	case days < 1:
		return MinDate
	case days > maxDateOrdinal:
		return time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return unixEpoch.AddDate(0, 0, int(days-unixEpochOrdinal))
}

func timeOfDay(ms int64) (TimeOfDay, error) {
	if ms < 0 || ms >= msPerDay {
		return TimeOfDay{}, errors.Wrapf(ErrOutOfRange, "time of day %dms", ms)
	}
	hour := ms / 3600000
	minute := ms/60000 - hour*60
	second := ms/1000 - hour*3600 - minute*60
	return TimeOfDay{Hour: int(hour), Minute: int(minute), Second: int(second)}, nil
}

// timestampFromMillis converts milliseconds since day 1 to a UTC time with
// microsecond precision, clamping to MinDate/MaxDate.
func timestampFromMillis(ms float64) time.Time {
	secs := ms/1000 - unixEpochOrdinal*86400
	switch {
	case math.IsNaN(secs), secs < float64(MinDate.Unix()):
		return MinDate
	case secs >= float64(MaxDate.Unix()+1):
		return MaxDate
	}

	whole := math.Floor(secs)
	micros := math.Round((secs - whole) * 1e6)
	if micros >= 1e6 {
		whole++
		micros = 0
	}
	t := time.Unix(int64(whole), int64(micros)*int64(time.Microsecond)).UTC()
	if t.After(MaxDate) {
		return MaxDate
	}
	return t
}
