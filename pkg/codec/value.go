package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindText Kind = iota + 1
	KindDate
	KindInt16
	KindInt32
	KindInt64
	KindBool
	KindBlob
	KindTime
	KindTimestamp
	KindAutoIncrement
	KindBytes
)

var kindNames = [...]string{
	KindText:          "text",
	KindDate:          "date",
	KindInt16:         "int16",
	KindInt32:         "int32",
	KindInt64:         "int64",
	KindBool:          "bool",
	KindBlob:          "blob",
	KindTime:          "time",
	KindTimestamp:     "timestamp",
	KindAutoIncrement: "autoincrement",
	KindBytes:         "bytes",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "invalid"
}

// Layouts used when rendering calendar values.
const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	TimestampLayout = "2006-01-02 15:04:05.999999"
)

// TimeOfDay is a wall-clock time without a date, at one second resolution.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Duration returns the time elapsed since midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute + time.Duration(t.Second)*time.Second
}

// Value is one decoded field. The zero Value is invalid.
//
// Accessors for a kind other than the one held return the zero value of
// their result type.
type Value struct {
	kind Kind
	text string
	num  int64
	t    time.Time
	tod  TimeOfDay
}

// TextValue wraps raw field text.
func TextValue(s string) Value { return Value{kind: KindText, text: s} }

// DateValue wraps a calendar date.
func DateValue(t time.Time) Value { return Value{kind: KindDate, t: t} }

// Int16Value wraps a short integer.
func Int16Value(v int16) Value { return Value{kind: KindInt16, num: int64(v)} }

// Int32Value wraps a long integer.
func Int32Value(v int32) Value { return Value{kind: KindInt32, num: int64(v)} }

// Int64Value wraps the unsigned result of an Int64 field.
func Int64Value(v uint64) Value { return Value{kind: KindInt64, num: int64(v)} }

// BoolValue wraps a logical field.
func BoolValue(v bool) Value {
	var n int64
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// BlobValue is the placeholder for memo, blob and graphics fields.
func BlobValue() Value { return Value{kind: KindBlob} }

// BytesValue is the placeholder for bytes fields.
func BytesValue() Value { return Value{kind: KindBytes} }

// TimeValue wraps a time of day.
func TimeValue(t TimeOfDay) Value { return Value{kind: KindTime, tod: t} }

// TimestampValue wraps a date and time.
func TimestampValue(t time.Time) Value { return Value{kind: KindTimestamp, t: t} }

// AutoIncrementValue wraps a row key. The key is kept signed because a
// cleared sign flag decodes to a negative number, and incremental loads
// compare keys as decoded.
func AutoIncrementValue(key int64) Value { return Value{kind: KindAutoIncrement, num: key} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsPlaceholder reports whether v stands in for content that is not decoded.
func (v Value) IsPlaceholder() bool { return v.kind == KindBlob || v.kind == KindBytes }

func (v Value) Text() string {
	if v.kind != KindText {
		return ""
	}
	return v.text
}

func (v Value) Date() time.Time {
	if v.kind != KindDate {
		return time.Time{}
	}
	return v.t
}

func (v Value) Int16() int16 {
	if v.kind != KindInt16 {
		return 0
	}
	return int16(v.num)
}

func (v Value) Int32() int32 {
	if v.kind != KindInt32 {
		return 0
	}
	return int32(v.num)
}

func (v Value) Int64() uint64 {
	if v.kind != KindInt64 {
		return 0
	}
	return uint64(v.num)
}

func (v Value) Bool() bool {
	return v.kind == KindBool && v.num != 0
}

func (v Value) Time() TimeOfDay {
	if v.kind != KindTime {
		return TimeOfDay{}
	}
	return v.tod
}

func (v Value) Timestamp() time.Time {
	if v.kind != KindTimestamp {
		return time.Time{}
	}
	return v.t
}

// AutoIncrement returns the key as the format's unsigned 32-bit value.
func (v Value) AutoIncrement() uint32 {
	if v.kind != KindAutoIncrement {
		return 0
	}
	return uint32(v.num)
}

// Key returns the signed key of an autoincrement value.
func (v Value) Key() (int64, bool) {
	if v.kind != KindAutoIncrement {
		return 0, false
	}
	return v.num, true
}

// Interface returns the value as a plain Go value: string, time.Time, int16,
// int32, uint64, bool, TimeOfDay, uint32, or nil for placeholders.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindDate, KindTimestamp:
		return v.t
	case KindInt16:
		return v.Int16()
	case KindInt32:
		return v.Int32()
	case KindInt64:
		return v.Int64()
	case KindBool:
		return v.Bool()
	case KindTime:
		return v.tod
	case KindAutoIncrement:
		return v.AutoIncrement()
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindText:
		return strconv.Quote(v.text)
	case KindDate:
		return v.t.Format(DateLayout)
	case KindTimestamp:
		return v.t.Format(TimestampLayout)
	case KindInt16, KindInt32:
		return strconv.FormatInt(v.num, 10)
	case KindInt64:
		return strconv.FormatUint(uint64(v.num), 10)
	case KindAutoIncrement:
		return strconv.FormatUint(uint64(v.AutoIncrement()), 10)
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindTime:
		return v.tod.String()
	case KindBlob, KindBytes:
		return `""`
	default:
		return "<invalid>"
	}
}

// MarshalJSON renders dates as "2006-01-02", times as "15:04:05",
// timestamps in RFC 3339 and placeholders as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindDate:
		return json.Marshal(v.t.Format(DateLayout))
	case KindTime:
		return json.Marshal(v.tod.String())
	case KindTimestamp:
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	default:
		return json.Marshal(v.Interface())
	}
}
