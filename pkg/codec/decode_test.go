package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/pxdb/pkg/cursor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, f Field, b []byte) Value {
	t.Helper()
	c := cursor.New(b)
	v, err := DecodeField(c, f)
	require.NoError(t, err)
	assert.Equal(t, len(b), c.Offset(), "field must consume exactly its width")
	return v
}

func TestDecodeField_Alpha(t *testing.T) {
	v := decodeOne(t, Field{Type: Alpha, Size: 8, Name: "name"}, []byte("Bob\x00\x00\x00\x00\x00"))
	assert.Equal(t, KindText, v.Kind())
	assert.Equal(t, "Bob", v.Text())

	v = decodeOne(t, Field{Type: Alpha, Size: 4}, []byte{0, 0, 0, 0})
	assert.Equal(t, "", v.Text())
}

func TestDecodeField_Integers(t *testing.T) {
	v := decodeOne(t, Field{Type: Int16, Size: 2}, encodeSigned(-300, 2))
	assert.Equal(t, KindInt16, v.Kind())
	assert.Equal(t, int16(-300), v.Int16())

	v = decodeOne(t, Field{Type: Int32, Size: 4}, encodeSigned(0x7FFFFFFF, 4))
	assert.Equal(t, int32(0x7FFFFFFF), v.Int32())

	v = decodeOne(t, Field{Type: Int32, Size: 4}, encodeSigned(-1, 4))
	assert.Equal(t, int32(-1), v.Int32())
}

func TestDecodeField_Int64IsUnsigned(t *testing.T) {
	v := decodeOne(t, Field{Type: Int64, Size: 8}, encodeSigned(12345, 8))
	assert.Equal(t, KindInt64, v.Kind())
	assert.Equal(t, uint64(12345), v.Int64())

	v = decodeOne(t, Field{Type: Int64, Size: 8}, encodeSigned(-1, 8))
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), v.Int64())
	assert.Equal(t, int64(-1), int64(v.Int64()))
}

func TestDecodeField_Logical(t *testing.T) {
	testCases := []struct {
		in   byte
		want bool
	}{
		{0x00, false},
		{0x80, false},
		{0x81, true},
		{0x01, true},
	}
	for _, tc := range testCases {
		v := decodeOne(t, Field{Type: Logical, Size: 1}, []byte{tc.in})
		assert.Equal(t, tc.want, v.Bool(), "byte 0x%02x", tc.in)
	}
}

func TestDecodeField_Date(t *testing.T) {
	testCases := []struct {
		name string
		days int64
		want time.Time
	}{
		{"unix epoch", 719163, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"first day", 1, time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"y2k", 730120, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"last day", 3652059, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"null clamps to min", 0, MinDate},
		{"negative clamps to min", -5, MinDate},
		{"too large clamps to max", 3652060, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := decodeOne(t, Field{Type: Date, Size: 4}, encodeSigned(tc.days, 4))
			assert.Equal(t, KindDate, v.Kind())
			assert.True(t, tc.want.Equal(v.Date()), "got %s want %s", v.Date(), tc.want)
		})
	}
}

func TestDecodeField_Time(t *testing.T) {
	ms := int64((13*3600+45*60+7)*1000 + 999)
	v := decodeOne(t, Field{Type: Time, Size: 4}, encodeSigned(ms, 4))
	assert.Equal(t, TimeOfDay{Hour: 13, Minute: 45, Second: 7}, v.Time())
	assert.Equal(t, "13:45:07", v.Time().String())

	c := cursor.New(encodeSigned(msPerDay, 4))
	_, err := DecodeField(c, Field{Type: Time, Size: 4, Name: "at"})
	assert.True(t, errors.Is(err, ErrOutOfRange))

	c = cursor.New(encodeSigned(-1000, 4))
	_, err = DecodeField(c, Field{Type: Time, Size: 4})
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestDecodeField_Timestamp(t *testing.T) {
	want := time.Date(2011, 5, 17, 8, 30, 15, 250000000, time.UTC)
	ms := float64(unixEpochOrdinal*86400*1000) + float64(want.UnixMilli())

	v := decodeOne(t, Field{Type: Timestamp, Size: 8}, encodeSignedFloat(ms))
	assert.Equal(t, KindTimestamp, v.Kind())
	assert.True(t, want.Equal(v.Timestamp()), "got %s", v.Timestamp())

	v = decodeOne(t, Field{Type: Timestamp, Size: 8}, make([]byte, 8))
	assert.True(t, MinDate.Equal(v.Timestamp()))

	v = decodeOne(t, Field{Type: Timestamp, Size: 8}, encodeSignedFloat(1e18))
	assert.True(t, MaxDate.Equal(v.Timestamp()))
}

func TestDecodeField_AutoIncrement(t *testing.T) {
	v := decodeOne(t, Field{Type: AutoIncrement, Size: 4}, encodeSigned(42, 4))
	assert.Equal(t, uint32(42), v.AutoIncrement())
	key, ok := v.Key()
	assert.True(t, ok)
	assert.Equal(t, int64(42), key)

	v = decodeOne(t, Field{Type: AutoIncrement, Size: 4}, encodeSigned(-3, 4))
	key, _ = v.Key()
	assert.Equal(t, int64(-3), key)
}

func TestDecodeField_PlaceholdersSkipDeclaredSize(t *testing.T) {
	for _, ft := range []FieldType{MemoBlob, Blob, GraphicsBlob, Bytes} {
		t.Run(ft.String(), func(t *testing.T) {
			data := append([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, encodeSigned(77, 2)...)
			c := cursor.New(data)

			v, err := DecodeField(c, Field{Type: ft, Size: 10})
			require.NoError(t, err)
			assert.True(t, v.IsPlaceholder())
			assert.Nil(t, v.Interface())
			assert.Equal(t, 10, c.Offset())

			next, err := DecodeField(c, Field{Type: Int16, Size: 2})
			require.NoError(t, err)
			assert.Equal(t, int16(77), next.Int16())
		})
	}
}

func TestDecodeField_Truncated(t *testing.T) {
	c := cursor.New([]byte{0x80, 0x00})
	_, err := DecodeField(c, Field{Type: Int32, Size: 4, Name: "n"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cursor.ErrTruncated))
	assert.Contains(t, err.Error(), `"n"`)
}

func TestDecodeField_UnknownType(t *testing.T) {
	c := cursor.New([]byte{0, 0})
	_, err := DecodeField(c, Field{Type: FieldType(0x05), Size: 2})

	var target *UnsupportedFieldTypeError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, uint8(0x05), target.Tag)
	assert.True(t, errors.Is(err, ErrUnsupportedFieldType))
}

func TestParseFieldType(t *testing.T) {
	for tag := 0; tag < 256; tag++ {
		ft, err := ParseFieldType(uint8(tag))
		if _, known := typeNames[FieldType(tag)]; known {
			assert.NoError(t, err)
			assert.Equal(t, FieldType(tag), ft)
		} else {
			assert.True(t, errors.Is(err, ErrUnsupportedFieldType), "tag 0x%02x", tag)
		}
	}
	assert.Len(t, typeNames, 13)
}

func TestFieldType_Width(t *testing.T) {
	assert.Equal(t, 2, Int16.Width(99))
	assert.Equal(t, 8, Timestamp.Width(1))
	assert.Equal(t, 4, AutoIncrement.Width(0))
	assert.Equal(t, 30, Alpha.Width(30))
	assert.Equal(t, 11, MemoBlob.Width(11))
}

func TestValue_JSON(t *testing.T) {
	values := []Value{
		TextValue("x"),
		DateValue(time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)),
		Int16Value(-2),
		BoolValue(true),
		BlobValue(),
		TimeValue(TimeOfDay{Hour: 1, Minute: 2, Second: 3}),
		AutoIncrementValue(9),
	}
	out, err := json.Marshal(values)
	require.NoError(t, err)
	assert.JSONEq(t, `["x","2020-02-29",-2,true,null,"01:02:03",9]`, string(out))
}

func TestValue_WrongKindAccessors(t *testing.T) {
	v := TextValue("abc")
	assert.Zero(t, v.Int16())
	assert.Zero(t, v.AutoIncrement())
	assert.False(t, v.Bool())
	_, ok := v.Key()
	assert.False(t, ok)
	assert.Equal(t, "", Int32Value(3).Text())
}

func TestDecodeText(t *testing.T) {
	// "Привет" in cp1251
	raw := string([]byte{0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2})
	assert.Equal(t, "Привет", DecodeText(raw, 1251))
	assert.Equal(t, raw, DecodeText(raw, 9999))
	assert.Nil(t, TextDecoder(0))
}

func TestFieldType_Text(t *testing.T) {
	out, err := json.Marshal(Field{Type: Timestamp, Size: 8, Name: "Updated"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"datetime","size":8,"name":"Updated"}`, string(out))

	var f Field
	require.NoError(t, json.Unmarshal(out, &f))
	assert.Equal(t, Timestamp, f.Type)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"money"}`), &f))
	_, err = FieldType(0x05).MarshalText()
	assert.True(t, errors.Is(err, ErrUnsupportedFieldType))
}
