package codec

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var codepages = map[uint16]*charmap.Charmap{
	437:  charmap.CodePage437,
	850:  charmap.CodePage850,
	852:  charmap.CodePage852,
	860:  charmap.CodePage860,
	863:  charmap.CodePage863,
	865:  charmap.CodePage865,
	866:  charmap.CodePage866,
	1250: charmap.Windows1250,
	1251: charmap.Windows1251,
	1252: charmap.Windows1252,
}

// TextDecoder returns a decoder for a table codepage, or nil when the
// codepage is not known.
func TextDecoder(codepage uint16) *encoding.Decoder {
	cm, ok := codepages[codepage]
	if !ok {
		return nil
	}
	return cm.NewDecoder()
}

// DecodeText converts raw Alpha text to UTF-8. Text in an unknown codepage is
// returned unchanged.
func DecodeText(s string, codepage uint16) string {
	dec := TextDecoder(codepage)
	if dec == nil {
		return s
	}
	out, err := dec.String(s)
	if err != nil {
		return s
	}
	return out
}
