package bencode

import (
	"strconv"
	"unicode/utf8"
)

// RenderJSON renders v in a conventional JSON-like form for debugging (spec
// §6's `decode` command). Byte strings are emitted as JSON strings when
// valid UTF-8, otherwise rendered best-effort with invalid bytes escaped;
// this surface is for humans, not round-tripping.
func RenderJSON(v *Value) string {
	var b []byte
	b = appendJSON(b, v)
	return string(b)
}

func appendJSON(b []byte, v *Value) []byte {
	switch v.Kind {
	case KindString:
		return appendJSONString(b, v.Str)
	case KindInteger:
		return strconv.AppendInt(b, v.Int, 10)
	case KindList:
		b = append(b, '[')
		for i, item := range v.List {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendJSON(b, item)
		}
		return append(b, ']')
	case KindDict:
		b = append(b, '{')
		for i, e := range v.Dict {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendJSONString(b, e.Key)
			b = append(b, ':')
			b = appendJSON(b, e.Value)
		}
		return append(b, '}')
	}
	return b
}

func appendJSONString(b []byte, s []byte) []byte {
	b = append(b, '"')
	if utf8.Valid(s) {
		for _, r := range string(s) {
			switch r {
			case '"':
				b = append(b, '\\', '"')
			case '\\':
				b = append(b, '\\', '\\')
			default:
				b = utf8.AppendRune(b, r)
			}
		}
	} else {
		for _, c := range s {
			if c == '"' || c == '\\' {
				b = append(b, '\\', c)
			} else if c >= 0x20 && c < 0x7f {
				b = append(b, c)
			} else {
				b = append(b, []byte("\\x")...)
				if c < 0x10 {
					b = append(b, '0')
				}
				b = strconv.AppendUint(b, uint64(c), 16)
			}
		}
	}
	return append(b, '"')
}
