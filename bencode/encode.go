package bencode

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Encode serializes v to its canonical bencoded form. Dict keys are emitted
// in lexicographic byte order regardless of the order Dict.Entries held them
// in.
func Encode(v *Value) []byte {
	var buf bytes.Buffer
	writeValue(&buf, v)
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v *Value) {
	switch v.Kind {
	case KindString:
		buf.WriteString(strconv.Itoa(len(v.Str)))
		buf.WriteByte(':')
		buf.Write(v.Str)
	case KindInteger:
		buf.WriteByte('i')
		buf.WriteString(strconv.FormatInt(v.Int, 10))
		buf.WriteByte('e')
	case KindList:
		buf.WriteByte('l')
		for _, item := range v.List {
			writeValue(buf, item)
		}
		buf.WriteByte('e')
	case KindDict:
		buf.WriteByte('d')
		entries := make([]DictEntry, len(v.Dict))
		copy(entries, v.Dict)
		sort.Slice(entries, func(i, j int) bool {
			return bytes.Compare(entries[i].Key, entries[j].Key) < 0
		})
		for _, e := range entries {
			writeValue(buf, &Value{Kind: KindString, Str: e.Key})
			writeValue(buf, e.Value)
		}
		buf.WriteByte('e')
	default:
		panic(fmt.Sprintf("bencode: unknown kind %d", v.Kind))
	}
}
