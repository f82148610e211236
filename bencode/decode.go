package bencode

import (
	"bytes"
	"fmt"
)

// Decode parses the single bencoded value at the start of data and returns
// it along with the number of bytes consumed. Trailing bytes are not an
// error; callers that require the whole input to be consumed should check
// the returned length themselves.
func Decode(data []byte) (*Value, int, error) {
	return decodeAt(data, 0)
}

// decodeAt decodes one value starting at pos and returns the updated
// position (exclusive end of the value's byte span).
func decodeAt(data []byte, pos int) (*Value, int, error) {
	if pos >= len(data) {
		return nil, pos, errTruncated(pos)
	}
	switch b := data[pos]; {
	case b >= '0' && b <= '9':
		return decodeString(data, pos)
	case b == 'i':
		return decodeInteger(data, pos)
	case b == 'l':
		return decodeList(data, pos)
	case b == 'd':
		return decodeDict(data, pos)
	default:
		return nil, pos, errUnexpectedByte(pos)
	}
}

func decodeString(data []byte, pos int) (*Value, int, error) {
	start := pos
	for pos < len(data) && data[pos] != ':' {
		if data[pos] < '0' || data[pos] > '9' {
			return nil, pos, errUnexpectedByte(pos)
		}
		pos++
	}
	if pos >= len(data) {
		return nil, pos, errTruncated(pos)
	}
	digits := data[start:pos]
	if len(digits) == 0 {
		return nil, pos, errBadLength(start, "empty length")
	}
	if len(digits) > 1 && digits[0] == '0' {
		return nil, start, errBadLength(start, "leading zero in length")
	}
	n, err := parseUint(digits)
	if err != nil {
		return nil, start, errBadLength(start, err.Error())
	}
	pos++ // consume ':'
	end := pos + n
	if end < pos || end > len(data) {
		return nil, pos, errTruncated(pos)
	}
	return &Value{Kind: KindString, Str: data[pos:end]}, end, nil
}

func decodeInteger(data []byte, pos int) (*Value, int, error) {
	start := pos
	pos++ // consume 'i'
	neg := false
	if pos < len(data) && data[pos] == '-' {
		neg = true
		pos++
	}
	numStart := pos
	for pos < len(data) && data[pos] >= '0' && data[pos] <= '9' {
		pos++
	}
	if pos >= len(data) || data[pos] != 'e' {
		return nil, pos, errBadInteger(start, "missing terminating 'e'")
	}
	digits := data[numStart:pos]
	if len(digits) == 0 {
		return nil, start, errBadInteger(start, "no digits")
	}
	if len(digits) > 1 && digits[0] == '0' {
		return nil, start, errBadInteger(start, "leading zero")
	}
	if neg && digits[0] == '0' {
		return nil, start, errBadInteger(start, "negative zero")
	}
	n, err := parseUint(digits)
	if err != nil {
		return nil, start, errBadInteger(start, err.Error())
	}
	val := int64(n)
	if neg {
		val = -val
	}
	return &Value{Kind: KindInteger, Int: val}, pos + 1, nil
}

func decodeList(data []byte, pos int) (*Value, int, error) {
	pos++ // consume 'l'
	var items []*Value
	for {
		if pos >= len(data) {
			return nil, pos, errTruncated(pos)
		}
		if data[pos] == 'e' {
			return &Value{Kind: KindList, List: items}, pos + 1, nil
		}
		item, next, err := decodeAt(data, pos)
		if err != nil {
			return nil, next, err
		}
		items = append(items, item)
		pos = next
	}
}

func decodeDict(data []byte, pos int) (*Value, int, error) {
	entries, next, err := decodeDictEntries(data, pos, nil)
	if err != nil {
		return nil, next, err
	}
	return &Value{Kind: KindDict, Dict: entries}, next, nil
}

// decodeDictEntries decodes the body of a dict starting at the 'd' byte at
// pos. If spans is non-nil, it records the [start, end) byte range of each
// entry's value into spans, keyed by the decoded key string. This
// lets callers recover the exact raw bytes of a nested value (the info-hash
// needs this) without re-encoding it.
func decodeDictEntries(data []byte, pos int, spans map[string][2]int) ([]DictEntry, int, error) {
	pos++ // consume 'd'
	var entries []DictEntry
	var lastKey []byte
	haveLast := false
	for {
		if pos >= len(data) {
			return nil, pos, errTruncated(pos)
		}
		if data[pos] == 'e' {
			return entries, pos + 1, nil
		}
		if data[pos] < '0' || data[pos] > '9' {
			return nil, pos, errNonStringDictKey(pos)
		}
		keyVal, next, err := decodeString(data, pos)
		if err != nil {
			return nil, next, err
		}
		key := keyVal.Str
		if haveLast && bytes.Compare(key, lastKey) <= 0 {
			return nil, pos, errUnorderedOrDuplicateKey(pos)
		}
		lastKey = key
		haveLast = true
		pos = next

		valStart := pos
		val, next, err := decodeAt(data, pos)
		if err != nil {
			return nil, next, err
		}
		pos = next
		if spans != nil {
			spans[string(key)] = [2]int{valStart, pos}
		}
		entries = append(entries, DictEntry{Key: key, Value: val})
	}
}

// DecodeTopLevelDict decodes data as a single top-level dict and also
// returns the raw [start, end) byte span of each top-level key's value, as
// it appeared in data. This lets callers (the metainfo loader) recover the
// exact source bytes of a nested dict like "info" without re-encoding it,
// which is only safe for already-canonical input.
func DecodeTopLevelDict(data []byte) (*Value, map[string][2]int, error) {
	if len(data) == 0 || data[0] != 'd' {
		return nil, nil, errUnexpectedByte(0)
	}
	spans := make(map[string][2]int)
	entries, _, err := decodeDictEntries(data, 0, spans)
	if err != nil {
		return nil, nil, err
	}
	return &Value{Kind: KindDict, Dict: entries}, spans, nil
}

func parseUint(digits []byte) (int, error) {
	n := 0
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit character %q", c)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
