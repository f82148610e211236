// Package bencode implements a byte-exact encoder and decoder for the
// bencode format used by BitTorrent metainfo files and tracker responses.
//
// Bencoded strings are binary, not text: this package never interprets a
// ByteString as UTF-8. Dict keys are ordered lexicographically by raw byte
// value, both on decode (where order is validated) and on encode (where
// order is enforced), so that Encode(Decode(b)) == b for any b this package
// produced.
package bencode

import "bytes"

// Kind tags the variant held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindList
	KindDict
)

// DictEntry is one key/value pair of a Dict, kept in the order it was
// decoded (or the order it should be encoded in, once sorted).
type DictEntry struct {
	Key   []byte
	Value *Value
}

// Value is a tagged bencode value. Only the field matching Kind is valid.
type Value struct {
	Kind Kind

	Str  []byte
	Int  int64
	List []*Value
	Dict []DictEntry
}

// String builds a ByteString value from a []byte.
func String(b []byte) *Value { return &Value{Kind: KindString, Str: b} }

// Integer builds an Integer value.
func Integer(i int64) *Value { return &Value{Kind: KindInteger, Int: i} }

// NewList builds a List value from already-built elements.
func NewList(items ...*Value) *Value { return &Value{Kind: KindList, List: items} }

// NewDict builds a Dict value from entries; entries need not be pre-sorted,
// Encode sorts them.
func NewDict(entries ...DictEntry) *Value { return &Value{Kind: KindDict, Dict: entries} }

// Get returns the value under key in a Dict, or nil if absent or v is not a
// Dict.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != KindDict {
		return nil
	}
	k := []byte(key)
	for _, e := range v.Dict {
		if bytes.Equal(e.Key, k) {
			return e.Value
		}
	}
	return nil
}

// Equal reports deep structural equality between two values.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return bytes.Equal(v.Str, other.Str)
	case KindInteger:
		return v.Int == other.Int
	case KindList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(v.Dict) != len(other.Dict) {
			return false
		}
		for i := range v.Dict {
			if !bytes.Equal(v.Dict[i].Key, other.Dict[i].Key) {
				return false
			}
			if !v.Dict[i].Value.Equal(other.Dict[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
