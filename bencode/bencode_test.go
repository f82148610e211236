package bencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFull(t *testing.T, s string) *Value {
	t.Helper()
	v, n, err := Decode([]byte(s))
	require.NoError(t, err)
	require.Equal(t, len(s), n, "decode did not consume entire input")
	return v
}

func TestDecodeString(t *testing.T) {
	v := decodeFull(t, "5:hello")
	require.Equal(t, KindString, v.Kind)
	assert.Equal(t, "hello", string(v.Str))
}

func TestDecodeInteger(t *testing.T) {
	cases := map[string]int64{
		"i52e":  52,
		"i-42e": -42,
		"i0e":   0,
	}
	for in, want := range cases {
		v := decodeFull(t, in)
		require.Equal(t, KindInteger, v.Kind)
		assert.Equal(t, want, v.Int)
	}
}

func TestDecodeIntegerRejectsMalformed(t *testing.T) {
	for _, in := range []string{"i-0e", "i03e", "i-03e", "ie", "i12"} {
		_, _, err := Decode([]byte(in))
		assert.Error(t, err, "input %q should be rejected", in)
	}
}

func TestDecodeList(t *testing.T) {
	v := decodeFull(t, "l5:helloi52ee")
	require.Equal(t, KindList, v.Kind)
	require.Len(t, v.List, 2)
	assert.Equal(t, "hello", string(v.List[0].Str))
	assert.Equal(t, int64(52), v.List[1].Int)
}

func TestDecodeDict(t *testing.T) {
	v := decodeFull(t, "d3:cow3:moo4:spam4:eggse")
	require.Equal(t, KindDict, v.Kind)
	require.Len(t, v.Dict, 2)
	assert.Equal(t, "cow", string(v.Dict[0].Key))
	assert.Equal(t, "moo", string(v.Dict[0].Value.Str))
	assert.Equal(t, "spam", string(v.Dict[1].Key))
	assert.Equal(t, "eggs", string(v.Dict[1].Value.Str))

	assert.Equal(t, "d3:cow3:moo4:spam4:eggse", string(Encode(v)))
}

func TestDecodeDictRejectsUnorderedKeys(t *testing.T) {
	_, _, err := Decode([]byte("d4:spam4:eggs3:cow3:mooe"))
	require.Error(t, err)
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "UnorderedOrDuplicateKey", be.Kind)
}

func TestDecodeDictRejectsDuplicateKeys(t *testing.T) {
	_, _, err := Decode([]byte("d3:cow3:moo3:cow3:mooe"))
	require.Error(t, err)
}

func TestDecodeDictRejectsNonStringKey(t *testing.T) {
	_, _, err := Decode([]byte("di5e3:fooe"))
	require.Error(t, err)
}

func TestDecodeTruncated(t *testing.T) {
	for _, in := range []string{"5:hel", "i5", "l5:helloi5e", "d3:cow3:moo"} {
		_, _, err := Decode([]byte(in))
		assert.Error(t, err, "input %q should be truncated", in)
	}
}

func TestRenderJSON(t *testing.T) {
	assert.Equal(t, `"hello"`, RenderJSON(decodeFull(t, "5:hello")))
	assert.Equal(t, `-42`, RenderJSON(decodeFull(t, "i-42e")))
	assert.Equal(t, `["hello",52]`, RenderJSON(decodeFull(t, "l5:helloi52ee")))
	assert.Equal(t, `{"cow":"moo","spam":"eggs"}`, RenderJSON(decodeFull(t, "d3:cow3:moo4:spam4:eggse")))
}

// roundTripValues exercises the encode(decode(encode(v))) == encode(v) law
// across all four variants, including nesting.
func roundTripValues() []*Value {
	return []*Value{
		String([]byte("")),
		String([]byte("hello world")),
		Integer(0),
		Integer(-1),
		Integer(123456789),
		NewList(),
		NewList(Integer(1), Integer(2), String([]byte("x"))),
		NewDict(
			DictEntry{Key: []byte("a"), Value: Integer(1)},
			DictEntry{Key: []byte("b"), Value: NewList(Integer(2), Integer(3))},
		),
		NewDict(
			DictEntry{Key: []byte("info"), Value: NewDict(
				DictEntry{Key: []byte("length"), Value: Integer(92063)},
				DictEntry{Key: []byte("name"), Value: String([]byte("Sample.txt"))},
			)},
		),
	}
}

func TestCanonicalEncodeFixedPoint(t *testing.T) {
	for _, v := range roundTripValues() {
		encoded := Encode(v)
		decoded, n, err := Decode(encoded)
		require.NoError(t, err)
		require.Equal(t, len(encoded), n)
		reEncoded := Encode(decoded)
		assert.Equal(t, string(encoded), string(reEncoded))
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, v := range roundTripValues() {
		encoded := Encode(v)
		decoded, _, err := Decode(encoded)
		require.NoError(t, err)
		assert.True(t, v.Equal(decoded), "decode(encode(v)) != v for %s", RenderJSON(v))
	}
}

func TestEncodeDictKeyOrder(t *testing.T) {
	v := NewDict(
		DictEntry{Key: []byte("zebra"), Value: Integer(1)},
		DictEntry{Key: []byte("apple"), Value: Integer(2)},
		DictEntry{Key: []byte("mango"), Value: Integer(3)},
	)
	assert.Equal(t, "d5:applei2e5:mangoi3e5:zebrai1ee", string(Encode(v)))
}

func TestDecodeTopLevelDictSpans(t *testing.T) {
	raw := "d8:announce7:foo.com4:infod6:lengthi10e12:piece lengthi5eee"
	v, spans, err := DecodeTopLevelDict([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, v)
	span, ok := spans["info"]
	require.True(t, ok)
	assert.Equal(t, "d6:lengthi10e12:piece lengthi5ee", raw[span[0]:span[1]])
}
