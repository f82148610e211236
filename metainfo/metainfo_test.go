package metainfo

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybit/bencode"
)

// buildSample constructs the bencoded bytes for a single-file torrent
// fixture named "Sample.txt", 92063 bytes, 32768 piece length, 3 pieces.
func buildSample(t *testing.T) []byte {
	t.Helper()
	piece := func(b byte) []byte { return bytesRepeat(b, 20) }
	pieces := append(append(piece('A'), piece('B')...), piece('C')...)

	info := bencode.NewDict(
		bencode.DictEntry{Key: []byte("length"), Value: bencode.Integer(92063)},
		bencode.DictEntry{Key: []byte("name"), Value: bencode.String([]byte("Sample.txt"))},
		bencode.DictEntry{Key: []byte("piece length"), Value: bencode.Integer(32768)},
		bencode.DictEntry{Key: []byte("pieces"), Value: bencode.String(pieces)},
	)
	top := bencode.NewDict(
		bencode.DictEntry{Key: []byte("announce"), Value: bencode.String([]byte("http://tracker.example.com/announce"))},
		bencode.DictEntry{Key: []byte("info"), Value: info},
	)
	return bencode.Encode(top)
}

func bytesRepeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestParseSampleTorrent(t *testing.T) {
	data := buildSample(t)
	m, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "http://tracker.example.com/announce", m.Announce)
	assert.Equal(t, int64(92063), m.Length)
	assert.Equal(t, int64(32768), m.PieceLength)
	require.Len(t, m.PieceHashes, 3)
	assert.Equal(t, 3, m.PieceCount())
}

func TestInfoHashIsSHA1OfInfoSpan(t *testing.T) {
	data := buildSample(t)
	m, err := Parse(data)
	require.NoError(t, err)

	_, spans, err := bencode.DecodeTopLevelDict(data)
	require.NoError(t, err)
	span := spans["info"]
	want := sha1.Sum(data[span[0]:span[1]])
	assert.Equal(t, want, m.InfoHash)
}

func TestInfoHashChangesWithASingleByte(t *testing.T) {
	data := buildSample(t)
	m1, err := Parse(data)
	require.NoError(t, err)

	// Flip a byte inside the info span without breaking the bencode
	// grammar: change the name field's content.
	mutated := make([]byte, len(data))
	copy(mutated, data)
	idx := strings.Index(string(data), "Sample.txt")
	require.GreaterOrEqual(t, idx, 0)
	mutated[idx] = 's' // "sample.txt" - still 10 bytes, grammar intact

	m2, err := Parse(mutated)
	require.NoError(t, err)
	assert.NotEqual(t, m1.InfoHash, m2.InfoHash)
}

func TestIdenticalFilesYieldIdenticalInfoHash(t *testing.T) {
	data1 := buildSample(t)
	data2 := buildSample(t)
	m1, err := Parse(data1)
	require.NoError(t, err)
	m2, err := Parse(data2)
	require.NoError(t, err)
	assert.Equal(t, m1.InfoHash, m2.InfoHash)
}

func TestPieceCountMismatchIsMalformed(t *testing.T) {
	info := bencode.NewDict(
		bencode.DictEntry{Key: []byte("length"), Value: bencode.Integer(100)},
		bencode.DictEntry{Key: []byte("piece length"), Value: bencode.Integer(50)},
		bencode.DictEntry{Key: []byte("pieces"), Value: bencode.String(bytesRepeat('A', 20))}, // only 1 hash, need 2
	)
	top := bencode.NewDict(
		bencode.DictEntry{Key: []byte("announce"), Value: bencode.String([]byte("http://t"))},
		bencode.DictEntry{Key: []byte("info"), Value: info},
	)
	_, err := Parse(bencode.Encode(top))
	require.Error(t, err)
}

func TestPieceLenLastPieceIsShort(t *testing.T) {
	data := buildSample(t)
	m, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, int64(32768), m.PieceLen(0))
	assert.Equal(t, int64(32768), m.PieceLen(1))
	last := m.Length - int64(m.PieceCount()-1)*m.PieceLength
	assert.Equal(t, last, m.PieceLen(2))
	assert.Greater(t, m.PieceLen(2), int64(0))
	assert.LessOrEqual(t, m.PieceLen(2), m.PieceLength)
}

func TestBlocksForPieceShortLastBlock(t *testing.T) {
	blocks := BlocksForPiece(26527)
	require.Len(t, blocks, 2)
	assert.Equal(t, int64(0), blocks[0].Begin)
	assert.Equal(t, int64(BlockSize), blocks[0].Length)
	assert.Equal(t, int64(BlockSize), blocks[1].Begin)
	assert.Equal(t, int64(26527-BlockSize), blocks[1].Length)
}

func TestInfoHashHexIs40Chars(t *testing.T) {
	// Sanity check that the info-hash renders as 40 hex characters; the
	// synthetic fixture has no known reference hash to compare against.
	data := buildSample(t)
	m, err := Parse(data)
	require.NoError(t, err)
	s := hex.EncodeToString(m.InfoHash[:])
	assert.Len(t, s, 40)
}
