// Package metainfo loads a single-file bencoded .torrent descriptor and
// derives the canonical info-hash.
package metainfo

import (
	"crypto/sha1"
	"fmt"
	"io"

	"tinybit/bencode"
)

// Metainfo is the immutable record derived from a decoded metainfo dict.
type Metainfo struct {
	Announce    string
	Name        string
	Length      int64
	PieceLength int64
	PieceHashes [][20]byte
	InfoHash    [20]byte
}

// Load reads and decodes r as a single-file metainfo descriptor.
func Load(r io.Reader) (*Metainfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("metainfo: read: %w", err)
	}
	return Parse(data)
}

// Parse decodes data as a single-file metainfo descriptor.
//
// The info-hash is computed from the exact byte span the "info" dict
// occupied in data, not by re-encoding the decoded value, so non-canonical
// but well-formed input still yields the hash a real tracker/peer expects.
func Parse(data []byte) (*Metainfo, error) {
	top, spans, err := bencode.DecodeTopLevelDict(data)
	if err != nil {
		return nil, fmt.Errorf("metainfo: malformed bencode: %w", err)
	}

	announce := top.Get("announce")
	if announce == nil || announce.Kind != bencode.KindString {
		return nil, malformed("missing or invalid 'announce'")
	}

	infoSpan, ok := spans["info"]
	if !ok {
		return nil, malformed("missing 'info' dictionary")
	}
	info := top.Get("info")
	if info == nil || info.Kind != bencode.KindDict {
		return nil, malformed("'info' is not a dictionary")
	}

	nameVal := info.Get("name")
	name := ""
	if nameVal != nil && nameVal.Kind == bencode.KindString {
		name = string(nameVal.Str)
	}

	lengthVal := info.Get("length")
	if lengthVal == nil || lengthVal.Kind != bencode.KindInteger || lengthVal.Int <= 0 {
		return nil, malformed("missing or non-positive 'length' (multi-file torrents are not supported)")
	}

	pieceLenVal := info.Get("piece length")
	if pieceLenVal == nil || pieceLenVal.Kind != bencode.KindInteger || pieceLenVal.Int <= 0 {
		return nil, malformed("missing or non-positive 'piece length'")
	}

	piecesVal := info.Get("pieces")
	if piecesVal == nil || piecesVal.Kind != bencode.KindString {
		return nil, malformed("missing 'pieces'")
	}

	hashes, err := splitPieceHashes(piecesVal.Str)
	if err != nil {
		return nil, err
	}

	wantCount := ceilDiv(lengthVal.Int, pieceLenVal.Int)
	if int64(len(hashes)) != wantCount {
		return nil, malformed(fmt.Sprintf(
			"piece count mismatch: have %d hashes, expected ceil(%d/%d)=%d",
			len(hashes), lengthVal.Int, pieceLenVal.Int, wantCount,
		))
	}

	infoRaw := data[infoSpan[0]:infoSpan[1]]

	return &Metainfo{
		Announce:    string(announce.Str),
		Name:        name,
		Length:      lengthVal.Int,
		PieceLength: pieceLenVal.Int,
		PieceHashes: hashes,
		InfoHash:    sha1.Sum(infoRaw),
	}, nil
}

func splitPieceHashes(pieces []byte) ([][20]byte, error) {
	if len(pieces)%20 != 0 {
		return nil, malformed(fmt.Sprintf("'pieces' length %d is not a multiple of 20", len(pieces)))
	}
	n := len(pieces) / 20
	out := make([][20]byte, n)
	for i := 0; i < n; i++ {
		copy(out[i][:], pieces[i*20:(i+1)*20])
	}
	return out, nil
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

func malformed(reason string) error {
	return fmt.Errorf("metainfo: malformed metainfo: %s", reason)
}
