package session

import (
	"bytes"
	"crypto/sha1"
	"fmt"

	"tinybit/internal/logging"
	"tinybit/metainfo"
	"tinybit/peer"
)

// maxPipelined bounds the number of outstanding block requests in flight at
// once; this client pipelines rather than using a synchronous
// one-in-flight loop.
const maxPipelined = 5

// HashMismatch reports that a downloaded piece's SHA-1 does not match its
// expected digest.
type HashMismatch struct {
	Index    int
	Expected [20]byte
	Actual   [20]byte
}

func (e *HashMismatch) Error() string {
	return fmt.Sprintf("session: piece %d hash mismatch: expected %x, got %x", e.Index, e.Expected, e.Actual)
}

// DownloadPiece runs the piece engine state machine for one piece: it
// pipelines block requests, routes inbound `piece` replies by (index,
// begin), absorbs choke/unchoke/have traffic (a bitfield at this point is a
// protocol violation), and verifies the assembled buffer's SHA-1 before
// returning it.
//
// The piece buffer is exclusively owned by this call for its duration; on
// any error the session should be considered unusable and closed by the
// caller. Hash mismatches and protocol violations are fatal; there are no
// retries.
func (s *Session) DownloadPiece(index int, pieceLen int64, expectedHash [20]byte) ([]byte, error) {
	s.state = StateDownloading
	buf := make([]byte, pieceLen)
	blocks := metainfo.BlocksForPiece(pieceLen)

	outstanding := make(map[int64]int64, len(blocks)) // begin -> length
	filled := make(map[int64]bool, len(blocks))
	var downloaded int64
	next := 0

	requestMore := func() error {
		for len(outstanding) < maxPipelined && next < len(blocks) {
			b := blocks[next]
			next++
			if err := peer.Send(s.conn, peer.FormatRequest(index, int(b.Begin), int(b.Length))); err != nil {
				return fmt.Errorf("session: sending request: %w", err)
			}
			outstanding[b.Begin] = b.Length
		}
		return nil
	}

	for downloaded < pieceLen {
		if !s.Choked {
			if err := requestMore(); err != nil {
				return nil, err
			}
		}

		m, err := peer.ReadMessage(s.conn, int(s.maxPieceLen))
		if err != nil {
			return nil, err
		}
		if m.KeepAlive {
			continue
		}

		if m.ID == peer.MsgPiece {
			begin, n, err := peer.ParsePiece(index, buf, m)
			if err != nil {
				return nil, &ProtocolViolation{Detail: err.Error()}
			}
			want, ok := outstanding[int64(begin)]
			if !ok || filled[int64(begin)] {
				return nil, &ProtocolViolation{Detail: fmt.Sprintf("unexpected piece block at begin=%d", begin)}
			}
			if int64(n) != want {
				return nil, &ProtocolViolation{Detail: fmt.Sprintf("block at begin=%d: expected %d bytes, got %d", begin, want, n)}
			}
			filled[int64(begin)] = true
			delete(outstanding, int64(begin))
			downloaded += int64(n)
			continue
		}

		if err := s.absorb(m); err != nil {
			return nil, err
		}
	}

	sum := sha1.Sum(buf)
	if !bytes.Equal(sum[:], expectedHash[:]) {
		return nil, &HashMismatch{Index: index, Expected: expectedHash, Actual: sum}
	}
	logging.Log.WithField("index", index).Debug("piece verified")
	return buf, nil
}
