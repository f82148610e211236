package torrent

import (
	"fmt"
	"time"

	"tinybit/internal/logging"
	"tinybit/metainfo"
	"tinybit/session"
	"tinybit/tracker"
)

// DefaultTimeout is the recommended per-socket read/write timeout.
const DefaultTimeout = 30 * time.Second

// DefaultPort is the client's advertised listening port in tracker
// announces. This client never accepts inbound connections (no seeding);
// the port is announced only because trackers expect one.
const DefaultPort = 6881

// Peers announces to the torrent's tracker and returns its compact peer
// list.
func Peers(m *metainfo.Metainfo, peerID [20]byte, port uint16) ([]tracker.Peer, error) {
	c := tracker.NewClient()
	return c.GetPeers(tracker.Request{
		Announce: m.Announce,
		InfoHash: m.InfoHash,
		PeerID:   peerID,
		Port:     port,
		Left:     m.Length,
	})
}

// Handshake opens a session against addr and returns the peer's id, then
// closes the connection. Used by the `handshake` CLI command, which only
// needs the peer-id, not a download.
func Handshake(m *metainfo.Metainfo, addr string, peerID [20]byte) ([20]byte, error) {
	s, err := session.Open(addr, m.InfoHash, peerID, DefaultTimeout, int(m.PieceLength))
	if err != nil {
		return [20]byte{}, err
	}
	defer s.Close()
	return s.PeerID, nil
}

// DownloadPiece downloads and verifies a single piece from one peer and
// returns its bytes.
func DownloadPiece(m *metainfo.Metainfo, addr string, peerID [20]byte, index int) ([]byte, error) {
	if index < 0 || index >= m.PieceCount() {
		return nil, fmt.Errorf("torrent: piece index %d out of range [0,%d)", index, m.PieceCount())
	}

	s, err := session.Open(addr, m.InfoHash, peerID, DefaultTimeout, int(m.PieceLength))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if err := s.SendUnchoke(); err != nil {
		return nil, err
	}
	if err := s.SendInterested(); err != nil {
		return nil, err
	}

	// A peer that does not advertise the requested piece in its bitfield
	// may still be tried; a subsequent timeout is simply fatal, same as
	// any other read failure.
	return s.DownloadPiece(index, m.PieceLen(index), m.PieceHashes[index])
}

// Download performs the sequential single-peer whole-file download:
// pieces 0..N-1 are fetched in order; any per-piece failure aborts the
// whole operation.
func Download(m *metainfo.Metainfo, addr string, peerID [20]byte, destPath string) error {
	s, err := session.Open(addr, m.InfoHash, peerID, DefaultTimeout, int(m.PieceLength))
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SendUnchoke(); err != nil {
		return err
	}
	if err := s.SendInterested(); err != nil {
		return err
	}

	asm, err := newAssembler(destPath, m.Length)
	if err != nil {
		return err
	}
	defer asm.close()

	for i := 0; i < m.PieceCount(); i++ {
		buf, err := s.DownloadPiece(i, m.PieceLen(i), m.PieceHashes[i])
		if err != nil {
			return fmt.Errorf("torrent: piece %d: %w", i, err)
		}
		if err := asm.writeAt(m.PieceOffset(i), buf); err != nil {
			return err
		}
		logging.Log.WithField("index", i).WithField("total", m.PieceCount()).Info("piece committed")
	}
	return nil
}
