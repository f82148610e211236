package peer

import (
	"bytes"
	"fmt"

	"tinybit/wire"
)

const (
	pstr       = "BitTorrent protocol"
	handshakeLen = 1 + 19 + 8 + 20 + 20
)

// Handshake is the fixed 68-byte record exchanged before any length-prefixed
// message.
type Handshake struct {
	InfoHash [20]byte
	PeerID   [20]byte
}

// ErrInfoHashMismatch is returned when the peer's handshake response carries
// a different info-hash than the one we sent.
var ErrInfoHashMismatch = fmt.Errorf("peer: handshake info-hash mismatch")

// Marshal serializes h to the 68-byte wire format. The reserved bytes are
// zeroed explicitly, mirroring the original implementation's explicit
// memset rather than relying on the zero value of a fresh slice.
func (h Handshake) Marshal() []byte {
	buf := make([]byte, handshakeLen)
	buf[0] = byte(len(pstr))
	copy(buf[1:20], pstr)
	reserved := buf[20:28]
	for i := range reserved {
		reserved[i] = 0
	}
	copy(buf[28:48], h.InfoHash[:])
	copy(buf[48:68], h.PeerID[:])
	return buf
}

// unmarshalHandshake parses a 68-byte handshake record. The first 20 bytes
// (pstrlen + "BitTorrent protocol") must match exactly; the 8 reserved
// bytes are ignored.
func unmarshalHandshake(buf []byte) (Handshake, error) {
	if len(buf) != handshakeLen {
		return Handshake{}, fmt.Errorf("peer: handshake: expected %d bytes, got %d", handshakeLen, len(buf))
	}
	if buf[0] != byte(len(pstr)) || string(buf[1:20]) != pstr {
		return Handshake{}, fmt.Errorf("peer: handshake: unexpected protocol prefix")
	}
	var h Handshake
	copy(h.InfoHash[:], buf[28:48])
	copy(h.PeerID[:], buf[48:68])
	return h, nil
}

// DoHandshake writes our handshake and reads the peer's response, validating
// the protocol prefix and info-hash, and returns the peer's id.
func DoHandshake(conn *wire.Conn, infoHash, peerID [20]byte) ([20]byte, error) {
	req := Handshake{InfoHash: infoHash, PeerID: peerID}
	if err := conn.WriteAll(req.Marshal()); err != nil {
		return [20]byte{}, fmt.Errorf("peer: send handshake: %w", err)
	}

	raw, err := conn.ReadExact(handshakeLen)
	if err != nil {
		return [20]byte{}, fmt.Errorf("peer: read handshake: %w", err)
	}
	resp, err := unmarshalHandshake(raw)
	if err != nil {
		return [20]byte{}, err
	}
	if !bytes.Equal(resp.InfoHash[:], infoHash[:]) {
		return [20]byte{}, ErrInfoHashMismatch
	}
	return resp.PeerID, nil
}
