// Package session implements the per-connection peer state machine:
// Connecting → Handshaking → AwaitBitfield → Interested → Unchoked →
// Downloading → Closed. One Session is owned by its caller for the
// lifetime of a single command; the underlying socket is closed on every
// exit path.
package session

import (
	"fmt"
	"time"

	"tinybit/internal/logging"
	"tinybit/peer"
	"tinybit/peer/bitfield"
	"tinybit/wire"
)

// State is a session's position in the peer protocol state machine.
type State int

const (
	StateConnecting State = iota
	StateHandshaking
	StateAwaitBitfield
	StateInterested
	StateUnchoked
	StateDownloading
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateAwaitBitfield:
		return "await_bitfield"
	case StateInterested:
		return "interested"
	case StateUnchoked:
		return "unchoked"
	case StateDownloading:
		return "downloading"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ProtocolViolation reports an out-of-contract message for the session's
// current state.
type ProtocolViolation struct {
	Detail string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("session: protocol violation: %s", e.Detail)
}

// Session owns a single peer TCP connection for the duration of a command.
type Session struct {
	conn        *wire.Conn
	addr        string
	PeerID      [20]byte
	Bitfield    bitfield.Bitfield
	Choked      bool
	state       State
	sawBitfield bool
	maxPieceLen int
}

// Open dials addr, performs the handshake, and waits for the peer's first
// post-handshake message (conventionally a bitfield). maxPieceLen bounds
// the framer's accepted `piece` message size (the torrent's piece length).
func Open(addr string, infoHash, myPeerID [20]byte, timeout time.Duration, maxPieceLen int) (*Session, error) {
	s := &Session{addr: addr, Choked: true, state: StateConnecting, maxPieceLen: maxPieceLen}

	conn, err := wire.Dial(addr, timeout)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	s.state = StateHandshaking

	peerID, err := peer.DoHandshake(conn, infoHash, myPeerID)
	if err != nil {
		conn.Close()
		return nil, err
	}
	s.PeerID = peerID
	s.state = StateAwaitBitfield
	logging.Log.WithField("peer", addr).Debug("handshake complete")

	if err := s.awaitFirstMessage(); err != nil {
		conn.Close()
		return nil, err
	}
	s.state = StateInterested
	return s, nil
}

func (s *Session) awaitFirstMessage() error {
	m, err := peer.ReadMessage(s.conn, s.maxPieceLen)
	if err != nil {
		return err
	}
	if m.KeepAlive {
		return nil
	}
	if m.ID == peer.MsgBitfield {
		s.Bitfield = bitfield.Bitfield(m.Payload)
		s.sawBitfield = true
		logging.Log.WithField("peer", s.addr).Debug("received bitfield")
		return nil
	}
	// The peer skipped straight to another message; no bitfield means we
	// assume it advertises nothing and fold this message through the
	// normal absorb path.
	return s.absorb(m)
}

// absorb updates session state from a choke/unchoke/have/bitfield message
// that is not itself the piece data we're waiting on.
func (s *Session) absorb(m *peer.Message) error {
	switch m.ID {
	case peer.MsgChoke:
		s.Choked = true
		s.state = StateInterested
	case peer.MsgUnchoke:
		s.Choked = false
	case peer.MsgHave:
		idx, err := peer.ParseHave(m)
		if err != nil {
			return err
		}
		s.markHave(idx)
	case peer.MsgBitfield:
		// A first-message bitfield is handled directly in
		// awaitFirstMessage and never reaches here (only a non-bitfield
		// first message is passed on to absorb), so any bitfield seen
		// here is necessarily a late one.
		return &ProtocolViolation{Detail: "bitfield received after the first post-handshake message"}
	default:
		return &ProtocolViolation{Detail: fmt.Sprintf("unexpected message %s in this context", m.ID)}
	}
	return nil
}

func (s *Session) markHave(index int) {
	needed := index/8 + 1
	if len(s.Bitfield) < needed {
		grown := make(bitfield.Bitfield, needed)
		copy(grown, s.Bitfield)
		s.Bitfield = grown
	}
	s.Bitfield.SetPiece(index)
}

// SendInterested announces interest in the peer's pieces.
func (s *Session) SendInterested() error {
	return peer.Send(s.conn, &peer.Message{ID: peer.MsgInterested})
}

// SendUnchoke announces that we are not choking the peer (this client never
// uploads, but peers commonly expect the courtesy message).
func (s *Session) SendUnchoke() error {
	return peer.Send(s.conn, &peer.Message{ID: peer.MsgUnchoke})
}

// HasPiece reports whether the peer's bitfield advertises index.
func (s *Session) HasPiece(index int) bool {
	return s.Bitfield.HasPiece(index)
}

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// Close releases the underlying socket. Safe to call more than once.
func (s *Session) Close() error {
	s.state = StateClosed
	return s.conn.Close()
}
