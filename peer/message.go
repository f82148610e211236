package peer

import (
	"encoding/binary"
	"fmt"

	"tinybit/wire"
)

// ID identifies a post-handshake message type.
type ID uint8

const (
	MsgChoke         ID = 0
	MsgUnchoke       ID = 1
	MsgInterested    ID = 2
	MsgNotInterested ID = 3
	MsgHave          ID = 4
	MsgBitfield      ID = 5
	MsgRequest       ID = 6
	MsgPiece         ID = 7
	MsgCancel        ID = 8
)

func (id ID) String() string {
	switch id {
	case MsgChoke:
		return "choke"
	case MsgUnchoke:
		return "unchoke"
	case MsgInterested:
		return "interested"
	case MsgNotInterested:
		return "not-interested"
	case MsgHave:
		return "have"
	case MsgBitfield:
		return "bitfield"
	case MsgRequest:
		return "request"
	case MsgPiece:
		return "piece"
	case MsgCancel:
		return "cancel"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(id))
	}
}

// defaultMaxMessageLen is the policy maximum for non-piece messages.
const defaultMaxMessageLen = 1 << 17

// Message is a decoded post-handshake message. A Message with KeepAlive
// true represents a keep-alive; Serialize also treats a nil *Message as one.
type Message struct {
	KeepAlive bool
	ID        ID
	Payload   []byte
}

// ErrMessageTooLarge is returned when a declared message length exceeds the
// policy maximum for its kind.
var ErrMessageTooLarge = fmt.Errorf("peer: message too large")

// Serialize encodes m as <4-byte length><1-byte id><payload>, or a 4-byte
// zero length for a keep-alive.
func (m *Message) Serialize() []byte {
	if m == nil || m.KeepAlive {
		return make([]byte, 4)
	}
	length := uint32(len(m.Payload) + 1)
	buf := make([]byte, 4+length)
	binary.BigEndian.PutUint32(buf[0:4], length)
	buf[4] = byte(m.ID)
	copy(buf[5:], m.Payload)
	return buf
}

// ReadMessage reads one length-prefixed message from conn. maxPieceLen
// bounds the accepted payload size for `piece` messages (piece_length + 9);
// all other message kinds are bounded by defaultMaxMessageLen.
func ReadMessage(conn *wire.Conn, maxPieceLen int) (*Message, error) {
	lenBuf, err := conn.ReadExact(4)
	if err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf)
	if length == 0 {
		return &Message{KeepAlive: true}, nil
	}

	pieceLimit := maxPieceLen + 9
	// The id byte hasn't been read yet, so admit anything within the
	// looser of the two limits; the tighter, id-specific limit is
	// enforced below once we know which kind of message this is.
	admit := defaultMaxMessageLen
	if pieceLimit > admit {
		admit = pieceLimit
	}
	if int(length) > admit {
		return nil, fmt.Errorf("%w: declared length %d", ErrMessageTooLarge, length)
	}

	body, err := conn.ReadExact(int(length))
	if err != nil {
		return nil, err
	}
	id := ID(body[0])
	payload := body[1:]

	if id == MsgPiece {
		if int(length) > pieceLimit {
			return nil, fmt.Errorf("%w: piece message length %d exceeds limit", ErrMessageTooLarge, length)
		}
	} else if int(length) > defaultMaxMessageLen {
		return nil, fmt.Errorf("%w: declared length %d", ErrMessageTooLarge, length)
	}

	return &Message{ID: id, Payload: payload}, nil
}

// Send serializes and writes m.
func Send(conn *wire.Conn, m *Message) error {
	return conn.WriteAll(m.Serialize())
}

func FormatRequest(index, begin, length int) *Message {
	payload := make([]byte, 12)
	binary.BigEndian.PutUint32(payload[0:4], uint32(index))
	binary.BigEndian.PutUint32(payload[4:8], uint32(begin))
	binary.BigEndian.PutUint32(payload[8:12], uint32(length))
	return &Message{ID: MsgRequest, Payload: payload}
}

// ParseHave extracts the piece index from a `have` message.
func ParseHave(m *Message) (int, error) {
	if m.ID != MsgHave {
		return 0, fmt.Errorf("peer: expected have, got %s", m.ID)
	}
	if len(m.Payload) != 4 {
		return 0, fmt.Errorf("peer: malformed have payload (%d bytes)", len(m.Payload))
	}
	return int(binary.BigEndian.Uint32(m.Payload)), nil
}

// ParsePiece extracts (index, begin) and copies the block's data into buf at
// offset begin. It validates index against want and that the data fits
// within buf.
func ParsePiece(want int, buf []byte, m *Message) (begin int, n int, err error) {
	if m.ID != MsgPiece {
		return 0, 0, fmt.Errorf("peer: expected piece, got %s", m.ID)
	}
	if len(m.Payload) < 8 {
		return 0, 0, fmt.Errorf("peer: piece payload too short (%d bytes)", len(m.Payload))
	}
	index := int(binary.BigEndian.Uint32(m.Payload[0:4]))
	if index != want {
		return 0, 0, fmt.Errorf("peer: piece index %d, expected %d", index, want)
	}
	begin = int(binary.BigEndian.Uint32(m.Payload[4:8]))
	data := m.Payload[8:]
	if begin < 0 || begin > len(buf) || begin+len(data) > len(buf) {
		return 0, 0, fmt.Errorf("peer: piece block [%d,%d) out of range for buffer of %d", begin, begin+len(data), len(buf))
	}
	copy(buf[begin:], data)
	return begin, len(data), nil
}
