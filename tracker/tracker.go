// Package tracker implements the HTTP tracker GET/compact-peers exchange.
package tracker

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"tinybit/bencode"
)

// HTTPError reports a non-2xx tracker response.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("tracker: http failure: status %d", e.StatusCode)
}

var (
	// ErrMissingPeers is returned when the tracker response omits a
	// decodable "peers" key.
	ErrMissingPeers = fmt.Errorf("tracker: response missing 'peers'")
	// ErrBadPeerBlob is returned when "peers" is present but its length
	// is not a multiple of 6.
	ErrBadPeerBlob = fmt.Errorf("tracker: 'peers' length is not a multiple of 6")
)

// Request carries the parameters a GET announce needs beyond the tracker
// URL itself.
type Request struct {
	Announce string
	InfoHash [20]byte
	PeerID   [20]byte
	Port     uint16
	Left     int64
}

// BuildURL builds the tracker GET URL with the conventional announce query
// parameters.
func BuildURL(r Request) (string, error) {
	var qs strings.Builder
	qs.WriteString("info_hash=")
	qs.WriteString(percentEncode(r.InfoHash[:]))
	qs.WriteString("&peer_id=")
	qs.WriteString(percentEncode(r.PeerID[:]))
	qs.WriteString("&port=")
	qs.WriteString(strconv.Itoa(int(r.Port)))
	qs.WriteString("&uploaded=0&downloaded=0&left=")
	qs.WriteString(strconv.FormatInt(r.Left, 10))
	qs.WriteString("&compact=1")

	sep := "?"
	if strings.Contains(r.Announce, "?") {
		sep = "&"
	}
	return r.Announce + sep + qs.String(), nil
}

// Peer is a compact tracker peer entry.
type Peer struct {
	IP   net.IP
	Port uint16
}

func (p Peer) String() string {
	return net.JoinHostPort(p.IP.String(), strconv.Itoa(int(p.Port)))
}

// Client announces to a tracker over HTTP.
type Client struct {
	HTTP *http.Client
}

// NewClient builds a tracker Client using http.DefaultClient.
func NewClient() *Client {
	return &Client{HTTP: http.DefaultClient}
}

// GetPeers performs the tracker GET and decodes its compact peer list.
func (c *Client) GetPeers(req Request) ([]Peer, error) {
	u, err := BuildURL(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Get(u)
	if err != nil {
		return nil, fmt.Errorf("tracker: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tracker: reading response: %w", err)
	}

	decoded, _, err := bencode.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("tracker: bencode decode: %w", err)
	}

	peersVal := decoded.Get("peers")
	if peersVal == nil || peersVal.Kind != bencode.KindString {
		if fr := decoded.Get("failure reason"); fr != nil && fr.Kind == bencode.KindString {
			return nil, fmt.Errorf("tracker: failure reason: %s", fr.Str)
		}
		return nil, ErrMissingPeers
	}

	return unmarshalCompactPeers(peersVal.Str)
}

func unmarshalCompactPeers(blob []byte) ([]Peer, error) {
	const peerSize = 6
	if len(blob)%peerSize != 0 {
		return nil, ErrBadPeerBlob
	}
	n := len(blob) / peerSize
	peers := make([]Peer, n)
	for i := 0; i < n; i++ {
		off := i * peerSize
		ip := make(net.IP, 4)
		copy(ip, blob[off:off+4])
		peers[i] = Peer{
			IP:   ip,
			Port: binary.BigEndian.Uint16(blob[off+4 : off+6]),
		}
	}
	return peers, nil
}
