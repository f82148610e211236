// Package peerid generates the client's 20-byte peer identifier, fresh on
// every process run.
package peerid

import (
	"crypto/rand"
	"fmt"
)

// clientPrefix is the Azureus-style client identification prefix ("TB"
// for this client, version 0001) prepended to the random suffix.
const clientPrefix = "-TB0001-"

// New generates a fresh 20-byte peer-id: the client prefix followed by
// random bytes filling the remainder.
func New() ([20]byte, error) {
	var id [20]byte
	copy(id[:], clientPrefix)
	if _, err := rand.Read(id[len(clientPrefix):]); err != nil {
		return id, fmt.Errorf("peerid: generating random suffix: %w", err)
	}
	return id, nil
}
