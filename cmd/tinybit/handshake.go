package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"tinybit/internal/peerid"
	"tinybit/torrent"
)

func newHandshakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "handshake <file.torrent> <ip:port>",
		Short: "Perform the peer handshake and print the remote peer id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMetainfo(args[0])
			if err != nil {
				return err
			}
			id, err := peerid.New()
			if err != nil {
				return err
			}
			peerID, err := torrent.Handshake(m, args[1], id)
			if err != nil {
				return fmt.Errorf("handshake: %w", err)
			}
			fmt.Printf("Peer ID: %s\n", hex.EncodeToString(peerID[:]))
			return nil
		},
	}
}
