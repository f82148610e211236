package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tinybit/internal/peerid"
	"tinybit/torrent"
)

func newPeersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peers <file.torrent>",
		Short: "Query the tracker and print one IP:PORT per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMetainfo(args[0])
			if err != nil {
				return err
			}
			id, err := peerid.New()
			if err != nil {
				return err
			}
			peers, err := torrent.Peers(m, id, listenPort)
			if err != nil {
				return fmt.Errorf("peers: %w", err)
			}
			for _, p := range peers {
				fmt.Println(p.String())
			}
			return nil
		},
	}
}
