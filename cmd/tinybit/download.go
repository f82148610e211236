package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tinybit/internal/peerid"
	"tinybit/torrent"
)

func newDownloadCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "download <file.torrent>",
		Short: "Download the whole file sequentially from the first tracker peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return fmt.Errorf("download: -o is required")
			}

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
				return fmt.Errorf("download: %w", err)
			}
			if len(peers) == 0 {
				return fmt.Errorf("download: tracker returned no peers")
			}

			if err := torrent.Download(m, peers[0].String(), id, outPath); err != nil {
				return fmt.Errorf("download: %w", err)
			}
			fmt.Printf("Downloaded to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file for the downloaded torrent")
	return cmd
}
