package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tinybit/internal/peerid"
	"tinybit/torrent"
)

func newDownloadPieceCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "download_piece <file.torrent> <index>",
		Short: "Download and verify a single piece from the first tracker peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return fmt.Errorf("download_piece: -o is required")
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("download_piece: invalid piece index %q: %w", args[1], err)
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
				return fmt.Errorf("download_piece: %w", err)
			}
			if len(peers) == 0 {
				return fmt.Errorf("download_piece: tracker returned no peers")
			}

			buf, err := torrent.DownloadPiece(m, peers[0].String(), id, index)
			if err != nil {
				return fmt.Errorf("download_piece: %w", err)
			}
			if err := torrent.WritePieceFile(outPath, buf); err != nil {
				return err
			}
			fmt.Printf("Piece %d downloaded to %s\n", index, outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file for the downloaded piece")
	return cmd
}
