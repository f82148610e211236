package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tinybit/metainfo"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.torrent>",
		Short: "Print a metainfo file's tracker URL, length, and piece hashes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMetainfo(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Tracker URL: %s\n", m.Announce)
			fmt.Printf("Length: %d\n", m.Length)
			fmt.Printf("Info Hash: %s\n", color.CyanString(hex.EncodeToString(m.InfoHash[:])))
			fmt.Printf("Piece Length: %d\n", m.PieceLength)
			fmt.Println("Piece Hashes:")
			for _, h := range m.PieceHashes {
				fmt.Println(hex.EncodeToString(h[:]))
			}
			return nil
		},
	}
}

func loadMetainfo(path string) (*metainfo.Metainfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return metainfo.Load(f)
}
