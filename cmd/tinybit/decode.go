package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tinybit/bencode"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <bencoded>",
		Short: "Decode a bencoded literal and print it in a JSON-like form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, n, err := bencode.Decode([]byte(args[0]))
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}
			if n != len(args[0]) {
				return fmt.Errorf("decode: %d trailing byte(s) after a complete value", len(args[0])-n)
			}
			fmt.Println(color.CyanString(bencode.RenderJSON(v)))
			return nil
		},
	}
}
