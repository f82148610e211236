// Command tinybit is a minimal single-peer BitTorrent client: given a
// single-file .torrent descriptor, it can decode raw bencode, print
// metainfo, query a tracker, handshake with a peer, and download a single
// piece or the whole file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tinybit/internal/logging"
	"tinybit/torrent"
)

var (
	verbose    bool
	listenPort uint16
)

func main() {
	root := &cobra.Command{
		Use:           "tinybit",
		Short:         "A minimal single-peer BitTorrent client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging to stderr")
	root.PersistentFlags().Uint16Var(&listenPort, "port", torrent.DefaultPort, "listening port announced to the tracker")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(verbose)
	}

	root.AddCommand(
		newDecodeCmd(),
		newInfoCmd(),
		newPeersCmd(),
		newHandshakeCmd(),
		newDownloadPieceCmd(),
		newDownloadCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
