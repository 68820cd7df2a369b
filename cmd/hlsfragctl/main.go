// Command hlsfragctl is an operator CLI for exercising the pipeline's
// pieces against a local file without going through the queue: probe a
// source, transcode one segment, or dry-run a playlist body.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "hlsfragctl",
		Short: "Operator CLI for the HLS fragmenting pipeline",
	}
	root.AddCommand(probeCmd(), transcodeSegmentCmd(), buildPlaylistCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
