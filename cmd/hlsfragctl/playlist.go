package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/livepeer/hlsfrag/playlist"
)

func buildPlaylistCmd() *cobra.Command {
	var initURI string

	cmd := &cobra.Command{
		Use:   "build-playlist <duration> [duration...]",
		Short: "Dry-run the playlist builder over a list of segment durations and print the resulting manifest",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			durations := make([]float64, len(args))
			for i, a := range args {
				d, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("invalid duration %q: %w", a, err)
				}
				durations[i] = d
			}
			fmt.Print(playlist.Build(durations, initURI))
			return nil
		},
	}
	cmd.Flags().StringVar(&initURI, "init-uri", "init.mp4", "URI to reference in #EXT-X-MAP")
	return cmd
}
