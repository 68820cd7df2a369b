package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/livepeer/hlsfrag/video"
)

func transcodeSegmentCmd() *cobra.Command {
	var start, duration float64
	var output string

	cmd := &cobra.Command{
		Use:   "transcode-segment <source-path>",
		Short: "Transcode one segment out of a source file, for testing the encoder pipeline in isolation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			transcoder := video.Transcoder{}
			if err := transcoder.TranscodeSegment(context.Background(), args[0], start, duration, output); err != nil {
				return err
			}
			fmt.Printf("wrote segment to %s\n", output)
			return nil
		},
	}
	cmd.Flags().Float64Var(&start, "start", 0, "segment start time in seconds")
	cmd.Flags().Float64Var(&duration, "duration", 4, "segment duration in seconds")
	cmd.Flags().StringVar(&output, "output", "", "output path for the transcoded segment")
	return cmd
}
