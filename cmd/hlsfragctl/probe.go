package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/livepeer/hlsfrag/video"
)

func probeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <path>",
		Short: "Probe a media file and print its keyframe times, duration, and segment boundaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			prober := video.Probe{}
			media, err := prober.Probe(context.Background(), "probe-cli", path)
			if err != nil {
				return err
			}
			boundaries, err := video.ComputeSegmentBoundaries(media.KeyframeTimes, media.Duration)
			if err != nil {
				return err
			}
			media.SegmentBoundaries = boundaries

			out, err := json.MarshalIndent(struct {
				Duration          float64   `json:"duration"`
				KeyframeTimes     []float64 `json:"keyframe_times"`
				SegmentBoundaries []float64 `json:"segment_boundaries"`
				SegmentCount      int       `json:"segment_count"`
			}{
				Duration:          media.Duration,
				KeyframeTimes:     media.KeyframeTimes,
				SegmentBoundaries: media.SegmentBoundaries,
				SegmentCount:      media.SegmentCount(),
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	return cmd
}
